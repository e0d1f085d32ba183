package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/DonWMason/CryptomatorHub/internal/errs"
	"github.com/DonWMason/CryptomatorHub/internal/model"
)

// KeyWrapRepo implements KeyWrapRepository using PostgreSQL. The primary key
// on (vault_id, device_id) serializes concurrent grants: the second insert
// deterministically fails with ErrConflict.
type KeyWrapRepo struct{ db *DB }

// NewKeyWrapRepo constructs a key-wrap repository.
func NewKeyWrapRepo(db *DB) *KeyWrapRepo { return &KeyWrapRepo{db: db} }

// Create inserts a key wrap.
func (r *KeyWrapRepo) Create(ctx context.Context, w model.KeyWrap) error {
	const q = `
INSERT INTO access_grant (vault_id, device_id, jwe, ephemeral_publickey)
VALUES ($1, $2, $3, $4)`
	_, err := r.db.Pool.Exec(ctx, q, w.VaultID, w.DeviceID, w.JWE, w.EphemeralPublicKey)
	if isUniqueViolation(err) {
		return errs.ErrConflict
	}
	if isForeignKeyViolation(err) {
		return errs.ErrNotFound
	}
	return translate(err)
}

// Get loads the wrap for (vault, device).
func (r *KeyWrapRepo) Get(ctx context.Context, vaultID, deviceID string) (*model.KeyWrap, error) {
	const q = `
SELECT vault_id, device_id, jwe, ephemeral_publickey
FROM access_grant WHERE vault_id=$1 AND device_id=$2`
	row := r.db.Pool.QueryRow(ctx, q, vaultID, deviceID)
	var w model.KeyWrap
	if err := row.Scan(&w.VaultID, &w.DeviceID, &w.JWE, &w.EphemeralPublicKey); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, translate(err)
	}
	return &w, nil
}

// DeleteForDevice removes the wrap of one device on one vault.
func (r *KeyWrapRepo) DeleteForDevice(ctx context.Context, vaultID, deviceID string) error {
	const q = `DELETE FROM access_grant WHERE vault_id=$1 AND device_id=$2`
	tag, err := r.db.Pool.Exec(ctx, q, vaultID, deviceID)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// DeleteForUser removes the wraps of every device the user owns on the vault.
func (r *KeyWrapRepo) DeleteForUser(ctx context.Context, vaultID, userID string) error {
	const q = `
DELETE FROM access_grant g
USING device d
WHERE g.device_id = d.id AND g.vault_id=$1 AND d.user_id=$2`
	tag, err := r.db.Pool.Exec(ctx, q, vaultID, userID)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// DevicesRequiringGrant returns devices of effective members that still lack
// a wrap for the vault: member devices MINUS already-granted devices.
func (r *KeyWrapRepo) DevicesRequiringGrant(ctx context.Context, vaultID string) ([]model.Device, error) {
	const q = `
SELECT DISTINCT d.id, d.user_id, d.name, d.type, d.publickey, d.user_privatekey, d.created_at
FROM device d
JOIN effective_vault_access eva ON eva.authority_id = d.user_id
WHERE eva.vault_id=$1
  AND NOT EXISTS (SELECT 1 FROM access_grant g WHERE g.vault_id=$1 AND g.device_id = d.id)
ORDER BY d.id`
	rows, err := r.db.Pool.Query(ctx, q, vaultID)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	var out []model.Device
	for rows.Next() {
		var d model.Device
		if err = rows.Scan(&d.ID, &d.OwnerID, &d.Name, &d.Type, &d.PublicKey, &d.UserPrivateKey, &d.CreatedAt); err != nil {
			return nil, translate(err)
		}
		out = append(out, d)
	}
	return out, translate(rows.Err())
}
