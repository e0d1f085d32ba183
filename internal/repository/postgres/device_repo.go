package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/DonWMason/CryptomatorHub/internal/errs"
	"github.com/DonWMason/CryptomatorHub/internal/model"
)

// DeviceRepo implements DeviceRepository using PostgreSQL.
type DeviceRepo struct{ db *DB }

// NewDeviceRepo constructs a device repository.
func NewDeviceRepo(db *DB) *DeviceRepo { return &DeviceRepo{db: db} }

// Get selects a device by id regardless of owner.
func (r *DeviceRepo) Get(ctx context.Context, id string) (*model.Device, error) {
	const q = `
SELECT id, user_id, name, type, publickey, user_privatekey, created_at
FROM device WHERE id=$1`
	row := r.db.Pool.QueryRow(ctx, q, id)
	var d model.Device
	if err := row.Scan(&d.ID, &d.OwnerID, &d.Name, &d.Type, &d.PublicKey, &d.UserPrivateKey, &d.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, translate(err)
	}
	return &d, nil
}

// Create inserts a new device row.
func (r *DeviceRepo) Create(ctx context.Context, d *model.Device) error {
	const q = `
INSERT INTO device (id, user_id, name, type, publickey, user_privatekey, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.Pool.Exec(ctx, q, d.ID, d.OwnerID, d.Name, string(d.Type), d.PublicKey, d.UserPrivateKey, d.CreatedAt)
	if isUniqueViolation(err) {
		return errs.ErrConflict
	}
	if isForeignKeyViolation(err) {
		return errs.ErrNotFound
	}
	return translate(err)
}

// Update overwrites the caller-supplied attributes; created_at stays untouched.
func (r *DeviceRepo) Update(ctx context.Context, d *model.Device) error {
	const q = `
UPDATE device
SET name=$2, type=$3, publickey=$4, user_privatekey=$5
WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, d.ID, d.Name, string(d.Type), d.PublicKey, d.UserPrivateKey)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// Delete removes a device; access_grant rows cascade via FK.
func (r *DeviceRepo) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM device WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, id)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// ListByOwner returns all devices owned by a user, ordered by id.
func (r *DeviceRepo) ListByOwner(ctx context.Context, ownerID string) ([]model.Device, error) {
	const q = `
SELECT id, user_id, name, type, publickey, user_privatekey, created_at
FROM device WHERE user_id=$1
ORDER BY id`
	rows, err := r.db.Pool.Query(ctx, q, ownerID)
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

// DeleteLegacy removes a legacy device row if present.
func (r *DeviceRepo) DeleteLegacy(ctx context.Context, id string) (bool, error) {
	const q = `DELETE FROM legacy_device WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, id)
	if err != nil {
		return false, translate(err)
	}
	return tag.RowsAffected() > 0, nil
}

// LegacyTokens lists legacy access tokens of a device owned by ownerID.
func (r *DeviceRepo) LegacyTokens(ctx context.Context, deviceID, ownerID string) ([]model.LegacyAccessToken, error) {
	const q = `
SELECT t.device_id, t.vault_id, t.jwe
FROM legacy_access_token t
JOIN device d ON d.id = t.device_id
WHERE t.device_id=$1 AND d.user_id=$2
ORDER BY t.vault_id`
	rows, err := r.db.Pool.Query(ctx, q, deviceID, ownerID)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	var out []model.LegacyAccessToken
	for rows.Next() {
		var t model.LegacyAccessToken
		if err = rows.Scan(&t.DeviceID, &t.VaultID, &t.JWE); err != nil {
			return nil, translate(err)
		}
		out = append(out, t)
	}
	return out, translate(rows.Err())
}
