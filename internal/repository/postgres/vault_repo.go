package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/DonWMason/CryptomatorHub/internal/errs"
	"github.com/DonWMason/CryptomatorHub/internal/model"
)

// VaultRepo implements VaultRepository using PostgreSQL.
type VaultRepo struct{ db *DB }

// NewVaultRepo constructs a vault repository.
func NewVaultRepo(db *DB) *VaultRepo { return &VaultRepo{db: db} }

// Create inserts the vault row and the creator's OWNER membership in one
// transaction. The uniqueness constraint on vault.id resolves creation races.
func (r *VaultRepo) Create(ctx context.Context, v *model.Vault) (err error) {
	tx, err := r.db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return translate(err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if e := tx.Commit(ctx); e != nil {
			err = translate(e)
		}
	}()

	const ins = `
INSERT INTO vault (id, name, masterkey, iterations, salt, authority_id, archived)
VALUES ($1, $2, $3, $4, $5, $6, false)`
	if _, err = tx.Exec(ctx, ins, v.ID, v.Name, v.Masterkey, v.Iterations, v.Salt, v.OwnerID); err != nil {
		if isUniqueViolation(err) {
			return errs.ErrConflict
		}
		if isForeignKeyViolation(err) {
			return errs.ErrNotFound
		}
		return translate(err)
	}

	const mem = `
INSERT INTO vault_membership (vault_id, authority_id, role)
VALUES ($1, $2, $3)`
	if _, err = tx.Exec(ctx, mem, v.ID, v.OwnerID, string(model.RoleOwner)); err != nil {
		return translate(err)
	}
	return nil
}

// Get selects a vault by id.
func (r *VaultRepo) Get(ctx context.Context, id string) (*model.Vault, error) {
	const q = `
SELECT id, name, masterkey, iterations, salt, authority_id, archived, created_at
FROM vault WHERE id=$1`
	row := r.db.Pool.QueryRow(ctx, q, id)
	var v model.Vault
	if err := row.Scan(&v.ID, &v.Name, &v.Masterkey, &v.Iterations, &v.Salt, &v.OwnerID, &v.Archived, &v.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, translate(err)
	}
	return &v, nil
}

// Archive marks a vault archived.
func (r *VaultRepo) Archive(ctx context.Context, id string) error {
	const q = `UPDATE vault SET archived=true WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, id)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// ListMembers returns the direct membership rows of a vault.
func (r *VaultRepo) ListMembers(ctx context.Context, vaultID string) ([]model.VaultMembership, error) {
	const q = `
SELECT vault_id, authority_id, role
FROM vault_membership
WHERE vault_id=$1
ORDER BY authority_id`
	rows, err := r.db.Pool.Query(ctx, q, vaultID)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	var out []model.VaultMembership
	for rows.Next() {
		var m model.VaultMembership
		if err = rows.Scan(&m.VaultID, &m.AuthorityID, &m.Role); err != nil {
			return nil, translate(err)
		}
		out = append(out, m)
	}
	return out, translate(rows.Err())
}

// AddMember upserts a direct membership row; re-adding changes the role.
func (r *VaultRepo) AddMember(ctx context.Context, m model.VaultMembership) error {
	const q = `
INSERT INTO vault_membership (vault_id, authority_id, role)
VALUES ($1, $2, $3)
ON CONFLICT (vault_id, authority_id) DO UPDATE SET role = excluded.role`
	_, err := r.db.Pool.Exec(ctx, q, m.VaultID, m.AuthorityID, string(m.Role))
	if isForeignKeyViolation(err) {
		return errs.ErrNotFound
	}
	return translate(err)
}

// RemoveMember deletes a direct membership row.
func (r *VaultRepo) RemoveMember(ctx context.Context, vaultID, authorityID string) error {
	const q = `DELETE FROM vault_membership WHERE vault_id=$1 AND authority_id=$2`
	tag, err := r.db.Pool.Exec(ctx, q, vaultID, authorityID)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}
