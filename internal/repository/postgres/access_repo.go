package postgres

import (
	"context"

	"github.com/DonWMason/CryptomatorHub/internal/model"
)

// AccessRepo implements EffectiveAccessRepository on top of the
// effective_vault_access view. The view is a UNION ALL of direct membership
// rows and group-derived rows, so the database recomputes the relation from
// primary tables inside every read; there is no copy that could go stale.
type AccessRepo struct{ db *DB }

// NewAccessRepo constructs an effective-access repository.
func NewAccessRepo(db *DB) *AccessRepo { return &AccessRepo{db: db} }

// Resolve returns every effective (authority, role) row on the vault.
// Multiplicity is preserved: direct and group-derived paths yield one row each.
func (r *AccessRepo) Resolve(ctx context.Context, vaultID string) ([]model.EffectiveAccess, error) {
	const q = `
SELECT vault_id, authority_id, role
FROM effective_vault_access
WHERE vault_id=$1
ORDER BY authority_id, role`
	rows, err := r.db.Pool.Query(ctx, q, vaultID)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	var out []model.EffectiveAccess
	for rows.Next() {
		var ea model.EffectiveAccess
		if err = rows.Scan(&ea.VaultID, &ea.AuthorityID, &ea.Role); err != nil {
			return nil, translate(err)
		}
		out = append(out, ea)
	}
	return out, translate(rows.Err())
}

// RolesOf returns every role the authority holds on the vault through any path.
func (r *AccessRepo) RolesOf(ctx context.Context, vaultID, authorityID string) ([]model.Role, error) {
	const q = `
SELECT role
FROM effective_vault_access
WHERE vault_id=$1 AND authority_id=$2`
	rows, err := r.db.Pool.Query(ctx, q, vaultID, authorityID)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	var out []model.Role
	for rows.Next() {
		var role model.Role
		if err = rows.Scan(&role); err != nil {
			return nil, translate(err)
		}
		out = append(out, role)
	}
	return out, translate(rows.Err())
}

// SeatCount counts distinct users with effective access on non-archived vaults
// that hold at least one key wrap. Group rows are excluded; the view already
// carries one row per user reached through a group.
func (r *AccessRepo) SeatCount(ctx context.Context) (int, error) {
	const q = `
SELECT COUNT(DISTINCT eva.authority_id)
FROM effective_vault_access eva
JOIN vault v ON v.id = eva.vault_id AND NOT v.archived
JOIN authority a ON a.id = eva.authority_id AND NOT a.is_group
WHERE EXISTS (SELECT 1 FROM access_grant g WHERE g.vault_id = eva.vault_id)`
	var n int
	if err := r.db.Pool.QueryRow(ctx, q).Scan(&n); err != nil {
		return 0, translate(err)
	}
	return n, nil
}
