package repository

import (
	"context"

	"github.com/DonWMason/CryptomatorHub/internal/model"
)

// VaultRepository provides access to vaults and their direct memberships.
type VaultRepository interface {
	// Create inserts a vault and its creator's OWNER membership atomically.
	// Fails with errs.ErrConflict if the vault id is already taken.
	Create(ctx context.Context, v *model.Vault) error

	// Get loads a vault by id.
	Get(ctx context.Context, id string) (*model.Vault, error)

	// Archive marks a vault archived. Fails with errs.ErrNotFound if absent.
	Archive(ctx context.Context, id string) error

	// ListMembers returns every direct membership row of the vault.
	ListMembers(ctx context.Context, vaultID string) ([]model.VaultMembership, error)

	// AddMember upserts a direct membership row. Fails with errs.ErrNotFound
	// if the vault or the target authority is unknown.
	AddMember(ctx context.Context, m model.VaultMembership) error

	// RemoveMember deletes a direct membership row. Fails with errs.ErrNotFound
	// if no such row exists.
	RemoveMember(ctx context.Context, vaultID, authorityID string) error
}

// EffectiveAccessRepository reads the derived effective-access relation.
// The relation is computed by the database from primary tables at read time;
// there is no materialized copy that could go stale.
type EffectiveAccessRepository interface {
	// Resolve returns every (authority, role) row effective on the vault,
	// preserving one row per access path.
	Resolve(ctx context.Context, vaultID string) ([]model.EffectiveAccess, error)

	// RolesOf returns every role the authority holds on the vault through any
	// path. An empty result means no access.
	RolesOf(ctx context.Context, vaultID, authorityID string) ([]model.Role, error)

	// SeatCount counts distinct users holding effective access on non-archived
	// vaults that have at least one key wrap.
	SeatCount(ctx context.Context) (int, error)
}
