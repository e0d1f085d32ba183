package service

import (
	"context"

	"github.com/DonWMason/CryptomatorHub/internal/model"
	"github.com/DonWMason/CryptomatorHub/internal/repository"
)

// AccessResolver answers effective-access questions for the role gate,
// membership listing and seat accounting.
type AccessResolver interface {
	// Resolve returns every effective (authority, role) row on the vault.
	Resolve(ctx context.Context, vaultID string) ([]model.EffectiveAccess, error)
	// RolesOf returns every role the authority holds on the vault; empty means none.
	RolesOf(ctx context.Context, vaultID, authorityID string) ([]model.Role, error)
	// HasRole reports whether any held role satisfies the required threshold.
	HasRole(ctx context.Context, vaultID, authorityID string, required model.Role) (bool, error)
	// SeatCount counts users occupying license seats.
	SeatCount(ctx context.Context) (int, error)
}

type AccessResolverImpl struct {
	access repository.EffectiveAccessRepository
}

// NewAccessResolver constructs an AccessResolver over the derived relation.
func NewAccessResolver(access repository.EffectiveAccessRepository) *AccessResolverImpl {
	return &AccessResolverImpl{access: access}
}

// Resolve delegates to the derived relation.
func (s *AccessResolverImpl) Resolve(ctx context.Context, vaultID string) ([]model.EffectiveAccess, error) {
	return s.access.Resolve(ctx, vaultID)
}

// RolesOf delegates to the derived relation.
func (s *AccessResolverImpl) RolesOf(ctx context.Context, vaultID, authorityID string) ([]model.Role, error) {
	return s.access.RolesOf(ctx, vaultID, authorityID)
}

// HasRole is satisfied by ANY held row meeting the threshold under
// MEMBER < OWNER. A missing vault and a missing grant are indistinguishable.
func (s *AccessResolverImpl) HasRole(ctx context.Context, vaultID, authorityID string, required model.Role) (bool, error) {
	roles, err := s.access.RolesOf(ctx, vaultID, authorityID)
	if err != nil {
		return false, err
	}
	for _, r := range roles {
		if r.Satisfies(required) {
			return true, nil
		}
	}
	return false, nil
}

// SeatCount delegates to the derived relation.
func (s *AccessResolverImpl) SeatCount(ctx context.Context) (int, error) {
	return s.access.SeatCount(ctx)
}
