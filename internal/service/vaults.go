package service

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid/v5"

	"github.com/DonWMason/CryptomatorHub/internal/errs"
	"github.com/DonWMason/CryptomatorHub/internal/model"
	"github.com/DonWMason/CryptomatorHub/internal/repository"
)

// VaultService defines vault lifecycle and membership operations.
// Role checks run in the HTTP role gate before any of these execute.
type VaultService interface {
	// Create stores a new vault owned by subjectID. The id must be an unused UUID.
	Create(ctx context.Context, subjectID string, v model.Vault) (*model.Vault, error)
	// Get loads a vault by id.
	Get(ctx context.Context, id string) (*model.Vault, error)
	// Archive marks a vault archived, excluding it from seat accounting.
	Archive(ctx context.Context, actorID, id string) error
	// ListMembers returns the direct membership rows of a vault.
	ListMembers(ctx context.Context, vaultID string) ([]model.VaultMembership, error)
	// AddMember grants role to an authority on a vault.
	AddMember(ctx context.Context, actorID, vaultID, authorityID string, role model.Role) error
	// RemoveMember revokes an authority's direct membership.
	RemoveMember(ctx context.Context, actorID, vaultID, authorityID string) error
}

type VaultServiceImpl struct {
	vaults repository.VaultRepository
	audit  *Auditor
}

// NewVaultService constructs VaultService with required dependencies.
func NewVaultService(vaults repository.VaultRepository, audit *Auditor) *VaultServiceImpl {
	return &VaultServiceImpl{vaults: vaults, audit: audit}
}

// Create validates the vault and inserts it together with the creator's
// OWNER membership. Creation races resolve as ErrConflict.
func (s *VaultServiceImpl) Create(ctx context.Context, subjectID string, v model.Vault) (*model.Vault, error) {
	if _, err := uuid.FromString(v.ID); err != nil {
		return nil, fmt.Errorf("%w: vault id must be a UUID", errs.ErrInvalidInput)
	}
	if v.Name == "" || v.Masterkey == "" || v.Salt == "" {
		return nil, fmt.Errorf("%w: name/masterkey/salt required", errs.ErrInvalidInput)
	}
	if v.Iterations <= 0 {
		return nil, fmt.Errorf("%w: iterations must be positive", errs.ErrInvalidInput)
	}
	v.OwnerID = subjectID
	v.Archived = false
	if err := s.vaults.Create(ctx, &v); err != nil {
		return nil, err
	}
	s.audit.Log(ctx, model.AuditEvent{Kind: model.EventVaultCreated, ActorID: subjectID, VaultID: v.ID})
	return &v, nil
}

// Get loads a vault by id.
func (s *VaultServiceImpl) Get(ctx context.Context, id string) (*model.Vault, error) {
	return s.vaults.Get(ctx, id)
}

// Archive marks the vault archived.
func (s *VaultServiceImpl) Archive(ctx context.Context, actorID, id string) error {
	if err := s.vaults.Archive(ctx, id); err != nil {
		return err
	}
	s.audit.Log(ctx, model.AuditEvent{Kind: model.EventVaultArchived, ActorID: actorID, VaultID: id})
	return nil
}

// ListMembers returns the direct membership rows of a vault.
func (s *VaultServiceImpl) ListMembers(ctx context.Context, vaultID string) ([]model.VaultMembership, error) {
	return s.vaults.ListMembers(ctx, vaultID)
}

// AddMember upserts a direct membership row for the target authority.
func (s *VaultServiceImpl) AddMember(ctx context.Context, actorID, vaultID, authorityID string, role model.Role) error {
	if !role.Valid() {
		return fmt.Errorf("%w: unknown role %q", errs.ErrInvalidInput, role)
	}
	m := model.VaultMembership{VaultID: vaultID, AuthorityID: authorityID, Role: role}
	if err := s.vaults.AddMember(ctx, m); err != nil {
		return err
	}
	s.audit.Log(ctx, model.AuditEvent{Kind: model.EventMemberAdded, ActorID: actorID, VaultID: vaultID, AuthorityID: authorityID})
	return nil
}

// RemoveMember deletes a direct membership row.
func (s *VaultServiceImpl) RemoveMember(ctx context.Context, actorID, vaultID, authorityID string) error {
	if err := s.vaults.RemoveMember(ctx, vaultID, authorityID); err != nil {
		return err
	}
	s.audit.Log(ctx, model.AuditEvent{Kind: model.EventMemberRemoved, ActorID: actorID, VaultID: vaultID, AuthorityID: authorityID})
	return nil
}
