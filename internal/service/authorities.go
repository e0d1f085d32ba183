package service

import (
	"context"
	"fmt"

	"github.com/DonWMason/CryptomatorHub/internal/errs"
	"github.com/DonWMason/CryptomatorHub/internal/model"
	"github.com/DonWMason/CryptomatorHub/internal/repository"
)

// AuthorityService ingests user/group facts from identity sync. This core
// never calls out to the identity provider itself.
type AuthorityService interface {
	// Upsert creates or updates an authority, overwriting display attributes.
	Upsert(ctx context.Context, a model.Authority) error
	// AddGroupMember records that a user belongs to a group.
	AddGroupMember(ctx context.Context, groupID, memberID string) error
	// RemoveGroupMember deletes a group-membership fact.
	RemoveGroupMember(ctx context.Context, groupID, memberID string) error
}

type AuthorityServiceImpl struct {
	authorities repository.AuthorityRepository
}

// NewAuthorityService constructs AuthorityService.
func NewAuthorityService(authorities repository.AuthorityRepository) *AuthorityServiceImpl {
	return &AuthorityServiceImpl{authorities: authorities}
}

// Upsert validates and stores an authority record.
func (s *AuthorityServiceImpl) Upsert(ctx context.Context, a model.Authority) error {
	if a.ID == "" || a.Name == "" {
		return fmt.Errorf("%w: id and name required", errs.ErrInvalidInput)
	}
	return s.authorities.Upsert(ctx, &a)
}

// AddGroupMember records a membership fact.
func (s *AuthorityServiceImpl) AddGroupMember(ctx context.Context, groupID, memberID string) error {
	if groupID == "" || memberID == "" {
		return fmt.Errorf("%w: group and member ids required", errs.ErrInvalidInput)
	}
	return s.authorities.AddGroupMember(ctx, groupID, memberID)
}

// RemoveGroupMember deletes a membership fact.
func (s *AuthorityServiceImpl) RemoveGroupMember(ctx context.Context, groupID, memberID string) error {
	return s.authorities.RemoveGroupMember(ctx, groupID, memberID)
}
