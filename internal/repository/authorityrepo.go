// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/DonWMason/CryptomatorHub/internal/model"
)

// AuthorityRepository stores users and groups plus the group-membership facts
// supplied by identity sync. This core consumes the graph; it never computes it.
type AuthorityRepository interface {
	// Upsert creates or updates an authority, overwriting display attributes.
	Upsert(ctx context.Context, a *model.Authority) error

	// Get loads an authority by id.
	Get(ctx context.Context, id string) (*model.Authority, error)

	// AddGroupMember records that member belongs to group. Fails with
	// errs.ErrNotFound if either authority is unknown.
	AddGroupMember(ctx context.Context, groupID, memberID string) error

	// RemoveGroupMember deletes a membership fact. Fails with errs.ErrNotFound
	// if no such fact exists.
	RemoveGroupMember(ctx context.Context, groupID, memberID string) error
}
