package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/DonWMason/CryptomatorHub/internal/errs"
	"github.com/DonWMason/CryptomatorHub/internal/model"
)

// AuthorityRepo implements AuthorityRepository using PostgreSQL.
type AuthorityRepo struct{ db *DB }

// NewAuthorityRepo constructs an authority repository.
func NewAuthorityRepo(db *DB) *AuthorityRepo { return &AuthorityRepo{db: db} }

// Upsert creates or updates an authority, overwriting display attributes.
func (r *AuthorityRepo) Upsert(ctx context.Context, a *model.Authority) error {
	const q = `
INSERT INTO authority (id, name, picture_url, is_group)
VALUES ($1, $2, $3, $4)
ON CONFLICT (id) DO UPDATE SET name = excluded.name, picture_url = excluded.picture_url`
	_, err := r.db.Pool.Exec(ctx, q, a.ID, a.Name, a.PictureURL, a.IsGroup)
	return translate(err)
}

// Get selects an authority by id.
func (r *AuthorityRepo) Get(ctx context.Context, id string) (*model.Authority, error) {
	const q = `
SELECT id, name, picture_url, is_group
FROM authority WHERE id=$1`
	row := r.db.Pool.QueryRow(ctx, q, id)
	var a model.Authority
	if err := row.Scan(&a.ID, &a.Name, &a.PictureURL, &a.IsGroup); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, translate(err)
	}
	return &a, nil
}

// AddGroupMember records a membership fact; duplicates are idempotent.
func (r *AuthorityRepo) AddGroupMember(ctx context.Context, groupID, memberID string) error {
	const q = `
INSERT INTO group_membership (group_id, member_id)
VALUES ($1, $2)
ON CONFLICT (group_id, member_id) DO NOTHING`
	_, err := r.db.Pool.Exec(ctx, q, groupID, memberID)
	if isForeignKeyViolation(err) {
		return errs.ErrNotFound
	}
	return translate(err)
}

// RemoveGroupMember deletes a membership fact.
func (r *AuthorityRepo) RemoveGroupMember(ctx context.Context, groupID, memberID string) error {
	const q = `DELETE FROM group_membership WHERE group_id=$1 AND member_id=$2`
	tag, err := r.db.Pool.Exec(ctx, q, groupID, memberID)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}
