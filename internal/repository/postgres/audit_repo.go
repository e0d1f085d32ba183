package postgres

import (
	"context"
	"time"

	"github.com/DonWMason/CryptomatorHub/internal/model"
)

// AuditRepo implements AuditRepository using PostgreSQL.
type AuditRepo struct{ db *DB }

// NewAuditRepo constructs an audit repository.
func NewAuditRepo(db *DB) *AuditRepo { return &AuditRepo{db: db} }

// Append stores one audit event.
func (r *AuditRepo) Append(ctx context.Context, ev model.AuditEvent) error {
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	const q = `
INSERT INTO audit_event (kind, actor_id, vault_id, device_id, authority_id, occurred_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.Pool.Exec(ctx, q, string(ev.Kind), ev.ActorID, ev.VaultID, ev.DeviceID, ev.AuthorityID, ev.OccurredAt)
	return translate(err)
}
