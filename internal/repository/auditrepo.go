package repository

import (
	"context"

	"github.com/DonWMason/CryptomatorHub/internal/model"
)

// AuditRepository appends audit events. It is consulted by the audit service
// only; failures never roll back the primary operation.
type AuditRepository interface {
	// Append stores one event. OccurredAt is assigned by the store when zero.
	Append(ctx context.Context, ev model.AuditEvent) error
}
