// Package service contains application services for access control and key distribution.
package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/DonWMason/CryptomatorHub/internal/model"
	"github.com/DonWMason/CryptomatorHub/internal/repository"
)

// Auditor reports security-relevant state changes to the audit sink.
// Emission is fire-and-forget: a failed append is logged and never rolls back
// the primary operation.
type Auditor struct {
	repo repository.AuditRepository
	log  *zap.Logger
}

// NewAuditor constructs an auditor writing to the given repository.
func NewAuditor(repo repository.AuditRepository, log *zap.Logger) *Auditor {
	return &Auditor{repo: repo, log: log}
}

// Log appends one event. The append survives cancellation of the request
// context so that a client disconnect cannot drop the record.
func (a *Auditor) Log(ctx context.Context, ev model.AuditEvent) {
	if err := a.repo.Append(context.WithoutCancel(ctx), ev); err != nil {
		a.log.Warn("audit append failed",
			zap.String("kind", string(ev.Kind)),
			zap.String("actor", ev.ActorID),
			zap.Error(err),
		)
	}
}
