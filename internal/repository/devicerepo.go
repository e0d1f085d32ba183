package repository

import (
	"context"

	"github.com/DonWMason/CryptomatorHub/internal/model"
)

// DeviceRepository provides access to registered devices and the legacy
// pre-migration device store.
type DeviceRepository interface {
	// Get loads a device by id regardless of owner.
	Get(ctx context.Context, id string) (*model.Device, error)

	// Create inserts a new device row. Fails with errs.ErrConflict if the id
	// is already taken.
	Create(ctx context.Context, d *model.Device) error

	// Update overwrites name, type, public key and wrapped private key of an
	// existing device. Creation time is never touched.
	Update(ctx context.Context, d *model.Device) error

	// Delete removes a device; key wraps cascade at the storage layer.
	// Fails with errs.ErrNotFound if the device does not exist.
	Delete(ctx context.Context, id string) error

	// ListByOwner returns all devices owned by the given user.
	ListByOwner(ctx context.Context, ownerID string) ([]model.Device, error)

	// DeleteLegacy removes a legacy device row if one exists, reporting
	// whether a row was deleted.
	DeleteLegacy(ctx context.Context, id string) (bool, error)

	// LegacyTokens lists the legacy access tokens of a device owned by ownerID.
	LegacyTokens(ctx context.Context, deviceID, ownerID string) ([]model.LegacyAccessToken, error)
}
