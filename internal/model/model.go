// Package model defines domain entities used by services and repositories.
package model

import "time"

// Role is the ordered vault role enumeration. OWNER implies every MEMBER capability.
type Role string

const (
	RoleMember Role = "MEMBER"
	RoleOwner  Role = "OWNER"
)

// rank orders roles for threshold checks. Unknown roles rank below MEMBER.
func (r Role) rank() int {
	switch r {
	case RoleOwner:
		return 2
	case RoleMember:
		return 1
	default:
		return 0
	}
}

// Satisfies reports whether r grants at least the capabilities of required.
func (r Role) Satisfies(required Role) bool {
	return r.rank() >= required.rank()
}

// Valid reports whether r is a known role value.
func (r Role) Valid() bool {
	return r == RoleMember || r == RoleOwner
}

// DeviceType tags the class of a registered device.
type DeviceType string

const (
	DeviceDesktop DeviceType = "DESKTOP"
	DeviceMobile  DeviceType = "MOBILE"
	DeviceBrowser DeviceType = "BROWSER"
)

// Valid reports whether t is a known device type.
func (t DeviceType) Valid() bool {
	return t == DeviceDesktop || t == DeviceMobile || t == DeviceBrowser
}

// Authority is a user or a group, uniformly addressable by an opaque stable id.
// Display attributes are owned by identity sync and overwritten on every upsert.
type Authority struct {
	ID         string
	Name       string
	PictureURL string
	IsGroup    bool
}

// Device is owned by exactly one user. PublicKey is plaintext; UserPrivateKey
// is the device private key encrypted for the owning user, opaque to the server.
type Device struct {
	ID             string
	OwnerID        string
	Name           string
	Type           DeviceType
	PublicKey      string
	UserPrivateKey string
	CreatedAt      time.Time
}

// Vault holds an opaque masterkey blob plus its key-derivation parameters.
type Vault struct {
	ID         string
	Name       string
	Masterkey  string
	Iterations int
	Salt       string
	OwnerID    string
	Archived   bool
	CreatedAt  time.Time
}

// VaultMembership is a direct grant of a role to an authority on a vault.
type VaultMembership struct {
	VaultID     string
	AuthorityID string
	Role        Role
}

// EffectiveAccess is one row of the derived effective-access relation.
// A single (vault, authority) pair may hold multiple rows when the same role
// is reachable through different paths (direct grant and group grant).
type EffectiveAccess struct {
	VaultID     string
	AuthorityID string
	Role        Role
}

// KeyWrap is the vault masterkey encrypted for one specific device.
// The server stores and serves it but never unwraps it.
type KeyWrap struct {
	VaultID            string
	DeviceID           string
	JWE                string
	EphemeralPublicKey string
}

// LegacyDevice is the pre-migration device representation, consulted only
// during re-registration to opportunistically delete the legacy row.
type LegacyDevice struct {
	ID      string
	OwnerID string
	Name    string
}

// LegacyAccessToken is a pre-migration per-(device, vault) token; read-only.
type LegacyAccessToken struct {
	DeviceID string
	VaultID  string
	JWE      string
}

// EventKind identifies a security-relevant state change reported to the audit sink.
type EventKind string

const (
	EventDeviceRegistered EventKind = "DEVICE_REGISTERED"
	EventDeviceRemoved    EventKind = "DEVICE_REMOVED"
	EventDeviceMigrated   EventKind = "DEVICE_MIGRATED"
	EventVaultCreated     EventKind = "VAULT_CREATED"
	EventVaultArchived    EventKind = "VAULT_ARCHIVED"
	EventMemberAdded      EventKind = "VAULT_MEMBER_ADDED"
	EventMemberRemoved    EventKind = "VAULT_MEMBER_REMOVED"
	EventKeyWrapGranted   EventKind = "VAULT_KEY_GRANTED"
	EventKeyWrapRevoked   EventKind = "VAULT_KEY_REVOKED"
)

// AuditEvent is one append-only audit record. Optional reference fields stay
// empty when they do not apply to the event kind.
type AuditEvent struct {
	ID          int64
	Kind        EventKind
	ActorID     string
	VaultID     string
	DeviceID    string
	AuthorityID string
	OccurredAt  time.Time
}
