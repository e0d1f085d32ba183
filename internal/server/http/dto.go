package httpserver

import (
	"time"

	"github.com/DonWMason/CryptomatorHub/internal/model"
)

// Wire shapes. Field names follow the established client protocol.

type deviceDto struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	Type           model.DeviceType `json:"type,omitempty"`
	PublicKey      string           `json:"publicKey"`
	UserPrivateKey string           `json:"userPrivateKey"`
	OwnerID        string           `json:"owner,omitempty"`
	CreationTime   time.Time        `json:"creationTime,omitempty"`
}

func deviceToDto(d *model.Device) deviceDto {
	return deviceDto{
		ID:             d.ID,
		Name:           d.Name,
		Type:           d.Type,
		PublicKey:      d.PublicKey,
		UserPrivateKey: d.UserPrivateKey,
		OwnerID:        d.OwnerID,
		CreationTime:   d.CreatedAt,
	}
}

type vaultDto struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Masterkey    string    `json:"masterkey"`
	Iterations   int       `json:"iterations"`
	Salt         string    `json:"salt"`
	OwnerID      string    `json:"owner,omitempty"`
	Archived     bool      `json:"archived"`
	CreationTime time.Time `json:"creationTime,omitempty"`
}

func vaultToDto(v *model.Vault) vaultDto {
	return vaultDto{
		ID:           v.ID,
		Name:         v.Name,
		Masterkey:    v.Masterkey,
		Iterations:   v.Iterations,
		Salt:         v.Salt,
		OwnerID:      v.OwnerID,
		Archived:     v.Archived,
		CreationTime: v.CreatedAt,
	}
}

type memberDto struct {
	ID   string     `json:"id"`
	Role model.Role `json:"role"`
}

// accessGrantDto is the device-specific masterkey envelope. The server never
// unwraps it; it is stored and served byte-for-byte.
type accessGrantDto struct {
	DeviceSpecificMasterkey string `json:"device_specific_masterkey"`
	EphemeralPublicKey      string `json:"ephemeral_public_key"`
}

type authorityDto struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PictureURL string `json:"pictureUrl,omitempty"`
	Group      bool   `json:"group,omitempty"`
}

type userDto struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	PictureURL string      `json:"pictureUrl,omitempty"`
	Devices    []deviceDto `json:"devices"`
}

type seatsDto struct {
	Used int `json:"used"`
}
