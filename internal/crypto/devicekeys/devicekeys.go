// Package devicekeys contains client-side primitives for device-specific key
// wrapping. The service stores and serves envelopes produced here but never
// opens them; unwrapping happens only on the device holding the private key.
package devicekeys

import (
	"crypto/ecdh"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// MasterkeyLen is the expected vault masterkey length in bytes.
const MasterkeyLen = 32

// hkdfInfo binds derived wrap keys to this protocol.
var hkdfInfo = []byte("hub-device-masterkey-v2")

// GenerateKeypair creates a fresh P-256 device keypair.
func GenerateKeypair() (*ecdh.PrivateKey, error) {
	return ecdh.P256().GenerateKey(rand.Reader)
}

// EncodePublicKey renders a public key in the wire encoding (base64 of the
// uncompressed point).
func EncodePublicKey(pub *ecdh.PublicKey) string {
	return base64.StdEncoding.EncodeToString(pub.Bytes())
}

// DecodePublicKey parses the wire encoding produced by EncodePublicKey.
func DecodePublicKey(s string) (*ecdh.PublicKey, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}
	return ecdh.P256().NewPublicKey(raw)
}

// wrapKey derives the symmetric wrap key from an ECDH shared secret.
func wrapKey(secret []byte) ([]byte, error) {
	r := hkdf.New(sha256.New, secret, nil, hkdfInfo)
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := r.Read(key); err != nil {
		return nil, err
	}
	return key, nil
}

// WrapMasterkey encrypts the vault masterkey for one device: an ephemeral
// P-256 key agrees with the device public key, HKDF-SHA256 derives the wrap
// key, XChaCha20-Poly1305 seals. Returns the envelope and the ephemeral
// public key, both in wire encoding.
func WrapMasterkey(devicePub *ecdh.PublicKey, masterkey []byte) (envelope, ephemeralPub string, err error) {
	if len(masterkey) != MasterkeyLen {
		return "", "", errors.New("masterkey must be 32 bytes")
	}
	eph, err := ecdh.P256().GenerateKey(rand.Reader)
	if err != nil {
		return "", "", err
	}
	secret, err := eph.ECDH(devicePub)
	if err != nil {
		return "", "", err
	}
	key, err := wrapKey(secret)
	if err != nil {
		return "", "", err
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return "", "", err
	}
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return "", "", err
	}
	out := make([]byte, 0, len(nonce)+len(masterkey)+aead.Overhead())
	out = append(out, nonce...)
	out = append(out, aead.Seal(nil, nonce, masterkey, nil)...)
	return base64.StdEncoding.EncodeToString(out), EncodePublicKey(eph.PublicKey()), nil
}

// UnwrapMasterkey opens an envelope using the device private key and the
// ephemeral public key served alongside it.
func UnwrapMasterkey(devicePriv *ecdh.PrivateKey, envelope, ephemeralPub string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(envelope)
	if err != nil {
		return nil, err
	}
	if len(raw) < chacha20poly1305.NonceSizeX {
		return nil, errors.New("envelope too short")
	}
	ephPub, err := DecodePublicKey(ephemeralPub)
	if err != nil {
		return nil, err
	}
	secret, err := devicePriv.ECDH(ephPub)
	if err != nil {
		return nil, err
	}
	key, err := wrapKey(secret)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	nonce := raw[:chacha20poly1305.NonceSizeX]
	ct := raw[chacha20poly1305.NonceSizeX:]
	return aead.Open(nil, nonce, ct, nil)
}
