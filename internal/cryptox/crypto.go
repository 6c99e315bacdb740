// Package cryptox implements the confidentiality and integrity operations
// for journal payloads: password-based key derivation (PBKDF2-SHA256 with a
// version-dispatched iteration count), AES-256-GCM authenticated encryption,
// and the deterministic one-way hashes used for identities and password
// verification.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/pbkdf2"

	"github.com/inkwell-app/inkwell/internal/common"
)

const (
	// CurrentVersion is the KDF cost profile used for new encryptions.
	// Decryption always honors the version stored in the payload instead.
	CurrentVersion = 2

	keySize  = 32
	saltSize = 16
	ivSize   = 12

	// pepper is a fixed application-level string mixed into password hashes.
	// It never changes: HashPassword must stay stable across releases.
	pepper = "inkwell-journal-auth"
)

// kdfIterations enumerates the supported KDF cost profiles by payload
// version. Append-only: existing entries must never change, or previously
// encrypted payloads become undecryptable.
var kdfIterations = map[int]int{
	1: 100_000,
	2: 310_000,
}

// EncryptionPayload is the unit of ciphertext exchanged and stored.
// All byte fields are base64 (std) encoded for transport. Version selects
// the KDF iteration count; an absent version means 1 (pre-versioning data).
type EncryptionPayload struct {
	Ciphertext string `json:"ciphertext"`
	IV         string `json:"iv"`
	Salt       string `json:"salt"`
	Version    int    `json:"version,omitempty"`
}

// iterationsFor maps a payload version to its iteration count, defaulting
// an absent (zero) version to 1 for legacy payloads.
func iterationsFor(version int) (int, error) {
	if version == 0 {
		version = 1
	}
	iters, ok := kdfIterations[version]
	if !ok {
		return 0, fmt.Errorf("unsupported payload version %d", version)
	}
	return iters, nil
}

// DeriveKey derives a 32-byte symmetric key from password and salt using the
// iteration count of the given version. If salt is nil a fresh random salt is
// generated. The salt actually used is returned so callers can persist it
// alongside the ciphertext.
func DeriveKey(password string, salt []byte, version int) (key, usedSalt []byte, err error) {
	iters, err := iterationsFor(version)
	if err != nil {
		return nil, nil, err
	}
	if salt == nil {
		salt = common.GenerateRandByteArray(saltSize)
	}
	return pbkdf2.Key([]byte(password), salt, iters, keySize, sha256.New), salt, nil
}

// Encrypt encrypts plaintext with a key derived from password at the current
// KDF version. Salt and IV are freshly random on every call; reusing a
// (key, IV) pair would void the GCM confidentiality guarantees.
func Encrypt(plaintext []byte, password string) (*EncryptionPayload, error) {
	key, salt, err := DeriveKey(password, nil, CurrentVersion)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	iv := common.GenerateRandByteArray(ivSize)
	ciphertext := aesgcm.Seal(nil, iv, plaintext, nil)

	return &EncryptionPayload{
		Ciphertext: base64.StdEncoding.EncodeToString(ciphertext),
		IV:         base64.StdEncoding.EncodeToString(iv),
		Salt:       base64.StdEncoding.EncodeToString(salt),
		Version:    CurrentVersion,
	}, nil
}

// Decrypt reverses Encrypt using the payload's own salt and version. Every
// integrity failure (wrong password, corrupted or tampered ciphertext,
// undecodable fields) surfaces as common.ErrDecryptionFailed; the causes are
// deliberately indistinguishable.
func Decrypt(p *EncryptionPayload, password string) ([]byte, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(p.Ciphertext)
	if err != nil {
		return nil, common.ErrDecryptionFailed
	}
	iv, err := base64.StdEncoding.DecodeString(p.IV)
	if err != nil {
		return nil, common.ErrDecryptionFailed
	}
	salt, err := base64.StdEncoding.DecodeString(p.Salt)
	if err != nil {
		return nil, common.ErrDecryptionFailed
	}
	// GCM panics on a nonce of the wrong length, so a malformed IV must be
	// rejected here rather than handed to Open.
	if len(iv) != ivSize {
		return nil, common.ErrDecryptionFailed
	}

	key, _, err := DeriveKey(password, salt, p.Version)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	plaintext, err := aesgcm.Open(nil, iv, ciphertext, nil)
	if err != nil {
		return nil, common.ErrDecryptionFailed
	}
	return plaintext, nil
}

// HashPassword returns the hex SHA-256 of the password concatenated with the
// application pepper. Deterministic: the same password always yields the
// same hash, enabling equality checks without storing the password.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password + pepper))
	return hex.EncodeToString(sum[:])
}

// VerificationToken is the hash the server stores and compares. It is the
// password hash hashed once more, so the server never learns the password
// or even its direct hash.
func VerificationToken(password string) string {
	return HashPassword(HashPassword(password))
}

// HashEmail derives the opaque user identifier from a normalized
// (trimmed, lowercased) email address.
func HashEmail(email string) string {
	normalized := strings.ToLower(strings.TrimSpace(email))
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}
