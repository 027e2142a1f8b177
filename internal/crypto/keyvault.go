// Package crypto handles at-rest protection for the operator wallet key
// used to settle USDC transfers.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// kdfIterations is the OWASP-recommended minimum for PBKDF2-HMAC-SHA256.
	kdfIterations = 480_000
	// saltSize is the random salt length in bytes.
	saltSize = 16
	// aesKeySize is the derived AES-256 key length.
	aesKeySize = 32
	// vaultVersion is the sealed-key JSON schema version.
	vaultVersion = 1
)

// sealedKeyJSON is the on-disk format for a password-sealed wallet key.
type sealedKeyJSON struct {
	Version    int    `json:"version"`
	Salt       string `json:"salt"`       // base64 standard encoding
	Nonce      string `json:"nonce"`      // base64 standard encoding
	Ciphertext string `json:"ciphertext"` // base64 standard encoding
}

// KeySource carries the information ResolveOperatorKey needs to obtain the
// operator wallet's private key. Populate from config or environment.
type KeySource struct {
	// RawHex is the hex-encoded private key (0x prefix optional). If
	// non-empty it is used directly; intended for development setups.
	RawHex string

	// SealedPath points to a JSON file produced by SealKey.
	SealedPath string

	// Password unseals the file at SealedPath.
	Password string
}

// SealKey encrypts a hex-encoded wallet private key under a password using
// PBKDF2-HMAC-SHA256 derivation and AES-256-GCM, returning a JSON blob
// suitable for writing to disk.
func SealKey(privateKeyHex, password string) ([]byte, error) {
	if password == "" {
		return nil, errors.New("crypto: password must not be empty")
	}

	keyBytes, err := hex.DecodeString(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("crypto: invalid private key hex: %w", err)
	}
	if len(keyBytes) != 32 {
		return nil, fmt.Errorf("crypto: expected 32-byte key, got %d bytes", len(keyBytes))
	}

	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("crypto: generating salt: %w", err)
	}

	gcm, err := newGCM(password, salt)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("crypto: generating nonce: %w", err)
	}

	out := sealedKeyJSON{
		Version:    vaultVersion,
		Salt:       base64.StdEncoding.EncodeToString(salt),
		Nonce:      base64.StdEncoding.EncodeToString(nonce),
		Ciphertext: base64.StdEncoding.EncodeToString(gcm.Seal(nil, nonce, keyBytes, nil)),
	}

	return json.MarshalIndent(out, "", "  ")
}

// UnsealKey decrypts a JSON blob produced by SealKey, returning the
// hex-encoded private key without a 0x prefix.
func UnsealKey(sealed []byte, password string) (string, error) {
	if password == "" {
		return "", errors.New("crypto: password must not be empty")
	}

	var stored sealedKeyJSON
	if err := json.Unmarshal(sealed, &stored); err != nil {
		return "", fmt.Errorf("crypto: parsing sealed key JSON: %w", err)
	}
	if stored.Version != vaultVersion {
		return "", fmt.Errorf("crypto: unsupported vault version %d", stored.Version)
	}

	salt, err := base64.StdEncoding.DecodeString(stored.Salt)
	if err != nil {
		return "", fmt.Errorf("crypto: decoding salt: %w", err)
	}
	nonce, err := base64.StdEncoding.DecodeString(stored.Nonce)
	if err != nil {
		return "", fmt.Errorf("crypto: decoding nonce: %w", err)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(stored.Ciphertext)
	if err != nil {
		return "", fmt.Errorf("crypto: decoding ciphertext: %w", err)
	}

	gcm, err := newGCM(password, salt)
	if err != nil {
		return "", err
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("crypto: unseal failed (wrong password?): %w", err)
	}

	return hex.EncodeToString(plaintext), nil
}

// ResolveOperatorKey resolves the operator wallet key from the configured
// source.
//
// Resolution order:
//  1. RawHex, if set (0x prefix stripped).
//  2. SealedPath, read and unsealed with Password.
func ResolveOperatorKey(src KeySource) (string, error) {
	if src.RawHex != "" {
		k := strings.TrimPrefix(src.RawHex, "0x")
		if _, err := hex.DecodeString(k); err != nil {
			return "", fmt.Errorf("crypto: raw key is not valid hex: %w", err)
		}
		return k, nil
	}

	if src.SealedPath != "" {
		data, err := os.ReadFile(src.SealedPath)
		if err != nil {
			return "", fmt.Errorf("crypto: reading sealed key file: %w", err)
		}
		return UnsealKey(data, src.Password)
	}

	return "", errors.New("crypto: no wallet key source configured (set raw key or sealed key path)")
}

func newGCM(password string, salt []byte) (cipher.AEAD, error) {
	derived := pbkdf2.Key([]byte(password), salt, kdfIterations, aesKeySize, sha256.New)
	block, err := aes.NewCipher(derived)
	if err != nil {
		return nil, fmt.Errorf("crypto: creating cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("crypto: creating GCM: %w", err)
	}
	return gcm, nil
}
