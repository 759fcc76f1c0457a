// Package crypto provides AES-256-CBC encryption/decryption helpers for
// storing sensitive fields (patient names, mobile numbers, clinical notes)
// encrypted at rest. Ciphertexts are encoded as "ivHex:cipherHex" so the IV
// travels with the value.
package crypto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	ErrInvalidKey        = errors.New("encryption key must be 32 bytes")
	ErrMalformedPayload  = errors.New("malformed encrypted payload")
	ErrInvalidPadding    = errors.New("invalid ciphertext padding")
	ErrCiphertextInvalid = errors.New("ciphertext length is not a multiple of the block size")
)

// KeyFromHex decodes a 64-char hex string into a 32-byte AES-256 key.
func KeyFromHex(hexKey string) ([]byte, error) {
	b, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("invalid hex key: %w", err)
	}
	if len(b) != 32 {
		return nil, ErrInvalidKey
	}
	return b, nil
}

// Encrypt encrypts plaintext using AES-256-CBC with a fresh random IV and
// PKCS#7 padding. Returns "ivHex:cipherHex". The same plaintext encrypts to a
// different string on every call.
func Encrypt(key []byte, plaintext string) (string, error) {
	if len(key) != 32 {
		return "", ErrInvalidKey
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("create cipher: %w", err)
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", fmt.Errorf("generate iv: %w", err)
	}

	padded := pkcs7Pad([]byte(plaintext), aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	return hex.EncodeToString(iv) + ":" + hex.EncodeToString(ciphertext), nil
}

// Decrypt decrypts an "ivHex:cipherHex" string produced by Encrypt.
func Decrypt(key []byte, encoded string) (string, error) {
	if len(key) != 32 {
		return "", ErrInvalidKey
	}

	ivHex, cipherHex, ok := strings.Cut(encoded, ":")
	if !ok {
		return "", ErrMalformedPayload
	}

	iv, err := hex.DecodeString(ivHex)
	if err != nil || len(iv) != aes.BlockSize {
		return "", ErrMalformedPayload
	}
	ciphertext, err := hex.DecodeString(cipherHex)
	if err != nil {
		return "", ErrMalformedPayload
	}
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return "", ErrCiphertextInvalid
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("create cipher: %w", err)
	}

	padded := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(padded, ciphertext)

	plaintext, err := pkcs7Unpad(padded, aes.BlockSize)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

// DecryptDocument decrypts an uploaded document blob. The blob bytes are the
// UTF-8 text of an "ivHex:cipherHex" payload whose plaintext is the document's
// base64 content, which is returned as-is for the client to decode.
func DecryptDocument(key []byte, blob []byte) (string, error) {
	return Decrypt(key, string(blob))
}

// Hash returns the SHA-256 hex digest of value.
// Deterministic, allows indexed equality lookups without storing plaintext.
func Hash(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, ErrInvalidPadding
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize || n > len(data) {
		return nil, ErrInvalidPadding
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, ErrInvalidPadding
		}
	}
	return data[:len(data)-n], nil
}
