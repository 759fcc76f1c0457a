package crypto

import (
	"errors"
	"strings"
	"testing"
)

const testKeyHex = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func testKey(t *testing.T) []byte {
	t.Helper()
	key, err := KeyFromHex(testKeyHex)
	if err != nil {
		t.Fatalf("KeyFromHex() error = %v", err)
	}
	return key
}

func TestKeyFromHex(t *testing.T) {
	tests := []struct {
		name    string
		hexKey  string
		wantErr bool
	}{
		{"valid 32-byte key", testKeyHex, false},
		{"too short", "deadbeef", true},
		{"not hex", strings.Repeat("zz", 32), true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := KeyFromHex(tt.hexKey)
			if (err != nil) != tt.wantErr {
				t.Errorf("KeyFromHex() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key := testKey(t)

	tests := []struct {
		name      string
		plaintext string
	}{
		{"simple", "john doe"},
		{"empty string", ""},
		{"exact block size", strings.Repeat("a", 16)},
		{"multi block", strings.Repeat("clinic", 40)},
		{"unicode", "دکتر رضایی ⚕"},
		{"with separator char", "left:right"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc, err := Encrypt(key, tt.plaintext)
			if err != nil {
				t.Fatalf("Encrypt() error = %v", err)
			}

			ivHex, cipherHex, ok := strings.Cut(enc, ":")
			if !ok {
				t.Fatalf("Encrypt() output missing separator: %q", enc)
			}
			if len(ivHex) != 32 {
				t.Errorf("iv hex length = %d, want 32", len(ivHex))
			}
			if len(cipherHex) == 0 || len(cipherHex)%32 != 0 {
				t.Errorf("cipher hex length = %d, want non-zero multiple of 32", len(cipherHex))
			}

			got, err := Decrypt(key, enc)
			if err != nil {
				t.Fatalf("Decrypt() error = %v", err)
			}
			if got != tt.plaintext {
				t.Errorf("Decrypt() = %q, want %q", got, tt.plaintext)
			}
		})
	}
}

func TestEncryptFreshIV(t *testing.T) {
	key := testKey(t)

	a, err := Encrypt(key, "same plaintext")
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	b, err := Encrypt(key, "same plaintext")
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	if a == b {
		t.Error("Encrypt() should produce different ciphertexts for the same plaintext (fresh IV)")
	}
}

func TestDecryptMalformed(t *testing.T) {
	key := testKey(t)

	valid, _ := Encrypt(key, "payload")
	ivHex, cipherHex, _ := strings.Cut(valid, ":")

	tests := []struct {
		name    string
		encoded string
		wantErr error
	}{
		{"no separator", ivHex + cipherHex, ErrMalformedPayload},
		{"iv not hex", "zz" + ivHex[2:] + ":" + cipherHex, ErrMalformedPayload},
		{"iv wrong length", ivHex[:30] + ":" + cipherHex, ErrMalformedPayload},
		{"cipher not hex", ivHex + ":nothex!", ErrMalformedPayload},
		{"cipher not block aligned", ivHex + ":" + cipherHex[:30], ErrCiphertextInvalid},
		{"empty ciphertext", ivHex + ":", ErrCiphertextInvalid},
		{"empty input", "", ErrMalformedPayload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decrypt(key, tt.encoded)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Decrypt() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDecryptWrongKey(t *testing.T) {
	key := testKey(t)
	other, err := KeyFromHex(strings.Repeat("ab", 32))
	if err != nil {
		t.Fatalf("KeyFromHex() error = %v", err)
	}

	enc, err := Encrypt(key, "sensitive value")
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}

	got, err := Decrypt(other, enc)
	if err == nil && got == "sensitive value" {
		t.Error("Decrypt() with wrong key recovered the plaintext")
	}
}

func TestEncryptInvalidKey(t *testing.T) {
	if _, err := Encrypt([]byte("short"), "x"); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("Encrypt() error = %v, want %v", err, ErrInvalidKey)
	}
	if _, err := Decrypt([]byte("short"), "00:00"); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("Decrypt() error = %v, want %v", err, ErrInvalidKey)
	}
}

func TestDecryptDocument(t *testing.T) {
	key := testKey(t)

	const payload = "aGVsbG8gd29ybGQ=" // base64 of the original file bytes
	enc, err := Encrypt(key, payload)
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}

	got, err := DecryptDocument(key, []byte(enc))
	if err != nil {
		t.Fatalf("DecryptDocument() error = %v", err)
	}
	if got != payload {
		t.Errorf("DecryptDocument() = %q, want %q", got, payload)
	}
}

func TestHashDeterministic(t *testing.T) {
	if Hash("value") != Hash("value") {
		t.Error("Hash() should be deterministic")
	}
	if Hash("value") == Hash("other") {
		t.Error("Hash() collision for different inputs")
	}
	if len(Hash("value")) != 64 {
		t.Errorf("Hash() length = %d, want 64", len(Hash("value")))
	}
}
