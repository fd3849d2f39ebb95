package secret

import (
	"encoding/base64"
	"strings"
	"testing"
)

// testKeyHex は32バイト鍵のhex表現です（テスト専用）。
const testKeyHex = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func TestNewVault(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		keyHex  string
		wantErr bool
	}{
		{"valid 32-byte key", testKeyHex, false},
		{"not hex", "zz0102", true},
		{"too short", "0001020304", true},
		{"too long", testKeyHex + "ff", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			v, err := NewVault(tt.keyHex)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if v == nil {
				t.Fatal("expected vault to be non-nil")
			}
		})
	}
}

func TestVault_EncryptDecrypt_RoundTrip(t *testing.T) {
	t.Parallel()

	v, err := NewVault(testKeyHex)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, plaintext := range []string{"", "k", "sk-genai-abcdef0123456789", strings.Repeat("長いシークレット", 64)} {
		encrypted, err := v.Encrypt(plaintext)
		if err != nil {
			t.Fatalf("encrypt: %v", err)
		}
		if encrypted == plaintext && plaintext != "" {
			t.Error("expected ciphertext to differ from plaintext")
		}

		decrypted, err := v.Decrypt(encrypted)
		if err != nil {
			t.Fatalf("decrypt: %v", err)
		}
		if decrypted != plaintext {
			t.Errorf("expected %q, got %q", plaintext, decrypted)
		}
	}
}

// TestVault_Encrypt_RandomNonce は同じ平文でも毎回異なる暗号文になることを検証します。
func TestVault_Encrypt_RandomNonce(t *testing.T) {
	t.Parallel()

	v, _ := NewVault(testKeyHex)

	c1, err := v.Encrypt("same secret")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	c2, err := v.Encrypt("same secret")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if c1 == c2 {
		t.Error("expected different ciphertexts for the same plaintext")
	}
}

// TestVault_Decrypt_Tampered は改ざんされた暗号文が拒否されることを検証します。
func TestVault_Decrypt_Tampered(t *testing.T) {
	t.Parallel()

	v, _ := NewVault(testKeyHex)

	encrypted, err := v.Encrypt("protect me")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	raw, err := base64.StdEncoding.DecodeString(encrypted)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	raw[len(raw)-1] ^= 0xFF
	tampered := base64.StdEncoding.EncodeToString(raw)

	if _, err := v.Decrypt(tampered); err == nil {
		t.Error("expected tampered ciphertext to fail decryption")
	}
}

func TestVault_Decrypt_Invalid(t *testing.T) {
	t.Parallel()

	v, _ := NewVault(testKeyHex)

	if _, err := v.Decrypt("not-base64!!"); err == nil {
		t.Error("expected error for invalid base64")
	}
	if _, err := v.Decrypt(base64.StdEncoding.EncodeToString([]byte("short"))); err == nil {
		t.Error("expected error for truncated ciphertext")
	}
}

func TestNewVaultFromEnv(t *testing.T) {
	t.Run("missing key", func(t *testing.T) {
		t.Setenv(EnvKeySecretKey, "")

		if _, err := NewVaultFromEnv(); err == nil {
			t.Error("expected error when SECRET_KEY is unset")
		}
	})

	t.Run("valid key", func(t *testing.T) {
		t.Setenv(EnvKeySecretKey, testKeyHex)

		v, err := NewVaultFromEnv()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if v == nil {
			t.Fatal("expected vault to be non-nil")
		}
	})
}
