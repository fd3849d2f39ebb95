// Package secret はAPIキーなどの資格情報を保存時に暗号化する小さなヴォールトを提供します。
package secret

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"os"

	"golang.org/x/crypto/chacha20poly1305"
)

// EnvKeySecretKey は暗号鍵（64桁hex）を保持する環境変数名です。
const EnvKeySecretKey = "SECRET_KEY"

// Vault は対称鍵AEAD（XChaCha20-Poly1305）でシークレットを暗号化・復号します。
// ノンスはランダム生成して暗号文の先頭に連結します。
type Vault struct {
	aead cipher.AEAD
}

// NewVault は64桁hexの鍵からVaultを生成します。
func NewVault(keyHex string) (*Vault, error) {
	key, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, fmt.Errorf("invalid secret key: %w", err)
	}
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("secret key must be %d bytes, got %d", chacha20poly1305.KeySize, len(key))
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	return &Vault{aead: aead}, nil
}

// NewVaultFromEnv は環境変数SECRET_KEYからVaultを生成します。
func NewVaultFromEnv() (*Vault, error) {
	keyHex := os.Getenv(EnvKeySecretKey)
	if keyHex == "" {
		return nil, errors.New("SECRET_KEY is not set")
	}
	return NewVault(keyHex)
}

// Encrypt は平文を暗号化し、nonce||ciphertextをbase64で返します。
func (v *Vault) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, v.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	sealed := v.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt はEncryptの出力を復号して平文を返します。
// 改ざんされた暗号文はAEADの認証で検出されエラーになります。
func (v *Vault) Decrypt(encoded string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("invalid ciphertext encoding: %w", err)
	}

	ns := v.aead.NonceSize()
	if len(data) < ns {
		return "", errors.New("ciphertext too short")
	}

	plain, err := v.aead.Open(nil, data[:ns], data[ns:], nil)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt: %w", err)
	}
	return string(plain), nil
}
