package session

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"io"

	"github.com/pkg/errors"
	"golang.org/x/crypto/scrypt"
)

var cipherSalt = []byte("exidvpn-session-salt")

// SecretCipher encrypts session records at rest. The Redis value carries the
// burner secret, so a shared store must never hold it in plaintext.
type SecretCipher struct {
	key []byte
}

// NewSecretCipher derives an AES-256 key from the configured passphrase.
func NewSecretCipher(passphrase string) (*SecretCipher, error) {
	if passphrase == "" {
		return nil, errors.New("encryption passphrase is empty")
	}

	key, err := scrypt.Key([]byte(passphrase), cipherSalt, 32768, 8, 1, 32)
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive encryption key")
	}

	return &SecretCipher{key: key}, nil
}

// Seal encrypts plaintext with AES-GCM, prefixing the nonce.
func (c *SecretCipher) Seal(plaintext []byte) ([]byte, error) {
	gcm, err := c.gcm()
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, errors.Wrap(err, "failed to generate nonce")
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

// Open decrypts a nonce-prefixed AES-GCM ciphertext.
func (c *SecretCipher) Open(ciphertext []byte) ([]byte, error) {
	gcm, err := c.gcm()
	if err != nil {
		return nil, err
	}

	nonceSize := gcm.NonceSize()
	if len(ciphertext) < nonceSize {
		return nil, errors.New("ciphertext too short")
	}

	nonce, sealed := ciphertext[:nonceSize], ciphertext[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decrypt")
	}

	return plaintext, nil
}

func (c *SecretCipher) gcm() (cipher.AEAD, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create cipher")
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create GCM")
	}

	return gcm, nil
}
