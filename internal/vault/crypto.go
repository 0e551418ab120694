// Package vault provides the AES-GCM primitives used to protect the
// persisted session token at rest.
package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"
)

// Seal encrypts a bearer token with a 32-byte key, returning a hex string
// suitable for writing to the token file.
func Seal(token string, key []byte) (string, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}

	// GCM gives authenticated encryption, so a tampered token file is
	// detected on read rather than yielding a garbage token.
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	// Prepend the nonce so Open can recover it
	ciphertext := gcm.Seal(nonce, nonce, []byte(token), nil)
	return fmt.Sprintf("%x", ciphertext), nil
}

// Open decrypts a hex string produced by Seal and returns the token.
func Open(cipherHex string, key []byte) (string, error) {
	var ciphertext []byte
	_, err := fmt.Sscanf(cipherHex, "%x", &ciphertext)
	if err != nil {
		return "", err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonceSize := gcm.NonceSize()
	if len(ciphertext) < nonceSize {
		return "", fmt.Errorf("token ciphertext too short")
	}

	nonce, actualCiphertext := ciphertext[:nonceSize], ciphertext[nonceSize:]
	token, err := gcm.Open(nil, nonce, actualCiphertext, nil)
	if err != nil {
		return "", fmt.Errorf("token decryption failed (wrong key or tampered file)")
	}

	return string(token), nil
}
