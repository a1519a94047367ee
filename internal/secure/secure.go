// Package secure encrypts the core wallet's secret key and every worker
// wallet secret at rest, so Store never writes a plaintext private key
// to disk.
package secure

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/nacl/secretbox"
	"golang.org/x/crypto/scrypt"
)

const (
	saltSize  = 16
	nonceSize = 24
	keySize   = 32

	scryptN = 1 << 15
	scryptR = 8
	scryptP = 1
)

// Seal encrypts plaintext under a key derived from passphrase via
// scrypt, returning salt || nonce || ciphertext.
func Seal(passphrase string, plaintext []byte) ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("secure: generate salt: %w", err)
	}

	key, err := deriveKey(passphrase, salt)
	if err != nil {
		return nil, err
	}

	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, fmt.Errorf("secure: generate nonce: %w", err)
	}

	var keyArr [keySize]byte
	copy(keyArr[:], key)

	sealed := secretbox.Seal(nil, plaintext, &nonce, &keyArr)

	out := make([]byte, 0, saltSize+nonceSize+len(sealed))
	out = append(out, salt...)
	out = append(out, nonce[:]...)
	out = append(out, sealed...)
	return out, nil
}

// Open reverses Seal, returning the original plaintext.
func Open(passphrase string, sealed []byte) ([]byte, error) {
	if len(sealed) < saltSize+nonceSize {
		return nil, fmt.Errorf("secure: sealed data too short")
	}
	salt := sealed[:saltSize]
	var nonce [nonceSize]byte
	copy(nonce[:], sealed[saltSize:saltSize+nonceSize])
	ciphertext := sealed[saltSize+nonceSize:]

	key, err := deriveKey(passphrase, salt)
	if err != nil {
		return nil, err
	}
	var keyArr [keySize]byte
	copy(keyArr[:], key)

	plaintext, ok := secretbox.Open(nil, ciphertext, &nonce, &keyArr)
	if !ok {
		return nil, fmt.Errorf("secure: decryption failed (wrong passphrase or corrupt data)")
	}
	return plaintext, nil
}

func deriveKey(passphrase string, salt []byte) ([]byte, error) {
	key, err := scrypt.Key([]byte(passphrase), salt, scryptN, scryptR, scryptP, keySize)
	if err != nil {
		return nil, fmt.Errorf("secure: derive key: %w", err)
	}
	return key, nil
}
