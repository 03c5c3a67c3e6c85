// Package chunks reads and writes the encrypted chunk set served to the
// offline quiz client: one file per topic, a handful of pre-built tests and
// a plain index.json manifest.
//
// The envelope is AES-GCM under a shared key that ships with the client, so
// it keeps casual readers out of the question bank and nothing more.
package chunks

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"civic-apps/internal/quiz"
)

const (
	KeySize   = 32
	NonceSize = 12
)

var (
	ErrInvalidKey     = errors.New("chunk key must be 64 hex characters, base64 of 32 bytes, or a 32-byte string")
	ErrInvalidPayload = errors.New("invalid chunk payload")
)

// ParseKey accepts 64 hex characters, standard base64 of 32 bytes, or a
// 32-byte string.
func ParseKey(raw string) ([]byte, error) {
	raw = strings.TrimSpace(raw)
	if len(raw) == 2*KeySize {
		if key, err := hex.DecodeString(raw); err == nil {
			return key, nil
		}
	}
	if len(raw) == base64.StdEncoding.EncodedLen(KeySize) {
		if key, err := base64.StdEncoding.DecodeString(raw); err == nil && len(key) == KeySize {
			return key, nil
		}
	}
	if len(raw) == KeySize {
		return []byte(raw), nil
	}
	return nil, ErrInvalidKey
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKey
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Encrypt seals plaintext and returns base64(nonce || ciphertext || tag).
func Encrypt(key, plaintext []byte) (string, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	sealed := gcm.Seal(nonce, nonce, plaintext, nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func Decrypt(key []byte, payload string) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if len(raw) < NonceSize+gcm.Overhead() {
		return nil, fmt.Errorf("%w: too short", ErrInvalidPayload)
	}

	plaintext, err := gcm.Open(nil, raw[:NonceSize], raw[NonceSize:], nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return plaintext, nil
}

func EncryptQuestions(key []byte, questions []quiz.Question) (string, error) {
	data, err := json.Marshal(questions)
	if err != nil {
		return "", err
	}
	return Encrypt(key, data)
}

func DecryptQuestions(key []byte, payload string) ([]quiz.Question, error) {
	data, err := Decrypt(key, payload)
	if err != nil {
		return nil, err
	}
	var questions []quiz.Question
	if err := json.Unmarshal(data, &questions); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return questions, nil
}
