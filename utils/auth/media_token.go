package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrMediaTokenInvalid  = errors.New("media token invalid")
	ErrMediaTokenExpired  = errors.New("media token expired")
	ErrMediaTokenMismatch = errors.New("media token does not match path")
)

// DefaultMediaTokenTTL bounds how long a content URL stays usable,
// independent of the enrollment's access window.
const DefaultMediaTokenTTL = time.Hour

// MediaTokenManager issues and checks signed, time-bound tokens that bind a
// content URL to the exact path it was generated for. A leaked URL stops
// working once the token expires.
type MediaTokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewMediaTokenManager creates a media token manager. A zero ttl falls back
// to DefaultMediaTokenTTL.
func NewMediaTokenManager(secret string, ttl time.Duration) *MediaTokenManager {
	if ttl <= 0 {
		ttl = DefaultMediaTokenTTL
	}
	return &MediaTokenManager{secret: []byte(secret), ttl: ttl}
}

// Generate returns a token for the given content path
func (m *MediaTokenManager) Generate(path string) string {
	return m.generateAt(path, time.Now().Add(m.ttl))
}

func (m *MediaTokenManager) generateAt(path string, expiresAt time.Time) string {
	payload := fmt.Sprintf("%s|%d", path, expiresAt.Unix())
	encoded := base64.RawURLEncoding.EncodeToString([]byte(payload))
	return encoded + "." + m.sign(encoded)
}

// Validate checks signature, expiry and path binding of a token
func (m *MediaTokenManager) Validate(token, path string) error {
	parts := strings.Split(token, ".")
	if len(parts) != 2 {
		return ErrMediaTokenInvalid
	}

	expected := m.sign(parts[0])
	if !hmac.Equal([]byte(expected), []byte(parts[1])) {
		return ErrMediaTokenInvalid
	}

	raw, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return ErrMediaTokenInvalid
	}

	payload := string(raw)
	sep := strings.LastIndex(payload, "|")
	if sep < 0 {
		return ErrMediaTokenInvalid
	}

	exp, err := strconv.ParseInt(payload[sep+1:], 10, 64)
	if err != nil {
		return ErrMediaTokenInvalid
	}
	if time.Now().Unix() > exp {
		return ErrMediaTokenExpired
	}

	if payload[:sep] != path {
		return ErrMediaTokenMismatch
	}

	return nil
}

func (m *MediaTokenManager) sign(encodedPayload string) string {
	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(encodedPayload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
