package auth

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestMediaTokenRoundTrip(t *testing.T) {
	manager := NewMediaTokenManager("secret", time.Hour)
	path := "/api/v1/media/7/index.m3u8"

	token := manager.Generate(path)
	if err := manager.Validate(token, path); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
}

func TestMediaTokenPathBinding(t *testing.T) {
	manager := NewMediaTokenManager("secret", time.Hour)

	token := manager.Generate("/api/v1/media/7/index.m3u8")
	err := manager.Validate(token, "/api/v1/media/8/index.m3u8")
	if !errors.Is(err, ErrMediaTokenMismatch) {
		t.Errorf("err = %v, want ErrMediaTokenMismatch", err)
	}
}

func TestMediaTokenExpiry(t *testing.T) {
	manager := NewMediaTokenManager("secret", time.Hour)
	path := "/api/v1/media/7/index.m3u8"

	token := manager.generateAt(path, time.Now().Add(-time.Minute))
	if err := manager.Validate(token, path); !errors.Is(err, ErrMediaTokenExpired) {
		t.Errorf("err = %v, want ErrMediaTokenExpired", err)
	}
}

func TestMediaTokenTamper(t *testing.T) {
	manager := NewMediaTokenManager("secret", time.Hour)
	path := "/api/v1/media/7/index.m3u8"
	token := manager.Generate(path)

	cases := map[string]string{
		"empty":           "",
		"no separator":    strings.ReplaceAll(token, ".", ""),
		"flipped payload": "x" + token,
		"cut signature":   token[:len(token)-4],
		"other secret":    NewMediaTokenManager("other", time.Hour).Generate(path),
	}
	for name, bad := range cases {
		err := manager.Validate(bad, path)
		if name == "other secret" {
			if !errors.Is(err, ErrMediaTokenInvalid) {
				t.Errorf("%s: err = %v, want ErrMediaTokenInvalid", name, err)
			}
			continue
		}
		if err == nil {
			t.Errorf("%s: tampered token accepted", name)
		}
	}
}
