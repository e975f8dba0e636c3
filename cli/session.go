package main

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewSessionID returns session_<unix millis>_<9 base36 chars>
func NewSessionID(now time.Time, rng *rand.Rand) string {
	var b strings.Builder
	for i := 0; i < 9; i++ {
		b.WriteByte(base36[rng.Intn(len(base36))])
	}
	return fmt.Sprintf("session_%d_%s", now.UnixMilli(), b.String())
}

// DefaultSessionPath is where the session id survives between runs
func DefaultSessionPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "bistro", "session"), nil
}

// LoadSession returns the id stored at path, creating and storing a new one
// when the file is missing or empty
func LoadSession(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		if id := strings.TrimSpace(string(data)); id != "" {
			return id, nil
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}

	id := NewSessionID(time.Now(), rand.New(rand.NewSource(time.Now().UnixNano())))
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(id+"\n"), 0o600); err != nil {
		return "", err
	}
	return id, nil
}
