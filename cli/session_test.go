package main

import (
	"math/rand"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sessionPattern = regexp.MustCompile(`^session_\d+_[0-9a-z]{9}$`)

func TestNewSessionID(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	id := NewSessionID(now, rand.New(rand.NewSource(1)))

	assert.Regexp(t, sessionPattern, id)
	assert.Contains(t, id, "session_1700000000123_")

	other := NewSessionID(now, rand.New(rand.NewSource(2)))
	assert.NotEqual(t, id, other)
}

func TestLoadSessionPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session")

	first, err := LoadSession(path)
	require.NoError(t, err)
	assert.Regexp(t, sessionPattern, first)

	second, err := LoadSession(path)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestLoadSessionEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session")
	require.NoError(t, os.WriteFile(path, []byte("  \n"), 0o600))

	id, err := LoadSession(path)
	require.NoError(t, err)
	assert.Regexp(t, sessionPattern, id)
}
