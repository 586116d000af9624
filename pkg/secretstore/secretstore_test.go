package secretstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(OpenOptions{Path: t.TempDir()})
	assert.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSetGetDelete(t *testing.T) {
	s := newTestStore(t)

	_, found, err := s.GetString("auth/token_secret")
	assert.NoError(t, err)
	assert.False(t, found)

	assert.NoError(t, s.SetString("auth/token_secret", "s3cret"))
	val, found, err := s.GetString("auth/token_secret")
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "s3cret", val)

	assert.NoError(t, s.Delete("auth/token_secret"))
	_, found, err = s.GetString("auth/token_secret")
	assert.NoError(t, err)
	assert.False(t, found)
}

func TestKeysPrefix(t *testing.T) {
	s := newTestStore(t)

	assert.NoError(t, s.SetString("oracle/api_key", "k1"))
	assert.NoError(t, s.SetString("auth/token_secret", "k2"))

	keys, err := s.Keys("oracle/")
	assert.NoError(t, err)
	assert.Equal(t, []string{"oracle/api_key"}, keys)
}

func TestParseKey(t *testing.T) {
	empty, err := ParseKey("")
	assert.NoError(t, err)
	assert.Nil(t, empty)

	hexKey, err := ParseKey("000102030405060708090a0b0c0d0e0f000102030405060708090a0b0c0d0e0f")
	assert.NoError(t, err)
	assert.Len(t, hexKey, 32)

	_, err = ParseKey("too-short")
	assert.Error(t, err)
}
