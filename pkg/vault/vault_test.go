package vault

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileVault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secrets.json")
	v := OpenFile(path)

	require.NoError(t, v.Set("talents.github.access_token", "ghp_abcdef123456"))
	require.NoError(t, v.Set("channels.telegram.token", "123:abc"))

	got, err := v.Get("talents.github.access_token")
	require.NoError(t, err)
	assert.Equal(t, "ghp_abcdef123456", got)

	keys, err := v.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"channels.telegram.token", "talents.github.access_token"}, keys)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "ghp_abcdef123456")

	_, err = v.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "", v.Lookup("missing"))
}

func TestMask(t *testing.T) {
	assert.Equal(t, "", Mask(""))
	assert.Equal(t, "****", Mask("abcd"))
	assert.Equal(t, "a********h", Mask("abcdefgh"))
	assert.Equal(t, "ghp********456", Mask("ghp_abcdef123456"))
}
