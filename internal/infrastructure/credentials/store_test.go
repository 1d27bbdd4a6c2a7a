package credentials_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/janhq/git-automation-server/internal/infrastructure/credentials"
)

func TestStore_SavePreservesOtherKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("HTTP_PORT=9000\nGITHUB_TOKEN=old\n"), 0o644))

	store := credentials.NewStore(path, credentials.Credentials{}, zerolog.Nop())
	assert.False(t, store.Get().Configured())

	require.NoError(t, store.Save(" octocat ", "ghp_new"))

	assert.Equal(t, credentials.Credentials{Username: "octocat", Token: "ghp_new"}, store.Get())
	values, err := godotenv.Read(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"HTTP_PORT":       "9000",
		"GITHUB_USERNAME": "octocat",
		"GITHUB_TOKEN":    "ghp_new",
	}, values)
}

func TestStore_SaveCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "creds.env")
	store := credentials.NewStore(path, credentials.Credentials{}, zerolog.Nop())

	require.NoError(t, store.Save("u", "t"))
	assert.Equal(t, path, store.Path())
	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestStore_SaveRejectsBlank(t *testing.T) {
	store := credentials.NewStore(filepath.Join(t.TempDir(), ".env"), credentials.Credentials{Username: "a", Token: "b"}, zerolog.Nop())
	assert.Error(t, store.Save("", "tok"))
	assert.Equal(t, "a", store.Get().Username, "failed save leaves credentials untouched")
}

func TestStore_ConcurrentReads(t *testing.T) {
	store := credentials.NewStore(filepath.Join(t.TempDir(), ".env"), credentials.Credentials{Username: "a", Token: "b"}, zerolog.Nop())
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Get()
		}()
	}
	require.NoError(t, store.Save("c", "d"))
	wg.Wait()
	assert.Equal(t, "c", store.Get().Username)
}
