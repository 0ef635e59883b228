package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{"ASTENC_ENCODING_SIZE", "ASTENC_TIMESTEPS", "ASTENC_BATCH_SIZE", "ASTENC_VOCAB"} {
		os.Unsetenv(key)
	}

	cfg := LoadConfig()
	assert.Equal(t, 64, cfg.EncodingSize)
	assert.Equal(t, []int{5, 5}, cfg.Timesteps)
	assert.Equal(t, 16, cfg.BatchSize)
	assert.Equal(t, "vocab.yaml", cfg.VocabPath)
}

func TestLoadConfig_FromEnv(t *testing.T) {
	os.Setenv("ASTENC_ENCODING_SIZE", "128")
	os.Setenv("ASTENC_TIMESTEPS", "3, 3, 2")
	os.Setenv("NEO4J_URI", "bolt://localhost:7687")
	defer func() {
		os.Unsetenv("ASTENC_ENCODING_SIZE")
		os.Unsetenv("ASTENC_TIMESTEPS")
		os.Unsetenv("NEO4J_URI")
	}()

	cfg := LoadConfig()
	assert.Equal(t, 128, cfg.EncodingSize)
	assert.Equal(t, []int{3, 3, 2}, cfg.Timesteps)
	assert.Equal(t, "bolt://localhost:7687", cfg.Neo4jURI)
}

func TestLoadConfig_BadValuesFallBack(t *testing.T) {
	os.Setenv("ASTENC_ENCODING_SIZE", "huge")
	os.Setenv("ASTENC_TIMESTEPS", "5,banana")
	defer func() {
		os.Unsetenv("ASTENC_ENCODING_SIZE")
		os.Unsetenv("ASTENC_TIMESTEPS")
	}()

	cfg := LoadConfig()
	assert.Equal(t, 64, cfg.EncodingSize)
	assert.Equal(t, []int{5, 5}, cfg.Timesteps)
}

func TestLoadEnv(t *testing.T) {
	tempDir := t.TempDir()

	envFile := filepath.Join(tempDir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("ASTENC_TEST_VAR=loaded"), 0644))

	subDir := filepath.Join(tempDir, "a", "b")
	require.NoError(t, os.MkdirAll(subDir, 0755))

	wd, err := os.Getwd()
	require.NoError(t, err)
	defer os.Chdir(wd)
	defer os.Unsetenv("ASTENC_TEST_VAR")

	require.NoError(t, os.Chdir(subDir))
	require.NoError(t, LoadEnv())
	assert.Equal(t, "loaded", os.Getenv("ASTENC_TEST_VAR"))
}
