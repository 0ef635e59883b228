package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds the settings of the encoding pipeline the batch-encode
// operation itself must not carry as ambient state: feature-table shape and
// seed, the propagation step schedule, and the export target.
type Config struct {
	EncodingSize int
	FeatureSeed  int64
	Timesteps    []int
	BatchSize    int
	VocabPath    string
	GrammarPath  string

	Neo4jURI      string
	Neo4jUser     string
	Neo4jPassword string
	Neo4jDatabase string
}

// LoadConfig loads the configuration from environment variables, applying
// defaults where unset.
func LoadConfig() Config {
	return Config{
		EncodingSize: intEnv("ASTENC_ENCODING_SIZE", 64),
		FeatureSeed:  int64(intEnv("ASTENC_FEATURE_SEED", 1)),
		Timesteps:    intsEnv("ASTENC_TIMESTEPS", []int{5, 5}),
		BatchSize:    intEnv("ASTENC_BATCH_SIZE", 16),
		VocabPath:    stringEnv("ASTENC_VOCAB", "vocab.yaml"),
		GrammarPath:  stringEnv("ASTENC_GRAMMAR", "grammar.yaml"),

		Neo4jURI:      os.Getenv("NEO4J_URI"),
		Neo4jUser:     os.Getenv("NEO4J_USER"),
		Neo4jPassword: os.Getenv("NEO4J_PASSWORD"),
		Neo4jDatabase: os.Getenv("NEO4J_DATABASE"),
	}
}

// LoadEnv loads environment variables from a .env file, searching up the
// directory tree.
func LoadEnv() error {
	dir, err := os.Getwd()
	if err != nil {
		return err
	}

	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			return godotenv.Load(envPath)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	// Not found is fine
	return nil
}

func stringEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func intEnv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// intsEnv parses a comma-separated step schedule like "5,5".
func intsEnv(key string, def []int) []int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []int
	for _, part := range strings.Split(v, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return def
		}
		out = append(out, n)
	}
	return out
}
