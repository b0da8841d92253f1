package config

import (
	"log/slog"
	"path/filepath"

	"github.com/joho/godotenv"
)

// loadEnvFiles loads .env and .env.local from dir. Variables already present in the
// process environment win; missing files are ignored.
func loadEnvFiles(dir string) {
	for _, name := range []string{".env", ".env.local"} {
		path := filepath.Join(dir, name)
		if err := godotenv.Load(path); err == nil {
			slog.Debug("Loaded environment file", "path", path)
		}
	}
}
