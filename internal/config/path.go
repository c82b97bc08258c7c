// Package config loads application settings from the config file, the
// environment and .env files.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	configDir    = "~/.config/spendmatch"
	databaseFile = "~/.local/share/spendmatch/spendmatch.db"
)

// DefaultConfigDir holds config.yaml and the Sheets token.
func DefaultConfigDir() string {
	return ExpandPath(configDir)
}

// DefaultDatabasePath is used when database.path and --db are unset.
func DefaultDatabasePath() string {
	return ExpandPath(databaseFile)
}

// ExpandPath resolves a leading ~ to the home directory, then expands
// $VAR references. Paths from database.path, sheets.token_file and
// sheets.service_account_path all pass through here. A ~ is left as is
// when the home directory is unknown.
func ExpandPath(path string) string {
	rest, ok := strings.CutPrefix(path, "~")
	if ok && (rest == "" || rest[0] == '/' || rest[0] == filepath.Separator) {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, rest)
		}
	}
	return os.ExpandEnv(path)
}
