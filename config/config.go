// Package config reads notepads settings from the environment and an optional
// .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultAddr     = "127.0.0.1:8080"
	DefaultPassword = "dev"
	DefaultLogLevel = "info"
)

type Config struct {
	Root         string
	Addr         string
	PasswordHash []byte
	LogLevel     string
	LogPretty    bool
	TitleIndex   bool
}

// Load applies the given .env files (".env" when none are named) without
// overriding variables already set, then reads the NOTEPADS_* variables.
// Missing .env files are ignored.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	cfg := Config{
		Root:     os.Getenv("NOTEPADS_ROOT"),
		Addr:     getenv("NOTEPADS_ADDR", DefaultAddr),
		LogLevel: getenv("NOTEPADS_LOG_LEVEL", DefaultLogLevel),
	}
	if cfg.Root == "" {
		root, err := defaultRoot()
		if err != nil {
			return Config{}, err
		}
		cfg.Root = root
	}

	var err error
	if cfg.LogPretty, err = getbool("NOTEPADS_LOG_PRETTY", true); err != nil {
		return Config{}, err
	}
	if cfg.TitleIndex, err = getbool("NOTEPADS_TITLE_INDEX", false); err != nil {
		return Config{}, err
	}

	if hash := os.Getenv("NOTEPADS_PASSWORD_HASH"); hash != "" {
		if _, err := bcrypt.Cost([]byte(hash)); err != nil {
			return Config{}, fmt.Errorf("NOTEPADS_PASSWORD_HASH: %w", err)
		}
		cfg.PasswordHash = []byte(hash)
	} else {
		hash, err := bcrypt.GenerateFromPassword([]byte(getenv("NOTEPADS_PASSWORD", DefaultPassword)), bcrypt.DefaultCost)
		if err != nil {
			return Config{}, fmt.Errorf("hash password: %w", err)
		}
		cfg.PasswordHash = hash
	}
	return cfg, nil
}

// defaultRoot is the notes directory next to the running executable.
func defaultRoot() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locate executable: %w", err)
	}
	return filepath.Join(filepath.Dir(exe), "notes"), nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getbool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}
