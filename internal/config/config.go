// Package config loads rsaforge.toml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"rsaforge/internal/prime"
	"rsaforge/internal/rsa"
)

// FileName is the config file searched for by Find.
const FileName = "rsaforge.toml"

// DefaultBits is the key size used when none is configured.
const DefaultBits = 2048

// Config is the decoded configuration. Path is empty for built-in defaults.
type Config struct {
	Path   string `toml:"-"`
	Keygen Keygen `toml:"keygen"`
	Store  Store  `toml:"store"`
}

// Keygen holds key generation settings.
type Keygen struct {
	Bits     int  `toml:"bits"`
	Rounds   int  `toml:"rounds"`
	Parallel bool `toml:"parallel"`
}

// Store locates the key ring.
type Store struct {
	Path string `toml:"path"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Keygen: Keygen{Bits: DefaultBits, Rounds: prime.DefaultRounds, Parallel: true},
		Store:  Store{Path: defaultStorePath()},
	}
}

func defaultStorePath() string {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(".rsaforge", "keys.db")
		}
		base = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(base, "rsaforge", "keys.db")
}

// Find walks up from startDir looking for FileName.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load decodes path. Keys missing from the file keep their defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undec := meta.Undecoded(); len(undec) > 0 {
		return Config{}, fmt.Errorf("%s: unknown key %s", path, undec[0])
	}
	if meta.IsDefined("keygen", "bits") && cfg.Keygen.Bits < rsa.MinBits {
		return Config{}, fmt.Errorf("%s: [keygen].bits must be at least %d, got %d", path, rsa.MinBits, cfg.Keygen.Bits)
	}
	if meta.IsDefined("keygen", "rounds") && cfg.Keygen.Rounds < 1 {
		return Config{}, fmt.Errorf("%s: [keygen].rounds must be positive, got %d", path, cfg.Keygen.Rounds)
	}
	if meta.IsDefined("store", "path") {
		p := strings.TrimSpace(cfg.Store.Path)
		if p == "" {
			return Config{}, fmt.Errorf("%s: [store].path is empty", path)
		}
		cfg.Store.Path = expandPath(p, filepath.Dir(path))
	}
	cfg.Path = path
	return cfg, nil
}

// Resolve loads explicit when set, otherwise the nearest FileName above
// startDir, otherwise the defaults.
func Resolve(explicit, startDir string) (Config, error) {
	if explicit != "" {
		return Load(explicit)
	}
	path, ok, err := Find(startDir)
	if err != nil {
		return Config{}, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

// expandPath resolves "~/" against the home directory and relative paths
// against the config file's directory.
func expandPath(p, base string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}
