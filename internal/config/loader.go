package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigFile is the configuration file looked up in the current
	// and home directories.
	DefaultConfigFile = ".corpuscrawl"

	// XDGConfigFileName is the configuration file inside XDGConfigDir.
	XDGConfigFileName = "config.yaml"
)

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// LoadConfigFile reads the crawl target from a YAML file. Unknown keys
// are rejected so that a misspelled option does not silently fall back
// to its default. Header and cookie values may reference environment
// variables as $NAME or ${NAME}.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	f.Cookie = os.ExpandEnv(f.Cookie)
	for k, v := range f.Headers {
		f.Headers[k] = os.ExpandEnv(v)
	}
	return &f, nil
}

// FindConfigFile returns the configuration file to load, or "" when there
// is none. An explicit configPath is returned only if it exists. Otherwise
// the candidates are, in order:
//
//   - ./.corpuscrawl
//   - $HOME/.corpuscrawl
//   - $XDG_CONFIG_HOME/corpuscrawl/config.yaml
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if fileExists(configPath) {
			return configPath
		}
		return ""
	}

	var candidates []string
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, DefaultConfigFile))
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, DefaultConfigFile))
	}
	candidates = append(candidates, filepath.Join(XDGConfigDir(), XDGConfigFileName))

	for _, c := range candidates {
		if fileExists(c) {
			return c
		}
	}
	return ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
