// Package config provides the configuration loader for knit.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"go.trai.ch/knit/internal/core/domain"
	"go.trai.ch/knit/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.ConfigLoader = (*Loader)(nil)

var validEnvKeyRegex = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load reads knit.yaml from cwd or the nearest parent directory.
// Without a config file the defaults rooted at cwd are returned.
func (l *Loader) Load(cwd string) (*domain.Config, error) {
	cwd, err := filepath.Abs(cwd)
	if err != nil {
		return nil, errors.Join(domain.ErrConfigReadFailed, err)
	}

	configPath, found := findConfiguration(cwd)
	if !found {
		return ApplyDefaults(domain.DefaultConfig(cwd)), nil
	}

	var knitfile Knitfile
	if err := readAndUnmarshalYAML(configPath, &knitfile); err != nil {
		return nil, zerr.With(err, "path", configPath)
	}

	return l.buildConfig(filepath.Dir(configPath), &knitfile)
}

// DiscoverRoot walks up from cwd to the directory holding knit.yaml.
// It returns cwd when no config file exists.
func (l *Loader) DiscoverRoot(cwd string) (string, error) {
	cwd, err := filepath.Abs(cwd)
	if err != nil {
		return "", errors.Join(domain.ErrConfigReadFailed, err)
	}

	if configPath, found := findConfiguration(cwd); found {
		return filepath.Dir(configPath), nil
	}
	return cwd, nil
}

func findConfiguration(cwd string) (string, bool) {
	currentDir := cwd
	for {
		configPath := filepath.Join(currentDir, domain.ConfigFileName)
		if info, err := os.Stat(configPath); err == nil && !info.IsDir() {
			return configPath, true
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root
			return "", false
		}
		currentDir = parentDir
	}
}

func (l *Loader) buildConfig(root string, knitfile *Knitfile) (*domain.Config, error) {
	if err := validate(knitfile); err != nil {
		return nil, err
	}

	cfg := domain.DefaultConfig(root)
	cfg.Entry = resolvePath(root, knitfile.Entry)
	cfg.Output = resolvePath(root, knitfile.Output)
	cfg.Parallelism = knitfile.Parallelism
	cfg.MaxModules = knitfile.MaxModules
	cfg.Extensions = knitfile.Extensions
	if knitfile.Target != "" {
		cfg.Target = knitfile.Target
	}

	if knitfile.Env != "" {
		defines, err := l.readDefines(resolvePath(root, knitfile.Env))
		if err != nil {
			return nil, err
		}
		cfg.Defines = defines
	}

	return ApplyDefaults(cfg), nil
}

func validate(knitfile *Knitfile) error {
	if knitfile.Parallelism < 0 {
		err := zerr.With(domain.ErrInvalidConfig, "field", "parallelism")
		return zerr.With(err, "value", knitfile.Parallelism)
	}
	if knitfile.MaxModules < 0 {
		err := zerr.With(domain.ErrInvalidConfig, "field", "maxModules")
		return zerr.With(err, "value", knitfile.MaxModules)
	}
	for _, ext := range knitfile.Extensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			err := zerr.With(domain.ErrInvalidConfig, "field", "extensions")
			return zerr.With(err, "value", ext)
		}
	}
	return nil
}

// readDefines turns the KEY=VALUE pairs of an env file into process.env.KEY
// replacements holding JSON string literals.
func (l *Loader) readDefines(envPath string) (map[string]string, error) {
	env, err := godotenv.Read(envPath)
	if err != nil {
		err = errors.Join(domain.ErrEnvFileReadFailed, err)
		return nil, zerr.With(err, "path", envPath)
	}

	defines := make(map[string]string, len(env))
	for key, value := range env {
		if !validEnvKeyRegex.MatchString(key) {
			l.Logger.Warn(fmt.Sprintf("ignoring env key %q from %s: not a valid identifier", key, envPath))
			continue
		}
		literal, err := json.Marshal(value)
		if err != nil {
			return nil, zerr.With(errors.Join(domain.ErrEnvFileReadFailed, err), "key", key)
		}
		defines["process.env."+key] = string(literal)
	}
	return defines, nil
}

// ApplyDefaults fills the zero-valued settings of cfg and returns it.
func ApplyDefaults(cfg *domain.Config) *domain.Config {
	if cfg.Output == "" {
		cfg.Output = filepath.Join(cfg.Root, filepath.FromSlash(domain.DefaultOutputPath))
	}
	if cfg.Parallelism == 0 {
		cfg.Parallelism = runtime.NumCPU()
	}
	if cfg.MaxModules == 0 {
		cfg.MaxModules = domain.DefaultMaxModules
	}
	if cfg.Target == "" {
		cfg.Target = domain.DefaultTarget
	}
	if cfg.Defines == nil {
		cfg.Defines = map[string]string{}
	}
	return cfg
}

func resolvePath(root, path string) string {
	if path == "" {
		return ""
	}
	path = filepath.FromSlash(path)
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(root, path)
}

func readAndUnmarshalYAML[T any](configPath string, target *T) error {
	// #nosec G304 -- configPath is discovered by walking up from cwd
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		return errors.Join(domain.ErrConfigReadFailed, err)
	}

	if parseErr := yaml.Unmarshal(configFile, target); parseErr != nil {
		return errors.Join(domain.ErrConfigParseFailed, parseErr)
	}

	return nil
}
