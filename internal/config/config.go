package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Product identifies the application being packaged.
type Product struct {
	Name          string `toml:"name"`
	Version       string `toml:"version"`
	VersionBuild  string `toml:"version_build"`
	Release       bool   `toml:"release"`
	Publisher     string `toml:"publisher"`
	UpdateChannel string `toml:"update_channel"`
}

// Signing contains code-signing credentials. Certificate-based and
// API-token-based signing are mutually exclusive.
type Signing struct {
	CertificateFile     string `toml:"certificate_file"`
	CertificatePassword string `toml:"certificate_password"`
	TimestampServer     string `toml:"timestamp_server"`
	APIToken            string `toml:"api_token"`
	APIEndpoint         string `toml:"api_endpoint"`
}

// Paths contains the directory layout used by the build graph.
type Paths struct {
	SourceDir string `toml:"source_dir"`
	OutputDir string `toml:"output_dir"`
	StateDir  string `toml:"state_dir"`
	LogDir    string `toml:"log_dir"`
}

// Build contains settings for the external application build command and
// the graph scheduler.
type Build struct {
	Command        string   `toml:"command"`
	Optimize       bool     `toml:"optimize"`
	UIAccess       bool     `toml:"ui_access"`
	Jobs           int      `toml:"jobs"`
	AllCores       bool     `toml:"all_cores"`
	DebugFlags     []string `toml:"debug_flags"`
	SourceLanguage string   `toml:"source_language"`
}

// DistDir returns the directory holding the built distribution tree.
func (p Paths) DistDir() string {
	return filepath.Join(p.OutputDir, "dist")
}

// ArtifactPath returns the path of a named top-level build artifact,
// placed beside the distribution tree.
func (p Paths) ArtifactPath(name string) string {
	return filepath.Join(p.OutputDir, name)
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for shipwright.
//
// Configuration sections by subsystem:
//   - Product: name, version, publisher, and update channel stamped into
//     the distribution
//   - Signing: certificate or signing-service credentials
//   - Paths: source tree, distribution output, state, and log directories
//   - Build: external build command, scheduler job count, debug flags
//   - Logging: log format and level
type Config struct {
	Product Product `toml:"product"`
	Signing Signing `toml:"signing"`
	Paths   Paths   `toml:"paths"`
	Build   Build   `toml:"build"`
	Logging Logging `toml:"logging"`
}

// SigningMode names the signing strategy resolved from configuration.
type SigningMode string

const (
	// SigningDisabled means no credentials are configured; binaries ship
	// unsigned.
	SigningDisabled SigningMode = "disabled"
	// SigningCertificate means a local certificate and signing tool are used.
	SigningCertificate SigningMode = "certificate"
	// SigningAPIToken means a cloud signing service is used.
	SigningAPIToken SigningMode = "api-token"
)

// SigningMode reports which signing strategy the configuration selects.
// Validate guarantees at most one strategy is configured.
func (c *Config) SigningMode() SigningMode {
	switch {
	case strings.TrimSpace(c.Signing.CertificateFile) != "":
		return SigningCertificate
	case strings.TrimSpace(c.Signing.APIToken) != "":
		return SigningAPIToken
	default:
		return SigningDisabled
	}
}

// VersionString combines version and build metadata into the value recorded
// in the version stamp.
func (c *Config) VersionString() string {
	version := strings.TrimSpace(c.Product.Version)
	build := strings.TrimSpace(c.Product.VersionBuild)
	if build == "" {
		return version
	}
	return version + "." + build
}

// EnsureDirectories creates the output, state, and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutputDir, c.Paths.StateDir, c.Paths.LogDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// CreateSample writes the annotated sample configuration to path.
func CreateSample(path string) error {
	return os.WriteFile(path, []byte(sampleConfig), 0o644)
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/shipwright/config.toml")
}

// SampleConfig returns the annotated sample configuration shipped with the
// binary.
func SampleConfig() string {
	return sampleConfig
}

// Load locates, parses, and validates a configuration file, applying any
// key=value overrides on top of the file contents. The returned config has
// all path fields expanded and normalized.
func Load(path string, overrides map[string]string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			var strict *toml.StrictMissingError
			if errors.As(err, &strict) {
				return nil, "", false, fmt.Errorf("parse config: unknown option(s):\n%s", strict.String())
			}
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyOverrides(overrides); err != nil {
		return nil, "", false, err
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("shipwright.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	return defaultPath, false, nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}
