package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"

	verrors "github.com/van-dev/van/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "van.json"

	// DefaultPort is the default development server port.
	DefaultPort = 3000

	// DefaultHost is the default development server host.
	DefaultHost = "localhost"

	// DefaultSrc is the default source directory.
	DefaultSrc = "src"

	// DefaultPages is the default pages directory.
	DefaultPages = "src/pages"

	// DefaultOutput is the default build output directory.
	DefaultOutput = "dist"
)

// Config represents the complete van.json configuration.
type Config struct {
	// Name is the project name; it becomes the build output subdirectory.
	Name string `json:"name,omitempty"`

	// Version is the project version.
	Version string `json:"version,omitempty"`

	// Paths contains path configuration for project directories.
	Paths PathsConfig `json:"paths,omitempty"`

	// Dev contains development server configuration.
	Dev DevConfig `json:"dev,omitempty"`

	// Build contains production build configuration.
	Build BuildConfig `json:"build,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// PathsConfig contains path configuration for project directories.
type PathsConfig struct {
	// Src is the source directory holding components, scripts, and styles.
	Src string `json:"src,omitempty"`

	// Pages is the directory whose .van files become page entries.
	Pages string `json:"pages,omitempty"`

	// Output is the build output directory.
	Output string `json:"output,omitempty"`
}

// DevConfig contains development server settings.
type DevConfig struct {
	// Port is the port to run the dev server on.
	Port int `json:"port,omitempty"`

	// Host is the host to bind to.
	Host string `json:"host,omitempty"`

	// Open opens the browser automatically on start.
	Open bool `json:"open,omitempty"`

	// Watch contains extra paths to watch for changes.
	Watch []string `json:"watch,omitempty"`

	// Ignore contains glob patterns excluded from watching.
	Ignore []string `json:"ignore,omitempty"`
}

// BuildConfig contains production build settings.
type BuildConfig struct {
	// AssetPrefix overrides the URL prefix for separated CSS/JS assets.
	// Defaults to "/<name>/assets".
	AssetPrefix string `json:"assetPrefix,omitempty"`

	// Debug keeps component boundary comments in built pages.
	Debug bool `json:"debug,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Name:    "van-app",
		Version: "0.1.0",
		Paths: PathsConfig{
			Src:    DefaultSrc,
			Pages:  DefaultPages,
			Output: DefaultOutput,
		},
		Dev: DevConfig{
			Port: DefaultPort,
			Host: DefaultHost,
		},
	}
}

// Load reads configuration from the specified directory. It looks for
// van.json in the directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, verrors.New(verrors.CategoryConfig, "no %s found in %s", ConfigFileName, filepath.Dir(path))
		}
		return nil, verrors.Wrap(verrors.CategoryConfig, err, "reading %s", ConfigFileName)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, verrors.Wrap(verrors.CategoryConfig, err, "parsing %s", ConfigFileName)
	}

	cfg.configPath = path
	cfg.applyDefaults()
	return cfg, nil
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return verrors.Wrap(verrors.CategoryConfig, err, "encoding %s", ConfigFileName)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return verrors.Wrap(verrors.CategoryConfig, err, "writing %s", ConfigFileName)
	}
	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Name == "" {
		c.Name = "van-app"
	}
	if c.Paths.Src == "" {
		c.Paths.Src = DefaultSrc
	}
	if c.Paths.Pages == "" {
		c.Paths.Pages = DefaultPages
	}
	if c.Paths.Output == "" {
		c.Paths.Output = DefaultOutput
	}
	if c.Dev.Port == 0 {
		c.Dev.Port = DefaultPort
	}
	if c.Dev.Host == "" {
		c.Dev.Host = DefaultHost
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Dev.Port < 1 || c.Dev.Port > 65535 {
		return verrors.New(verrors.CategoryConfig, "invalid dev port %d", c.Dev.Port)
	}
	return nil
}

// DevAddress returns the host:port address for the dev server.
func (c *Config) DevAddress() string {
	return c.Dev.Host + ":" + strconv.Itoa(c.Dev.Port)
}

// DevURL returns the full URL of the dev server.
func (c *Config) DevURL() string {
	return "http://" + c.DevAddress()
}

// SrcPath returns the absolute source directory.
func (c *Config) SrcPath() string {
	return c.resolve(c.Paths.Src)
}

// PagesPath returns the absolute pages directory.
func (c *Config) PagesPath() string {
	return c.resolve(c.Paths.Pages)
}

// OutputPath returns the absolute build output directory.
func (c *Config) OutputPath() string {
	return c.resolve(c.Paths.Output)
}

// AssetPrefix returns the configured asset URL prefix, defaulting to
// "/<name>/assets".
func (c *Config) AssetPrefix() string {
	if c.Build.AssetPrefix != "" {
		return c.Build.AssetPrefix
	}
	return "/" + c.Name + "/assets"
}

func (c *Config) resolve(p string) string {
	if filepath.IsAbs(p) || c.Dir() == "" {
		return p
	}
	return filepath.Join(c.Dir(), p)
}

// Exists reports whether a van.json exists in the directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}

// FindProjectRoot walks up from startDir looking for a van.json.
func FindProjectRoot(startDir string) (string, error) {
	dir := startDir
	for {
		if Exists(dir) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", verrors.New(verrors.CategoryConfig, "no %s found in %s or any parent directory", ConfigFileName, startDir)
		}
		dir = parent
	}
}

// LoadFromWorkingDir finds and loads the config for the current project.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, verrors.Wrap(verrors.CategoryConfig, err, "resolving working directory")
	}
	root, err := FindProjectRoot(wd)
	if err != nil {
		return nil, err
	}
	return Load(root)
}
