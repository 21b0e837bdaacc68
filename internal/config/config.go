// Package config handles XDG configuration directory and file paths.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"golang.org/x/oauth2"
)

const (
	// AppName is the application directory name.
	AppName = "mtask"

	// CredentialsFile holds the API key and shared secret.
	CredentialsFile = "config.toml"

	// TokenFile is the stored auth token filename.
	TokenFile = "token.json"
)

// Environment variables that override values from CredentialsFile.
const (
	EnvAPIKey       = "MTASK_API_KEY"
	EnvSharedSecret = "MTASK_SHARED_SECRET"
)

// ErrNoCredentials is returned when neither the credentials file nor the
// environment provide an API key and shared secret.
var ErrNoCredentials = errors.New("no API credentials configured")

// ErrInvalidCredentials marks credentials that were found but cannot be used.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	// Logger receives diagnostics. Nil discards them.
	Logger *slog.Logger
}

// Credentials are the values read from CredentialsFile.
type Credentials struct {
	APIKey       string
	SharedSecret string
	Perms        string
	UserAgent    string
	Endpoint     string
	AuthEndpoint string
}

// New creates a new Config with the default or specified config directory.
// If configDir is empty, uses XDG_CONFIG_HOME/mtask or $HOME/.config/mtask.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	return &Config{Dir: dir}, nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// CredentialsPath returns the path to the credentials file.
func (c *Config) CredentialsPath() string {
	return filepath.Join(c.Dir, CredentialsFile)
}

// TokenPath returns the path to the stored token file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// LoadCredentials reads CredentialsFile and applies environment overrides.
// A missing file is not an error as long as the environment supplies both
// the key and the secret.
func (c *Config) LoadCredentials() (Credentials, error) {
	var creds Credentials

	file, err := os.Open(c.CredentialsPath())
	switch {
	case err == nil:
		defer file.Close()
		creds, err = parseCredentials(file)
		if err != nil {
			return Credentials{}, err
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return Credentials{}, fmt.Errorf("open credentials: %w", err)
	}

	if v := strings.TrimSpace(os.Getenv(EnvAPIKey)); v != "" {
		creds.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvSharedSecret)); v != "" {
		creds.SharedSecret = v
	}
	if creds.APIKey == "" || creds.SharedSecret == "" {
		return Credentials{}, ErrNoCredentials
	}
	return creds, nil
}

func parseCredentials(r io.Reader) (Credentials, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Credentials{}, fmt.Errorf("read credentials: %w", err)
	}

	var raw struct {
		APIKey       string `toml:"api_key"`
		SharedSecret string `toml:"shared_secret"`
		Perms        string `toml:"perms"`
		UserAgent    string `toml:"user_agent"`
		Endpoint     string `toml:"endpoint"`
		AuthEndpoint string `toml:"auth_endpoint"`
	}
	if err := toml.Unmarshal(data, &raw); err != nil {
		return Credentials{}, fmt.Errorf("parse credentials: %w", err)
	}

	return Credentials{
		APIKey:       strings.TrimSpace(raw.APIKey),
		SharedSecret: strings.TrimSpace(raw.SharedSecret),
		Perms:        strings.TrimSpace(raw.Perms),
		UserAgent:    strings.TrimSpace(raw.UserAgent),
		Endpoint:     strings.TrimSpace(raw.Endpoint),
		AuthEndpoint: strings.TrimSpace(raw.AuthEndpoint),
	}, nil
}

// HasCredentials reports whether credentials can be loaded.
func (c *Config) HasCredentials() bool {
	_, err := c.LoadCredentials()
	return err == nil
}

// HasToken checks if the token file exists.
func (c *Config) HasToken() bool {
	_, err := os.Stat(c.TokenPath())
	return err == nil
}

// LoadToken reads the stored token.
func (c *Config) LoadToken() (*oauth2.Token, error) {
	data, err := os.ReadFile(c.TokenPath())
	if err != nil {
		return nil, fmt.Errorf("read token: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if tok.AccessToken == "" {
		return nil, errors.New("token file has no access token")
	}
	return &tok, nil
}

// SaveToken writes the token with mode 0600, creating the directory first.
func (c *Config) SaveToken(tok *oauth2.Token) error {
	if err := c.EnsureDir(); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}
	return os.WriteFile(c.TokenPath(), data, 0600)
}

// TokenSource returns a source backed by the token file. The file is read
// on every call, so a token saved by login is picked up without restarting.
func (c *Config) TokenSource() oauth2.TokenSource {
	return fileTokenSource{cfg: c}
}

type fileTokenSource struct {
	cfg *Config
}

func (s fileTokenSource) Token() (*oauth2.Token, error) {
	return s.cfg.LoadToken()
}

// RemoveToken deletes the token file.
func (c *Config) RemoveToken() error {
	return os.Remove(c.TokenPath())
}

// RemoveCredentials deletes the credentials file. A missing file is not an
// error.
func (c *Config) RemoveCredentials() error {
	err := os.Remove(c.CredentialsPath())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
