// Package config contains utilities for loading configs
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/goccy/go-yaml"

	"github.com/go-playground/validator/v10"
)

const (
	configFilePath = "/data/fileden.yaml"

	// AmbientCredentialsEnv selects platform-provided identity credentials.
	// When set, its value is the credential document itself and no
	// credential file is read.
	AmbientCredentialsEnv = "IDENTITY_CONFIG"

	defaultCredentialsPath = "serviceAccountKey.json"
	defaultSessionTTL      = 60 * 60 * 24 * 5 // 5 days
	defaultVerifyTimeout   = 5                // seconds
)

const (
	EnvProd = "PROD"
	EnvDev  = "DEV"
)

type Identity struct {
	Endpoint        string `yaml:"endpoint" validate:"omitempty,url"`
	JWKSURL         string `yaml:"jwks_url" validate:"omitempty,url"`
	Issuer          string `yaml:"issuer"`
	Audience        string `yaml:"audience"`
	CredentialsPath string `yaml:"credentials_path"`
	VerifyTimeout   uint   `yaml:"verify_timeout"` // seconds
}

type Session struct {
	CookieName string `yaml:"cookie_name"`
	TTL        uint32 `yaml:"ttl"` // seconds
}

type Frontend struct {
	BuildDir string `yaml:"build_dir"`
}

type Server struct {
	Port uint16 `yaml:"port"`
}

type Config struct {
	Server     Server   `yaml:"server"`
	Identity   Identity `yaml:"identity"`
	Session    Session  `yaml:"session"`
	Frontend   Frontend `yaml:"frontend"`
	HostOrigin string   `yaml:"host_origin" validate:"url"`
	Env        string   `yaml:"env" validate:"omitempty,oneof=DEV PROD"`
}

// Credentials is the resolved identity-service credential, regardless of
// whether it came from the ambient environment or a local credential file.
type Credentials struct {
	APIKey   string `json:"api_key"`
	Endpoint string `json:"endpoint"`
	JWKSURL  string `json:"jwks_url"`
	Issuer   string `json:"issuer"`
	Audience string `json:"audience"`
}

func loadWithDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func applyDefaults(config *Config) {
	if config.Env == "" {
		config.Env = EnvDev
	}
	if config.HostOrigin == "" {
		config.HostOrigin = "http://localhost:8080"
	}
	if config.Server.Port == 0 {
		config.Server.Port = 8080
	}
	if config.Identity.CredentialsPath == "" {
		config.Identity.CredentialsPath = defaultCredentialsPath
	}
	if config.Identity.VerifyTimeout == 0 {
		config.Identity.VerifyTimeout = defaultVerifyTimeout
	}
	if config.Session.CookieName == "" {
		config.Session.CookieName = "session"
	}
	if config.Session.TTL == 0 {
		config.Session.TTL = defaultSessionTTL
	}
	if config.Frontend.BuildDir == "" {
		config.Frontend.BuildDir = "../frontend/build"
	}
}

func loadConfigFromEnv() (Config, error) {
	conf := Config{
		HostOrigin: loadWithDefault("HOST_ORIGIN", ""),
		Env:        loadWithDefault("ENV", ""),
		Identity: Identity{
			Endpoint:        loadWithDefault("IDENTITY_ENDPOINT", ""),
			JWKSURL:         loadWithDefault("IDENTITY_JWKS_URL", ""),
			Issuer:          loadWithDefault("IDENTITY_ISSUER", ""),
			Audience:        loadWithDefault("IDENTITY_AUDIENCE", ""),
			CredentialsPath: loadWithDefault("IDENTITY_CREDENTIALS", ""),
		},
		Session: Session{
			CookieName: loadWithDefault("SESSION_COOKIE_NAME", ""),
		},
		Frontend: Frontend{
			BuildDir: loadWithDefault("FRONTEND_BUILD_DIR", ""),
		},
	}

	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.ParseUint(port, 10, 16)
		if err != nil {
			return conf, fmt.Errorf("invalid PORT (%q): %w", port, err)
		}
		conf.Server.Port = uint16(p)
	}
	if ttl := os.Getenv("SESSION_TTL"); ttl != "" {
		t, err := strconv.ParseUint(ttl, 10, 32)
		if err != nil {
			return conf, fmt.Errorf("invalid SESSION_TTL (%q): %w", ttl, err)
		}
		conf.Session.TTL = uint32(t)
	}
	if timeout := os.Getenv("IDENTITY_VERIFY_TIMEOUT"); timeout != "" {
		t, err := strconv.ParseUint(timeout, 10, 32)
		if err != nil {
			return conf, fmt.Errorf("invalid IDENTITY_VERIFY_TIMEOUT (%q): %w", timeout, err)
		}
		conf.Identity.VerifyTimeout = uint(t)
	}

	applyDefaults(&conf)

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(conf); err != nil {
		return conf, fmt.Errorf("validating config: %w", err)
	}

	return conf, nil
}

func loadConfigFromFile(path string) (Config, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(contents, &config); err != nil {
		return Config{}, fmt.Errorf("unmarshaling config: %w", err)
	}

	applyDefaults(&config)

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(config); err != nil {
		return Config{}, fmt.Errorf("validating config: %w", err)
	}

	return config, nil
}

func configFileExists(path string) bool {
	f, err := os.Lstat(path)
	if err != nil {
		return false
	}

	return !f.IsDir()
}

func LoadConfig() (Config, error) {
	if configFileExists(configFilePath) {
		return loadConfigFromFile(configFilePath)
	}

	return loadConfigFromEnv()
}

// LoadCredentials resolves the identity-service credential. The ambient
// environment credential wins when present; otherwise the credential file
// named by the config is read. Fields left empty by the credential document
// fall back to the identity section of the config, so both sources satisfy
// the same initialization contract.
func LoadCredentials(conf *Config) (Credentials, error) {
	var creds Credentials

	if ambient := os.Getenv(AmbientCredentialsEnv); ambient != "" {
		if err := json.Unmarshal([]byte(ambient), &creds); err != nil {
			return Credentials{}, fmt.Errorf("parsing ambient credentials: %w", err)
		}
	} else {
		contents, err := os.ReadFile(conf.Identity.CredentialsPath)
		if err != nil {
			return Credentials{}, fmt.Errorf("reading credential file: %w", err)
		}
		if err := json.Unmarshal(contents, &creds); err != nil {
			return Credentials{}, fmt.Errorf("parsing credential file: %w", err)
		}
	}

	if creds.Endpoint == "" {
		creds.Endpoint = conf.Identity.Endpoint
	}
	if creds.JWKSURL == "" {
		creds.JWKSURL = conf.Identity.JWKSURL
	}
	if creds.Issuer == "" {
		creds.Issuer = conf.Identity.Issuer
	}
	if creds.Audience == "" {
		creds.Audience = conf.Identity.Audience
	}

	if creds.Endpoint == "" {
		return Credentials{}, fmt.Errorf("identity endpoint not set in credentials or config")
	}
	if creds.JWKSURL == "" {
		creds.JWKSURL = creds.Endpoint + "/v1/jwks.json"
	}
	if creds.Issuer == "" {
		creds.Issuer = creds.Endpoint
	}

	return creds, nil
}
