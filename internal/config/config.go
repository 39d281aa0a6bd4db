package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/bryanwahyu/analysis-gateway/internal/domain/analysis"
)

type Config struct {
	Server struct {
		Port                int `yaml:"port"`
		ReadTimeoutSeconds  int `yaml:"readTimeoutSeconds"`
		WriteTimeoutSeconds int `yaml:"writeTimeoutSeconds"`
		MaxUploadMB         int `yaml:"maxUploadMB"`
	} `yaml:"server"`

	Log struct {
		Level      string `yaml:"level"`
		File       string `yaml:"file"`
		MaxSizeMB  int    `yaml:"maxSizeMB"`
		MaxBackups int    `yaml:"maxBackups"`
	} `yaml:"log"`

	Relay struct {
		TimeoutSeconds int      `yaml:"timeoutSeconds"`
		AllowedOrigins []string `yaml:"allowedOrigins"`
		AllowedHosts   []string `yaml:"allowedHosts"`
		MaxBodyMB      int      `yaml:"maxBodyMB"`
		RateLimit      struct {
			RPS   float64 `yaml:"rps"`
			Burst int     `yaml:"burst"`
		} `yaml:"rateLimit"`
	} `yaml:"relay"`

	// Driver: mysql | postgres | sqlite | "" (trigger log disabled)
	Database struct {
		Driver   string `yaml:"driver"`
		DSN      string `yaml:"dsn"`
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
	} `yaml:"database"`

	Sessions []SessionKey `yaml:"sessions"`
	Analyses []Analysis   `yaml:"analyses"`
}

// SessionKey maps an API key to the identity stamped on outbound requests.
type SessionKey struct {
	APIKey string `yaml:"apiKey"`
	UserID string `yaml:"userId"`
	Email  string `yaml:"email"`
}

// Analysis is one entry of the analysis catalogue.
type Analysis struct {
	ID           string            `yaml:"id"`
	Title        string            `yaml:"title"`
	Description  string            `yaml:"description"`
	RemoteTarget string            `yaml:"remoteTarget"`
	ExtraFields  map[string]string `yaml:"extraFields"`
	RequiresFile bool              `yaml:"requiresFile"`
	FileCategory string            `yaml:"fileCategory"`
	Accept       string            `yaml:"accept"`
}

// Load baca file config, expand ${ENV} lalu isi default
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML after expanding environment references.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeoutSeconds == 0 {
		c.Server.ReadTimeoutSeconds = 30
	}
	// trigger uploads arrive as camera originals and are downscaled afterwards
	if c.Server.MaxUploadMB == 0 {
		c.Server.MaxUploadMB = 64
	}
	// remote workflows can take a while; the write timeout has to outlive the relay timeout
	if c.Relay.TimeoutSeconds == 0 {
		c.Relay.TimeoutSeconds = 120
	}
	if c.Server.WriteTimeoutSeconds == 0 {
		c.Server.WriteTimeoutSeconds = c.Relay.TimeoutSeconds + 10
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.MaxSizeMB == 0 {
		c.Log.MaxSizeMB = 50
	}
	if c.Log.MaxBackups == 0 {
		c.Log.MaxBackups = 5
	}
	if len(c.Relay.AllowedOrigins) == 0 {
		c.Relay.AllowedOrigins = []string{"*"}
	}
	if c.Relay.MaxBodyMB == 0 {
		c.Relay.MaxBodyMB = 8
	}
	if c.Relay.RateLimit.RPS == 0 {
		c.Relay.RateLimit.RPS = 5
	}
	if c.Relay.RateLimit.Burst == 0 {
		c.Relay.RateLimit.Burst = 10
	}
}

// Descriptors converts the catalogue into registry descriptors.
func (c *Config) Descriptors() []analysis.Descriptor {
	out := make([]analysis.Descriptor, 0, len(c.Analyses))
	for _, a := range c.Analyses {
		var fields map[string]analysis.FieldSource
		if len(a.ExtraFields) > 0 {
			fields = make(map[string]analysis.FieldSource, len(a.ExtraFields))
			for name, src := range a.ExtraFields {
				fields[name] = analysis.FieldSource(src)
			}
		}
		out = append(out, analysis.Descriptor{
			ID:           analysis.ID(a.ID),
			Title:        a.Title,
			Description:  a.Description,
			RemoteTarget: a.RemoteTarget,
			ExtraFields:  fields,
			RequiresFile: a.RequiresFile,
			FileCategory: analysis.FileCategory(a.FileCategory),
			Accept:       a.Accept,
		})
	}
	return out
}

// APIKeys returns apiKey → session for the auth middleware.
func (c *Config) APIKeys() map[string]analysis.Session {
	out := make(map[string]analysis.Session, len(c.Sessions))
	for _, s := range c.Sessions {
		if s.APIKey == "" {
			continue
		}
		out[s.APIKey] = analysis.Session{UserID: s.UserID, Email: s.Email}
	}
	return out
}

// Helper untuk build DSN sesuai driver. An explicit dsn always wins.
func (c *Config) DatabaseDSN() string {
	d := c.Database
	if d.DSN != "" {
		return d.DSN
	}
	switch d.Driver {
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
			d.User, d.Password, d.Host, d.Port, d.Name)
	case "postgres":
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			d.Host, d.Port, d.User, d.Password, d.Name)
	case "sqlite":
		return "analysis-gateway.sqlite3"
	}
	return ""
}
