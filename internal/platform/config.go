package platform

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/zeebo/errs"

	"github.com/lakshay-nasa/city-scout/pkg/core"
)

// Error is the error class for configuration and wiring failures.
var Error = errs.Class("platform")

// EnvPrefix is the prefix of environment overrides, e.g. CITYSCOUT_DATAHUB_SERVER.
const EnvPrefix = "CITYSCOUT"

// Source types.
const (
	SourceFirestore = "firestore"
	SourceFS        = "fs"
)

// SourceConfig selects and configures the change source.
type SourceConfig struct {
	Type        string
	Collection  string
	Dir         string
	Pattern     string
	EventBuffer int
	Strict      bool
}

// FirestoreConfig holds the Firestore credentials.
type FirestoreConfig struct {
	CredentialsFile string
	ProjectID       string
}

// DataHubConfig holds the catalog server connection.
type DataHubConfig struct {
	Server  string
	Token   string
	Timeout time.Duration
}

// Config is the resolved configuration of the process.
type Config struct {
	Source    SourceConfig
	Firestore FirestoreConfig
	DataHub   DataHubConfig
	Catalog   core.CatalogConfig
	// File is the configuration file that was read, if any.
	File string
}

// SetDefaults registers the default value of every key.
func SetDefaults(v *viper.Viper) {
	catalog := core.DefaultCatalogConfig()

	v.SetDefault("source.type", SourceFirestore)
	v.SetDefault("source.collection", "itineraries")
	v.SetDefault("source.dir", ".")
	v.SetDefault("source.pattern", "**/*")
	v.SetDefault("source.event_buffer", 100)
	v.SetDefault("source.strict", false)

	v.SetDefault("firestore.credentials_file", "service_account.json")
	v.SetDefault("firestore.project_id", "")

	v.SetDefault("datahub.server", "http://localhost:8080")
	v.SetDefault("datahub.token", "")
	v.SetDefault("datahub.timeout", "0s")

	v.SetDefault("catalog.platform", catalog.Platform)
	v.SetDefault("catalog.name_prefix", catalog.NamePrefix)
	v.SetDefault("catalog.env", catalog.Env)
	v.SetDefault("catalog.app_source", catalog.AppSource)

	v.SetDefault("external.platform", catalog.External.Platform)
	v.SetDefault("external.name", catalog.External.Name)
	v.SetDefault("external.env", catalog.External.Env)
	v.SetDefault("external.description", catalog.External.Description)
	v.SetDefault("external.provider", catalog.External.Provider)
	v.SetDefault("external.interface", catalog.External.Interface)
}

// NewViper creates a viper instance with defaults, environment overrides and,
// when found, a configuration file. An explicit path must exist; otherwise
// cityscout.yaml is searched from the working directory upwards.
func NewViper(path string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		found, err := FindConfig(".")
		if err != nil {
			// No file: defaults and environment only.
			return v, nil
		}
		path = found
	}

	if _, err := os.Stat(path); err != nil {
		return nil, Error.New("config file not found: %s", path)
	}

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, Error.Wrap(fmt.Errorf("read config %s: %w", path, err))
	}
	return v, nil
}

// FromViper resolves a Config from viper keys.
func FromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		Source: SourceConfig{
			Type:        strings.ToLower(strings.TrimSpace(v.GetString("source.type"))),
			Collection:  v.GetString("source.collection"),
			Dir:         v.GetString("source.dir"),
			Pattern:     v.GetString("source.pattern"),
			EventBuffer: v.GetInt("source.event_buffer"),
			Strict:      v.GetBool("source.strict"),
		},
		Firestore: FirestoreConfig{
			CredentialsFile: v.GetString("firestore.credentials_file"),
			ProjectID:       v.GetString("firestore.project_id"),
		},
		DataHub: DataHubConfig{
			Server:  v.GetString("datahub.server"),
			Token:   v.GetString("datahub.token"),
			Timeout: v.GetDuration("datahub.timeout"),
		},
		Catalog: core.CatalogConfig{
			Platform:   v.GetString("catalog.platform"),
			NamePrefix: v.GetString("catalog.name_prefix"),
			Env:        v.GetString("catalog.env"),
			AppSource:  v.GetString("catalog.app_source"),
			External: core.ExternalSource{
				Platform:    v.GetString("external.platform"),
				Name:        v.GetString("external.name"),
				Env:         v.GetString("external.env"),
				Description: v.GetString("external.description"),
				Provider:    v.GetString("external.provider"),
				Interface:   v.GetString("external.interface"),
			},
		},
		File: v.ConfigFileUsed(),
	}
	return cfg, cfg.Validate()
}

// LoadConfig is NewViper followed by FromViper.
func LoadConfig(path string) (Config, error) {
	v, err := NewViper(path)
	if err != nil {
		return Config{}, err
	}
	return FromViper(v)
}

// Validate checks the values that cannot be defaulted at use site.
func (c Config) Validate() error {
	switch c.Source.Type {
	case SourceFirestore, SourceFS:
	default:
		return Error.New("unknown source type %q (want %s or %s)", c.Source.Type, SourceFirestore, SourceFS)
	}
	if c.Source.Collection == "" && c.Source.Type == SourceFirestore {
		return Error.New("source.collection is required")
	}
	if c.Source.EventBuffer < 0 {
		return Error.New("source.event_buffer must not be negative")
	}
	if c.DataHub.Timeout < 0 {
		return Error.New("datahub.timeout must not be negative")
	}
	if c.Catalog.Platform == "" || c.Catalog.External.Platform == "" || c.Catalog.External.Name == "" {
		return Error.New("catalog platform and external source name are required")
	}
	return nil
}
