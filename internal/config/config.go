package config

import (
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/sandbox-risk/internal/format"
	"github.com/rxtech-lab/sandbox-risk/internal/pricefeed"
	"github.com/rxtech-lab/sandbox-risk/internal/sandbox"
	"github.com/rxtech-lab/sandbox-risk/internal/version"
	"github.com/rxtech-lab/sandbox-risk/pkg/errors"
	"github.com/rxtech-lab/sandbox-risk/pkg/utils"
	"gopkg.in/yaml.v3"
)

// Environment variables that override the config file.
const (
	EnvBaseURL  = "SANDBOX_BASE_URL"
	EnvToken    = "SANDBOX_TOKEN"
	EnvLocale   = "SANDBOX_LOCALE"
	EnvCurrency = "SANDBOX_CURRENCY"
	EnvLogLevel = "SANDBOX_LOG_LEVEL"
	EnvPolygon  = "POLYGON_API_KEY"
)

// Config is the configuration of the sandbox command line tool.
type Config struct {
	Sandbox sandbox.ClientConfig `yaml:"sandbox" json:"sandbox" jsonschema:"title=Sandbox,description=Sandbox backend connection"`
	// Token is the bearer token. Prefer SANDBOX_TOKEN over writing it to disk.
	Token   string               `yaml:"token,omitempty" json:"token,omitempty" jsonschema:"title=Token,description=Bearer token for the sandbox backend"`
	Format  format.LocaleConfig  `yaml:"format" json:"format" jsonschema:"title=Format,description=Locale and currency used for display"`
	History HistoryConfig        `yaml:"history" json:"history" jsonschema:"title=History"`
	Prices  PriceConfig          `yaml:"prices" json:"prices" jsonschema:"title=Prices,description=Where current prices come from"`
	Log     LogConfig            `yaml:"log" json:"log" jsonschema:"title=Log"`
}

// HistoryConfig configures history paging.
type HistoryConfig struct {
	PageLimit int `yaml:"pageLimit" json:"pageLimit" jsonschema:"title=Page Limit,description=Items per history page,minimum=1,maximum=100,default=20" validate:"gte=1,lte=100"`
}

// PriceConfig selects the price provider.
type PriceConfig struct {
	Provider pricefeed.ProviderType `yaml:"provider" json:"provider" jsonschema:"title=Provider,enum=static,enum=binance,enum=polygon,default=static" validate:"required,oneof=static binance polygon"`
	APIKey   string                 `yaml:"apiKey,omitempty" json:"apiKey,omitempty" jsonschema:"title=API Key,description=Polygon.io API key"`
	// Static holds fixed prices per symbol for the static provider.
	Static map[string]float64 `yaml:"static,omitempty" json:"static,omitempty" jsonschema:"title=Static Prices"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `yaml:"level" json:"level" jsonschema:"title=Level,enum=debug,enum=info,enum=warn,enum=error,default=info" validate:"required,oneof=debug info warn error"`
}

// Default returns the configuration used when no file or environment is set.
func Default() Config {
	return Config{
		Sandbox: sandbox.ClientConfig{
			BaseURL:    "http://localhost:3000",
			Timeout:    15 * time.Second,
			APIVersion: version.APIVersion,
		},
		Token:   "",
		Format:  format.DefaultConfig(),
		History: HistoryConfig{PageLimit: sandbox.DefaultHistoryLimit},
		Prices: PriceConfig{
			Provider: pricefeed.ProviderStatic,
			APIKey:   "",
			Static:   nil,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads the YAML file at path (optional) on top of the defaults, applies
// environment overrides and validates the result.
func Load(path string) (Config, error) {
	return LoadWithEnv(path, os.LookupEnv)
}

// LoadWithEnv is Load with a custom environment lookup.
func LoadWithEnv(path string, lookup func(string) (string, bool)) (Config, error) {
	config := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read config file %s", path)
		}

		if err := yaml.Unmarshal(data, &config); err != nil {
			return Config{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to parse config file %s", path)
		}
	}

	config.applyEnv(lookup)

	if err := config.Validate(); err != nil {
		return Config{}, err
	}

	return config, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	overrides := map[string]*string{
		EnvBaseURL:  &c.Sandbox.BaseURL,
		EnvToken:    &c.Token,
		EnvLocale:   &c.Format.Locale,
		EnvCurrency: &c.Format.Currency,
		EnvLogLevel: &c.Log.Level,
		EnvPolygon:  &c.Prices.APIKey,
	}

	for name, target := range overrides {
		if value, ok := lookup(name); ok && strings.TrimSpace(value) != "" {
			*target = strings.TrimSpace(value)
		}
	}
}

// Validate validates the Config struct.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid configuration", err)
	}

	if c.Prices.Provider == pricefeed.ProviderPolygon && c.Prices.APIKey == "" {
		return errors.Newf(errors.ErrCodeInvalidConfiguration, "polygon price provider requires %s or prices.apiKey", EnvPolygon)
	}

	return nil
}

// Schema returns the JSON schema of the config file.
func Schema() (string, error) {
	return utils.GetSchemaFromConfig(&Config{})
}

// Marshal renders c as YAML. The token is never written out.
func (c Config) Marshal() ([]byte, error) {
	c.Token = ""

	return yaml.Marshal(c)
}
