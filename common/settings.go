package common

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/birmacher/ai-commit-generator/llm"
	"github.com/birmacher/ai-commit-generator/logger"
	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	DefaultAddr         = ":8080"
	DefaultAPITimeout   = 60
	DefaultMaxBodyBytes = 5 << 20

	// EnvPrefix prefixes every environment override, e.g. COMMITGEN_PROVIDER
	EnvPrefix = "COMMITGEN"
)

var settingsFilenames = []string{"commitgen.yml", "commitgen.yaml"}

type Server struct {
	Addr         string `yaml:"addr"`
	MaxBodyBytes int64  `yaml:"max_body_bytes"`
	ReadTimeout  int    `yaml:"read_timeout"`
	WriteTimeout int    `yaml:"write_timeout"`
}

type Settings struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
	// APITimeout bounds one provider call, in seconds
	APITimeout int    `yaml:"api_timeout"`
	Server     Server `yaml:"server"`

	// APIKey is never read from the settings file
	APIKey string `yaml:"-"`
}

func WithDefaultSettings() Settings {
	return Settings{
		Provider:   llm.ProviderGemini,
		APITimeout: DefaultAPITimeout,
		Server: Server{
			Addr:         DefaultAddr,
			MaxBodyBytes: DefaultMaxBodyBytes,
			ReadTimeout:  30,
		},
	}
}

// WithYamlFile returns the defaults overlaid with the first commitgen.yml
// found in the working directory or below it.
func WithYamlFile() Settings {
	settings := WithDefaultSettings()

	var filePath string
	for _, name := range settingsFilenames {
		if _, err := os.Stat(name); err == nil {
			filePath = name
			break
		}
	}

	if filePath == "" {
		_ = filepath.Walk(".", func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if filePath != "" {
				return filepath.SkipDir
			}
			for _, name := range settingsFilenames {
				if !info.IsDir() && info.Name() == name {
					filePath = path
					return filepath.SkipDir
				}
			}
			return nil
		})
	}

	if filePath == "" {
		logger.Debugf("No settings file found, using default settings")
		return settings
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		logger.Infof("Failed to read settings file %s: %v", filePath, err)
		return settings
	}
	if err := yaml.Unmarshal(data, &settings); err != nil {
		logger.Infof("Failed to parse YAML file %s: %v", filePath, err)
		return WithDefaultSettings()
	}
	logger.Infof("Using settings from YAML file: %s", filePath)
	return settings
}

// WithSettingsFile reads an explicit settings file. Unlike WithYamlFile a
// missing or invalid file is an error.
func WithSettingsFile(path string) (Settings, error) {
	settings := WithDefaultSettings()

	data, err := os.ReadFile(path)
	if err != nil {
		return settings, errors.Wrapf(err, "read settings file %s", path)
	}
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return settings, errors.Wrapf(err, "parse settings file %s", path)
	}
	return settings, nil
}

// LoadSettings layers defaults, the settings file, .env files and
// COMMITGEN_* environment variables, then reads the provider's API key once.
func LoadSettings(path string) (Settings, error) {
	var settings Settings
	if path == "" {
		settings = WithYamlFile()
	} else {
		var err error
		if settings, err = WithSettingsFile(path); err != nil {
			return settings, err
		}
	}

	loadDotEnv()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if v.IsSet("provider") {
		settings.Provider = strings.ToLower(strings.TrimSpace(v.GetString("provider")))
	}
	if v.IsSet("model") {
		settings.Model = v.GetString("model")
	}
	if v.IsSet("api_timeout") {
		settings.APITimeout = v.GetInt("api_timeout")
	}
	if v.IsSet("addr") {
		settings.Server.Addr = v.GetString("addr")
	}
	if v.IsSet("max_body_bytes") {
		settings.Server.MaxBodyBytes = v.GetInt64("max_body_bytes")
	}

	if err := v.BindEnv("api_key", settings.APIKeyEnv()); err != nil {
		return settings, errors.Wrap(err, "bind api key variable")
	}
	settings.APIKey = strings.TrimSpace(v.GetString("api_key"))

	return settings, settings.Validate()
}

// loadDotEnv loads .env.local then .env; variables already set in the
// environment are never overridden.
func loadDotEnv() {
	for _, name := range []string{".env.local", ".env"} {
		if err := godotenv.Load(name); err != nil {
			if !os.IsNotExist(err) {
				logger.Warnf("Failed to load %s: %v", name, err)
			}
			continue
		}
		logger.Debugf("Loaded environment from %s", name)
	}
}

// Validate rejects settings the server cannot start with
func (s Settings) Validate() error {
	switch s.Provider {
	case llm.ProviderGemini, llm.ProviderOpenAI, llm.ProviderAnthropic:
	default:
		return errors.Newf("unsupported provider: %q", s.Provider)
	}
	if s.APITimeout <= 0 {
		return errors.Newf("api_timeout must be positive, got %d", s.APITimeout)
	}
	return nil
}

// APIKeyEnv is the environment variable holding the credential for the provider
func (s Settings) APIKeyEnv() string {
	return llm.APIKeyEnv(s.Provider)
}

// Timeout is the bound on a single provider call
func (s Settings) Timeout() time.Duration {
	return time.Duration(s.APITimeout) * time.Second
}

// WriteTimeout leaves room for the provider call to finish
func (s Settings) WriteTimeout() time.Duration {
	if s.Server.WriteTimeout > 0 {
		return time.Duration(s.Server.WriteTimeout) * time.Second
	}
	return s.Timeout() + 10*time.Second
}
