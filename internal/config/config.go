package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/modelcat/modelcat/internal/catalog"
)

type Config struct {
	Server    ServerConfig              `mapstructure:"server"`
	Catalog   CatalogConfig             `mapstructure:"catalog"`
	Providers map[string]ProviderConfig `mapstructure:"providers"`
	Logging   LoggingConfig             `mapstructure:"logging"`
	CORS      CORSConfig                `mapstructure:"cors"`
}

type ServerConfig struct {
	Port             int           `mapstructure:"port"`
	MetricsPort      int           `mapstructure:"metrics_port"`
	ReadTimeout      time.Duration `mapstructure:"read_timeout"`
	WriteTimeout     time.Duration `mapstructure:"write_timeout"`
	IdleTimeout      time.Duration `mapstructure:"idle_timeout"`
	GracefulShutdown time.Duration `mapstructure:"graceful_shutdown"`
}

type CatalogConfig struct {
	Mode           string `mapstructure:"mode"`
	GatewayURL     string `mapstructure:"gateway_url"`
	AccessPassword string `mapstructure:"access_password"`
}

// ProviderConfig holds one provider block. APIKey may carry several
// comma-separated keys forming a rotation pool.
type ProviderConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if configPath != "" {
		v.AddConfigPath(configPath)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/modelcat")
	}

	setDefaults(v)

	v.AutomaticEnv()
	bindEnvVars(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.metrics_port", 9090)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "300s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.graceful_shutdown", "30s")

	v.SetDefault("catalog.mode", "local")
	v.SetDefault("catalog.gateway_url", "http://localhost:8080")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output_path", "")

	v.SetDefault("cors.allow_credentials", true)
	v.SetDefault("cors.max_age", 86400)
}

func bindEnvVars(v *viper.Viper) {
	_ = v.BindEnv("server.port", "SERVER_PORT")
	_ = v.BindEnv("server.metrics_port", "METRICS_PORT")

	_ = v.BindEnv("catalog.mode", "MODELCAT_MODE")
	_ = v.BindEnv("catalog.gateway_url", "MODELCAT_GATEWAY_URL")
	_ = v.BindEnv("catalog.access_password", "MODELCAT_ACCESS_PASSWORD")

	_ = v.BindEnv("providers.google.api_key", "GOOGLE_API_KEY")
	_ = v.BindEnv("providers.openrouter.api_key", "OPENROUTER_API_KEY")
	_ = v.BindEnv("providers.openai.api_key", "OPENAI_API_KEY")
	_ = v.BindEnv("providers.anthropic.api_key", "ANTHROPIC_API_KEY")
	_ = v.BindEnv("providers.deepseek.api_key", "DEEPSEEK_API_KEY")
	_ = v.BindEnv("providers.xai.api_key", "XAI_API_KEY")
	_ = v.BindEnv("providers.openaicompatible.api_key", "OPENAI_COMPATIBLE_API_KEY")
	_ = v.BindEnv("providers.openaicompatible.base_url", "OPENAI_COMPATIBLE_BASE_URL")
	_ = v.BindEnv("providers.ollama.base_url", "OLLAMA_BASE_URL")

	_ = v.BindEnv("logging.level", "LOG_LEVEL")
	_ = v.BindEnv("logging.format", "LOG_FORMAT")

	_ = v.BindEnv("cors.allowed_origins", "CORS_ALLOWED_ORIGINS")
}

// CatalogSettings converts the loaded configuration into the explicit
// settings snapshot the catalog core consumes.
func (c *Config) CatalogSettings() catalog.Settings {
	providers := make(map[catalog.Provider]catalog.ProviderSettings, len(c.Providers))
	for name, pc := range c.Providers {
		p, ok := catalog.ParseProvider(name)
		if !ok {
			continue
		}
		providers[p] = catalog.ProviderSettings{
			APIKey:  pc.APIKey,
			BaseURL: pc.BaseURL,
		}
	}

	mode := catalog.ModeLocal
	if c.Catalog.Mode == string(catalog.ModeProxy) {
		mode = catalog.ModeProxy
	}

	return catalog.Settings{
		Mode:           mode,
		GatewayURL:     c.Catalog.GatewayURL,
		AccessPassword: c.Catalog.AccessPassword,
		Providers:      providers,
	}
}
