package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// LoadConfig reads configuration from a yaml file and environment variables
// prefixed with IDP_. A .env file, when present, is loaded first so local
// development can override without exporting.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	setDefaults()

	env := strings.ToLower(os.Getenv("APP_ENV"))
	if env == "" {
		env = "development"
	}

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.SetConfigName(fmt.Sprintf("config.%s", env))
		viper.SetConfigType("yaml")
		viper.AddConfigPath("./configs")
		viper.AddConfigPath(".")
		viper.AddConfigPath("/etc/sso-idp")
	}

	viper.SetEnvPrefix("IDP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// Missing file is fine, environment variables take over.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if config.JWT.Secret == "" {
		return nil, fmt.Errorf("jwt.secret is required")
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 10*time.Second)
	viper.SetDefault("server.write_timeout", 10*time.Second)
	viper.SetDefault("server.shutdown_timeout", 15*time.Second)

	viper.SetDefault("database.max_conns", 10)
	viper.SetDefault("database.min_conns", 2)
	viper.SetDefault("database.max_conn_lifetime", time.Hour)
	viper.SetDefault("database.migrations_path", "migrations")
	viper.SetDefault("database.auto_migrate", true)

	viper.SetDefault("redis.addr", "localhost:6379")

	viper.SetDefault("kafka.enabled", false)
	viper.SetDefault("kafka.topic", "idp.events")

	viper.SetDefault("jwt.issuer", "sso-idp")
	viper.SetDefault("jwt.temp_token_ttl", 10*time.Minute)
	viper.SetDefault("jwt.session_token_ttl", 24*time.Hour)

	viper.SetDefault("security.password_hash.memory", 65536)
	viper.SetDefault("security.password_hash.iterations", 3)
	viper.SetDefault("security.password_hash.parallelism", 2)
	viper.SetDefault("security.password_hash.salt_length", 16)
	viper.SetDefault("security.password_hash.key_length", 32)
	viper.SetDefault("security.auth_code_ttl", 10*time.Minute)

	viper.SetDefault("hydra.timeout", 5*time.Second)
	viper.SetDefault("hydra.remember_login", true)
	viper.SetDefault("hydra.remember_login_for", 3600)
	viper.SetDefault("hydra.remember_consent", true)
	viper.SetDefault("hydra.basic_scopes", []string{"openid", "profile"})

	viper.SetDefault("signup.ticket_ttl", 24*time.Hour)
	viper.SetDefault("signup.draft_ttl", 24*time.Hour)

	viper.SetDefault("geocoder.timeout", 3*time.Second)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")

	viper.SetDefault("metrics.enabled", true)
	viper.SetDefault("metrics.path", "/metrics")
}
