package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

// PostgresConfig holds the connection settings for one of the two
// independently provisioned stores (users vs. points data).
type PostgresConfig struct {
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	DB              string        `mapstructure:"db"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"maxConns"`
	MaxConnIdleTime time.Duration `mapstructure:"maxConnIdleTime"`
}

type JWTConfig struct {
	SecretKey     string `mapstructure:"secretKey"`
	Issuer        string `mapstructure:"issuer"`
	ExpireMinutes int    `mapstructure:"expireMinutes"`
}

type Config struct {
	Mode         string `mapstructure:"mode"`
	Repositories struct {
		UsersPostgres  PostgresConfig `mapstructure:"usersPostgres"`
		PointsPostgres PostgresConfig `mapstructure:"pointsPostgres"`
	} `mapstructure:"repositories"`
	JWT    JWTConfig `mapstructure:"jwt"`
	Server struct {
		HTTPPort    string        `mapstructure:"HTTPPort"`
		MetricsPort string        `mapstructure:"metricsPort"`
		Timeout     time.Duration `mapstructure:"HTTPTimeout"`
	} `mapstructure:"server"`
}

// InitConfig loads the file-based config, falling back to the embedded copy.
// The result is built once in main and passed explicitly to every component.
func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	v.SetEnvPrefix("PERKHUB")
	v.AutomaticEnv()

	err := v.ReadInConfig()
	if err != nil {
		fmt.Printf("Warning: Failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %s", err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %s", err)
	}
	return config, nil
}
