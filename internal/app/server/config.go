package server

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port          string
	AllowedOrigin string
}

// NewConfig reads an optional config.yaml, with environment variables
// (SERVER_PORT, SERVER_ALLOWEDORIGIN) taking precedence. The relay must
// come up with no config present, so a missing file is not an error.
func NewConfig() Config {
	viper.SetDefault("Server.Port", "3001")
	viper.SetDefault("Server.AllowedOrigin", "http://localhost:3000")

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs/server")
	viper.AddConfigPath(".")
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			panic(fmt.Errorf("fatal error config file: %s", err))
		}
	}

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	return Config{
		Port:          viper.GetString("Server.Port"),
		AllowedOrigin: viper.GetString("Server.AllowedOrigin"),
	}
}
