package config

import (
	"errors"
	"io/fs"
	"log"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Game     GameConfig     `mapstructure:"game"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release
}

type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Expire int    `mapstructure:"expire"` // hours
}

type GameConfig struct {
	// CardsFile overrides the embedded card catalog when set.
	CardsFile           string `mapstructure:"cardsFile"`
	DefaultTargetPoints int    `mapstructure:"defaultTargetPoints"`
	DefaultTargetWins   int    `mapstructure:"defaultTargetWins"`
	BotEnabled          bool   `mapstructure:"botEnabled"`
}

var GlobalConfig *Config

func LoadConfig(path string) {
	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")

	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("game.defaultTargetPoints", 30)
	viper.SetDefault("game.defaultTargetWins", 2)
	viper.SetDefault("game.botEnabled", true)

	if err := viper.ReadInConfig(); err != nil {
		// Missing file falls back to the defaults above; any other read
		// error (bad YAML, permissions) is fatal.
		if !errors.Is(err, fs.ErrNotExist) {
			log.Fatalf("Error reading config file, %s", err)
		}
		log.Printf("config file %s not found, using defaults", path)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		log.Fatalf("Unable to decode into struct, %v", err)
	}
	GlobalConfig = &cfg
}
