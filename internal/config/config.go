package config

import (
	"errors"
	"fmt"
	"github.com/ilyakaznacheev/cleanenv"
	"time"
)

var (
	ErrConfigNotLoaded = errors.New("config not loaded")
)

type Environment string

const (
	Production  Environment = "prod"
	Development Environment = "dev"
)

func (e *Environment) SetValue(s string) error {
	*e = Environment(s)
	if *e != Production && *e != Development {
		return configNotLoadedErr(`only "prod" and "dev" environments are allowed`)
	}
	return nil
}

// Timezone names the IANA zone that decides where a calendar day starts.
type Timezone string

func (tz *Timezone) SetValue(s string) error {
	if _, err := time.LoadLocation(s); err != nil {
		return configNotLoadedErr("unknown timezone %q: %w", s, err)
	}
	*tz = Timezone(s)
	return nil
}

func (tz Timezone) Location() *time.Location {
	loc, err := time.LoadLocation(string(tz))
	if err != nil {
		return time.UTC
	}
	return loc
}

type Config struct {
	App struct {
		Env      Environment `yaml:"env" env:"ENV" env-required:""`
		Timezone Timezone    `yaml:"timezone" env:"TIMEZONE" env-default:"UTC"`
	} `yaml:"app" env-prefix:"APP_" env-required:""`

	Server struct {
		Host              string        `yaml:"host" env:"HOST" env-default:"localhost"`
		Port              int           `yaml:"port" env:"PORT" env-default:"8080"`
		ReadTimeout       time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT" env-default:"10s"`
		ReadHeaderTimeout time.Duration `yaml:"read_header_timeout" env:"READ_HEADER_TIMEOUT" env-default:"5s"`
		WriteTimeout      time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT" env-default:"10s"`
		IdleTimeout       time.Duration `yaml:"idle_timeout" env:"IDLE_TIMEOUT" env-default:"10s"`
		ShutdownTimeout   time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT" env-default:"5s"`
	} `yaml:"server" env-prefix:"SERVER_"`

	DB struct {
		DSN          string        `yaml:"dsn" env:"DSN" env-required:""`
		Migrate      bool          `yaml:"migrate" env:"MIGRATE" env-default:"true"`
		MaxOpenConns int           `yaml:"max_open_conns" env:"MAX_OPEN_CONNS" env-default:"20"`
		MaxIdleConns int           `yaml:"max_idle_conns" env:"MAX_IDLE_CONNS" env-default:"5"`
		ConnMaxIdle  time.Duration `yaml:"conn_max_idle" env:"CONN_MAX_IDLE" env-default:"5m"`
	} `yaml:"db" env-prefix:"DB_" env-required:""`

	JWT struct {
		AccessTokenTTL  time.Duration `yaml:"access_token_ttl" env:"ACCESS_TOKEN_TTL" env-default:"2h"`
		RefreshTokenTTL time.Duration `yaml:"refresh_token_ttl" env:"REFRESH_TOKEN_TTL" env-default:"720h"`
		Secret          string        `yaml:"secret" env:"SECRET" env-required:""`
		BcryptCost      int           `yaml:"bcrypt_cost" env:"BCRYPT_COST" env-default:"10"`
	} `yaml:"jwt" env-prefix:"JWT_" env-required:""`
}

func Load(filePath string) (*Config, error) {
	cfg := &Config{}
	if err := cleanenv.ReadConfig(filePath, cfg); err != nil {
		return nil, configNotLoadedErr("config not loaded: %w", err)
	}

	// Setters only run for values coming from the environment, YAML values
	// have to be checked again.
	if err := cfg.App.Env.SetValue(string(cfg.App.Env)); err != nil {
		return nil, err
	}
	if err := cfg.App.Timezone.SetValue(string(cfg.App.Timezone)); err != nil {
		return nil, err
	}

	return cfg, nil
}

func MustLoad(filePath string) *Config {
	cfg, err := Load(filePath)
	if err != nil {
		panic(err)
	}
	return cfg
}

func configNotLoadedErr(format string, args ...any) error {
	return errors.Join(fmt.Errorf(format, args...), ErrConfigNotLoaded)
}
