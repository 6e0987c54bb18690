package config

import (
	"fmt"
	"net/url"
	"strconv"
)

const (
	MongoDriver  = "mongo"
	SQLiteDriver = "sqlite"
)

type DbConfig struct {
	// Driver selects the storage backend, "mongo" or "sqlite". Defaults to mongo.
	Driver     string `mapstructure:"driver"`
	DbName     string `mapstructure:"db-name"`
	Address    string `mapstructure:"address"`
	SqlitePath string `mapstructure:"sqlite-path"`
}

func (cfg *DbConfig) Validate() error {
	switch cfg.Driver {
	case "", MongoDriver:
		return cfg.validateMongo()
	case SQLiteDriver:
		if cfg.SqlitePath == "" {
			return fmt.Errorf("missing sqlite path")
		}
		return nil
	default:
		return fmt.Errorf("unsupported db driver: %s", cfg.Driver)
	}
}

func (cfg *DbConfig) IsSQLite() bool {
	return cfg.Driver == SQLiteDriver
}

func (cfg *DbConfig) validateMongo() error {
	if cfg.Address == "" {
		return fmt.Errorf("missing db address")
	}

	if cfg.DbName == "" {
		return fmt.Errorf("missing db name")
	}

	u, err := url.Parse(cfg.Address)
	if err != nil {
		return fmt.Errorf("invalid db address: %w", err)
	}

	if u.Scheme != "mongodb" {
		return fmt.Errorf("unsupported db scheme: %s", u.Scheme)
	}

	if u.Host == "" {
		return fmt.Errorf("missing host in db address")
	}

	port := u.Port()
	if port == "" {
		return fmt.Errorf("missing port in db address")
	}

	portNum, err := strconv.Atoi(port)
	if err != nil {
		return fmt.Errorf("invalid port in db address: %w", err)
	}

	if portNum < 1024 || portNum > 65535 {
		return fmt.Errorf("port number must be between 1024 and 65535 (inclusive)")
	}

	return nil
}
