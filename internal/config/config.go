package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Database     Database     `yaml:"database"`
	Dashboard    Dashboard    `yaml:"dashboard"`
	Segmentation Segmentation `yaml:"segmentation"`
	Server       Server       `yaml:"server"`
	Log          Log          `yaml:"log"`
}

type Database struct {
	Driver   string `yaml:"driver"`
	Postgres string `yaml:"postgres"`
	MySQL    string `yaml:"mysql"`
	Mongo    string `yaml:"mongo"`
	SQLite   string `yaml:"sqlite"`
	MongoDB  string `yaml:"mongo_database"`
}

type Dashboard struct {
	// ReturnStatuses lists the order statuses counted as returned.
	// There is no refund table, so status is the only proxy available.
	ReturnStatuses    []string `yaml:"return_statuses"`
	ChurnWindowMonths int      `yaml:"churn_window_months"`
	TopN              int      `yaml:"top_n"`
}

type Segmentation struct {
	K                int     `yaml:"k"`
	Seed             int64   `yaml:"seed"`
	MaxIterations    int     `yaml:"max_iterations"`
	Restarts         int     `yaml:"restarts"`
	Tolerance        float64 `yaml:"tolerance"`
	SilhouetteSample int     `yaml:"silhouette_sample"`
}

type Server struct {
	Addr string `yaml:"addr"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

var drivers = map[string]bool{"postgres": true, "mysql": true, "mongo": true, "sqlite": true}

// Default returns the configuration used for any key the file leaves out.
func Default() *Config {
	return &Config{
		Database: Database{
			Driver:  "postgres",
			MongoDB: "ecommerce",
		},
		Dashboard: Dashboard{
			ReturnStatuses:    []string{"canceled"},
			ChurnWindowMonths: 6,
			TopN:              10,
		},
		Segmentation: Segmentation{
			K:                3,
			Seed:             42,
			MaxIterations:    300,
			Restarts:         10,
			Tolerance:        1e-4,
			SilhouetteSample: 2000,
		},
		Server: Server{Addr: ":8080"},
		Log:    Log{Level: "info", Format: "text"},
	}
}

func LoadConfig(path string) (*Config, error) {
	config := Default()

	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	err = yaml.Unmarshal(file, config)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	config.applyEnv()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) applyEnv() {
	if v, ok := os.LookupEnv("INSIGHTS_DB_DRIVER"); ok {
		c.Database.Driver = v
	}
	if v, ok := os.LookupEnv("DATABASE_URL"); ok {
		c.Database.SetDSN(c.Database.Driver, v)
	}
	if v, ok := os.LookupEnv("INSIGHTS_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := os.LookupEnv("INSIGHTS_LOG_LEVEL"); ok {
		c.Log.Level = v
	}
}

func (c *Config) Validate() error {
	if !drivers[c.Database.Driver] {
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Dashboard.ChurnWindowMonths <= 0 {
		return fmt.Errorf("churn_window_months must be positive, got %d", c.Dashboard.ChurnWindowMonths)
	}
	if c.Dashboard.TopN <= 0 {
		return fmt.Errorf("top_n must be positive, got %d", c.Dashboard.TopN)
	}
	if c.Segmentation.K < 1 {
		return fmt.Errorf("segmentation k must be at least 1, got %d", c.Segmentation.K)
	}
	if c.Segmentation.MaxIterations < 1 || c.Segmentation.Restarts < 1 {
		return fmt.Errorf("segmentation max_iterations and restarts must be at least 1")
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("unsupported log format %q", c.Log.Format)
	}
	return nil
}

// DSN returns the connection string configured for driver.
func (d Database) DSN(driver string) string {
	switch driver {
	case "postgres":
		return d.Postgres
	case "mysql":
		return d.MySQL
	case "mongo":
		return d.Mongo
	case "sqlite":
		return d.SQLite
	}
	return ""
}

func (d *Database) SetDSN(driver, dsn string) {
	switch driver {
	case "postgres":
		d.Postgres = dsn
	case "mysql":
		d.MySQL = dsn
	case "mongo":
		d.Mongo = dsn
	case "sqlite":
		d.SQLite = dsn
	}
}
