package myconfig

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// There is deliberately no default database-url: a missing one must fail startup.
const DefaultPort = 8080

type Config struct {
	Port               int    `yaml:"port"`
	DatabaseURL        string `yaml:"database_url"`
	GoogleCloudProject string `yaml:"google_cloud_project"`
}

func Default() Config {
	return Config{
		Port: DefaultPort,
	}
}

// Load starts from the defaults, overlays the yaml-file at path (when path is not empty)
// and finally the environment.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("error reading config %s: %w", path, err)
		}
		fromFile := Config{}
		err = yaml.Unmarshal(data, &fromFile)
		if err != nil {
			return Config{}, fmt.Errorf("error parsing config %s: %w", path, err)
		}
		cfg = merge(cfg, fromFile)
	}

	fromEnv, err := fromEnvironment()
	if err != nil {
		return Config{}, err
	}

	return merge(cfg, fromEnv), nil
}

func fromEnvironment() (Config, error) {
	cfg := Config{
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		GoogleCloudProject: os.Getenv("GOOGLE_CLOUD_PROJECT"),
	}
	if cfg.DatabaseURL == "" {
		// name used by earlier deployments
		cfg.DatabaseURL = os.Getenv("URL_MONGODB")
	}

	port := os.Getenv("PORT")
	if port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return Config{}, fmt.Errorf("invalid PORT '%s': %w", port, err)
		}
		cfg.Port = p
	}

	return cfg, nil
}

// merge overlays the non-zero values of override on base.
func merge(base, override Config) Config {
	result := base
	if override.Port != 0 {
		result.Port = override.Port
	}
	if override.DatabaseURL != "" {
		result.DatabaseURL = override.DatabaseURL
	}
	if override.GoogleCloudProject != "" {
		result.GoogleCloudProject = override.GoogleCloudProject
	}
	return result
}

// WithOverrides applies explicitly passed command-line values.
func (cfg Config) WithOverrides(port int, databaseURL string) Config {
	return merge(cfg, Config{Port: port, DatabaseURL: databaseURL})
}

func (cfg Config) Validate() error {
	if cfg.DatabaseURL == "" {
		return errors.New("missing database-url: set DATABASE_URL, --database-url or database_url in the config file")
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return fmt.Errorf("invalid port %d", cfg.Port)
	}
	return nil
}

// ResolvedDatabaseURL completes a bare "datastore://" with the google cloud project.
func (cfg Config) ResolvedDatabaseURL() string {
	if strings.TrimSuffix(cfg.DatabaseURL, "/") == "datastore:/" && cfg.GoogleCloudProject != "" {
		return "datastore://" + cfg.GoogleCloudProject
	}
	return cfg.DatabaseURL
}

func (cfg Config) Address() string {
	return fmt.Sprintf(":%d", cfg.Port)
}
