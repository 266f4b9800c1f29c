package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/openpass/internal/filex"
	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	envPrefix = "openpass"
	fileName  = "openpass"

	FlagConfig   = "config"
	FlagEnvFile  = "env-file"
	FlagDBDriver = "db-driver"
	FlagDBDSN    = "db-dsn"
	FlagLogLevel = "log-level"
)

// flagKeys maps command-line flags to config keys.
var flagKeys = map[string]string{
	FlagDBDriver: "db_driver",
	FlagDBDSN:    "db_dsn",
	FlagLogLevel: "log_level",
}

// RegisterFlags adds the configuration flags to cmd as persistent flags.
func RegisterFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.String(FlagConfig, "", "config file (default openpass.yaml in the user config dir or .)")
	f.String(FlagEnvFile, ".env", "dotenv file with OPENPASS_* variables")
	f.String(FlagDBDriver, "", "database driver (sqlite, postgres)")
	f.String(FlagDBDSN, "", "database DSN or SQLite file path")
	f.String(FlagLogLevel, "", "log level (debug, info, warn, error)")
}

// DefaultPath returns the per-user config file location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("could not get user config directory: %w", err)
	}
	return filepath.Join(dir, "openpass", fileName+".yaml"), nil
}

// defaults flattens LoadDefaults into viper keys.
func defaults() map[string]any {
	var c Config
	c.LoadDefaults()
	return map[string]any{
		"db_driver":            c.DBDriver,
		"db_dsn":               c.DBDSN,
		"bcrypt_cost":          c.BcryptCost,
		"log_level":            c.LogLevel,
		"wordlist":             c.Wordlist,
		"advisor.enabled":      c.Advisor.Enabled,
		"advisor.base_url":     c.Advisor.BaseURL,
		"advisor.api_key":      c.Advisor.APIKey,
		"advisor.model":        c.Advisor.Model,
		"advisor.rps":          c.Advisor.RPS,
		"advisor.timeout":      c.Advisor.Timeout,
		"backup.target":        c.Backup.Target,
		"backup.dir":           c.Backup.Dir,
		"backup.s3.bucket":     c.Backup.S3.Bucket,
		"backup.s3.region":     c.Backup.S3.Region,
		"backup.s3.endpoint":   c.Backup.S3.Endpoint,
		"backup.s3.access_key": c.Backup.S3.AccessKey,
		"backup.s3.secret_key": c.Backup.S3.SecretKey,
	}
}

// Load builds a Config from every source in precedence order and validates
// it. cmd may be nil, in which case flags are skipped.
func Load(cmd *cobra.Command) (*Config, error) {
	var configFile, envFile string
	if cmd != nil {
		configFile, _ = cmd.Flags().GetString(FlagConfig)
		envFile, _ = cmd.Flags().GetString(FlagEnvFile)
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	v := viper.New()
	for key, value := range defaults() {
		v.SetDefault(key, value)
	}

	v.SetConfigName(fileName)
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	}
	if p, err := DefaultPath(); err == nil {
		v.AddConfigPath(filepath.Dir(p))
	}
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cmd != nil {
		for flag, key := range flagKeys {
			if f := cmd.Flags().Lookup(flag); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, err
				}
			}
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if c.Advisor.APIKey == "" {
		c.Advisor.APIKey = os.Getenv("GROQ_API_KEY")
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// WriteFile writes c as YAML to path with mode 0600, creating the directory.
func WriteFile(c *Config, path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	if err := filex.WritePrivate(path, data); err != nil {
		return fmt.Errorf("could not write config: %w", err)
	}
	return nil
}
