package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/openpass/internal/advisor"
	"github.com/dmitrijs2005/openpass/internal/dbx"
	"github.com/dmitrijs2005/openpass/internal/logging"
	"golang.org/x/crypto/bcrypt"
)

// Config holds runtime settings for the openpass CLI.
type Config struct {
	DBDriver   string        `mapstructure:"db_driver" yaml:"db_driver"`
	DBDSN      string        `mapstructure:"db_dsn" yaml:"db_dsn"`
	BcryptCost int           `mapstructure:"bcrypt_cost" yaml:"bcrypt_cost"`
	LogLevel   string        `mapstructure:"log_level" yaml:"log_level"`
	Wordlist   string        `mapstructure:"wordlist" yaml:"wordlist"`
	Advisor    AdvisorConfig `mapstructure:"advisor" yaml:"advisor"`
	Backup     BackupConfig  `mapstructure:"backup" yaml:"backup"`
}

// AdvisorConfig configures the password-strength advisor.
type AdvisorConfig struct {
	Enabled bool          `mapstructure:"enabled" yaml:"enabled"`
	BaseURL string        `mapstructure:"base_url" yaml:"base_url"`
	APIKey  string        `mapstructure:"api_key" yaml:"api_key"`
	Model   string        `mapstructure:"model" yaml:"model"`
	RPS     float64       `mapstructure:"rps" yaml:"rps"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// BackupConfig selects where encrypted backups go.
type BackupConfig struct {
	Target string   `mapstructure:"target" yaml:"target"`
	Dir    string   `mapstructure:"dir" yaml:"dir"`
	S3     S3Config `mapstructure:"s3" yaml:"s3"`
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket" yaml:"bucket"`
	Region    string `mapstructure:"region" yaml:"region"`
	Endpoint  string `mapstructure:"endpoint" yaml:"endpoint"`
	AccessKey string `mapstructure:"access_key" yaml:"access_key"`
	SecretKey string `mapstructure:"secret_key" yaml:"secret_key"`
}

const (
	BackupTargetFile = "file"
	BackupTargetS3   = "s3"
)

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DBDriver = string(dbx.DialectSQLite)
	c.DBDSN = "openpass.db"
	c.BcryptCost = 12
	c.LogLevel = "info"
	c.Wordlist = ""
	c.Advisor = AdvisorConfig{
		Enabled: false,
		BaseURL: advisor.DefaultBaseURL,
		Model:   advisor.DefaultModel,
		RPS:     1,
		Timeout: advisor.DefaultTimeout,
	}
	c.Backup = BackupConfig{
		Target: BackupTargetFile,
		Dir:    "backups",
		S3:     S3Config{Region: "us-east-1"},
	}
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	if _, err := dbx.ParseDialect(c.DBDriver); err != nil {
		return err
	}
	if c.DBDSN == "" {
		return fmt.Errorf("db_dsn is required")
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("bcrypt_cost %d out of range [%d, %d]", c.BcryptCost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch strings.ToLower(c.Backup.Target) {
	case BackupTargetFile, BackupTargetS3:
	default:
		return fmt.Errorf("unknown backup target %q", c.Backup.Target)
	}
	if c.Advisor.Enabled && c.Advisor.APIKey == "" {
		return fmt.Errorf("advisor is enabled but advisor.api_key is empty")
	}
	return nil
}
