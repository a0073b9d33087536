package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config is the per-platform report configuration, one section per platform
// as laid out in config.json.
type Config struct {
	AWS AWS `mapstructure:"aws"`
	GCP GCP `mapstructure:"gcp"`
}

type AWS struct {
	AccessKey    string `mapstructure:"access_key"`
	SecretKey    string `mapstructure:"secret_key"`
	Bucket       string `mapstructure:"bucket"`
	ReportName   string `mapstructure:"report_name"`
	ReportPrefix string `mapstructure:"prefix"`

	// Accounts maps every known account id to a display name.
	Accounts map[string]string `mapstructure:"accounts"`

	From             string   `mapstructure:"from"`
	Recipients       []string `mapstructure:"recipients"`
	WarningThreshold int64    `mapstructure:"warning_threshold"`

	Compliance Compliance `mapstructure:"compliance"`
}

// Compliance scopes the tagging audit: which accounts are subject to policy,
// the role to assume in each, and the regions to query.
type Compliance struct {
	Accounts map[string]string `mapstructure:"accounts"`
	RoleARNs map[string]string `mapstructure:"role_arns"`
	Regions  []string          `mapstructure:"regions"`
	Rule     string            `mapstructure:"rule"`
}

type GCP struct {
	// WarehouseProfile names the DSN profile for the billing export mirror.
	WarehouseProfile string `mapstructure:"warehouse_profile"`
	Table            string `mapstructure:"table"`

	From             string   `mapstructure:"from"`
	Recipients       []string `mapstructure:"recipients"`
	WarningThreshold int64    `mapstructure:"warning_threshold"`
}

const defaultWarningThreshold = 200

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.AWS.WarningThreshold == 0 {
		cfg.AWS.WarningThreshold = defaultWarningThreshold
	}
	if cfg.GCP.WarningThreshold == 0 {
		cfg.GCP.WarningThreshold = defaultWarningThreshold
	}
	return &cfg, nil
}

// ValidateAWS checks the fields the AWS pipeline depends on.
func (c *Config) ValidateAWS() error {
	switch {
	case c.AWS.Bucket == "":
		return fmt.Errorf("aws.bucket is required")
	case c.AWS.ReportName == "":
		return fmt.Errorf("aws.report_name is required")
	case c.AWS.From == "":
		return fmt.Errorf("aws.from is required")
	case len(c.AWS.Recipients) == 0:
		return fmt.Errorf("aws.recipients is required")
	}
	return nil
}

// ValidateGCP checks the fields the GCP pipeline depends on.
func (c *Config) ValidateGCP() error {
	switch {
	case c.GCP.WarehouseProfile == "":
		return fmt.Errorf("gcp.warehouse_profile is required")
	case c.GCP.Table == "":
		return fmt.Errorf("gcp.table is required")
	case c.GCP.From == "":
		return fmt.Errorf("gcp.from is required")
	case len(c.GCP.Recipients) == 0:
		return fmt.Errorf("gcp.recipients is required")
	}
	return nil
}
