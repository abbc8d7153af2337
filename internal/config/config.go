package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Snowflake SnowflakeConfig `yaml:"snowflake"`
	Panel     PanelConfig     `yaml:"panel"`
	Archive   ArchiveConfig   `yaml:"archive"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// GetHost returns the bind host, defaulting to localhost
func (s ServerConfig) GetHost() string {
	if s.Host == "" {
		return "localhost"
	}
	return s.Host
}

// SnowflakeConfig holds warehouse connection settings
type SnowflakeConfig struct {
	Account   string `yaml:"account"`
	User      string `yaml:"user"`
	Password  string `yaml:"password"`
	Database  string `yaml:"database"`
	Schema    string `yaml:"schema"`
	Warehouse string `yaml:"warehouse"`
	Role      string `yaml:"role"`
}

// PanelConfig holds the warehouse object names and panel behavior knobs.
// Table names are identifiers, not user input; they come from config only.
type PanelConfig struct {
	FactTable       string `yaml:"fact_table"`
	DimPessoa       string `yaml:"dim_pessoa"`
	DimCurso        string `yaml:"dim_curso"`
	DimPolo         string `yaml:"dim_polo"`
	DimConsultor    string `yaml:"dim_consultor"`
	DimStatus       string `yaml:"dim_status"`
	DateField       string `yaml:"date_field"`
	StagingTable    string `yaml:"staging_table"`
	PipelineProc    string `yaml:"pipeline_proc"`
	OptionsLimit    int    `yaml:"options_limit"`
	UploadChunkSize int    `yaml:"upload_chunk_size"`
	MaxUploadMB     int    `yaml:"max_upload_mb"`
}

// ArchiveConfig holds optional S3 archival of raw upload files
type ArchiveConfig struct {
	Enabled  bool   `yaml:"enabled"`
	S3Bucket string `yaml:"s3_bucket"`
	S3Region string `yaml:"s3_region"`
	Prefix   string `yaml:"prefix"`
}

// Load reads configuration from a YAML file and applies defaults
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Panel.FactTable == "" {
		cfg.Panel.FactTable = "fato_leads"
	}
	if cfg.Panel.DimPessoa == "" {
		cfg.Panel.DimPessoa = "dim_pessoa"
	}
	if cfg.Panel.DimCurso == "" {
		cfg.Panel.DimCurso = "dim_curso"
	}
	if cfg.Panel.DimPolo == "" {
		cfg.Panel.DimPolo = "dim_polo"
	}
	if cfg.Panel.DimConsultor == "" {
		cfg.Panel.DimConsultor = "dim_consultor"
	}
	if cfg.Panel.DimStatus == "" {
		cfg.Panel.DimStatus = "dim_status"
	}
	if cfg.Panel.DateField == "" {
		cfg.Panel.DateField = "data_inscricao"
	}
	if cfg.Panel.StagingTable == "" {
		cfg.Panel.StagingTable = "stg_leads_upload"
	}
	if cfg.Panel.PipelineProc == "" {
		cfg.Panel.PipelineProc = "sp_run_pipeline"
	}
	if cfg.Panel.OptionsLimit == 0 {
		cfg.Panel.OptionsLimit = 200000
	}
	if cfg.Panel.UploadChunkSize == 0 {
		cfg.Panel.UploadChunkSize = 20000
	}
	if cfg.Panel.MaxUploadMB == 0 {
		cfg.Panel.MaxUploadMB = 25
	}
	if cfg.Archive.S3Region == "" {
		cfg.Archive.S3Region = "us-east-1"
	}
	if cfg.Archive.Prefix == "" {
		cfg.Archive.Prefix = "uploads"
	}
}

// LoadFromEnv loads config from a YAML file, then overrides with
// environment variables. A missing config file is not an error: env
// vars alone can carry a full configuration in container deployments.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		cfg = &Config{}
		applyDefaults(cfg)
	}

	if v := os.Getenv("PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		cfg.Server.Port = p
	}
	if v := os.Getenv("SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}

	if v := os.Getenv("SNOWFLAKE_ACCOUNT"); v != "" {
		cfg.Snowflake.Account = v
	}
	if v := os.Getenv("SNOWFLAKE_USER"); v != "" {
		cfg.Snowflake.User = v
	}
	if v := os.Getenv("SNOWFLAKE_PASSWORD"); v != "" {
		cfg.Snowflake.Password = v
	}
	if v := os.Getenv("SNOWFLAKE_DATABASE"); v != "" {
		cfg.Snowflake.Database = v
	}
	if v := os.Getenv("SNOWFLAKE_SCHEMA"); v != "" {
		cfg.Snowflake.Schema = v
	}
	if v := os.Getenv("SNOWFLAKE_WAREHOUSE"); v != "" {
		cfg.Snowflake.Warehouse = v
	}
	if v := os.Getenv("SNOWFLAKE_ROLE"); v != "" {
		cfg.Snowflake.Role = v
	}

	if v := os.Getenv("PANEL_FACT_TABLE"); v != "" {
		cfg.Panel.FactTable = v
	}
	if v := os.Getenv("PANEL_DATE_FIELD"); v != "" {
		cfg.Panel.DateField = v
	}
	if v := os.Getenv("PANEL_STAGING_TABLE"); v != "" {
		cfg.Panel.StagingTable = v
	}
	if v := os.Getenv("PANEL_PIPELINE_PROC"); v != "" {
		cfg.Panel.PipelineProc = v
	}
	if v := os.Getenv("PANEL_OPTIONS_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Panel.OptionsLimit = n
		}
	}
	if v := os.Getenv("PANEL_UPLOAD_CHUNKSIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Panel.UploadChunkSize = n
		}
	}

	if v := os.Getenv("ARCHIVE_S3_BUCKET"); v != "" {
		cfg.Archive.S3Bucket = v
		cfg.Archive.Enabled = true
	}
	if v := os.Getenv("ARCHIVE_S3_REGION"); v != "" {
		cfg.Archive.S3Region = v
	}

	return cfg, nil
}

// Validate checks that the warehouse connection settings are present
func (c *Config) Validate() error {
	if c.Snowflake.Account == "" || c.Snowflake.User == "" {
		return fmt.Errorf("missing snowflake credentials: account and user are required")
	}
	if c.Snowflake.Database == "" || c.Snowflake.Schema == "" {
		return fmt.Errorf("missing snowflake database/schema")
	}
	return nil
}
