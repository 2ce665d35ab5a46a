// Package config loads helios settings from defaults, an optional
// helios.yml file, HELIOS_-prefixed environment variables and command
// line flags, in ascending precedence. It also carries the shared
// logger on the command context so subcommands never need a global.
package config

// Config holds all CLI configuration options.
type Config struct {
	Provider     string `koanf:"provider"`
	UseLLM       bool   `koanf:"use_llm"`
	LLMModel     string `koanf:"llm_model"`
	LLMBaseURL   string `koanf:"llm_base_url"`
	LLMAPIKeyEnv string `koanf:"llm_api_key_env"`
	SchemaMode   string `koanf:"schema_mode"`
	SchemaCache  string `koanf:"schema_cache"`
	SparkSQLBin  string `koanf:"spark_sql_bin"`
	MetastoreDSN string `koanf:"metastore_dsn"`
	HistoryPath  string `koanf:"history_path"`
	Verbose      bool   `koanf:"verbose"`
}

// Default configuration values.
const (
	DefaultProvider    = "hive"
	DefaultLLMModel    = "gpt-4o"
	DefaultLLMBaseURL  = "https://api.openai.com/v1"
	DefaultAPIKeyEnv   = "OPENAI_API_KEY"
	DefaultSchemaMode  = "auto"
	DefaultSchemaCache = "schema_cache.json"
	DefaultHistoryPath = ".helios/history.db"
)

// ConfigFileName is the name of the config file.
const ConfigFileName = "helios.yml"

// ConfigFileNameAlt is the alternate name of the config file.
const ConfigFileNameAlt = "helios.yaml"
