package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/helios-data/helios/internal/cli/config"
	"github.com/helios-data/helios/internal/convert"
	"github.com/helios-data/helios/internal/llm"
	"github.com/helios-data/helios/internal/schema"
	"github.com/helios-data/helios/internal/state"
)

// getConfig returns the current configuration by value so command-local
// flag overrides never leak into other commands.
func getConfig() config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return *cfg
	}

	// Fallback: read from environment with defaults
	return config.Config{
		Provider:     getEnvOrDefault("HELIOS_PROVIDER", config.DefaultProvider),
		UseLLM:       os.Getenv("HELIOS_USE_LLM") != "false",
		LLMModel:     getEnvOrDefault("HELIOS_LLM_MODEL", config.DefaultLLMModel),
		LLMBaseURL:   getEnvOrDefault("HELIOS_LLM_BASE_URL", config.DefaultLLMBaseURL),
		LLMAPIKeyEnv: getEnvOrDefault("HELIOS_LLM_API_KEY_ENV", config.DefaultAPIKeyEnv),
		SchemaMode:   getEnvOrDefault("HELIOS_SCHEMA_MODE", config.DefaultSchemaMode),
		SchemaCache:  getEnvOrDefault("HELIOS_SCHEMA_CACHE", config.DefaultSchemaCache),
		SparkSQLBin:  os.Getenv("HELIOS_SPARK_SQL_BIN"),
		MetastoreDSN: os.Getenv("HELIOS_METASTORE_DSN"),
		HistoryPath:  getEnvOrDefault("HELIOS_HISTORY_PATH", config.DefaultHistoryPath),
		Verbose:      os.Getenv("HELIOS_VERBOSE") == "true",
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// converterOptions validates the configured schema mode and builds the
// converter options from it.
func converterOptions(cfg *config.Config) (convert.Options, error) {
	mode, err := schema.ParseMode(cfg.SchemaMode)
	if err != nil {
		return convert.Options{}, err
	}
	return convert.Options{
		Provider:   cfg.Provider,
		UseLLM:     cfg.UseLLM,
		SchemaMode: mode,
	}, nil
}

// newResolver builds the schema resolver over the configured cache file.
// The metastore strategy is only registered when a DSN is configured; the
// spark-sql describe strategy is always last in the chain.
func newResolver(cfg *config.Config, logger *slog.Logger) *schema.Resolver {
	store := schema.NewFileStore(cfg.SchemaCache)

	var strategies []schema.Strategy
	if cfg.MetastoreDSN != "" {
		strategies = append(strategies, schema.NewMetastore(cfg.MetastoreDSN, logger))
	}
	strategies = append(strategies, schema.NewSparkSQL(cfg.SparkSQLBin, logger))

	return schema.NewResolver(store, logger, strategies...)
}

// newTranslator builds the LLM client, or nil when no API key is
// available. Conversion then falls through to failure markers.
func newTranslator(cfg *config.Config, logger *slog.Logger) llm.Translator {
	client, err := llm.NewClient(llm.Options{
		BaseURL:   cfg.LLMBaseURL,
		Model:     cfg.LLMModel,
		APIKeyEnv: cfg.LLMAPIKeyEnv,
	}, logger)
	if err != nil {
		logger.Debug("llm translator unavailable", slog.String("error", err.Error()))
		return nil
	}
	return client
}

// openHistory opens the run history store, creating its directory and
// migrating the schema as needed.
func openHistory(cfg *config.Config) (*state.Store, error) {
	dir := filepath.Dir(cfg.HistoryPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	st := state.NewStore()
	if err := st.Open(cfg.HistoryPath); err != nil {
		return nil, err
	}
	if err := st.Migrate(); err != nil {
		_ = st.Close()
		return nil, err
	}
	return st, nil
}
