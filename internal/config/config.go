package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/Veraticus/spendmatch/internal/common"
	"github.com/Veraticus/spendmatch/internal/llm"
	"github.com/Veraticus/spendmatch/internal/model"
	"github.com/Veraticus/spendmatch/internal/reconcile"
	"github.com/Veraticus/spendmatch/internal/sheets"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "SPENDMATCH"

// Settings is the typed application configuration.
type Settings struct {
	Database   DatabaseSettings
	Logging    LoggingSettings
	LLM        llm.Config
	Sheets     sheets.Config
	Reconcile  ReconcileSettings
	Categorize CategorizeSettings
	Report     ReportSettings
}

// DatabaseSettings locates the SQLite database.
type DatabaseSettings struct {
	Path string
}

// LoggingSettings configures the global logger.
type LoggingSettings struct {
	Level  string
	Format string
}

// ReconcileSettings configures note matching.
type ReconcileSettings struct {
	Window time.Duration
}

// CategorizeSettings configures the categorization fan-out.
type CategorizeSettings struct {
	FallbackCategory string
	ContextWindow    time.Duration
	MaxConcurrency   int
}

// ReportSettings configures the CSV report.
type ReportSettings struct {
	EnglishHeader bool
}

// legacyEnv lists the plain environment names older .env files use, after
// the prefixed name.
var legacyEnv = map[string][]string{
	"llm.base_url":                {"OLLAMA_API_URL"},
	"llm.model":                   {"OLLAMA_MODEL"},
	"llm.api_key":                 {"YANDEX_API_KEY"},
	"llm.folder_id":               {"YANDEX_FOLDER_ID"},
	"sheets.client_id":            {"GOOGLE_SHEETS_CLIENT_ID"},
	"sheets.client_secret":        {"GOOGLE_SHEETS_CLIENT_SECRET"},
	"sheets.refresh_token":        {"GOOGLE_SHEETS_REFRESH_TOKEN"},
	"sheets.service_account_path": {"GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH"},
	"sheets.spreadsheet_id":       {"GOOGLE_SHEETS_SPREADSHEET_ID"},
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.path", DefaultDatabasePath())

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("llm.provider", "ollama")
	v.SetDefault("llm.timeout", llm.DefaultTimeout)
	v.SetDefault("llm.rate_limit", 0)
	v.SetDefault("llm.cache_ttl", time.Duration(0))

	v.SetDefault("reconcile.window", reconcile.DefaultWindow)

	v.SetDefault("categorize.context_window", 48*time.Hour)
	v.SetDefault("categorize.max_concurrency", 4)
	v.SetDefault("categorize.fallback_category", model.FallbackCategory)

	v.SetDefault("report.english_header", false)

	sheetDefaults := sheets.DefaultConfig()
	v.SetDefault("sheets.spreadsheet_name", sheetDefaults.SpreadsheetName)
	v.SetDefault("sheets.sheet_title", sheetDefaults.SheetTitle)
	v.SetDefault("sheets.time_zone", sheetDefaults.TimeZone)
	v.SetDefault("sheets.batch_size", sheetDefaults.BatchSize)
	v.SetDefault("sheets.retry_attempts", sheetDefaults.RetryAttempts)
	v.SetDefault("sheets.retry_delay", sheetDefaults.RetryDelay)
	v.SetDefault("sheets.enable_formatting", sheetDefaults.EnableFormatting)
	v.SetDefault("sheets.token_file", filepath.Join(DefaultConfigDir(), "sheets-token.json"))
}

// Init prepares v: loads .env into the environment, registers defaults and
// env bindings, and reads the config file. A missing config file is fine;
// a broken one is not.
func Init(v *viper.Viper, cfgFile string) error {
	// .env values never override variables already set in the environment.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	SetDefaults(v)

	replacer := strings.NewReplacer(".", "_")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(replacer)
	v.AutomaticEnv()
	for key, names := range legacyEnv {
		prefixed := EnvPrefix + "_" + strings.ToUpper(replacer.Replace(key))
		if err := v.BindEnv(append([]string{key, prefixed}, names...)...); err != nil {
			return fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(DefaultConfigDir())
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	return nil
}

// Load builds Settings from v and validates them.
func Load(v *viper.Viper) (*Settings, error) {
	s := &Settings{
		Database: DatabaseSettings{
			Path: ExpandPath(v.GetString("database.path")),
		},
		Logging: LoggingSettings{
			Level:  v.GetString("logging.level"),
			Format: v.GetString("logging.format"),
		},
		LLM: llm.Config{
			Provider:         v.GetString("llm.provider"),
			BaseURL:          v.GetString("llm.base_url"),
			APIKey:           v.GetString("llm.api_key"),
			Model:            v.GetString("llm.model"),
			FolderID:         v.GetString("llm.folder_id"),
			FallbackCategory: v.GetString("categorize.fallback_category"),
			Timeout:          v.GetDuration("llm.timeout"),
			CacheTTL:         v.GetDuration("llm.cache_ttl"),
			RateLimit:        v.GetInt("llm.rate_limit"),
			Temperature:      v.GetFloat64("llm.temperature"),
			MaxTokens:        v.GetInt("llm.max_tokens"),
		},
		Reconcile: ReconcileSettings{
			Window: v.GetDuration("reconcile.window"),
		},
		Categorize: CategorizeSettings{
			FallbackCategory: v.GetString("categorize.fallback_category"),
			ContextWindow:    v.GetDuration("categorize.context_window"),
			MaxConcurrency:   v.GetInt("categorize.max_concurrency"),
		},
		Report: ReportSettings{
			EnglishHeader: v.GetBool("report.english_header"),
		},
		Sheets: loadSheets(v),
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func loadSheets(v *viper.Viper) sheets.Config {
	return sheets.Config{
		ClientID:           v.GetString("sheets.client_id"),
		ClientSecret:       v.GetString("sheets.client_secret"),
		RefreshToken:       v.GetString("sheets.refresh_token"),
		TokenFile:          ExpandPath(v.GetString("sheets.token_file")),
		ServiceAccountPath: ExpandPath(v.GetString("sheets.service_account_path")),
		SpreadsheetID:      v.GetString("sheets.spreadsheet_id"),
		SpreadsheetName:    v.GetString("sheets.spreadsheet_name"),
		SheetTitle:         v.GetString("sheets.sheet_title"),
		TimeZone:           v.GetString("sheets.time_zone"),
		BatchSize:          v.GetInt("sheets.batch_size"),
		RetryAttempts:      v.GetInt("sheets.retry_attempts"),
		RetryDelay:         v.GetDuration("sheets.retry_delay"),
		EnableFormatting:   v.GetBool("sheets.enable_formatting"),
	}
}

// Validate checks the settings every command relies on. Sheets settings
// are validated when a Sheets writer is created.
func (s *Settings) Validate() error {
	var problems []string

	if s.Database.Path == "" {
		problems = append(problems, "database.path cannot be empty")
	}
	if !slices.Contains(llm.Providers, strings.ToLower(s.LLM.Provider)) {
		problems = append(problems, fmt.Sprintf("llm.provider %q must be one of %v", s.LLM.Provider, llm.Providers))
	}
	if s.LLM.Timeout <= 0 {
		problems = append(problems, "llm.timeout must be positive")
	}
	if s.LLM.RateLimit < 0 {
		problems = append(problems, "llm.rate_limit cannot be negative")
	}
	if s.LLM.CacheTTL < 0 {
		problems = append(problems, "llm.cache_ttl cannot be negative")
	}
	if s.Reconcile.Window <= 0 {
		problems = append(problems, "reconcile.window must be positive")
	}
	if s.Categorize.ContextWindow < 0 {
		problems = append(problems, "categorize.context_window cannot be negative")
	}
	if s.Categorize.MaxConcurrency < 1 {
		problems = append(problems, "categorize.max_concurrency must be at least 1")
	}
	if strings.TrimSpace(s.Categorize.FallbackCategory) == "" {
		problems = append(problems, "categorize.fallback_category cannot be empty")
	}
	if _, err := common.ParseLevel(s.Logging.Level); err != nil {
		problems = append(problems, fmt.Sprintf("logging.level %q is not a log level", s.Logging.Level))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", common.ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}
