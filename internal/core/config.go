package core

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/valter-silva-au/dlog/pkg/models"
)

// ConfigFileName is the base name of the YAML configuration file.
const ConfigFileName = ".dlogconfig"

// ConfigurationManager loads and validates the client configuration.
type ConfigurationManager interface {
	LoadGlobalConfig() (*models.GlobalConfig, error)
	ValidateConfig(cfg *models.GlobalConfig) error
}

// viperConfigManager implements ConfigurationManager using Viper for
// reading the YAML configuration file and DLOG_* environment variables.
type viperConfigManager struct {
	// basePath is the directory where .dlogconfig and .env reside.
	basePath string
}

// NewConfigurationManager creates a ConfigurationManager that reads
// configuration files relative to basePath.
func NewConfigurationManager(basePath string) ConfigurationManager {
	return &viperConfigManager{basePath: basePath}
}

// DefaultGlobalConfig returns a GlobalConfig populated with defaults.
func DefaultGlobalConfig() *models.GlobalConfig {
	return &models.GlobalConfig{
		Backend: models.BackendConfig{
			BaseURL: "http://localhost:8000/api",
		},
		ReportDefaultDays: DefaultReportDays,
		Reminders: models.ReminderConfig{
			FollowupPendingHours: 4,
		},
	}
}

// LoadGlobalConfig reads .dlogconfig from the base path. Values from a .env
// file and DLOG_* environment variables override the file. A missing file
// yields the defaults.
func (cm *viperConfigManager) LoadGlobalConfig() (*models.GlobalConfig, error) {
	cfg := DefaultGlobalConfig()

	envPath := filepath.Join(cm.basePath, ".env")
	if err := godotenv.Load(envPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading %s: %w", envPath, err)
	}

	v := viper.New()
	v.SetConfigName(ConfigFileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(cm.basePath)
	v.SetEnvPrefix("DLOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set Viper defaults so missing keys fall back gracefully.
	v.SetDefault("backend.base_url", cfg.Backend.BaseURL)
	v.SetDefault("backend.health_url", "")
	v.SetDefault("user.id", cfg.UserID)
	v.SetDefault("report.default_days", cfg.ReportDefaultDays)
	v.SetDefault("notifications.enabled", false)
	v.SetDefault("notifications.slack.webhook_url", "")
	v.SetDefault("reminders.followup_pending_hours", cfg.Reminders.FollowupPendingHours)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading %s: %w", ConfigFileName, err)
		}
	}

	cfg.Backend.BaseURL = strings.TrimRight(v.GetString("backend.base_url"), "/")
	cfg.Backend.HealthURL = v.GetString("backend.health_url")
	cfg.UserID = strings.TrimSpace(v.GetString("user.id"))
	cfg.ReportDefaultDays = v.GetInt("report.default_days")
	cfg.Notifications.Enabled = v.GetBool("notifications.enabled")
	cfg.Notifications.Slack.WebhookURL = v.GetString("notifications.slack.webhook_url")
	cfg.Reminders.FollowupPendingHours = v.GetInt("reminders.followup_pending_hours")

	return cfg, nil
}

// ValidateConfig checks cfg for invalid values and reports all of them.
func (cm *viperConfigManager) ValidateConfig(cfg *models.GlobalConfig) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	var errs []string

	if err := validateHTTPURL(cfg.Backend.BaseURL); err != nil {
		errs = append(errs, fmt.Sprintf("backend.base_url %q is invalid: %v", cfg.Backend.BaseURL, err))
	}
	if cfg.Backend.HealthURL != "" {
		if err := validateHTTPURL(cfg.Backend.HealthURL); err != nil {
			errs = append(errs, fmt.Sprintf("backend.health_url %q is invalid: %v", cfg.Backend.HealthURL, err))
		}
	}

	if cfg.ReportDefaultDays < 1 || cfg.ReportDefaultDays > 31 {
		errs = append(errs, fmt.Sprintf(
			"report.default_days %d is invalid, must be between 1 and 31",
			cfg.ReportDefaultDays,
		))
	}

	if cfg.Reminders.FollowupPendingHours < 0 {
		errs = append(errs, fmt.Sprintf(
			"reminders.followup_pending_hours must be non-negative, got %d",
			cfg.Reminders.FollowupPendingHours,
		))
	}

	if cfg.Notifications.Enabled && cfg.Notifications.Slack.WebhookURL == "" {
		errs = append(errs, "notifications.slack.webhook_url must be set when notifications are enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https")
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}
