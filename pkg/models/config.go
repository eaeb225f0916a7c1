package models

// BackendConfig holds how to reach the status-reporting backend.
type BackendConfig struct {
	BaseURL   string `yaml:"base_url" mapstructure:"base_url"`
	HealthURL string `yaml:"health_url,omitempty" mapstructure:"health_url"`
}

// SlackConfig holds the Slack webhook used to share weekly reports.
type SlackConfig struct {
	WebhookURL string `yaml:"webhook_url" mapstructure:"webhook_url"`
}

// NotificationConfig controls outbound report notifications.
type NotificationConfig struct {
	Enabled bool        `yaml:"enabled" mapstructure:"enabled"`
	Slack   SlackConfig `yaml:"slack" mapstructure:"slack"`
}

// ReminderConfig tunes when reminders fire.
type ReminderConfig struct {
	FollowupPendingHours int `yaml:"followup_pending_hours" mapstructure:"followup_pending_hours"`
}

// GlobalConfig holds settings read from .dlogconfig via Viper.
type GlobalConfig struct {
	Backend           BackendConfig      `yaml:"backend" mapstructure:"backend"`
	UserID            string             `yaml:"user_id" mapstructure:"user_id"`
	ReportDefaultDays int                `yaml:"report_default_days" mapstructure:"report_default_days"`
	Notifications     NotificationConfig `yaml:"notifications" mapstructure:"notifications"`
	Reminders         ReminderConfig     `yaml:"reminders" mapstructure:"reminders"`
}
