/**
 * @description
 * This file handles the configuration management for the account-service.
 * It uses the Viper library to read settings from environment variables or a
 * .env file.
 *
 * @dependencies
 * - github.com/spf13/viper: For configuration management.
 */
package config

import (
	"log"
	"strings"

	"github.com/spf13/viper"
)

// Config stores all configuration for the application.
type Config struct {
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	RabbitMQURL string `mapstructure:"RABBITMQ_URL"`
	ServerPort  string `mapstructure:"SERVER_PORT"`

	// NotificationChannel is the externally documented channel name the
	// notification consumer binds to.
	NotificationChannel string `mapstructure:"NOTIFICATION_CHANNEL"`
	// Notify* decide which commands stage a notification. The historical
	// behavior is create-only.
	NotifyOnCreate bool `mapstructure:"NOTIFY_ON_CREATE"`
	NotifyOnUpdate bool `mapstructure:"NOTIFY_ON_UPDATE"`
	NotifyOnDelete bool `mapstructure:"NOTIFY_ON_DELETE"`

	OutboxBatchSize      int `mapstructure:"OUTBOX_BATCH_SIZE"`
	OutboxPollIntervalMs int `mapstructure:"OUTBOX_POLL_INTERVAL_MS"`
	OutboxMaxAttempts    int `mapstructure:"OUTBOX_MAX_ATTEMPTS"`
	OutboxRetentionDays  int `mapstructure:"OUTBOX_RETENTION_DAYS"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("SERVER_PORT", "8083")
	viper.SetDefault("NOTIFICATION_CHANNEL", "emailQueue")
	viper.SetDefault("NOTIFY_ON_CREATE", true)
	viper.SetDefault("NOTIFY_ON_UPDATE", false)
	viper.SetDefault("NOTIFY_ON_DELETE", false)
	viper.SetDefault("OUTBOX_BATCH_SIZE", 50)
	viper.SetDefault("OUTBOX_POLL_INTERVAL_MS", 1200)
	viper.SetDefault("OUTBOX_MAX_ATTEMPTS", 8)
	viper.SetDefault("OUTBOX_RETENTION_DAYS", 7)

	// Bind envs explicitly so containers pick them up reliably
	_ = viper.BindEnv("DATABASE_URL")
	_ = viper.BindEnv("RABBITMQ_URL")
	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("NOTIFICATION_CHANNEL")
	_ = viper.BindEnv("NOTIFY_ON_CREATE")
	_ = viper.BindEnv("NOTIFY_ON_UPDATE")
	_ = viper.BindEnv("NOTIFY_ON_DELETE")
	_ = viper.BindEnv("OUTBOX_BATCH_SIZE")
	_ = viper.BindEnv("OUTBOX_POLL_INTERVAL_MS")
	_ = viper.BindEnv("OUTBOX_MAX_ATTEMPTS")
	_ = viper.BindEnv("OUTBOX_RETENTION_DAYS")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("Warning: Error reading config file: %s", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
