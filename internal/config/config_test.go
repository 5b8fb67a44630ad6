package config

import (
	"os"
	"testing"

	"github.com/spf13/viper"
)

func TestLoadConfigDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	unsetEnvWithCleanup(t, "NOTIFICATION_CHANNEL")
	unsetEnvWithCleanup(t, "NOTIFY_ON_CREATE")
	unsetEnvWithCleanup(t, "NOTIFY_ON_UPDATE")
	unsetEnvWithCleanup(t, "NOTIFY_ON_DELETE")
	unsetEnvWithCleanup(t, "OUTBOX_MAX_ATTEMPTS")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	if cfg.NotificationChannel != "emailQueue" {
		t.Fatalf("expected default channel emailQueue, got %q", cfg.NotificationChannel)
	}
	if !cfg.NotifyOnCreate || cfg.NotifyOnUpdate || cfg.NotifyOnDelete {
		t.Fatalf("expected create-only notification default, got create=%v update=%v delete=%v",
			cfg.NotifyOnCreate, cfg.NotifyOnUpdate, cfg.NotifyOnDelete)
	}
	if cfg.OutboxMaxAttempts != 8 {
		t.Fatalf("expected default OutboxMaxAttempts 8, got %d", cfg.OutboxMaxAttempts)
	}
	if cfg.OutboxBatchSize != 50 {
		t.Fatalf("expected default OutboxBatchSize 50, got %d", cfg.OutboxBatchSize)
	}
}

func TestLoadConfigNotificationPolicyOverrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	setEnvWithCleanup(t, "NOTIFY_ON_CREATE", "false")
	setEnvWithCleanup(t, "NOTIFY_ON_UPDATE", "true")
	setEnvWithCleanup(t, "NOTIFY_ON_DELETE", "true")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.NotifyOnCreate || !cfg.NotifyOnUpdate || !cfg.NotifyOnDelete {
		t.Fatalf("expected overridden policy, got create=%v update=%v delete=%v",
			cfg.NotifyOnCreate, cfg.NotifyOnUpdate, cfg.NotifyOnDelete)
	}
}

func TestLoadConfigChannelOverride(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	setEnvWithCleanup(t, "NOTIFICATION_CHANNEL", "notificationQueue")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.NotificationChannel != "notificationQueue" {
		t.Fatalf("expected channel from env var, got %q", cfg.NotificationChannel)
	}
}

func setEnvWithCleanup(t *testing.T, key string, value string) {
	t.Helper()
	prev, hadPrev := os.LookupEnv(key)
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("setting %s: %v", key, err)
	}
	t.Cleanup(func() {
		if hadPrev {
			os.Setenv(key, prev)
			return
		}
		os.Unsetenv(key)
	})
}

func unsetEnvWithCleanup(t *testing.T, key string) {
	t.Helper()
	prev, hadPrev := os.LookupEnv(key)
	if !hadPrev {
		return
	}
	if err := os.Unsetenv(key); err != nil {
		t.Fatalf("unsetting %s: %v", key, err)
	}
	t.Cleanup(func() {
		os.Setenv(key, prev)
	})
}
