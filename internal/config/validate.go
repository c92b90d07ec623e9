package config

import (
	"fmt"
	"strings"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters (got %d)", len(c.Auth.JWTSecret))
	}
	if c.Auth.MaxLoginAttempts <= 0 {
		return fmt.Errorf("auth.max_login_attempts must be > 0 (got %d)", c.Auth.MaxLoginAttempts)
	}
	if c.Auth.LockoutDuration <= 0 {
		return fmt.Errorf("auth.lockout_duration must be > 0 (got %s)", c.Auth.LockoutDuration)
	}
	if (c.Auth.BootstrapAdmin == "") != (c.Auth.BootstrapPassword == "") {
		return fmt.Errorf("auth.bootstrap_admin and auth.bootstrap_password must be set together")
	}

	switch strings.ToLower(c.Store.Driver) {
	case StoreMemory:
	case StorePostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for store driver %q", StorePostgres)
		}
	default:
		return fmt.Errorf("store.driver must be %q or %q (got %q)", StoreMemory, StorePostgres, c.Store.Driver)
	}
	c.Store.Driver = strings.ToLower(c.Store.Driver)

	if c.Audit.Capacity <= 0 {
		return fmt.Errorf("audit.capacity must be > 0 (got %d)", c.Audit.Capacity)
	}
	if c.Usage.HistoryCap <= 0 {
		return fmt.Errorf("usage.history_cap must be > 0 (got %d)", c.Usage.HistoryCap)
	}
	if c.Idempotency.Retention < 0 {
		return fmt.Errorf("idempotency.retention must be >= 0 (got %s)", c.Idempotency.Retention)
	}
	if c.Idempotency.Retention > 0 && c.Idempotency.SweepInterval <= 0 {
		return fmt.Errorf("idempotency.sweep_interval must be > 0 when retention is set")
	}

	if c.Storage.Bucket != "" && (c.Storage.AccessKeyID == "") != (c.Storage.SecretAccessKey == "") {
		return fmt.Errorf("storage.access_key_id and storage.secret_access_key must be set together")
	}
	if c.Storage.MaxUploadMB <= 0 {
		return fmt.Errorf("storage.max_upload_mb must be > 0 (got %d)", c.Storage.MaxUploadMB)
	}

	return nil
}
