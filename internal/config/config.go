// Package config loads and validates application configuration.
package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Feed     FeedConfig     `mapstructure:"feed"     validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port            int    `mapstructure:"port"             validate:"required,gt=0,lt=65536"`
	LogLevel        string `mapstructure:"log_level"        validate:"required,oneof=debug info warn error"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout" validate:"gte=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// FeedConfig tunes the task aggregation engine: fan-out timeouts and the
// priority-escalation thresholds of the derived task types. The exact
// escalation thresholds were not nailed down by the business owner, so
// they are configuration with conservative defaults rather than code.
type FeedConfig struct {
	// ReaderTimeoutSeconds bounds each source reader's query. A reader
	// exceeding it contributes an empty result and a logged degradation.
	ReaderTimeoutSeconds int `mapstructure:"reader_timeout_seconds" validate:"required,gt=0"`

	// PaymentGraceDays is how many days past due a payment may be before
	// its task escalates from HIGH to URGENT.
	PaymentGraceDays int `mapstructure:"payment_grace_days" validate:"gte=0"`

	// RentalExpiryWarnDays is how close to expiry a rental must be before
	// its task escalates from MEDIUM to HIGH.
	RentalExpiryWarnDays int `mapstructure:"rental_expiry_warn_days" validate:"gte=0"`

	// CNAMRenewalLeadDays is how long before a bon's end date its renewal
	// window opens.
	CNAMRenewalLeadDays int `mapstructure:"cnam_renewal_lead_days" validate:"gte=0"`
}

// ReaderTimeout returns the per-reader timeout as a duration.
func (c FeedConfig) ReaderTimeout() time.Duration {
	return time.Duration(c.ReaderTimeoutSeconds) * time.Second
}

// PaymentGrace returns the payment escalation grace as a duration.
func (c FeedConfig) PaymentGrace() time.Duration {
	return time.Duration(c.PaymentGraceDays) * 24 * time.Hour
}

// RentalExpiryWarn returns the rental warning window as a duration.
func (c FeedConfig) RentalExpiryWarn() time.Duration {
	return time.Duration(c.RentalExpiryWarnDays) * 24 * time.Hour
}

// CNAMRenewalLead returns the bon renewal lead time as a duration.
func (c FeedConfig) CNAMRenewalLead() time.Duration {
	return time.Duration(c.CNAMRenewalLeadDays) * 24 * time.Hour
}
