package config

import (
	"fmt"
	"strings"
	"time"
)

// TransferConfig configures the settlement client used to deliver refunds,
// including its circuit breaker thresholds.
type TransferConfig struct {
	Endpoint       string               `koanf:"endpoint"`
	Timeout        time.Duration        `koanf:"timeout"`
	CircuitBreaker CircuitBreakerConfig `koanf:"circuitbreaker"`
}

type CircuitBreakerConfig struct {
	ConsecutiveFailures uint32        `koanf:"consecutivefailures"`
	ErrorRatePercent    int           `koanf:"errorratepercent"`
	OpenTimeout         time.Duration `koanf:"opentimeout"`
}

// String returns a string representation of the TransferConfig.
func (c *TransferConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Transfer ---\n")
	b.WriteString(fmt.Sprintf("  endpoint: %s\n", c.Endpoint))
	b.WriteString(fmt.Sprintf("  timeout: %v\n", c.Timeout))
	b.WriteString("\n--- Circuit Breaker ---\n")
	b.WriteString(fmt.Sprintf("  consecutivefailures: %d\n", c.CircuitBreaker.ConsecutiveFailures))
	b.WriteString(fmt.Sprintf("  errorratepercent: %d\n", c.CircuitBreaker.ErrorRatePercent))
	b.WriteString(fmt.Sprintf("  opentimeout: %v\n", c.CircuitBreaker.OpenTimeout))
	return b.String()
}

func (c *TransferConfig) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("transfer endpoint is not configured")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("transfer timeout is not configured")
	}
	if c.CircuitBreaker.ConsecutiveFailures == 0 {
		return fmt.Errorf("circuitbreaker.consecutivefailures must be greater than 0")
	}
	if c.CircuitBreaker.ErrorRatePercent < 0 || c.CircuitBreaker.ErrorRatePercent > 100 {
		return fmt.Errorf("circuitbreaker.errorratepercent must be between 0 and 100")
	}
	if c.CircuitBreaker.OpenTimeout <= 0 {
		return fmt.Errorf("circuitbreaker.opentimeout must be greater than 0")
	}
	return nil
}
