package config

import (
	"fmt"
	"strings"

	"github.com/abgdnv/storefront/pkg/config"
	"github.com/abgdnv/storefront/pkg/config/configloader"
)

var _ configloader.Validator = (*Config)(nil)

type Config struct {
	HTTPServer config.HTTPConfig     `koanf:"server"`
	Log        config.LogConfig      `koanf:"log"`
	PProf      config.PProfConfig    `koanf:"pprof"`
	Shutdown   config.ShutdownConfig `koanf:"shutdown"`
	NATS       config.NATSConfig     `koanf:"nats"`
	Transfer   config.TransferConfig `koanf:"transfer"`
	Store      StoreConfig           `koanf:"store"`
}

// StoreConfig holds the ledger's own settings: the owner account and the
// return grace window in logical-clock ticks (0 selects the default of 100).
type StoreConfig struct {
	Owner        string `koanf:"owner"`
	ReturnWindow uint64 `koanf:"returnwindow"`
}

func (c *StoreConfig) Validate() error {
	if c.Owner == "" {
		return fmt.Errorf("store owner account is not configured")
	}
	return nil
}

func (c *Config) String() string {
	var b strings.Builder

	b.WriteString("\n--- Server Configuration ---\n")
	b.WriteString(fmt.Sprintf("  server.port: %d\n", c.HTTPServer.Port))
	b.WriteString(fmt.Sprintf("  server.maxHeaderBytes: %d\n", c.HTTPServer.MaxHeaderBytes))
	b.WriteString(fmt.Sprintf("  server.timeout.read: %v\n", c.HTTPServer.Timeout.Read))
	b.WriteString(fmt.Sprintf("  server.timeout.write: %v\n", c.HTTPServer.Timeout.Write))
	b.WriteString(fmt.Sprintf("  server.timeout.idle: %v\n", c.HTTPServer.Timeout.Idle))
	b.WriteString(fmt.Sprintf("  server.timeout.readHeader: %v\n", c.HTTPServer.Timeout.ReadHeader))

	b.WriteString("\n--- Store Configuration ---\n")
	b.WriteString(fmt.Sprintf("  store.owner: %s\n", c.Store.Owner))
	b.WriteString(fmt.Sprintf("  store.returnwindow: %d\n", c.Store.ReturnWindow))

	b.WriteString("\n--- Transfer Configuration ---\n")
	b.WriteString(fmt.Sprintf("  transfer.endpoint: %s\n", c.Transfer.Endpoint))
	b.WriteString(fmt.Sprintf("  transfer.timeout: %v\n", c.Transfer.Timeout))

	b.WriteString("\n--- Messaging ---\n")
	b.WriteString(fmt.Sprintf("  nats.enabled: %t\n", c.NATS.Enabled))
	b.WriteString(fmt.Sprintf("  nats.url: %s\n", c.NATS.Url))

	b.WriteString("\n--- Observability & Logging ---\n")
	b.WriteString(fmt.Sprintf("  log.level: %s\n", c.Log.Level))
	b.WriteString(fmt.Sprintf("  pprof.enabled: %t\n", c.PProf.Enabled))
	b.WriteString(fmt.Sprintf("  pprof.address: %s\n", c.PProf.Addr))

	b.WriteString("\n--- Application Behavior ---\n")
	b.WriteString(fmt.Sprintf("  shutdown.timeout: %s\n", c.Shutdown.Timeout))

	return b.String()
}

// Validate checks if the configuration values are valid
func (c *Config) Validate() error {
	if err := c.HTTPServer.Validate(); err != nil {
		return err
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	if err := c.PProf.Validate(); err != nil {
		return err
	}
	if err := c.Shutdown.Validate(); err != nil {
		return err
	}
	if err := c.NATS.Validate(); err != nil {
		return err
	}
	if err := c.Transfer.Validate(); err != nil {
		return err
	}
	return c.Store.Validate()
}
