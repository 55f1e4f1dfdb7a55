package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
type Config struct {
	// BindAddress is the address the server listens on (e.g. "0.0.0.0:8080")
	BindAddress string `yaml:"bind_address"`
	// Transport selects how the module is attached: "serial" or "i2c"
	Transport string `yaml:"transport"`
	// SerialPort is the path to the module's serial port (e.g. "/dev/ttyUSB0")
	SerialPort string `yaml:"serial_port"`
	// BaudRate is the line speed the module is expected to use (e.g. 9600)
	BaudRate int `yaml:"baud_rate"`
	// I2CBus names the bus of the Qwiic bridge (e.g. "1"); empty picks the first
	I2CBus string `yaml:"i2c_bus"`
	// I2CAddress is the bridge address on the bus
	I2CAddress uint16 `yaml:"i2c_address"`
	// Model is the module variant (e.g. "HM-13")
	Model string `yaml:"model"`
	// Poll turns on connection notifications and the poll loop
	Poll bool `yaml:"poll"`
	// PollInterval is the time between two polls
	PollInterval time.Duration `yaml:"poll_interval"`
	Log          LogConfig     `yaml:"log"`
}

// LogConfig selects the level, format and destination of the log.
type LogConfig struct {
	// Level is one of "debug", "info", "warn", "error"
	Level string `yaml:"level"`
	// Format is "json" or "text"
	Format string `yaml:"format"`
	// Output is "stderr", "stdout" or a file path
	Output string `yaml:"output"`
}

// ConfigOption is a function that modifies a Config
type ConfigOption func(*Config) error

// LoadConfig creates a new config by applying the given options in order
func LoadConfig(opts ...ConfigOption) (*Config, error) {
	config := &Config{}

	for _, opt := range opts {
		if err := opt(config); err != nil {
			return nil, err
		}
	}

	if config.Transport != "serial" && config.Transport != "i2c" {
		return nil, fmt.Errorf("unknown transport %q", config.Transport)
	}
	if config.PollInterval <= 0 {
		return nil, fmt.Errorf("poll interval must be positive, got %s", config.PollInterval)
	}

	return config, nil
}

// WithDefaults applies default configuration values
func WithDefaults() ConfigOption {
	return func(c *Config) error {
		c.BindAddress = "0.0.0.0:8080"
		c.Transport = "serial"
		c.SerialPort = "/dev/ttyUSB0"
		c.BaudRate = 9600
		c.I2CAddress = 0x6F
		c.Model = "HM-10"
		c.Poll = true
		c.PollInterval = 100 * time.Millisecond
		c.Log = LogConfig{Level: "info", Format: "json", Output: "stderr"}
		return nil
	}
}

// WithFile overlays the YAML file at path. A missing file is not an error
// so that the daemon runs on defaults alone.
func WithFile(path string) ConfigOption {
	return func(c *Config) error {
		if path == "" {
			return nil
		}
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("parse config file %s: %w", path, err)
		}
		return nil
	}
}

// WithEnv loads configuration from environment variables
func WithEnv() ConfigOption {
	return func(c *Config) error {
		if addr := os.Getenv("BIND_ADDRESS"); addr != "" {
			c.BindAddress = addr
		}

		if transport := os.Getenv("TRANSPORT"); transport != "" {
			c.Transport = transport
		}

		if serial := os.Getenv("SERIAL_PORT"); serial != "" {
			c.SerialPort = serial
		}

		if baud := os.Getenv("BAUD_RATE"); baud != "" {
			if b, err := strconv.Atoi(baud); err == nil {
				c.BaudRate = b
			}
		}

		if bus := os.Getenv("I2C_BUS"); bus != "" {
			c.I2CBus = bus
		}

		if addr := os.Getenv("I2C_ADDRESS"); addr != "" {
			if a, err := strconv.ParseUint(addr, 0, 16); err == nil {
				c.I2CAddress = uint16(a)
			}
		}

		if model := os.Getenv("MODEL"); model != "" {
			c.Model = model
		}

		if poll := os.Getenv("POLL"); poll != "" {
			if p, err := strconv.ParseBool(poll); err == nil {
				c.Poll = p
			}
		}

		if interval := os.Getenv("POLL_INTERVAL"); interval != "" {
			if d, err := time.ParseDuration(interval); err == nil {
				c.PollInterval = d
			}
		}

		if level := os.Getenv("LOG_LEVEL"); level != "" {
			c.Log.Level = level
		}

		if format := os.Getenv("LOG_FORMAT"); format != "" {
			c.Log.Format = format
		}

		return nil
	}
}

// WithFlags loads configuration from command-line flags
func WithFlags(fSet *flag.FlagSet) ConfigOption {
	return func(c *Config) error {
		var err error
		fSet.Visit(func(f *flag.Flag) {
			value := f.Value.String()
			switch f.Name {
			case "bind-address":
				c.BindAddress = value
			case "transport":
				c.Transport = value
			case "serial-port":
				c.SerialPort = value
			case "baud-rate":
				if b, perr := strconv.Atoi(value); perr == nil {
					c.BaudRate = b
				}
			case "i2c-bus":
				c.I2CBus = value
			case "i2c-address":
				a, perr := strconv.ParseUint(value, 0, 16)
				if perr != nil {
					err = fmt.Errorf("invalid i2c address %q: %w", value, perr)
					return
				}
				c.I2CAddress = uint16(a)
			case "model":
				c.Model = value
			case "poll":
				if p, perr := strconv.ParseBool(value); perr == nil {
					c.Poll = p
				}
			case "poll-interval":
				if d, perr := time.ParseDuration(value); perr == nil {
					c.PollInterval = d
				}
			case "log-level":
				c.Log.Level = value
			case "log-format":
				c.Log.Format = value
			case "log-output":
				c.Log.Output = value
			}
		})
		return err
	}
}
