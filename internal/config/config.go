package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// DefaultPort is the port phones expect the host on.
const DefaultPort = 8000

type Config struct {
	Server struct {
		Host string `mapstructure:"host"`
		Port int    `mapstructure:"port"`
	} `mapstructure:"server"`

	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`

	Gesture struct {
		ScrollFactor float64 `mapstructure:"scroll_factor"`
	} `mapstructure:"gesture"`

	Control struct {
		EventsPerSecond float64 `mapstructure:"events_per_second"`
		Burst           int     `mapstructure:"burst"`
	} `mapstructure:"control"`

	Pairing struct {
		QRScale int `mapstructure:"qr_scale"`
	} `mapstructure:"pairing"`

	Screen struct {
		Quality int `mapstructure:"quality"`
	} `mapstructure:"screen"`
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// Loader reads configuration and keeps the viper instance around so the
// file can be watched afterwards.
type Loader struct {
	v *viper.Viper
}

func NewLoader() *Loader {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("MOUSEBRIDGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", DefaultPort)
	v.SetDefault("log.level", "info")
	v.SetDefault("gesture.scroll_factor", 0.5)
	v.SetDefault("control.events_per_second", 120)
	v.SetDefault("control.burst", 30)
	v.SetDefault("pairing.qr_scale", 10)
	v.SetDefault("screen.quality", 80)

	return &Loader{v: v}
}

// Viper exposes the underlying instance for flag binding.
func (l *Loader) Viper() *viper.Viper { return l.v }

// Load reads path if given, otherwise an optional mousebridge.yaml in the
// working directory.
func (l *Loader) Load(path string) (*Config, error) {
	if path != "" {
		l.v.SetConfigFile(path)
		if err := l.v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else {
		l.v.SetConfigName("mousebridge")
		l.v.AddConfigPath(".")
		if err := l.v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	var c Config
	if err := l.v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// File returns the config file in use, or "" when running on defaults.
func (l *Loader) File() string { return l.v.ConfigFileUsed() }

// Watch calls fn with the freshly decoded config whenever the file changes.
// It is a no-op without a config file.
func (l *Loader) Watch(fn func(*Config, error)) {
	if l.File() == "" {
		return
	}
	l.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		var c Config
		if err := l.v.Unmarshal(&c); err != nil {
			fn(nil, fmt.Errorf("failed to unmarshal config: %w", err))
			return
		}
		if err := c.validate(); err != nil {
			fn(nil, err)
			return
		}
		fn(&c, nil)
	})
	l.v.WatchConfig()
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d", c.Server.Port)
	}
	if c.Gesture.ScrollFactor <= 0 {
		return fmt.Errorf("invalid gesture.scroll_factor %v", c.Gesture.ScrollFactor)
	}
	if c.Control.EventsPerSecond <= 0 || c.Control.Burst <= 0 {
		return errors.New("control.events_per_second and control.burst must be positive")
	}
	return nil
}
