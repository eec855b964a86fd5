package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pion/stun/v3"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// DefaultSecret is the placeholder session key; release deployments must override it.
const DefaultSecret = "change-me"

type Config struct {
	Mode         string       `mapstructure:"mode"`
	Port         int          `mapstructure:"port"`
	Secret       string       `mapstructure:"secret"`
	Backpressure string       `mapstructure:"backpressure"`
	Log          LogConfig    `mapstructure:"log"`
	WS           WSConfig     `mapstructure:"ws"`
	Wire         WireConfig   `mapstructure:"wire"`
	Rooms        RoomsConfig  `mapstructure:"rooms"`
	Notify       NotifyConfig `mapstructure:"notify"`
	ICE          ICEConfig    `mapstructure:"ice"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type WSConfig struct {
	ReadLimit      int64         `mapstructure:"read_limit"`
	PingPeriod     time.Duration `mapstructure:"ping_period"`
	PongWait       time.Duration `mapstructure:"pong_wait"`
	WriteWait      time.Duration `mapstructure:"write_wait"`
	SendBuffer     int           `mapstructure:"send_buffer"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
}

type WireConfig struct {
	Format string `mapstructure:"format"`
}

type RoomsConfig struct {
	Capacity     int           `mapstructure:"capacity"`
	RateLimit    int           `mapstructure:"rate_limit"`
	RateInterval time.Duration `mapstructure:"rate_interval"`
}

type NotifyConfig struct {
	Token string `mapstructure:"token"`
}

type ICEConfig struct {
	Servers []ICEServer `mapstructure:"servers"`
}

type ICEServer struct {
	URLs       []string `mapstructure:"urls"`
	Username   string   `mapstructure:"username"`
	Credential string   `mapstructure:"credential"`
}

// Load reads config/config.<CONFIG_ENV>.yaml (dev by default) after .env.
func Load() (*Config, error) {
	_ = godotenv.Load()

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	return LoadFile(fmt.Sprintf("config/config.%s.yaml", env))
}

// LoadFile reads fileName over the defaults. A missing file is not an error.
func LoadFile(fileName string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(fileName)
	v.SetEnvPrefix("NEXUS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config %s: %w", fileName, err)
		}
		log.Warn().Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.WeakSecret() {
		log.Warn().Str("mode", cfg.Mode).Msg("secret is empty or the default, session cookies can be forged; set NEXUS_SECRET")
	}
	log.Info().Str("mode", cfg.Mode).Int("port", cfg.Port).Str("wire", cfg.Wire.Format).Int("room_capacity", cfg.Rooms.Capacity).Msg("config ready")
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("secret", DefaultSecret)
	v.SetDefault("backpressure", "drop")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("ws.read_limit", 65536)
	v.SetDefault("ws.ping_period", "54s")
	v.SetDefault("ws.pong_wait", "60s")
	v.SetDefault("ws.write_wait", "10s")
	v.SetDefault("ws.send_buffer", 64)
	v.SetDefault("ws.allowed_origins", []string{})
	v.SetDefault("wire.format", "json")
	v.SetDefault("rooms.capacity", 10)
	v.SetDefault("rooms.rate_limit", 20)
	v.SetDefault("rooms.rate_interval", "10s")
	v.SetDefault("notify.token", "")
	v.SetDefault("ice.servers", []map[string]any{
		{"urls": []string{"stun:stun.l.google.com:19302"}},
	})
}

func (c *Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.Rooms.Capacity <= 0 {
		errs = append(errs, errors.New("rooms.capacity must be positive"))
	}
	if c.Rooms.RateLimit > 0 && c.Rooms.RateInterval <= 0 {
		errs = append(errs, errors.New("rooms.rate_interval must be positive when rate_limit is set"))
	}
	if c.WS.PingPeriod >= c.WS.PongWait {
		errs = append(errs, errors.New("ws.ping_period must be shorter than ws.pong_wait"))
	}
	if c.WS.SendBuffer <= 0 {
		errs = append(errs, errors.New("ws.send_buffer must be positive"))
	}
	switch c.Wire.Format {
	case "json", "msgpack":
	default:
		errs = append(errs, fmt.Errorf("unknown wire.format %q", c.Wire.Format))
	}
	switch c.Backpressure {
	case "drop", "kick":
	default:
		errs = append(errs, fmt.Errorf("unknown backpressure policy %q", c.Backpressure))
	}
	for _, s := range c.ICE.Servers {
		for _, raw := range s.URLs {
			if _, err := stun.ParseURI(raw); err != nil {
				errs = append(errs, fmt.Errorf("ice server %q: %w", raw, err))
			}
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// WeakSecret reports a release configuration still signing session cookies
// with the placeholder or an empty key.
func (c *Config) WeakSecret() bool {
	return c.Mode == "release" && (c.Secret == "" || c.Secret == DefaultSecret)
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
