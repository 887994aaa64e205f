package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type AppConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	LogLevel string `mapstructure:"log_level"`

	// 允许的 WebSocket 来源，为空或包含 "*" 时不做限制
	AllowedOrigins []string `mapstructure:"allowed_origins"`

	// 可选的词库文件，为空时使用内置词库
	WordsFile string `mapstructure:"words_file"`

	DefaultMaxPlayers int `mapstructure:"default_max_players"`
	MaxPlayersLimit   int `mapstructure:"max_players_limit"`
	DefaultMaxRounds  int `mapstructure:"default_max_rounds"`
	MaxRoundsLimit    int `mapstructure:"max_rounds_limit"`

	RoundDuration    time.Duration `mapstructure:"round_duration"`
	GraceDelay       time.Duration `mapstructure:"grace_delay"`
	CompletedRoomTTL time.Duration `mapstructure:"completed_room_ttl"`

	MaxMessages int `mapstructure:"max_messages"`
	MaxSegments int `mapstructure:"max_segments"`

	MessagesPerSecond float64 `mapstructure:"messages_per_second"`
	MessageBurst      int     `mapstructure:"message_burst"`
	OutboxSize        int     `mapstructure:"outbox_size"`
}

const (
	CONFIG_NAME = "app_config"
	ENV_PREFIX  = "PICTOBLITZ"
)

// InitConfig loads the configuration from the working directory and panics
// when it is unusable.
func InitConfig() *AppConfig {
	config, err := LoadConfig(".")
	if err != nil {
		panic(fmt.Errorf("加载配置失败: %w", err))
	}

	return config
}

// LoadConfig reads app_config.json from the first of paths that has one.
// The file is optional; defaults and PICTOBLITZ_* environment variables fill
// in the rest.
func LoadConfig(paths ...string) (*AppConfig, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName(CONFIG_NAME)
	v.SetConfigType("json")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.SetEnvPrefix(ENV_PREFIX)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var config AppConfig

	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("port", 3001)
	v.SetDefault("log_level", "info")
	v.SetDefault("allowed_origins", []string{"*"})
	v.SetDefault("words_file", "")

	v.SetDefault("default_max_players", 8)
	v.SetDefault("max_players_limit", 16)
	v.SetDefault("default_max_rounds", 3)
	v.SetDefault("max_rounds_limit", 20)

	v.SetDefault("round_duration", 90*time.Second)
	v.SetDefault("grace_delay", 5*time.Second)
	v.SetDefault("completed_room_ttl", 10*time.Minute)

	v.SetDefault("max_messages", 500)
	v.SetDefault("max_segments", 20000)

	v.SetDefault("messages_per_second", 60)
	v.SetDefault("message_burst", 120)
	v.SetDefault("outbox_size", 256)
}

func (c *AppConfig) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.DefaultMaxPlayers < 2 {
		return fmt.Errorf("default_max_players must be at least 2")
	}
	if c.MaxPlayersLimit < c.DefaultMaxPlayers {
		return fmt.Errorf("max_players_limit must not be below default_max_players")
	}
	if c.DefaultMaxRounds < 1 {
		return fmt.Errorf("default_max_rounds must be at least 1")
	}
	if c.MaxRoundsLimit < c.DefaultMaxRounds {
		return fmt.Errorf("max_rounds_limit must not be below default_max_rounds")
	}
	if c.RoundDuration < 0 || c.GraceDelay < 0 || c.CompletedRoomTTL < 0 {
		return fmt.Errorf("durations must not be negative")
	}
	if c.MessagesPerSecond <= 0 || c.MessageBurst <= 0 {
		return fmt.Errorf("messages_per_second and message_burst must be positive")
	}
	if c.OutboxSize <= 0 {
		return fmt.Errorf("outbox_size must be positive")
	}
	return nil
}

func (c *AppConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
