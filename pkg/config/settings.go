package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Settings is the host configuration read from ~/.talon.yaml and TALON_* env.
type Settings struct {
	DataDir string `mapstructure:"data_dir"`

	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"log"`

	LLM struct {
		BaseURL string `mapstructure:"base_url"`
		Model   string `mapstructure:"model"`
	} `mapstructure:"llm"`

	Notifications struct {
		Desktop bool `mapstructure:"desktop"`
	} `mapstructure:"notifications"`

	History struct {
		// Limit is how many handled commands are kept; 0 disables the log.
		Limit int `mapstructure:"limit"`
	} `mapstructure:"history"`

	Channels struct {
		Telegram struct {
			Token string `mapstructure:"token"`
			// Allow lists the user names or numeric ids that may use the
			// bot. Empty allows everyone.
			Allow []string `mapstructure:"allow"`
		} `mapstructure:"telegram"`
		Discord struct {
			Token string   `mapstructure:"token"`
			Allow []string `mapstructure:"allow"`
		} `mapstructure:"discord"`
		Websocket struct {
			Addr string `mapstructure:"addr"`
		} `mapstructure:"websocket"`
	} `mapstructure:"channels"`

	// Talents maps a talent name to its option overrides.
	Talents map[string]map[string]any `mapstructure:"talents"`
}

// TalentOverrides returns the overrides for one talent, never nil.
func (s *Settings) TalentOverrides(name string) map[string]any {
	if o, ok := s.Talents[name]; ok && o != nil {
		return o
	}
	return map[string]any{}
}

// StorePath returns the JSON file for a named store.
func (s *Settings) StorePath(name string) string {
	return filepath.Join(s.DataDir, name+".json")
}

// NewViper returns a viper instance with defaults and env binding. file may
// be empty, in which case ~/.talon.yaml is used if present.
func NewViper(file string) *viper.Viper {
	v := viper.New()
	v.SetDefault("data_dir", DefaultDataDir())
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("llm.base_url", "http://localhost:11434")
	v.SetDefault("llm.model", "")
	v.SetDefault("notifications.desktop", true)
	v.SetDefault("history.limit", 200)
	v.SetDefault("channels.telegram.token", "")
	v.SetDefault("channels.discord.token", "")
	v.SetDefault("channels.websocket.addr", "")

	if file != "" {
		v.SetConfigFile(file)
	} else {
		home, _ := os.UserHomeDir()
		v.AddConfigPath(home)
		v.SetConfigType("yaml")
		v.SetConfigName(".talon")
	}

	v.SetEnvPrefix("TALON")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the settings file (if any) into Settings. A missing default file
// is not an error; a missing explicit file is.
func Load(v *viper.Viper) (*Settings, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "read config")
		}
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	s.DataDir = ExpandHome(s.DataDir)
	if s.Talents == nil {
		s.Talents = map[string]map[string]any{}
	}
	return &s, nil
}
