package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	homedir "github.com/mitchellh/go-homedir"
)

const (
	defaultAPIBaseURL = "http://localhost:8000"
	defaultDataDir    = "~/.teletext"
	defaultConfigPath = "~/.teletext/teletext.toml"
	defaultStore      = "diskv"
)

// Config holds runtime settings for the reader. Values come from defaults,
// then the TOML file, then TELETEXT_* environment variables.
type Config struct {
	APIBaseURL     string `toml:"api_base_url"`
	DataDir        string `toml:"data_dir"`
	Store          string `toml:"store"`
	TelegramToken  string `toml:"telegram_token"`
	TelegramChatID int64  `toml:"telegram_chat_id"`
	DebugLog       string `toml:"debug_log"`
}

func Default() Config {
	return Config{
		APIBaseURL: defaultAPIBaseURL,
		DataDir:    defaultDataDir,
		Store:      defaultStore,
	}
}

func DefaultPath() (string, error) {
	p, err := homedir.Expand(defaultConfigPath)
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return p, nil
}

// Load reads path (or the default file when path is empty), applies the
// environment and validates the result. A missing default file is fine; a
// missing explicit file is an error.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return Config{}, err
		}
		path = p
	} else {
		p, err := homedir.Expand(path)
		if err != nil {
			return Config{}, fmt.Errorf("expand config path: %w", err)
		}
		path = p
	}

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("could not parse %s: %w", path, err)
		}
	} else if explicit || !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	dir, err := homedir.Expand(cfg.DataDir)
	if err != nil {
		return Config{}, fmt.Errorf("expand data dir: %w", err)
	}
	cfg.DataDir = dir

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("TELETEXT_API_BASE_URL"); v != "" {
		cfg.APIBaseURL = v
	}
	if v := os.Getenv("TELETEXT_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("TELETEXT_STORE"); v != "" {
		cfg.Store = v
	}
	if v := os.Getenv("TELETEXT_TELEGRAM_TOKEN"); v != "" {
		cfg.TelegramToken = v
	}
	if v := os.Getenv("TELETEXT_TELEGRAM_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("TELETEXT_TELEGRAM_CHAT_ID must be an integer: %w", err)
		}
		cfg.TelegramChatID = id
	}
	if v := os.Getenv("TELETEXT_DEBUG_LOG"); v != "" {
		cfg.DebugLog = v
	}
	return nil
}

func (c Config) Validate() error {
	if c.APIBaseURL == "" {
		return errors.New("APIBaseURL is required")
	}
	if strings.HasSuffix(c.APIBaseURL, "/") {
		return fmt.Errorf("APIBaseURL must not end with '/': %s", c.APIBaseURL)
	}
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("APIBaseURL must be an http(s) URL: %s", c.APIBaseURL)
	}
	if c.DataDir == "" {
		return errors.New("DataDir is required")
	}
	if c.Store != "diskv" && c.Store != "sqlite" {
		return fmt.Errorf("Store must be diskv or sqlite: %s", c.Store)
	}
	if c.TelegramToken != "" && c.TelegramChatID == 0 {
		return errors.New("TelegramChatID is required when TelegramToken is set")
	}
	return nil
}

func (c Config) TelegramEnabled() bool {
	return c.TelegramToken != "" && c.TelegramChatID != 0
}
