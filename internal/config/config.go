package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix     = "MOODIFY_"
	configPathEnv = "MOODIFY_CONFIG"
)

type Gemini struct {
	APIKey   string        `koanf:"api_key"`
	BaseURL  string        `koanf:"base_url"`
	Model    string        `koanf:"model"`
	Versions string        `koanf:"versions"`
	Timeout  time.Duration `koanf:"timeout"`
	Breaker  bool          `koanf:"breaker"`
}

// VersionList splits the comma separated Versions setting.
func (g Gemini) VersionList() []string {
	out := []string{}
	for _, v := range strings.Split(g.Versions, ",") {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if !strings.HasPrefix(v, "/") {
			v = "/" + v
		}
		out = append(out, v)
	}
	return out
}

type Search struct {
	BaseURL      string        `koanf:"base_url"`
	Timeout      time.Duration `koanf:"timeout"`
	MaxBodyBytes int64         `koanf:"max_body_bytes"`
	UserAgent    string        `koanf:"user_agent"`
}

type Cache struct {
	Capacity int `koanf:"capacity"`
}

type Server struct {
	Addr      string `koanf:"addr"`
	RateLimit int    `koanf:"rate_limit"`
}

type Log struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type Config struct {
	Gemini Gemini `koanf:"gemini"`
	Search Search `koanf:"search"`
	Cache  Cache  `koanf:"cache"`
	Server Server `koanf:"server"`
	Log    Log    `koanf:"log"`
}

func init() {
	_ = godotenv.Load()
}

func Defaults() Config {
	return Config{
		Gemini: Gemini{
			BaseURL:  "https://generativelanguage.googleapis.com",
			Model:    "models/gemini-2.5-flash",
			Versions: "/v1beta,/v1",
			Timeout:  30 * time.Second,
			Breaker:  true,
		},
		Search: Search{
			BaseURL:      "https://www.youtube.com",
			Timeout:      5 * time.Second,
			MaxBodyBytes: 2 * 1024 * 1024,
			UserAgent:    "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/115.0",
		},
		Cache:  Cache{Capacity: 10000},
		Server: Server{Addr: ":8080", RateLimit: 60},
		Log:    Log{Level: "info", Format: "json"},
	}
}

// Load layers defaults, the optional YAML file and MOODIFY_* variables, in
// that order of precedence (lowest first).
func Load() (Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Defaults(), "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}
	if path := configFilePath(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return Config{}, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Gemini.APIKey = firstNonEmpty(cfg.Gemini.APIKey, os.Getenv("GEMINI_API_KEY"), os.Getenv("GOOGLE_API_KEY"))
	if len(cfg.Gemini.VersionList()) == 0 {
		return Config{}, fmt.Errorf("gemini.versions must name at least one api version")
	}
	return cfg, nil
}

// envKey maps MOODIFY_GEMINI_API_KEY to gemini.api_key. The first underscore
// after the prefix separates the section from the field.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
	if s == "config" {
		return ""
	}
	section, field, ok := strings.Cut(s, "_")
	if !ok {
		return s
	}
	return section + "." + field
}

func configFilePath() string {
	if p := os.Getenv(configPathEnv); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	p := filepath.Join(home, ".config", "moodify", "config.yaml")
	if _, err := os.Stat(p); err != nil {
		return ""
	}
	return p
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
