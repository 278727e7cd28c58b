// Package config loads tokenviz settings.
//
// Settings are layered, later layers winning:
//
//  1. built-in defaults ([Default])
//  2. the TOML file at $XDG_CONFIG_HOME/tokenviz/config.toml, if present
//  3. a .env file, if present
//  4. process environment variables
//  5. command-line flags, applied by the caller
//
// Environment variables:
//
//	SERVER_HOST          server.host
//	PORT, SERVER_PORT    server.port (PORT wins)
//	CORS_ORIGINS         server.cors_origins, comma-separated
//	TOKENVIZ_API_URL     client.api_url
//	TOKENVIZ_SOURCE      client.source
//	TOKENVIZ_SPEED       playback.speed
//	TOKENVIZ_REDIS_ADDR  cache.redis_addr, selects the redis backend
//	TOKENVIZ_MONGO_URI   store.mongo_uri, selects the mongo backend
package config

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/JaceDashS/gpt-3d-visualizer/pkg/errors"
)

const appName = "tokenviz"

// Source names for client.source.
const (
	SourceSynthetic = "synthetic"
	SourceHTTP      = "http"
	SourceFile      = "file"
)

// Backend names for cache.backend and store.backend.
const (
	BackendNone   = "none"
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Duration is a time.Duration written as a string ("300ms", "24h") in TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config is the full tokenviz configuration.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Client   ClientConfig   `toml:"client"`
	Playback PlaybackConfig `toml:"playback"`
	Cache    CacheConfig    `toml:"cache"`
	Store    StoreConfig    `toml:"store"`
}

// ServerConfig configures `tokenviz serve`.
type ServerConfig struct {
	Host        string   `toml:"host"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
	Service     string   `toml:"service"`
	Seed        uint64   `toml:"seed"`
}

// ClientConfig selects where `play` and `fetch` get token streams.
type ClientConfig struct {
	Source  string   `toml:"source"`
	APIURL  string   `toml:"api_url"`
	Seed    uint64   `toml:"seed"`
	Retries int      `toml:"retries"`
	Prewarm bool     `toml:"prewarm"`
	Timeout Duration `toml:"timeout"`
}

// PlaybackConfig tunes the sequencer.
type PlaybackConfig struct {
	Speed      float64  `toml:"speed"`
	PauseMode  string   `toml:"pause_mode"`
	StartDelay Duration `toml:"start_delay"`
	FPS        int      `toml:"fps"`
	Autoplay   bool     `toml:"autoplay"`
}

// CacheConfig selects the response cache.
type CacheConfig struct {
	Backend       string   `toml:"backend"`
	Dir           string   `toml:"dir"`
	TTL           Duration `toml:"ttl"`
	RedisAddr     string   `toml:"redis_addr"`
	RedisPassword string   `toml:"redis_password"`
	RedisDB       int      `toml:"redis_db"`
}

// StoreConfig selects the trajectory archive.
type StoreConfig struct {
	Backend         string `toml:"backend"`
	Dir             string `toml:"dir"`
	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8080,
			CORSOrigins: []string{"http://localhost:3000"},
			Service:     "GPT Visualizer",
			Seed:        42,
		},
		Client: ClientConfig{
			Source:  SourceSynthetic,
			APIURL:  "http://localhost:8080",
			Seed:    42,
			Retries: 3,
			Prewarm: true,
			Timeout: Duration{10 * time.Second},
		},
		Playback: PlaybackConfig{
			Speed:      1,
			PauseMode:  "finish-step",
			StartDelay: Duration{300 * time.Millisecond},
			FPS:        60,
			Autoplay:   true,
		},
		Cache: CacheConfig{
			Backend: BackendFile,
			TTL:     Duration{24 * time.Hour},
		},
		Store: StoreConfig{
			Backend: BackendFile,
		},
	}
}

// LoadOptions controls [Load]. Zero values pick the standard locations.
type LoadOptions struct {
	// Path is the TOML file. When set, the file must exist.
	Path string
	// EnvFile is the dotenv file. Defaults to ".env"; a missing file is fine.
	EnvFile string
	// Getenv reads the environment. Defaults to os.Getenv.
	Getenv func(string) string
}

// Load builds the configuration from defaults, file and environment, then
// validates it.
func Load(opts LoadOptions) (*Config, error) {
	cfg := Default()

	path, required := opts.Path, opts.Path != ""
	if path == "" {
		if dir, err := Dir(); err == nil {
			path = filepath.Join(dir, "config.toml")
		}
	}
	if path != "" {
		if err := cfg.loadFile(path, required); err != nil {
			return nil, err
		}
	}

	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	dotenv, err := godotenv.Read(envFile)
	if err != nil && !stderrors.Is(err, os.ErrNotExist) {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read %s", envFile)
	}
	lookup := func(key string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return dotenv[key]
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string, required bool) error {
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) && !required {
			return nil
		}
		if stderrors.Is(err, os.ErrNotExist) {
			return errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
		}
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return errors.New(errors.ErrCodeInvalidFormat, "unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) string) error {
	if v := lookup("SERVER_HOST"); v != "" {
		c.Server.Host = v
	}
	for _, key := range []string{"SERVER_PORT", "PORT"} {
		if v := lookup(key); v != "" {
			port, err := strconv.Atoi(v)
			if err != nil {
				return errors.New(errors.ErrCodeInvalidInput, "%s must be a number, got %q", key, v)
			}
			c.Server.Port = port
		}
	}
	if v := lookup("CORS_ORIGINS"); v != "" {
		c.Server.CORSOrigins = splitList(v)
	}
	if v := lookup("TOKENVIZ_API_URL"); v != "" {
		c.Client.APIURL = v
	}
	if v := lookup("TOKENVIZ_SOURCE"); v != "" {
		c.Client.Source = v
	}
	if v := lookup("TOKENVIZ_SPEED"); v != "" {
		speed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return errors.New(errors.ErrCodeInvalidInput, "TOKENVIZ_SPEED must be a number, got %q", v)
		}
		c.Playback.Speed = speed
	}
	if v := lookup("TOKENVIZ_REDIS_ADDR"); v != "" {
		c.Cache.Backend = BackendRedis
		c.Cache.RedisAddr = v
	}
	if v := lookup("TOKENVIZ_MONGO_URI"); v != "" {
		c.Store.Backend = BackendMongo
		c.Store.MongoURI = v
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate checks ranges and backend names.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return errors.New(errors.ErrCodeInvalidInput, "server.port %d out of range", c.Server.Port)
	}
	if err := errors.ValidateSpeed(c.Playback.Speed); err != nil {
		return err
	}
	if c.Playback.FPS < 1 || c.Playback.FPS > 240 {
		return errors.New(errors.ErrCodeInvalidInput, "playback.fps must be in [1, 240], got %d", c.Playback.FPS)
	}
	switch c.Playback.PauseMode {
	case "", "finish-step", "freeze":
	default:
		return errors.New(errors.ErrCodeInvalidInput, "playback.pause_mode must be finish-step or freeze, got %q", c.Playback.PauseMode)
	}
	switch c.Client.Source {
	case SourceSynthetic, SourceFile:
	case SourceHTTP:
		if err := errors.ValidateURL(c.Client.APIURL); err != nil {
			return err
		}
	default:
		return errors.New(errors.ErrCodeInvalidInput, "client.source must be synthetic, http or file, got %q", c.Client.Source)
	}
	if c.Client.Retries < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "client.retries must be at least 1, got %d", c.Client.Retries)
	}
	switch c.Cache.Backend {
	case BackendNone, BackendMemory, BackendFile:
	case BackendRedis:
		if c.Cache.RedisAddr == "" {
			return errors.New(errors.ErrCodeInvalidInput, "cache.redis_addr is required for the redis backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown cache.backend %q", c.Cache.Backend)
	}
	switch c.Store.Backend {
	case BackendNone, BackendMemory, BackendFile:
	case BackendMongo:
		if c.Store.MongoURI == "" {
			return errors.New(errors.ErrCodeInvalidInput, "store.mongo_uri is required for the mongo backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown store.backend %q", c.Store.Backend)
	}
	return nil
}

// Dir returns the config directory (~/.config/tokenviz/).
func Dir() (string, error) {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

// CacheDir returns the cache directory (~/.cache/tokenviz/).
func CacheDir() (string, error) {
	return xdgDir("XDG_CACHE_HOME", ".cache")
}

// DataDir returns the data directory (~/.local/share/tokenviz/).
func DataDir() (string, error) {
	return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

func xdgDir(env, fallback string) (string, error) {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, fallback, appName), nil
}
