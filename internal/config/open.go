package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/JaceDashS/gpt-3d-visualizer/pkg/cache"
	"github.com/JaceDashS/gpt-3d-visualizer/pkg/errors"
	"github.com/JaceDashS/gpt-3d-visualizer/pkg/playback"
	"github.com/JaceDashS/gpt-3d-visualizer/pkg/server"
	"github.com/JaceDashS/gpt-3d-visualizer/pkg/source"
	"github.com/JaceDashS/gpt-3d-visualizer/pkg/store"
)

// PlaybackOptions converts the playback section.
func (c *Config) PlaybackOptions() (playback.Options, error) {
	mode, err := playback.ParsePauseMode(c.Playback.PauseMode)
	if err != nil {
		return playback.Options{}, err
	}
	o := playback.Options{
		StartDelay: c.Playback.StartDelay.Duration,
		Speed:      c.Playback.Speed,
		PauseMode:  mode,
	}
	if c.Playback.FPS > 0 {
		o.TickInterval = time.Second / time.Duration(c.Playback.FPS)
	}
	o.SetDefaults()
	return o, nil
}

// ServerConfig converts the server section.
func (c *Config) ServerConfig(version string) server.Config {
	sc := server.Config{
		Host:        c.Server.Host,
		Port:        c.Server.Port,
		CORSOrigins: c.Server.CORSOrigins,
		Service:     c.Server.Service,
		Version:     version,
		CacheTTL:    c.Cache.TTL.Duration,
	}
	sc.SetDefaults()
	return sc
}

// OpenCache opens the configured response cache. The caller closes it.
func (c *Config) OpenCache(ctx context.Context) (cache.Cache, error) {
	switch c.Cache.Backend {
	case BackendNone:
		return cache.NewNullCache(), nil
	case BackendMemory:
		return cache.NewMemoryCache(), nil
	case BackendRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     c.Cache.RedisAddr,
			Password: c.Cache.RedisPassword,
			DB:       c.Cache.RedisDB,
		})
		if err != nil {
			return nil, err
		}
		return rc, nil
	default:
		dir := c.Cache.Dir
		if dir == "" {
			d, err := CacheDir()
			if err != nil {
				return cache.NewNullCache(), nil
			}
			dir = d
		}
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			return nil, err
		}
		return fc, nil
	}
}

// OpenStore opens the configured trajectory archive, or returns nil for
// the none backend. The caller closes it.
func (c *Config) OpenStore(ctx context.Context) (store.Store, error) {
	switch c.Store.Backend {
	case BackendNone:
		return nil, nil
	case BackendMemory:
		return store.NewMemoryStore(), nil
	case BackendMongo:
		ms, err := store.NewMongoStore(ctx, store.MongoConfig{
			URI:        c.Store.MongoURI,
			Database:   c.Store.MongoDatabase,
			Collection: c.Store.MongoCollection,
		})
		if err != nil {
			return nil, err
		}
		return ms, nil
	default:
		dir := c.Store.Dir
		if dir == "" {
			if d, err := DataDir(); err == nil {
				dir = filepath.Join(d, "trajectories")
			}
		}
		fs, err := store.NewFileStore(dir)
		if err != nil {
			return nil, err
		}
		return fs, nil
	}
}

// OpenSource builds the configured client token source. path is the saved
// response for the file source. The HTTP source caches responses in
// respCache, which may be nil.
func (c *Config) OpenSource(path string, respCache cache.Cache, logger *log.Logger) (source.Source, error) {
	switch c.Client.Source {
	case SourceFile:
		if path == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "the file source needs a path")
		}
		return source.NewFile(path), nil
	case SourceHTTP:
		h, err := source.NewHTTP(c.Client.APIURL,
			source.WithCache(cache.Prefixed(respCache, "client:"), c.Cache.TTL.Duration),
			source.WithLogger(logger),
			source.WithRetry(c.Client.Retries, 500*time.Millisecond),
			source.WithTimeout(c.Client.Timeout.Duration))
		if err != nil {
			return nil, err
		}
		return h, nil
	default:
		return source.NewSynthetic(c.Client.Seed), nil
	}
}
