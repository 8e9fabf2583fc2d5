// Package config loads settings.toml, BLOG_ environment overrides and
// defaults into a validated Config.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"blogsite/app/cache"
	"blogsite/app/mailer"
	"blogsite/app/search"

	"github.com/fsnotify/fsnotify"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const (
	DriverBadger   = "badger"
	DriverPostgres = "postgres"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Store    StoreConfig    `mapstructure:"store"`
	Blog     BlogConfig     `mapstructure:"blog"`
	Search   SearchConfig   `mapstructure:"search"`
	Comments CommentsConfig `mapstructure:"comments"`
	Mail     mailer.Config  `mapstructure:"mail"`
	Cache    cache.Config   `mapstructure:"cache"`
	Log      LogConfig      `mapstructure:"log"`
	Jobs     JobsConfig     `mapstructure:"jobs"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	BaseURL         string        `mapstructure:"base_url"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type StoreConfig struct {
	Driver   string         `mapstructure:"driver"`
	Badger   BadgerConfig   `mapstructure:"badger"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type BadgerConfig struct {
	Path string `mapstructure:"path"`
}

type PostgresConfig struct {
	DSN      string `mapstructure:"dsn"`
	MaxConns int32  `mapstructure:"max_conns"`
}

type BlogConfig struct {
	PageSize     int    `mapstructure:"page_size"`
	SimilarPosts int    `mapstructure:"similar_posts"`
	Timezone     string `mapstructure:"timezone"`
}

// Location resolves Timezone.
func (b BlogConfig) Location() (*time.Location, error) {
	return time.LoadLocation(b.Timezone)
}

type SearchConfig struct {
	Config            string `mapstructure:"config"`
	search.Thresholds `mapstructure:",squash"`
}

type CommentsConfig struct {
	AutoActivate bool `mapstructure:"auto_activate"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type JobsConfig struct {
	SitemapRefresh string `mapstructure:"sitemap_refresh"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.base_url", "")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("store.driver", DriverBadger)
	v.SetDefault("store.badger.path", "data/badger")
	v.SetDefault("store.postgres.dsn", "")
	v.SetDefault("store.postgres.max_conns", 10)

	v.SetDefault("blog.page_size", 10)
	v.SetDefault("blog.similar_posts", 4)
	v.SetDefault("blog.timezone", "UTC")

	v.SetDefault("search.config", search.DefaultConfig)
	v.SetDefault("search.min_rank", search.DefaultThresholds.MinRank)
	v.SetDefault("search.min_similarity", search.DefaultThresholds.MinSimilarity)

	v.SetDefault("comments.auto_activate", false)

	v.SetDefault("mail.backend", mailer.BackendConsole)
	v.SetDefault("mail.host", "localhost")
	v.SetDefault("mail.port", 587)
	v.SetDefault("mail.username", "")
	v.SetDefault("mail.password", "")
	v.SetDefault("mail.from", "blog@example.com")
	v.SetDefault("mail.timeout", "10s")

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl", "5m")
	v.SetDefault("cache.max_cost", 10000)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("jobs.sitemap_refresh", "@every 15m")
}

// New returns a viper instance that looks for settings.toml in . and .. and
// reads BLOG_ prefixed environment variables.
func New() *viper.Viper {
	v := viper.New()
	v.AddConfigPath(".")
	v.AddConfigPath("..")
	v.SetConfigName("settings")
	v.SetConfigType("toml")
	v.SetEnvPrefix("BLOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// Load reads the config file, if any, and decodes the result. A missing file
// is not an error.
func Load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read settings: %w", err)
		}
		log.Debug().Msg("No settings file found, using defaults")
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return &cfg, nil
}

// Watch calls onChange with the reloaded config whenever the settings file
// changes. Invalid edits are logged and ignored.
func Watch(v *viper.Viper, onChange func(*Config)) {
	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := decode(v)
		if err != nil {
			log.Error().Err(err).Str("file", e.Name).Msg("Ignoring invalid settings change")
			return
		}
		log.Info().Str("file", e.Name).Msg("Settings reloaded")
		onChange(cfg)
	})
	v.WatchConfig()
}

// Validate checks every section.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Server),
		validation.Field(&c.Store),
		validation.Field(&c.Blog),
		validation.Field(&c.Search),
		validation.Field(&c.Mail, validation.By(validateMail)),
		validation.Field(&c.Log),
		validation.Field(&c.Jobs),
	)
}

func (s ServerConfig) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Addr, validation.Required),
		validation.Field(&s.BaseURL, is.URL),
	)
}

func (s StoreConfig) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Driver, validation.Required, validation.In(DriverBadger, DriverPostgres)),
		validation.Field(&s.Postgres, validation.By(func(any) error {
			if s.Driver != DriverPostgres {
				return nil
			}
			return validation.Validate(s.Postgres.DSN, validation.Required.Error("dsn is required for the postgres driver"))
		})),
	)
}

func (b BlogConfig) Validate() error {
	return validation.ValidateStruct(&b,
		validation.Field(&b.PageSize, validation.Required, validation.Min(1)),
		validation.Field(&b.SimilarPosts, validation.Min(0)),
		validation.Field(&b.Timezone, validation.By(func(any) error {
			_, err := b.Location()
			return err
		})),
	)
}

func (s SearchConfig) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Config, validation.By(func(any) error {
			_, err := search.LookupConfig(s.Config)
			return err
		})),
		validation.Field(&s.MinRank, validation.Min(0.0)),
		validation.Field(&s.MinSimilarity, validation.Min(0.0), validation.Max(1.0)),
	)
}

func validateMail(value any) error {
	m := value.(mailer.Config)
	return validation.ValidateStruct(&m,
		validation.Field(&m.Backend, validation.In(mailer.BackendSMTP, mailer.BackendConsole, mailer.BackendMemory)),
		validation.Field(&m.From, validation.Required, is.EmailFormat),
		validation.Field(&m.Host, validation.When(m.Backend == mailer.BackendSMTP, validation.Required)),
	)
}

func (l LogConfig) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Level, validation.In("trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled")),
		validation.Field(&l.Format, validation.In("console", "json")),
	)
}

func (j JobsConfig) Validate() error {
	return validation.ValidateStruct(&j,
		validation.Field(&j.SitemapRefresh, validation.By(func(any) error {
			if j.SitemapRefresh == "" {
				return nil
			}
			_, err := cron.ParseStandard(j.SitemapRefresh)
			return err
		})),
	)
}
