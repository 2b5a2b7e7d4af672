package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Store     StoreConfig     `mapstructure:"store"`
	Quiz      QuizConfig      `mapstructure:"quiz"`
	Admin     AdminConfig     `mapstructure:"admin"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Archive   ArchiveConfig   `mapstructure:"archive"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type ServerConfig struct {
	Port      string `mapstructure:"port" validate:"required,numeric"`
	Mode      string `mapstructure:"mode" validate:"oneof=debug release test"`
	PublicDir string `mapstructure:"public_dir"`
	AssetsDir string `mapstructure:"assets_dir"`
}

type LogConfig struct {
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" validate:"gte=0"`
	MaxBackups int    `mapstructure:"max_backups" validate:"gte=0"`
	MaxAgeDays int    `mapstructure:"max_age_days" validate:"gte=0"`
}

// StoreConfig describes the append-only results file. AnswerColumns fixes the
// number of q0..qN columns written in the header and is the upper bound of any
// question bank size.
type StoreConfig struct {
	ResultsFile   string `mapstructure:"results_file" validate:"required"`
	AnswerColumns int    `mapstructure:"answer_columns" validate:"gt=0,lte=200"`
}

type QuizConfig struct {
	AllowedDomains []string `mapstructure:"allowed_domains" validate:"required,min=1,dive,required,fqdn"`
	BankFile       string   `mapstructure:"bank_file" validate:"required"`
	WatchBankFile  bool     `mapstructure:"watch_bank_file"`
	Logo           string   `mapstructure:"logo"`
}

type AdminConfig struct {
	Username     string `mapstructure:"username"`
	PasswordHash string `mapstructure:"password_hash"`
}

// Configured reports whether an admin account can log in at all.
func (a AdminConfig) Configured() bool {
	return a.Username != "" && a.PasswordHash != ""
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	ExpireTime time.Duration `mapstructure:"expire_hours"`
}

type ArchiveConfig struct {
	Type          string `mapstructure:"type" validate:"oneof=none local minio oss"`
	LocalPath     string `mapstructure:"local_path" validate:"required_if=Type local"`
	MinioEndpoint string `mapstructure:"minio_endpoint" validate:"required_if=Type minio"`
	MinioAccessID string `mapstructure:"minio_access_key"`
	MinioSecret   string `mapstructure:"minio_secret_key"`
	MinioBucket   string `mapstructure:"minio_bucket" validate:"required_if=Type minio"`
	MinioSecure   bool   `mapstructure:"minio_secure"`
	OSSEndpoint   string `mapstructure:"oss_endpoint" validate:"required_if=Type oss"`
	OSSAccessKey  string `mapstructure:"oss_access_key"`
	OSSSecretKey  string `mapstructure:"oss_secret_key"`
	OSSBucket     string `mapstructure:"oss_bucket" validate:"required_if=Type oss"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint" validate:"required_if=Enabled true"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests" validate:"gt=0"`
	WindowMinutes int `mapstructure:"window_minutes" validate:"gt=0"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "3000")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.public_dir", "public")
	v.SetDefault("server.assets_dir", "assets")

	v.SetDefault("log.file", "logs/app.log")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 30)

	v.SetDefault("store.results_file", "results.csv")
	v.SetDefault("store.answer_columns", 20)

	v.SetDefault("quiz.allowed_domains", []string{"telecom-paris.fr", "imt.fr"})
	v.SetDefault("quiz.bank_file", "quiz.yaml")
	v.SetDefault("quiz.watch_bank_file", true)
	v.SetDefault("quiz.logo", "logo.png")

	v.SetDefault("jwt.expire_hours", 12)

	v.SetDefault("archive.type", "none")
	v.SetDefault("archive.local_path", "archives")

	v.SetDefault("cors.allowed_origins", []string{"*"})

	v.SetDefault("rate_limit.max_requests", 30)
	v.SetDefault("rate_limit.window_minutes", 1)
}

// LoadConfig reads configs/config.yaml (optional), a .env file (optional) and
// the environment, in increasing order of precedence.
func LoadConfig(path string) (*Config, error) {
	return LoadConfigWith(viper.New(), path)
}

// LoadConfigWith is LoadConfig on a caller-supplied viper instance, so flags
// bound by main take precedence over file and environment values.
func LoadConfigWith(v *viper.Viper, path string) (*Config, error) {
	// A missing .env is the normal case outside development.
	_ = godotenv.Load()

	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("CYBER_QUIZ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Server
	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.mode", "SERVER_MODE")

	// Store
	v.BindEnv("store.results_file", "RESULTS_FILE")

	// Quiz
	v.BindEnv("quiz.allowed_domains", "ALLOWED_DOMAINS")
	v.BindEnv("quiz.bank_file", "QUIZ_BANK_FILE")

	// Admin / JWT
	v.BindEnv("admin.username", "ADMIN_USERNAME")
	v.BindEnv("admin.password_hash", "ADMIN_PASSWORD_HASH")
	v.BindEnv("jwt.secret", "JWT_SECRET")

	// Archive
	v.BindEnv("archive.type", "ARCHIVE_TYPE")
	v.BindEnv("archive.minio_endpoint", "MINIO_ENDPOINT")
	v.BindEnv("archive.minio_access_key", "MINIO_ACCESS_KEY")
	v.BindEnv("archive.minio_secret_key", "MINIO_SECRET_KEY")
	v.BindEnv("archive.minio_bucket", "MINIO_BUCKET")
	v.BindEnv("archive.oss_endpoint", "OSS_ENDPOINT")
	v.BindEnv("archive.oss_access_key", "OSS_ACCESS_KEY")
	v.BindEnv("archive.oss_secret_key", "OSS_SECRET_KEY")
	v.BindEnv("archive.oss_bucket", "OSS_BUCKET")

	v.BindEnv("cors.allowed_origins", "CORS_ALLOWED_ORIGINS")

	// Tracing
	v.BindEnv("tracing.enabled", "TRACING_ENABLED")
	v.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.JWT.ExpireTime = cfg.JWT.ExpireTime * time.Hour
	cfg.Quiz.AllowedDomains = normalizeDomains(cfg.Quiz.AllowedDomains)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	if cfg.Admin.Configured() && len(cfg.JWT.Secret) < 32 {
		return nil, fmt.Errorf("JWT secret is too short (%d chars), must be at least 32 characters when an admin is configured", len(cfg.JWT.Secret))
	}

	if cfg.Archive.Type == "local" {
		if _, err := os.Stat(cfg.Archive.LocalPath); os.IsNotExist(err) {
			os.MkdirAll(cfg.Archive.LocalPath, 0755)
		}
	}

	return &cfg, nil
}

// Validate checks the struct tags of cfg and joins every failure into one error.
func Validate(cfg *Config) error {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		var invalid *validator.InvalidValidationError
		if errors.As(err, &invalid) {
			return fmt.Errorf("config validator: %w", err)
		}

		var messages []string
		for _, fe := range err.(validator.ValidationErrors) {
			messages = append(messages, fmt.Sprintf("field '%s' failed '%s' (value: '%v')", fe.Namespace(), fe.Tag(), fe.Value()))
		}
		return fmt.Errorf("invalid configuration:\n- %s", strings.Join(messages, "\n- "))
	}
	return nil
}

// normalizeDomains lower-cases entries and splits comma-separated values, which
// is how ALLOWED_DOMAINS arrives from the environment.
func normalizeDomains(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, entry := range in {
		for _, d := range strings.Split(entry, ",") {
			d = strings.ToLower(strings.TrimSpace(d))
			d = strings.TrimPrefix(d, "@")
			if d == "" || seen[d] {
				continue
			}
			seen[d] = true
			out = append(out, d)
		}
	}
	return out
}
