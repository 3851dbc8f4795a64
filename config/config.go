// Package config loads the process configuration once at start-up. The
// returned *Config is treated as read-only and passed to the components that
// need it.
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

const EnvProduction = "production"

type Config struct {
	Env          string `mapstructure:"app_env" validate:"required"`
	StaticDir    string `mapstructure:"static_dir"`
	Server       Server `mapstructure:"server"`
	Mongo        Mongo  `mapstructure:"mongodb"`
	AccessToken  Token  `mapstructure:"access_token"`
	RefreshToken Token  `mapstructure:"refresh_token"`
	Auth         Auth   `mapstructure:"auth"`
	Media        Media  `mapstructure:"media"`
	CORS         CORS   `mapstructure:"cors"`
	Log          Log    `mapstructure:"log"`
}

type Server struct {
	Port            int           `mapstructure:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type Mongo struct {
	URI            string        `mapstructure:"uri" validate:"required"`
	Database       string        `mapstructure:"database" validate:"required"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// Token holds the signing secret and lifetime of one token kind.
type Token struct {
	Secret    string        `mapstructure:"secret" validate:"required"`
	ExpiresIn time.Duration `mapstructure:"expires_in" validate:"gt=0"`
}

type Auth struct {
	BcryptCost int `mapstructure:"bcrypt_cost" validate:"min=4,max=31"`
}

// Media configures the S3 compatible media host and local upload staging.
type Media struct {
	Endpoint      string        `mapstructure:"endpoint"`
	Region        string        `mapstructure:"region" validate:"required"`
	Bucket        string        `mapstructure:"bucket" validate:"required"`
	AccessKey     string        `mapstructure:"access_key"`
	SecretKey     string        `mapstructure:"secret_key"`
	PublicURL     string        `mapstructure:"public_url"`
	UploadDir     string        `mapstructure:"upload_dir" validate:"required"`
	UploadTimeout time.Duration `mapstructure:"upload_timeout"`
	MaxUploadSize int64         `mapstructure:"max_upload_size" validate:"gt=0"`
}

// CORS lists the origins allowed to call the API from a browser. "*" allows
// any origin but disables credentialed requests.
type CORS struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type Log struct {
	Level  string `mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"omitempty,oneof=json console"`
}

var ErrInvalidConfig = errors.New("invalid config")

// IsProduction reports whether the service runs with production settings
// (secure cookies, JSON logs).
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, EnvProduction)
}

// Addr is the listen address derived from the server port.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

// Load reads the given dotenv files (".env" when none are given) and the
// process environment. Real environment variables always win over dotenv values.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("server.port", "SERVER_PORT", "PORT"); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_env", "development")
	v.SetDefault("static_dir", "public")

	v.SetDefault("server.port", 8000)
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("mongodb.uri", "mongodb://127.0.0.1:27017")
	v.SetDefault("mongodb.database", "vidhub")
	v.SetDefault("mongodb.connect_timeout", "10s")

	// secrets have no usable default; registering the key lets AutomaticEnv
	// pick them up during Unmarshal.
	v.SetDefault("access_token.secret", "")
	v.SetDefault("access_token.expires_in", "1h")
	v.SetDefault("refresh_token.secret", "")
	v.SetDefault("refresh_token.expires_in", "720h")

	v.SetDefault("auth.bcrypt_cost", 10)

	v.SetDefault("media.endpoint", "")
	v.SetDefault("media.region", "us-east-1")
	v.SetDefault("media.bucket", "")
	v.SetDefault("media.access_key", "")
	v.SetDefault("media.secret_key", "")
	v.SetDefault("media.public_url", "")
	// staged uploads are kept out of static_dir
	v.SetDefault("media.upload_dir", "tmp/uploads")
	v.SetDefault("media.upload_timeout", "30s")
	v.SetDefault("media.max_upload_size", 10<<20)

	v.SetDefault("cors.allowed_origins", []string{"*"})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "")
}
