package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/dmitrijs2005/gophchat/internal/flagx"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is prepended to every variable read by parseEnv, e.g.
// GOPHCHAT_DATABASE_DSN.
const EnvPrefix = "GOPHCHAT"

// EnvConfig lists the environment variables understood by the server.
// Unset variables leave the current value in place.
type EnvConfig struct {
	EndpointAddrHTTP            string        `envconfig:"HTTP_ADDR"`
	EndpointAddrGRPC            string        `envconfig:"GRPC_ADDR"`
	DatabaseDSN                 string        `envconfig:"DATABASE_DSN"`
	SecretKey                   string        `envconfig:"SECRET_KEY"`
	AccessTokenValidityDuration time.Duration `envconfig:"ACCESS_TOKEN_TTL"`
	BcryptCost                  int           `envconfig:"BCRYPT_COST"`
	AllowedOrigins              []string      `envconfig:"ALLOWED_ORIGINS"`
	MaxMessageSize              int64         `envconfig:"MAX_MESSAGE_SIZE"`
	LogLevel                    string        `envconfig:"LOG_LEVEL"`
	ShutdownTimeout             time.Duration `envconfig:"SHUTDOWN_TIMEOUT"`
	HealthCheckInterval         time.Duration `envconfig:"HEALTH_CHECK_INTERVAL"`
	S3RootUser                  string        `envconfig:"S3_ROOT_USER"`
	S3RootPassword              string        `envconfig:"S3_ROOT_PASSWORD"`
	S3Bucket                    string        `envconfig:"S3_BUCKET"`
	S3Region                    string        `envconfig:"S3_REGION"`
	S3BaseEndpoint              string        `envconfig:"S3_BASE_ENDPOINT"`
	AvatarURLValidityDuration   time.Duration `envconfig:"AVATAR_URL_TTL"`
}

// legacyEnv holds the unprefixed variables older deployments set.
type legacyEnv struct {
	Port      string `envconfig:"PORT"`
	JWTSecret string `envconfig:"JWT_SECRET"`
}

// parseEnv loads the dotenv file named by -envfile (".env" by default, a
// missing file is fine) and overlays environment variables onto config.
// Prefixed variables win over the legacy PORT and JWT_SECRET.
func parseEnv(config *Config) {
	if err := godotenv.Load(flagx.EnvFileFlag()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	var legacy legacyEnv
	if err := envconfig.Process("", &legacy); err != nil {
		panic(err)
	}
	if legacy.Port != "" {
		config.EndpointAddrHTTP = ":" + legacy.Port
	}
	setString(&config.SecretKey, legacy.JWTSecret)

	var e EnvConfig
	if err := envconfig.Process(EnvPrefix, &e); err != nil {
		panic(err)
	}
	e.applyTo(config)
}

func (e *EnvConfig) applyTo(config *Config) {
	setString(&config.EndpointAddrHTTP, e.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, e.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, e.DatabaseDSN)
	setString(&config.SecretKey, e.SecretKey)
	setDuration(&config.AccessTokenValidityDuration, e.AccessTokenValidityDuration)
	if e.BcryptCost != 0 {
		config.BcryptCost = e.BcryptCost
	}
	if len(e.AllowedOrigins) > 0 {
		config.AllowedOrigins = e.AllowedOrigins
	}
	if e.MaxMessageSize != 0 {
		config.MaxMessageSize = e.MaxMessageSize
	}
	setString(&config.LogLevel, e.LogLevel)
	setDuration(&config.ShutdownTimeout, e.ShutdownTimeout)
	setDuration(&config.HealthCheckInterval, e.HealthCheckInterval)
	setString(&config.S3RootUser, e.S3RootUser)
	setString(&config.S3RootPassword, e.S3RootPassword)
	setString(&config.S3Bucket, e.S3Bucket)
	setString(&config.S3Region, e.S3Region)
	setString(&config.S3BaseEndpoint, e.S3BaseEndpoint)
	setDuration(&config.AvatarURLValidityDuration, e.AvatarURLValidityDuration)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v time.Duration) {
	if v != 0 {
		*dst = v
	}
}
