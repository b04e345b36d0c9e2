package app

import (
	"errors"
	"io/fs"
	"time"

	"github.com/joho/godotenv"

	"github.com/yungbote/kiosk-backend/internal/clients/redis"
	"github.com/yungbote/kiosk-backend/internal/data/db"
	"github.com/yungbote/kiosk-backend/internal/platform/envutil"
	"github.com/yungbote/kiosk-backend/internal/platform/logger"
)

type Config struct {
	Port        string
	LogMode     string
	ServiceName string
	Environment string
	Version     string

	DB    db.Config
	Redis redis.Config

	UploadRootFolder string
	PresignTTL       time.Duration

	JWTSecretKey      string
	AdminPasswordHash string
	AccessTokenTTL    time.Duration

	CORSOrigins []string
}

// LoadEnvFile loads .env (or the given files) without overriding variables
// that are already set. A missing file is not an error.
func LoadEnvFile(files ...string) error {
	err := godotenv.Load(files...)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Port:        envutil.String("PORT", "8080"),
		LogMode:     envutil.String("LOG_MODE", "development"),
		ServiceName: envutil.String("OTEL_SERVICE_NAME", "kiosk-backend"),
		Environment: envutil.String("APP_ENV", "development"),
		Version:     envutil.String("APP_VERSION", ""),
		DB: db.Config{
			Driver:     envutil.String("DB_DRIVER", db.DriverPostgres),
			Host:       envutil.String("POSTGRES_HOST", "localhost"),
			Port:       envutil.String("POSTGRES_PORT", "5432"),
			User:       envutil.String("POSTGRES_USER", "postgres"),
			Password:   envutil.String("POSTGRES_PASSWORD", ""),
			Name:       envutil.String("POSTGRES_NAME", "kiosk"),
			SSLMode:    envutil.String("POSTGRES_SSLMODE", "disable"),
			SQLitePath: envutil.String("SQLITE_PATH", "kiosk.db"),
		},
		Redis:             redis.ConfigFromEnv(),
		UploadRootFolder:  envutil.String("UPLOAD_ROOT_FOLDER", "kiosk"),
		PresignTTL:        envutil.Seconds("PRESIGN_TTL_SECONDS", 60*time.Second),
		JWTSecretKey:      envutil.String("JWT_SECRET_KEY", "defaultsecret"),
		AdminPasswordHash: envutil.String("ADMIN_PASSWORD_HASH", ""),
		AccessTokenTTL:    envutil.Seconds("ACCESS_TOKEN_TTL", 12*time.Hour),
		CORSOrigins:       envutil.List("CORS_ALLOWED_ORIGINS", nil),
	}
	if cfg.JWTSecretKey == "defaultsecret" {
		log.Warn("JWT_SECRET_KEY not set; using the development default")
	}
	if cfg.AdminPasswordHash == "" {
		log.Warn("ADMIN_PASSWORD_HASH not set; admin login is disabled")
	}
	return cfg
}
