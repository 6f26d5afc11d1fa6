package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	envPort                  = "PORT"
	envServerReadTimeout     = "SERVER_READ_TIMEOUT"
	envServerWriteTimeout    = "SERVER_WRITE_TIMEOUT"
	envServerShutdownTimeout = "SERVER_SHUTDOWN_TIMEOUT"
	envLogLevel              = "LOG_LEVEL"
	envLogFormat             = "LOG_FORMAT"
	envStoreDriver           = "STORE_DRIVER"
	envSQLitePath            = "SQLITE_PATH"
	envDBHost                = "DB_HOST"
	envDBPort                = "DB_PORT"
	envDBName                = "DB_NAME"
	envDBUser                = "DB_USER"
	envDBPassword            = "DB_PASSWORD"
	envDBSSLMode             = "DB_SSL_MODE"
	envDBMaxConns            = "DB_MAX_CONNS"
	envDBMinConns            = "DB_MIN_CONNS"
	envRedisAddr             = "REDIS_ADDR"
	envRedisPassword         = "REDIS_PASSWORD"
	envRedisDB               = "REDIS_DB"
	envRedisKeyPrefix        = "REDIS_KEY_PREFIX"
	envMongoURI              = "MONGO_URI"
	envMongoDatabase         = "MONGO_DATABASE"
	envBlobDriver            = "BLOB_DRIVER"
	envAWSRegion             = "REGION"
	envAWSAccessKeyID        = "AWS_ACCESS_KEY_ID"
	envAWSSecretAccessKey    = "AWS_SECRET_ACCESS_KEY"
	envS3Bucket              = "S3_BUCKET"
	envJWTSecret             = "JWT_SECRET"
	envJWTExpiry             = "JWT_EXPIRY_MINUTES"
	envDownloadURLTimeLimit  = "DOWNLOAD_URL_TIME_LIMIT"
	envMaxUploadSize         = "MAX_UPLOAD_SIZE"
	envPublicBaseURL         = "PUBLIC_BASE_URL"
	envPaymentDelay          = "PAYMENT_DELAY"
	envSessionTTL            = "SESSION_TTL"
	envSeedDemoData          = "SEED_DEMO_DATA"
	envMetricsEnabled        = "METRICS_ENABLED"
	envProfilingEnabled      = "PROFILING_ENABLED"
)

const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
	StoreMongo    = "mongo"

	BlobMemory = "memory"
	BlobS3     = "s3"
)

const (
	defaultServerPort         = "8080"
	defaultServerReadTimeout  = 10 * time.Second
	defaultServerWriteTimeout = 30 * time.Second
	defaultServerShutdown     = 10 * time.Second
	defaultLogLevel           = "info"
	defaultLogFormat          = "json"
	defaultStoreDriver        = StoreMemory
	defaultSQLitePath         = "clientkit.db"
	defaultDBHost             = "localhost"
	defaultDBPort             = 5432
	defaultDBName             = "clientkit"
	defaultDBUser             = "clientkit_app"
	defaultDBSSLMode          = "disable"
	defaultDBMaxConns         = 10
	defaultDBMinConns         = 2
	defaultRedisAddr          = "localhost:6379"
	defaultRedisKeyPrefix     = "clientkit:"
	defaultMongoURI           = "mongodb://localhost:27017"
	defaultMongoDatabase      = "clientkit"
	defaultBlobDriver         = BlobMemory
	defaultJWTExpiry          = 24 * time.Hour
	defaultPresignedURLExpiry = 15 * time.Minute
	defaultMaxUploadSize      = int64(25 * 1024 * 1024)
	defaultPublicBaseURL      = "http://localhost:8080"
	defaultPaymentDelay       = 2 * time.Second
	defaultSessionTTL         = 2 * time.Hour
	minJWTSecretLength        = 32
	minUniqueCharsInSecret    = 16
	minRepeatedCharThreshold  = 4
	maxRepeatedChars          = 2
)

const (
	errPortRequiredFmt         = "PORT must be set"
	errInvalidLogFormatFmt     = "LOG_FORMAT must be json or console, got %q"
	errInvalidStoreDriverFmt   = "STORE_DRIVER %q is not supported"
	errInvalidBlobDriverFmt    = "BLOB_DRIVER %q is not supported"
	errJWTSecretMinLengthFmt   = "JWT_SECRET must be at least %d characters"
	errJWTSecretLowEntropyFmt  = "JWT_SECRET has insufficient entropy (appears non-random). Use a cryptographically secure random string."
	errMaxUploadSizeFmt        = "MAX_UPLOAD_SIZE must be positive"
	errPublicBaseURLFmt        = "PUBLIC_BASE_URL must start with http:// or https://"
	errNonPositiveDurationFmt  = "%s must be positive"
	errInvalidConfigurationFmt = "invalid configuration: %w"
)

type Config struct {
	Server   ServerConfig
	Log      LogConfig
	Store    StoreConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Mongo    MongoConfig
	Blob     BlobConfig
	AWS      AWSConfig
	JWT      JWTConfig
	App      AppConfig
}

type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

type StoreConfig struct {
	Driver     string
	SQLitePath string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
	SSLMode  string
	MaxConns int
	MinConns int
}

type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

type MongoConfig struct {
	URI      string
	Database string
}

type BlobConfig struct {
	Driver string
	Bucket string
}

type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

type JWTConfig struct {
	Secret         string
	ExpiryDuration time.Duration
}

type AppConfig struct {
	PresignedURLExpiry time.Duration
	MaxUploadSize      int64
	PublicBaseURL      string
	PaymentDelay       time.Duration
	SessionTTL         time.Duration
	SeedDemoData       bool
	MetricsEnabled     bool
	ProfilingEnabled   bool
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv(envPort, defaultServerPort),
			ReadTimeout:     getDurationEnv(envServerReadTimeout, defaultServerReadTimeout),
			WriteTimeout:    getDurationEnv(envServerWriteTimeout, defaultServerWriteTimeout),
			ShutdownTimeout: getDurationEnv(envServerShutdownTimeout, defaultServerShutdown),
		},
		Log: LogConfig{
			Level:  getEnv(envLogLevel, defaultLogLevel),
			Format: getEnv(envLogFormat, defaultLogFormat),
		},
		Store: StoreConfig{
			Driver:     strings.ToLower(getEnv(envStoreDriver, defaultStoreDriver)),
			SQLitePath: getEnv(envSQLitePath, defaultSQLitePath),
		},
		Database: DatabaseConfig{
			Host:     getEnv(envDBHost, defaultDBHost),
			Port:     getIntEnv(envDBPort, defaultDBPort),
			Database: getEnv(envDBName, defaultDBName),
			User:     getEnv(envDBUser, defaultDBUser),
			Password: os.Getenv(envDBPassword),
			SSLMode:  getEnv(envDBSSLMode, defaultDBSSLMode),
			MaxConns: getIntEnv(envDBMaxConns, defaultDBMaxConns),
			MinConns: getIntEnv(envDBMinConns, defaultDBMinConns),
		},
		Redis: RedisConfig{
			Addr:      getEnv(envRedisAddr, defaultRedisAddr),
			Password:  os.Getenv(envRedisPassword),
			DB:        getIntEnv(envRedisDB, 0),
			KeyPrefix: getEnv(envRedisKeyPrefix, defaultRedisKeyPrefix),
		},
		Mongo: MongoConfig{
			URI:      getEnv(envMongoURI, defaultMongoURI),
			Database: getEnv(envMongoDatabase, defaultMongoDatabase),
		},
		Blob: BlobConfig{
			Driver: strings.ToLower(getEnv(envBlobDriver, defaultBlobDriver)),
			Bucket: os.Getenv(envS3Bucket),
		},
		AWS: AWSConfig{
			Region:          os.Getenv(envAWSRegion),
			AccessKeyID:     os.Getenv(envAWSAccessKeyID),
			SecretAccessKey: os.Getenv(envAWSSecretAccessKey),
		},
		JWT: JWTConfig{
			Secret:         os.Getenv(envJWTSecret),
			ExpiryDuration: getDurationEnv(envJWTExpiry, defaultJWTExpiry),
		},
		App: AppConfig{
			PresignedURLExpiry: getDurationEnv(envDownloadURLTimeLimit, defaultPresignedURLExpiry),
			MaxUploadSize:      getInt64Env(envMaxUploadSize, defaultMaxUploadSize),
			PublicBaseURL:      strings.TrimRight(getEnv(envPublicBaseURL, defaultPublicBaseURL), "/"),
			PaymentDelay:       getDurationEnv(envPaymentDelay, defaultPaymentDelay),
			SessionTTL:         getDurationEnv(envSessionTTL, defaultSessionTTL),
			SeedDemoData:       getBoolEnv(envSeedDemoData, false),
			MetricsEnabled:     getBoolEnv(envMetricsEnabled, false),
			ProfilingEnabled:   getBoolEnv(envProfilingEnabled, false),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf(errInvalidConfigurationFmt, err)
	}

	return cfg, nil
}

// Validate checks the settings that apply to the selected drivers. Backend
// credentials are only required when that backend is in use.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf(errPortRequiredFmt)
	}

	if c.Log.Format != "json" && c.Log.Format != "console" {
		return fmt.Errorf(errInvalidLogFormatFmt, c.Log.Format)
	}

	switch c.Store.Driver {
	case StoreMemory:
	case StoreSQLite:
		if c.Store.SQLitePath == "" {
			return messages.requiredEnvNotSet(envSQLitePath)
		}
	case StorePostgres:
		if c.Database.Password == "" {
			return messages.requiredEnvNotSet(envDBPassword)
		}
	case StoreRedis:
		if c.Redis.Addr == "" {
			return messages.requiredEnvNotSet(envRedisAddr)
		}
	case StoreMongo:
		if c.Mongo.URI == "" {
			return messages.requiredEnvNotSet(envMongoURI)
		}
	default:
		return fmt.Errorf(errInvalidStoreDriverFmt, c.Store.Driver)
	}

	switch c.Blob.Driver {
	case BlobMemory:
	case BlobS3:
		required := []struct{ key, value string }{
			{envS3Bucket, c.Blob.Bucket},
			{envAWSRegion, c.AWS.Region},
			{envAWSAccessKeyID, c.AWS.AccessKeyID},
			{envAWSSecretAccessKey, c.AWS.SecretAccessKey},
		}
		for _, r := range required {
			if r.value == "" {
				return messages.requiredEnvNotSet(r.key)
			}
		}
	default:
		return fmt.Errorf(errInvalidBlobDriverFmt, c.Blob.Driver)
	}

	if c.JWT.Secret == "" {
		return messages.requiredEnvNotSet(envJWTSecret)
	}

	if len(c.JWT.Secret) < minJWTSecretLength {
		return fmt.Errorf(errJWTSecretMinLengthFmt, minJWTSecretLength)
	}

	if !hasMinimumEntropy(c.JWT.Secret) {
		return fmt.Errorf(errJWTSecretLowEntropyFmt)
	}

	if c.App.MaxUploadSize <= 0 {
		return fmt.Errorf(errMaxUploadSizeFmt)
	}

	if !strings.HasPrefix(c.App.PublicBaseURL, "http://") && !strings.HasPrefix(c.App.PublicBaseURL, "https://") {
		return fmt.Errorf(errPublicBaseURLFmt)
	}

	if c.App.SessionTTL <= 0 {
		return fmt.Errorf(errNonPositiveDurationFmt, envSessionTTL)
	}

	return nil
}

func hasMinimumEntropy(secret string) bool {
	if len(secret) < minJWTSecretLength {
		return false
	}

	charCounts := make(map[rune]int)
	for _, char := range secret {
		charCounts[char]++
	}

	if len(charCounts) < minUniqueCharsInSecret {
		return false
	}

	repeatedChars := 0
	for _, count := range charCounts {
		if count > len(secret)/minRepeatedCharThreshold {
			repeatedChars++
		}
	}

	return repeatedChars <= maxRepeatedChars
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getInt64Env(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		if minutes, err := strconv.Atoi(value); err == nil {
			return time.Duration(minutes) * time.Minute
		}
	}
	return defaultValue
}
