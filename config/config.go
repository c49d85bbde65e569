package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DefaultEnv                   = "development"
	DefaultPort                  = "8080"
	DefaultBasePath              = "/api/users"
	DefaultStoreDriver           = StoreMongo
	DefaultMongoDatabase         = "authly"
	DefaultAccessTokenExpiryMin  = 15
	DefaultRefreshTokenExpiryMin = 10080
	DefaultBcryptCost            = 10
	DefaultLoginMaxAttempts      = 5
	DefaultLoginWindowMinutes    = 15
	DefaultLogLevel              = "info"

	StoreMongo    = "mongo"
	StorePostgres = "postgres"
)

type Config struct {
	Env         string
	Port        string
	BasePath    string
	StoreDriver string

	MongoURI      string
	MongoDatabase string
	DBURL         string

	AccessTokenSecret  string
	RefreshTokenSecret string
	AccessExpiryMin    int
	RefreshExpiryMin   int
	BcryptCost         int

	LoginMaxAttempts       int
	LoginWindowMinutes     int
	RateLimitRedisAddr     string
	RateLimitRedisPassword string
	RateLimitRedisDB       int

	ClientURLs       []string
	SelfAccessRoutes bool
	ProxyHeader      string
	LogLevel         string
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads config/.env.prod when ENV=production and config/.env.dev otherwise.
// Process environment variables take precedence over file values. Missing
// required keys terminate the process.
func Load() *Config {
	env := getEnv("ENV", DefaultEnv)
	l := loader{file: readEnvFile(env)}

	cfg := &Config{
		Env:                    env,
		Port:                   l.get("PORT", DefaultPort),
		BasePath:               l.get("BASE_PATH", DefaultBasePath),
		StoreDriver:            strings.ToLower(l.get("STORE_DRIVER", DefaultStoreDriver)),
		MongoDatabase:          l.get("MONGO_DATABASE", DefaultMongoDatabase),
		AccessTokenSecret:      l.mustGet("ACCESS_TOKEN_SECRET"),
		RefreshTokenSecret:     l.mustGet("REFRESH_TOKEN_SECRET"),
		AccessExpiryMin:        l.getInt("ACCESS_TOKEN_EXPIRY", DefaultAccessTokenExpiryMin),
		RefreshExpiryMin:       l.getInt("REFRESH_TOKEN_EXPIRY", DefaultRefreshTokenExpiryMin),
		BcryptCost:             l.getInt("BCRYPT_COST", DefaultBcryptCost),
		LoginMaxAttempts:       l.getInt("LOGIN_MAX_ATTEMPTS", DefaultLoginMaxAttempts),
		LoginWindowMinutes:     l.getInt("LOGIN_WINDOW_MINUTES", DefaultLoginWindowMinutes),
		RateLimitRedisAddr:     l.get("RATE_LIMIT_REDIS_ADDR", ""),
		RateLimitRedisPassword: l.get("RATE_LIMIT_REDIS_PASSWORD", ""),
		RateLimitRedisDB:       l.getInt("RATE_LIMIT_REDIS_DB", 0),
		ClientURLs:             splitList(l.get("CLIENT_URLS", "")),
		SelfAccessRoutes:       l.getBool("SELF_ACCESS_ROUTES", true),
		ProxyHeader:            l.get("PROXY_HEADER", ""),
		LogLevel:               l.get("LOG_LEVEL", DefaultLogLevel),
	}

	switch cfg.StoreDriver {
	case StoreMongo:
		cfg.MongoURI = l.mustGet("MONGO_URI")
	case StorePostgres:
		cfg.DBURL = l.mustGet("DB_URL")
	default:
		log.Fatalf("Unsupported STORE_DRIVER: %s", cfg.StoreDriver)
	}

	if cfg.AccessTokenSecret == cfg.RefreshTokenSecret {
		log.Fatalf("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must differ")
	}

	return cfg
}

func readEnvFile(env string) map[string]string {
	name := ".env.dev"
	if env == "production" {
		name = ".env.prod"
	}
	path := filepath.Join("config", name)

	values, err := godotenv.Read(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Could not read %s: %v", path, err)
		}
		return map[string]string{}
	}
	return values
}

type loader struct {
	file map[string]string
}

func (l loader) lookup(key string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return l.file[key]
}

func (l loader) get(key, defaultVal string) string {
	if value := l.lookup(key); value != "" {
		return value
	}
	return defaultVal
}

func (l loader) mustGet(key string) string {
	if value := l.lookup(key); value != "" {
		return value
	}
	log.Fatalf("Missing required config: %s", key)
	return ""
}

func (l loader) getInt(key string, defaultVal int) int {
	valStr := l.lookup(key)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil {
		log.Printf("Invalid value for %s, using default %d", key, defaultVal)
		return defaultVal
	}
	return val
}

func (l loader) getBool(key string, defaultVal bool) bool {
	valStr := l.lookup(key)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.ParseBool(valStr)
	if err != nil {
		log.Printf("Invalid value for %s, using default %t", key, defaultVal)
		return defaultVal
	}
	return val
}

func getEnv(key string, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
