package config

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
)

type HTTPServer struct {
	Host string
	Port string
}

type RedisCache struct {
	Host     string
	Port     string
	Password string
}

type Postgres struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type Kinopoisk struct {
	BaseURL string
	APIKey  string
}

type S3 struct {
	Bucket string
	Prefix string

	// Endpoint switches the client to an S3-compatible service with
	// static credentials. Empty means the default AWS chain.
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
}

type Config struct {
	HTTP      HTTPServer
	Redis     RedisCache
	Postgres  Postgres
	Kinopoisk Kinopoisk
	S3        S3
}

const logtag = "[config]"

func Load() *Config {
	configPath := flag.String("config", "", "path env file")
	flag.Parse()

	if *configPath != "" {
		if err := godotenv.Load(*configPath); err != nil {
			log.Fatalf("%s err loading env from file : %v", logtag, err)
		}
		log.Printf("%s using env from : %s", logtag, *configPath)
	} else {
		log.Printf("%s using env from .env", logtag)
		_ = godotenv.Load()
	}

	cfg := &Config{
		HTTP:      *newHTTP(),
		Redis:     *newRedis(),
		Postgres:  *newPostgres(),
		Kinopoisk: *newKinopoisk(),
		S3:        *newS3(),
	}

	return cfg
}

func newHTTP() *HTTPServer {
	return &HTTPServer{
		Port: getenv("HTTP_PORT", "8080"),
		Host: getenv("HTTP_HOST", "localhost"),
	}
}

func newRedis() *RedisCache {
	return &RedisCache{
		Port:     getenv("REDIS_PORT", "6379"),
		Host:     getenv("REDIS_HOST", "redis"),
		Password: getenv("REDIS_PASSWORD", "shared"),
	}
}

func newPostgres() *Postgres {
	return &Postgres{
		Host:     getenv("DB_HOST", "localhost"),
		Port:     getenv("DB_PORT", "5432"),
		User:     getenv("DB_USER", "admin"),
		Password: getenv("DB_PASSWORD", "shared"),
		DBName:   getenv("DB_NAME", "moviematch"),
		SSLMode:  getenv("DB_SSLMODE", "disable"),
	}
}

func newKinopoisk() *Kinopoisk {
	return &Kinopoisk{
		BaseURL: getenv("KINOPOISK_API_URL", "https://api.kinopoisk.dev/v1.4/"),
		APIKey:  getenv("KINOPOISK_API_KEY", ""),
	}
}

func newS3() *S3 {
	return &S3{
		Bucket:    getenv("S3_BUCKET", "moviematch-covers"),
		Prefix:    getenv("S3_PREFIX", "covers/"),
		Endpoint:  getenv("S3_ENDPOINT", ""),
		Region:    getenv("S3_REGION", "ru-central1"),
		AccessKey: getenv("S3_ACCESS_KEY", ""),
		SecretKey: getenv("S3_SECRET_KEY", ""),
	}
}

func getenv(key, defaultValue string) string {
	val := os.Getenv(key)
	if val == "" {
		fmt.Printf("%s %s undefined. Using default value %s\n", logtag, key, defaultValue)
		return defaultValue
	}
	return val
}
