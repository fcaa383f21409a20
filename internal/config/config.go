package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort   string
	LogLevel  string
	LogFormat string

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	RedisAddr     string
	RedisDB       int
	RedisPoolSize int

	IdempTTLSecs int

	// Matching knobs
	ScoringWorkers  int // parallel scorers per pipeline run; 0 = sequential
	ExpireSweepSecs int // interval of the presented-session expiry sweep
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getenvInt(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func Load() *Config {
	// .env is optional; real deployments set env vars directly
	_ = godotenv.Load()

	return &Config{
		AppPort:   getenv("APP_PORT", "8080"),
		LogLevel:  getenv("LOG_LEVEL", "info"),
		LogFormat: getenv("LOG_FORMAT", "json"),

		MySQLHost: getenv("MYSQL_HOST", "mysql"),
		MySQLPort: getenv("MYSQL_PORT", "3306"),
		MySQLDB:   getenv("MYSQL_DB", "wello"),
		MySQLUser: getenv("MYSQL_USER", "wello"),
		MySQLPass: getenv("MYSQL_PASS", "wello"),

		RedisAddr:     getenv("REDIS_ADDR", "redis:6379"),
		RedisDB:       getenvInt("REDIS_DB", 0),
		RedisPoolSize: getenvInt("REDIS_POOL_SIZE", 10),

		IdempTTLSecs:    getenvInt("IDEMPOTENCY_TTL_SECONDS", 300),
		ScoringWorkers:  getenvInt("SCORING_WORKERS", 4),
		ExpireSweepSecs: getenvInt("EXPIRE_SWEEP_SECONDS", 60),
	}
}

func (c *Config) Validate() error {
	if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
		return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
	}
	// ensure port is valid
	if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
		return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
	}
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	if c.ScoringWorkers < 0 {
		return errors.New("SCORING_WORKERS must be >= 0")
	}
	if c.ExpireSweepSecs <= 0 {
		return errors.New("EXPIRE_SWEEP_SECONDS must be > 0")
	}
	return nil
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// multiStatements=true is handy for migrations; parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?multiStatements=true&parseTime=true&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}
