package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env       string // 运行环境：dev 或 prod
	Addr      string // 服务绑定地址，例如 :3001
	JWTSecret string // JWT 签名密钥
	// 数据库：postgres（默认）或 sqlite（本地单用户模式）
	DBDriver   string
	SQLitePath string
	PGUser     string
	PGPass     string
	PGDB       string
	PGHost     string
	PGPort     string

	Timezone     string // 统计按此时区切分自然日
	AllowOrigins string // CORS 允许列表，逗号分隔
	RateRPS      float64
	RateBurst    int
	OTelTraces   string // none|stdout

	// CLI 客户端
	APIBase string
	Token   string
	Tick    time.Duration
}

// Load 从 .env 文件和环境变量读取配置
// 优先级：环境变量 > .env 文件 > 默认值
func Load() (*Config, error) {
	_ = godotenv.Load()

	c := &Config{
		Env:          get("ENV", "dev"),
		Addr:         get("ADDR", ":3001"),
		JWTSecret:    get("JWT_SECRET", "dev-guest-secret"),
		DBDriver:     get("DB_DRIVER", "postgres"),
		SQLitePath:   get("SQLITE_PATH", "timifocus.db"),
		PGUser:       get("PGUSER", "app"),
		PGPass:       get("PGPASSWORD", "app"),
		PGDB:         get("PGDATABASE", "appdb"),
		PGHost:       get("PGHOST", "localhost"),
		PGPort:       get("PGPORT", "5432"),
		Timezone:     get("TIMEZONE", "Asia/Shanghai"),
		AllowOrigins: get("ALLOW_ORIGINS", "http://localhost:3000,http://127.0.0.1:3000,http://localhost:5173,http://127.0.0.1:5173"),
		OTelTraces:   get("OTEL_TRACES", "none"),
		APIBase:      get("TIMI_API", "http://localhost:3001"),
		Token:        get("TIMI_TOKEN", ""),
	}

	var err error
	if c.RateRPS, err = strconv.ParseFloat(get("RATE_LIMIT_RPS", "5"), 64); err != nil {
		return nil, fmt.Errorf("RATE_LIMIT_RPS: %w", err)
	}
	if c.RateBurst, err = strconv.Atoi(get("RATE_LIMIT_BURST", "10")); err != nil {
		return nil, fmt.Errorf("RATE_LIMIT_BURST: %w", err)
	}
	tickMs, err := strconv.Atoi(get("TICK_MS", "250"))
	if err != nil || tickMs <= 0 {
		return nil, fmt.Errorf("TICK_MS must be a positive integer")
	}
	c.Tick = time.Duration(tickMs) * time.Millisecond

	if c.DBDriver != "postgres" && c.DBDriver != "sqlite" {
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if _, err := c.Location(); err != nil {
		return nil, err
	}
	return c, nil
}

// Location 统计用时区
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func (c *Config) DSN() string {
	// GORM 的 PostgreSQL 驱动 DSN（数据源名称）格式
	// sslmode=disable 用于开发环境（生产环境应改为 require）
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=%s",
		c.PGHost, c.PGUser, c.PGPass, c.PGDB, c.PGPort, c.Timezone,
	)
}

// get 从环境变量获取值，如果为空则返回默认值
func get(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
