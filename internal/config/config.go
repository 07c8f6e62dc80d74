package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

const (
	// SMTPHost / SMTPPort 固定使用 Gmail 的 SSL 端口
	SMTPHost = "smtp.gmail.com"
	SMTPPort = "465"

	// DailyAt 每天触发的本地时间
	DailyAt = "11:00"

	// PollInterval 调度循环的检查间隔
	PollInterval = 60 * time.Second

	// FetchTimeout 单个站点请求超时
	FetchTimeout = 10 * time.Second

	UserAgent = "Mozilla/5.0"
)

// Config 进程启动时构造一次，之后只读，显式传给各组件
type Config struct {
	SenderEmail    string
	SenderPassword string
	ReceiverEmail  string

	SMTPHost string
	SMTPPort string

	DailyAt      string
	PollInterval time.Duration
	FetchTimeout time.Duration
	UserAgent    string

	LogLevel string

	// 以下为可选项：为空则不启用状态 API / 运行记录
	AppPort       string
	BasicAuthUser string
	BasicAuthPass string
	PostgresDSN   string
	RedisAddr     string
}

// Load 读取 .env（若存在）与环境变量；发件人/收件人不做存在性校验
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		SenderEmail:    os.Getenv("SENDER_EMAIL"),
		SenderPassword: os.Getenv("SENDER_PASSWORD"),
		ReceiverEmail:  os.Getenv("RECEIVER_EMAIL"),
		SMTPHost:       SMTPHost,
		SMTPPort:       SMTPPort,
		DailyAt:        DailyAt,
		PollInterval:   PollInterval,
		FetchTimeout:   FetchTimeout,
		UserAgent:      UserAgent,
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AppPort:        os.Getenv("APP_PORT"),
		BasicAuthUser:  os.Getenv("APP_BASIC_USER"),
		BasicAuthPass:  os.Getenv("APP_BASIC_PASS"),
		PostgresDSN:    os.Getenv("POSTGRES_DSN"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
	}
}

// JournalEnabled 配置了 Postgres 才记录每次发送
func (c *Config) JournalEnabled() bool {
	return c.PostgresDSN != ""
}

// APIEnabled 配置了端口才启动状态 API
func (c *Config) APIEnabled() bool {
	return c.AppPort != ""
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
