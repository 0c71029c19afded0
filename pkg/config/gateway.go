package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// GatewayConfig holds runtime configuration for the GraphQL gateway.
type GatewayConfig struct {
	Environment        string
	Addr               string
	LogLevel           string
	JWTSecret          string
	CITokenTTL         time.Duration
	UserAPI            string
	ProjectsAPI        string
	JobsAPI            string
	MonitorAPI         string
	BackendTimeout     time.Duration
	AMQPURL            string
	AMQPPort           int
	AMQPUser           string
	AMQPPassword       string
	JobCreateQueue     string
	MaxTicks           int
	RateLimitPerMinute int
	RateLimitRedisAddr string
	RateLimitRedisPass string
	RateLimitRedisDB   int
}

// LoadGatewayConfig constructs a GatewayConfig from environment variables.
func LoadGatewayConfig() GatewayConfig {
	return GatewayConfig{
		Environment:        GetString("APP_ENV", "development"),
		Addr:               listenAddr(GetString("PORT", "3000")),
		LogLevel:           GetString("LOG_LEVEL", "info"),
		JWTSecret:          GetString("JWT_SECRET", "test"),
		CITokenTTL:         GetDuration("CI_TOKEN_TTL_HOURS", time.Hour, 24*365*time.Hour),
		UserAPI:            GetString("USER_API", "http://localhost:3001"),
		ProjectsAPI:        GetString("PROJECTS_API", "http://localhost:3002"),
		JobsAPI:            GetString("JOBS_API", "http://localhost:3003"),
		MonitorAPI:         GetString("MONITOR_API", "http://localhost:3004"),
		BackendTimeout:     GetDuration("BACKEND_TIMEOUT_SECONDS", time.Second, 15*time.Second),
		AMQPURL:            GetString("AMQP_URL", "localhost"),
		AMQPPort:           GetInt("AMQP_PORT", 5672),
		AMQPUser:           GetString("AMQP_USER", "guest"),
		AMQPPassword:       GetString("AMQP_PWD", "guest"),
		JobCreateQueue:     GetString("JOB_CREATE_QUEUE", "job.create"),
		MaxTicks:           GetInt("MAX_TICKS", 2000),
		RateLimitPerMinute: GetInt("RATE_LIMIT_PER_MINUTE", 600),
		RateLimitRedisAddr: GetString("RATE_LIMIT_REDIS_ADDR", ""),
		RateLimitRedisPass: GetString("RATE_LIMIT_REDIS_PASSWORD", ""),
		RateLimitRedisDB:   GetInt("RATE_LIMIT_REDIS_DB", 0),
	}
}

// AMQPURI builds the broker connection string. AMQP_URL may be a bare host
// or a full amqp:// URI; a full URI is returned unchanged.
func (c GatewayConfig) AMQPURI() string {
	raw := strings.TrimSpace(c.AMQPURL)
	if strings.HasPrefix(raw, "amqp://") || strings.HasPrefix(raw, "amqps://") {
		return raw
	}
	if raw == "" {
		raw = "localhost"
	}
	host := raw
	if c.AMQPPort > 0 {
		host = net.JoinHostPort(raw, strconv.Itoa(c.AMQPPort))
	}
	u := url.URL{Scheme: "amqp", Host: host, Path: "/"}
	if c.AMQPUser != "" {
		u.User = url.UserPassword(c.AMQPUser, c.AMQPPassword)
	}
	return u.String()
}

func listenAddr(port string) string {
	port = strings.TrimSpace(port)
	if port == "" {
		return ":3000"
	}
	if strings.Contains(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}
