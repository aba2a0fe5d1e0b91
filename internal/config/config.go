package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// Service selects which participant a binary runs as.
type Service string

const (
	ServiceOrder   Service = "order-service"
	ServicePayment Service = "payment-service"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	ServiceName        string
	RunAddress         string
	DatabaseURI        string
	MongoURI           string
	MongoDatabase      string
	RedisAddress       string
	KafkaBrokers       []string
	OrderTopic         string
	PaymentTopic       string
	ConsumerGroup      string
	UserServiceAddress string
	ProcessorAddress   string
	JWTAccessSecret    string
	JWTRefreshSecret   string
	ClientTimeout      time.Duration
	ClientRetries      int
	BreakerOpenFor     time.Duration
	ShutdownTimeout    time.Duration
}

const (
	defaultRunAddress      = ":8080"
	defaultMongoDatabase   = "payments"
	defaultOrderTopic      = "queuing.order_service.orders"
	defaultPaymentTopic    = "queuing.payment_service.payments"
	defaultOrderGroup      = "payment-processing-group"
	defaultPaymentGroup    = "order-processing-group"
	defaultClientTimeout   = 5 * time.Second
	defaultClientRetries   = 3
	defaultBreakerOpenFor  = 30 * time.Second
	defaultShutdownTimeout = 10 * time.Second
)

// Load parses configuration from flags and environment variables for the
// given service.
func Load(svc Service) (*Config, error) {
	return load(svc, os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(svc Service, args []string, lookup envLookup) (*Config, error) {
	group := defaultOrderGroup
	if svc == ServicePayment {
		group = defaultPaymentGroup
	}

	cfg := &Config{
		ServiceName:        string(svc),
		RunAddress:         getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:        getString(lookup, "DATABASE_URI", ""),
		MongoURI:           getString(lookup, "MONGO_URI", ""),
		MongoDatabase:      getString(lookup, "MONGO_DATABASE", defaultMongoDatabase),
		RedisAddress:       getString(lookup, "REDIS_ADDRESS", ""),
		KafkaBrokers:       splitList(getString(lookup, "KAFKA_BROKERS", "")),
		OrderTopic:         getString(lookup, "ORDER_TOPIC", defaultOrderTopic),
		PaymentTopic:       getString(lookup, "PAYMENT_TOPIC", defaultPaymentTopic),
		ConsumerGroup:      getString(lookup, "CONSUMER_GROUP", group),
		UserServiceAddress: getString(lookup, "USER_SERVICE_ADDRESS", ""),
		ProcessorAddress:   getString(lookup, "PROCESSOR_ADDRESS", ""),
		JWTAccessSecret:    getString(lookup, "JWT_ACCESS_SECRET", ""),
		JWTRefreshSecret:   getString(lookup, "JWT_REFRESH_SECRET", ""),
		ClientTimeout:      getDuration(lookup, "CLIENT_TIMEOUT", defaultClientTimeout),
		ClientRetries:      getInt(lookup, "CLIENT_RETRIES", defaultClientRetries),
		BreakerOpenFor:     getDuration(lookup, "BREAKER_OPEN_FOR", defaultBreakerOpenFor),
		ShutdownTimeout:    getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
	}

	fs := flag.NewFlagSet(string(svc), flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		brokersStr         = strings.Join(cfg.KafkaBrokers, ",")
		clientTimeoutStr   = cfg.ClientTimeout.String()
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.MongoURI, "m", cfg.MongoURI, "MongoDB connection URI")
	fs.StringVar(&cfg.RedisAddress, "r", cfg.RedisAddress, "Redis address")
	fs.StringVar(&brokersStr, "brokers", brokersStr, "Comma-separated Kafka broker addresses")
	fs.StringVar(&cfg.ConsumerGroup, "group", cfg.ConsumerGroup, "Kafka consumer group id")
	fs.StringVar(&cfg.UserServiceAddress, "user-service", cfg.UserServiceAddress, "User service base URL")
	fs.StringVar(&cfg.ProcessorAddress, "processor", cfg.ProcessorAddress, "Settlement processor base URL")
	fs.IntVar(&cfg.ClientRetries, "client-retries", cfg.ClientRetries, "Retry budget for cross-service calls")
	fs.StringVar(&clientTimeoutStr, "client-timeout", clientTimeoutStr, "Per-attempt timeout for cross-service calls")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	cfg.KafkaBrokers = splitList(brokersStr)

	if cfg.ClientTimeout, err = time.ParseDuration(clientTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid client timeout: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if err := readSecretFile(lookup, "JWT_ACCESS_SECRET_FILE", &cfg.JWTAccessSecret); err != nil {
		return nil, err
	}
	if err := readSecretFile(lookup, "JWT_REFRESH_SECRET_FILE", &cfg.JWTRefreshSecret); err != nil {
		return nil, err
	}

	if cfg.ClientRetries < 0 {
		cfg.ClientRetries = defaultClientRetries
	}
	if cfg.ClientTimeout <= 0 {
		cfg.ClientTimeout = defaultClientTimeout
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if err := cfg.validate(svc); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate(svc Service) error {
	if len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("kafka brokers must be provided")
	}
	switch svc {
	case ServiceOrder:
		if c.DatabaseURI == "" {
			return fmt.Errorf("database URI must be provided")
		}
		if c.UserServiceAddress == "" {
			return fmt.Errorf("user service address must be provided")
		}
		if c.JWTAccessSecret == "" {
			return fmt.Errorf("JWT access secret must be provided")
		}
	case ServicePayment:
		if c.MongoURI == "" {
			return fmt.Errorf("mongo URI must be provided")
		}
		if c.RedisAddress == "" {
			return fmt.Errorf("redis address must be provided")
		}
		if c.ProcessorAddress == "" {
			return fmt.Errorf("processor address must be provided")
		}
	default:
		return fmt.Errorf("unknown service %q", svc)
	}
	return nil
}

func readSecretFile(lookup envLookup, key string, target *string) error {
	file, ok := lookup(key)
	if !ok || file == "" {
		return nil
	}
	content, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("read secret file: %w", err)
	}
	*target = strings.TrimSpace(string(content))
	return nil
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
