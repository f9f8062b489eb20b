package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Logger   LoggerConfig
	Tax      TaxConfig
	Kafka    KafkaConfig
	Payment  PaymentConfig
	Pricing  PricingConfig
}

type DatabaseConfig struct {
	URL      string
	MaxConns int32 // 0 keeps the pgxpool default
}

type ServerConfig struct {
	Port           string
	AllowedOrigins string
}

type LoggerConfig struct {
	Level    string
	Encoding string
}

type TaxConfig struct {
	// SellerStateCode is the GST state code of the selling entity. Orders
	// shipped to the same state are taxed CGST+SGST, everything else IGST.
	SellerStateCode string
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

type PaymentConfig struct {
	// GatewayURL is the verification endpoint of the payment provider.
	// Empty selects the accept-all gateway used in development.
	GatewayURL string
	APIKey     string
}

type PricingConfig struct {
	// OnlineShipping is the flat shipping charge applied to online orders,
	// as a decimal string.
	OnlineShipping string
}

// Load reads configuration from the environment.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           getEnv("SERVER_PORT", "8080"),
			AllowedOrigins: getEnv("ALLOWED_ORIGINS", ""),
		},
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", ""),
			MaxConns: int32(getEnvInt("DATABASE_MAX_CONNS", 0)),
		},
		Logger: LoggerConfig{
			Level:    getEnv("LOGGER_LEVEL", "info"),
			Encoding: getEnv("LOGGER_ENCODING", "json"),
		},
		Tax: TaxConfig{
			SellerStateCode: getEnv("SELLER_STATE_CODE", "KA"),
		},
		Kafka: KafkaConfig{
			Brokers: getEnvList("KAFKA_BROKERS", "localhost:9092"),
			Topic:   getEnv("KAFKA_TOPIC", "order-notifications"),
		},
		Payment: PaymentConfig{
			GatewayURL: getEnv("PAYMENT_GATEWAY_URL", ""),
			APIKey:     getEnv("PAYMENT_GATEWAY_API_KEY", ""),
		},
		Pricing: PricingConfig{
			OnlineShipping: getEnv("ONLINE_SHIPPING_CHARGE", "0"),
		},
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvList(key, fallback string) []string {
	raw := getEnv(key, fallback)
	parts := strings.Split(raw, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
