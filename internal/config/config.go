package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Config aggregates every runtime setting of the service.
type Config struct {
	Server   ServerConfig
	Gateway  GatewayConfig
	Payment  PaymentConfig
	Mail     MailConfig
	Doctor   DoctorConfig
	Research ResearchConfig
	History  HistoryConfig
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	gateway, err := loadGatewayConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:   server,
		Gateway:  gateway,
		Payment:  loadPaymentConfig(),
		Mail:     loadMailConfig(),
		Doctor:   loadDoctorConfig(),
		Research: loadResearchConfig(),
		History:  loadHistoryConfig(),
	}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// Accept ":8080" or "127.0.0.1:8080" verbatim.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// GatewayConfig describes the language model behind the gateway.
type GatewayConfig struct {
	APIKey      string
	AccessKey   string
	SecretKey   string
	Model       string
	BaseURL     string
	Region      string
	Temperature *float64
	TopP        *float64
	MaxTokens   *int
	Timeout     time.Duration
}

// Enabled reports whether the required credentials were provided.
func (c GatewayConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel builds the model instance used by the gateway chains.
func (c GatewayConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("gateway credentials missing: provide ARK_API_KEY + Model, or the AK/SK pair")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	var maxTokens *int
	if c.MaxTokens != nil {
		val := *c.MaxTokens
		maxTokens = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		TopP:        topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadGatewayConfig() (GatewayConfig, error) {
	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return GatewayConfig{}, err
	}

	topP, err := parseOptionalFloatEnv("ARK_TOP_P")
	if err != nil {
		return GatewayConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return GatewayConfig{}, err
	}

	timeoutSeconds := 30
	if override, err := parseOptionalIntEnv("GATEWAY_TIMEOUT"); err != nil {
		return GatewayConfig{}, err
	} else if override != nil && *override > 0 {
		timeoutSeconds = *override
	}

	return GatewayConfig{
		APIKey:      strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:   strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:   strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:       strings.TrimSpace(os.Getenv("ARK_MODEL")),
		BaseURL:     getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:      getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Temperature: temperature,
		TopP:        topP,
		MaxTokens:   maxTokens,
		Timeout:     time.Duration(timeoutSeconds) * time.Second,
	}, nil
}

// PaymentConfig points at the pharmacy payment endpoint.
type PaymentConfig struct {
	Endpoint string
	APIKey   string
}

func loadPaymentConfig() PaymentConfig {
	return PaymentConfig{
		Endpoint: strings.TrimSpace(os.Getenv("PAYMENT_ENDPOINT")),
		APIKey:   strings.TrimSpace(os.Getenv("PAYMENT_API_KEY")),
	}
}

// MailConfig describes the SMTP relay used for appointment confirmations.
type MailConfig struct {
	Host string
	Port string
	User string
	Pass string
	From string
}

// Enabled reports whether outgoing mail is configured.
func (c MailConfig) Enabled() bool {
	return c.Host != "" && c.User != ""
}

func loadMailConfig() MailConfig {
	from := strings.TrimSpace(os.Getenv("EMAIL_FROM"))
	user := strings.TrimSpace(os.Getenv("EMAIL_USER"))
	if from == "" {
		from = user
	}
	return MailConfig{
		Host: getEnvOrDefault("EMAIL_HOST", "smtp.gmail.com"),
		Port: getEnvOrDefault("EMAIL_PORT", "587"),
		User: user,
		Pass: os.Getenv("EMAIL_PASS"),
		From: from,
	}
}

// DoctorConfig points at the endpoint receiving medical images.
type DoctorConfig struct {
	Endpoint string
	APIKey   string
}

func loadDoctorConfig() DoctorConfig {
	return DoctorConfig{
		Endpoint: strings.TrimSpace(os.Getenv("DOCTOR_ENDPOINT")),
		APIKey:   strings.TrimSpace(os.Getenv("DOCTOR_API_KEY")),
	}
}

// ResearchConfig points at the online medical research API.
type ResearchConfig struct {
	Endpoint string
	APIKey   string
	Model    string
}

func loadResearchConfig() ResearchConfig {
	return ResearchConfig{
		Endpoint: strings.TrimSpace(os.Getenv("RESEARCH_ENDPOINT")),
		APIKey:   strings.TrimSpace(os.Getenv("RESEARCH_API_KEY")),
		Model:    getEnvOrDefault("RESEARCH_MODEL", "sonar"),
	}
}

// HistoryConfig selects the case history backend. An empty DatabaseURL
// keeps the in-memory store.
type HistoryConfig struct {
	DatabaseURL string
}

func loadHistoryConfig() HistoryConfig {
	return HistoryConfig{DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL"))}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
