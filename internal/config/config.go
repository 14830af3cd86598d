package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Valkey   ValkeyConfig
	MinIO    MinIOConfig
	S3       S3Config
	LLM      LLMConfig
	Bedrock  BedrockConfig
	Pipeline PipelineConfig
	Auth     AuthConfig
	MCP      MCPConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

type ValkeyConfig struct {
	Addr     string
	Password string
	DB       int
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type S3Config struct {
	Region   string // S3_REGION
	Bucket   string // S3_BUCKET
	Endpoint string // S3_ENDPOINT (for MinIO/LocalStack compatibility)
}

// LLMConfig configures the OpenAI-compatible chat endpoint used for test
// generation (GitHub Models, OpenRouter, or any local server).
type LLMConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Timeout     time.Duration
	MaxTokens   int
	Temperature float64
}

type BedrockConfig struct {
	Region  string
	ModelID string
}

// PipelineConfig holds the generate/verify/repair loop knobs.
type PipelineConfig struct {
	WorkspaceRoot    string
	MaxIterations    int
	Refine           bool
	ConfigureTimeout time.Duration
	BuildTimeout     time.Duration
	TestRunTimeout   time.Duration
	CXXStandard      string
}

type AuthConfig struct {
	Enabled      bool
	IssuerURL    string
	PublicIssuer string
	Audience     string
}

type MCPConfig struct {
	Addr    string
	BaseURL string
}

func Load() (*Config, error) {
	// Best-effort .env for local development; env vars win.
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:  time.Duration(getEnvInt("SERVER_READ_TIMEOUT_SECS", 30)) * time.Second,
			WriteTimeout: time.Duration(getEnvInt("SERVER_WRITE_TIMEOUT_SECS", 60)) * time.Second,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "testforge"),
			Password: getEnv("DB_PASSWORD", "testforge"),
			Name:     getEnv("DB_NAME", "testforge"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: int32(getEnvInt("DB_MAX_CONNS", 25)),
			MinConns: int32(getEnvInt("DB_MIN_CONNS", 5)),
		},
		Valkey: ValkeyConfig{
			Addr:     getEnv("VALKEY_ADDR", "localhost:6379"),
			Password: getEnv("VALKEY_PASSWORD", ""),
			DB:       getEnvInt("VALKEY_DB", 0),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("MINIO_ACCESS_KEY", "testforge"),
			SecretKey: getEnv("MINIO_SECRET_KEY", "testforge123"),
			Bucket:    getEnv("MINIO_BUCKET", "testforge"),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		S3: S3Config{
			Region:   getEnv("S3_REGION", ""),
			Bucket:   getEnv("S3_BUCKET", ""),
			Endpoint: getEnv("S3_ENDPOINT", ""),
		},
		LLM: LLMConfig{
			APIKey:      getEnv("LLM_API_KEY", os.Getenv("GITHUB_TOKEN")),
			BaseURL:     getEnv("LLM_ENDPOINT", ""),
			Model:       getEnv("LLM_MODEL", ""),
			Timeout:     time.Duration(getEnvInt("LLM_TIMEOUT_SECS", 120)) * time.Second,
			MaxTokens:   getEnvInt("LLM_MAX_TOKENS", 4000),
			Temperature: getEnvFloat("LLM_TEMPERATURE", 0.1),
		},
		Bedrock: BedrockConfig{
			Region:  getEnv("BEDROCK_REGION", ""),
			ModelID: getEnv("BEDROCK_MODEL_ID", "anthropic.claude-3-5-sonnet-20240620-v1:0"),
		},
		Pipeline: PipelineConfig{
			WorkspaceRoot:    getEnv("WORKSPACE_ROOT", os.TempDir()),
			MaxIterations:    getEnvInt("MAX_ITERATIONS", 1),
			Refine:           getEnvBool("REFINE_ENABLED", false),
			ConfigureTimeout: time.Duration(getEnvInt("CONFIGURE_TIMEOUT_SECS", 60)) * time.Second,
			BuildTimeout:     time.Duration(getEnvInt("BUILD_TIMEOUT_SECS", 120)) * time.Second,
			TestRunTimeout:   time.Duration(getEnvInt("TEST_RUN_TIMEOUT_SECS", 30)) * time.Second,
			CXXStandard:      getEnv("CXX_STANDARD", "17"),
		},
		Auth: AuthConfig{
			Enabled:      getEnvBool("AUTH_ENABLED", false),
			IssuerURL:    getEnv("AUTH_ISSUER_URL", ""),
			PublicIssuer: getEnv("AUTH_PUBLIC_ISSUER", ""),
			Audience:     getEnv("AUTH_AUDIENCE", "testforge"),
		},
		MCP: MCPConfig{
			Addr:    getEnv("MCP_ADDR", ":8090"),
			BaseURL: getEnv("MCP_BASE_URL", ""),
		},
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
