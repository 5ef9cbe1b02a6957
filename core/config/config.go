package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	OTel          OTelConfig
	LLM           LLMConfig
	Tracker       TrackerConfig
	Blob          BlobConfig
	Env           string
	Port          string
	PublicBaseURL string
	NodeID        int64

	CORSAllowedOrigins []string
	ServerURL          string // Relay base URL the CLI submits to
}

type OTelConfig struct {
	Endpoint       string
	Headers        string
	ServiceName    string
	ServiceVersion string
	Environment    string // RELAY_ENV, reported as deployment.environment
}

type LLMConfig struct {
	APIKey    string
	BaseURL   string // Optional: any OpenAI-compatible endpoint
	Model     string
	MaxTokens int
}

// Tracker providers.
const (
	TrackerGitHub = "github"
	TrackerGitLab = "gitlab"
)

type TrackerConfig struct {
	Provider string // "github" or "gitlab"
	GitHub   GitHubConfig
	GitLab   GitLabConfig
}

type GitHubConfig struct {
	Token   string
	Owner   string
	Repo    string
	BaseURL string // Optional: GitHub Enterprise API URL
}

type GitLabConfig struct {
	Token   string
	BaseURL string // Optional: self-hosted instance, without /api/v4
	Project string // "group/project" path or numeric id
}

// Blob providers.
const (
	BlobVercel = "vercel"
	BlobLocal  = "local"
)

type BlobConfig struct {
	Provider string // "vercel" or "local"
	Token    string
	APIURL   string
	LocalDir string
}

type ServiceType string

const (
	ServiceTypeServer ServiceType = "server"
	ServiceTypeCLI    ServiceType = "cli"
)

// Load loads configuration from environment variables.
// In development, it loads from service-specific .env files:
//   - .env.server for the API server
//   - .env.cli for the inline-ai picker
//
// Falls back to .env if service-specific file doesn't exist.
//
// Missing tracker, LLM or blob credentials are not an error: the server still
// starts and reports them through the health endpoint.
func Load(serviceType ServiceType) (Config, error) {
	if getEnv("RELAY_ENV", "development") == "development" {
		envFile := fmt.Sprintf(".env.%s", serviceType)
		if err := godotenv.Load(envFile); err != nil {
			_ = godotenv.Load(".env")
		}
	}

	cfg := Config{
		Env:           getEnv("RELAY_ENV", "development"),
		Port:          getEnv("PORT", "8080"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),
		NodeID:        int64(getEnvInt("NODE_ID", 1)),

		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS"),
		ServerURL:          getEnv("RELAY_SERVER_URL", "http://localhost:8080"),
		OTel: OTelConfig{
			Endpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:        getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "inline-ai-relay"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
			Environment:    getEnv("RELAY_ENV", "development"),
		},
		LLM: LLMConfig{
			APIKey:    getEnv("OPENAI_API_KEY", ""),
			BaseURL:   getEnv("OPENAI_BASE_URL", ""),
			Model:     getEnv("CHANGE_REQUEST_LLM_MODEL", "gpt-4o"),
			MaxTokens: getEnvInt("CHANGE_REQUEST_LLM_MAX_TOKENS", 2048),
		},
		Tracker: TrackerConfig{
			Provider: getEnv("TRACKER_PROVIDER", TrackerGitHub),
			GitHub: GitHubConfig{
				Token:   getEnv("GITHUB_TOKEN", ""),
				Owner:   getEnv("GITHUB_OWNER", ""),
				Repo:    getEnv("GITHUB_REPO", ""),
				BaseURL: getEnv("GITHUB_BASE_URL", ""),
			},
			GitLab: GitLabConfig{
				Token:   getEnv("GITLAB_TOKEN", ""),
				BaseURL: getEnv("GITLAB_BASE_URL", ""),
				Project: getEnv("GITLAB_PROJECT", ""),
			},
		},
		Blob: BlobConfig{
			Provider: getEnv("BLOB_PROVIDER", BlobVercel),
			Token:    getEnv("BLOB_READ_WRITE_TOKEN", ""),
			APIURL:   getEnv("BLOB_API_URL", "https://blob.vercel-storage.com"),
			LocalDir: getEnv("BLOB_LOCAL_DIR", "./data/blobs"),
		},
	}

	switch cfg.Tracker.Provider {
	case TrackerGitHub, TrackerGitLab:
	default:
		return Config{}, fmt.Errorf("unsupported TRACKER_PROVIDER: %s", cfg.Tracker.Provider)
	}

	switch cfg.Blob.Provider {
	case BlobVercel, BlobLocal:
	default:
		return Config{}, fmt.Errorf("unsupported BLOB_PROVIDER: %s", cfg.Blob.Provider)
	}

	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c OTelConfig) Enabled() bool {
	return c.Endpoint != ""
}

func (c LLMConfig) Enabled() bool {
	return c.APIKey != ""
}

func (c TrackerConfig) Enabled() bool {
	switch c.Provider {
	case TrackerGitHub:
		return c.GitHub.Token != "" && c.GitHub.Owner != "" && c.GitHub.Repo != ""
	case TrackerGitLab:
		return c.GitLab.Token != "" && c.GitLab.Project != ""
	default:
		return false
	}
}

func (c BlobConfig) Enabled() bool {
	switch c.Provider {
	case BlobVercel:
		return c.Token != ""
	case BlobLocal:
		return c.LocalDir != ""
	default:
		return false
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvList(key string) []string {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
