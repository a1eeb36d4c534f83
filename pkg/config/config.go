package config

import (
	"os"
	"strconv"
	"strings"
)

// Config is the application configuration, read once from the
// environment. Every option has a default; missing configuration never
// crashes the application.
type Config struct {
	// LLM provider
	LLMProvider string // googleai, openai, anthropic, ollama
	LLMModel    string
	LLMApiKey   string

	// Chat agent, Gemini only
	ChatModel string

	// Search
	SearchProvider   string // duckduckgo, arxiv
	SearchMaxResults int

	// Research loop thresholds
	MinFindings      int
	MaxIterations    int
	MaxQueryLength   int
	MinSnippetLength int

	// Source scoring policy, comma-separated suffix lists
	SensitiveTopicPatterns      []string
	AuthoritativeDomainSuffixes []string
	LowTrustDomainSuffixes      []string

	// Infrastructure
	DatabaseURL    string
	Port           string
	EmbeddingModel string
	CacheTable     string
	ExportDir      string
}

func Load() *Config {
	apiKey := getEnv("LLM_API_KEY", "")
	if apiKey == "" {
		// Provider-specific variables win when the generic one is unset.
		apiKey = firstEnv("GOOGLE_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY")
	}

	return &Config{
		LLMProvider: getEnv("LLM_PROVIDER", "googleai"),
		LLMModel:    getEnv("LLM_MODEL", ""),
		LLMApiKey:   apiKey,

		ChatModel: getEnv("CHAT_MODEL", "gemini-2.5-flash"),

		SearchProvider:   getEnv("SEARCH_PROVIDER", "duckduckgo"),
		SearchMaxResults: getEnvAsInt("SEARCH_MAX_RESULTS", 5),

		MinFindings:      getEnvAsInt("MIN_FINDINGS", 3),
		MaxIterations:    getEnvAsInt("MAX_ITERATIONS", 3),
		MaxQueryLength:   getEnvAsInt("MAX_QUERY_LENGTH", 500),
		MinSnippetLength: getEnvAsInt("MIN_SNIPPET_LENGTH", 40),

		SensitiveTopicPatterns:      getEnvAsList("SENSITIVE_TOPIC_PATTERNS", nil),
		AuthoritativeDomainSuffixes: getEnvAsList("AUTHORITATIVE_DOMAIN_SUFFIXES", nil),
		LowTrustDomainSuffixes:      getEnvAsList("LOW_TRUST_DOMAIN_SUFFIXES", nil),

		DatabaseURL:    getEnv("DATABASE_URL", ""),
		Port:           getEnv("PORT", "8081"),
		EmbeddingModel: getEnv("EMBEDDING_MODEL", "gemini-embedding-001"),
		CacheTable:     getEnv("CACHE_TABLE", "findings_cache"),
		ExportDir:      getEnv("EXPORT_DIR", "./research_outputs"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsList splits a comma-separated variable, trimming whitespace and
// dropping empty items. A nil default means "use the compiled-in policy".
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var items []string
	for _, item := range strings.Split(valueStr, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if value := os.Getenv(key); value != "" {
			return value
		}
	}
	return ""
}
