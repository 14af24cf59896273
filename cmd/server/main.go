package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/exportops/customs-risk-service/api"
	"github.com/exportops/customs-risk-service/internal/ai"
	"github.com/exportops/customs-risk-service/internal/auth"
	"github.com/exportops/customs-risk-service/internal/db"
	"github.com/exportops/customs-risk-service/internal/models"
	"github.com/exportops/customs-risk-service/internal/services"
	"github.com/exportops/customs-risk-service/internal/storage"
)

func main() {
	// Initialize JWT
	if err := auth.Init(); err != nil {
		log.Fatalf("Failed to initialize auth: %v", err)
	}
	log.Println("JWT authentication initialized")

	// Initialize database connection pool (exporter accounts only)
	if err := db.Init(); err != nil {
		log.Printf("Warning: Database not available: %v", err)
		log.Println("Running in assessment-only mode (no exporter accounts)")
	} else {
		defer db.Close()
		log.Println("Database connection pool initialized")
	}

	// Initialize MinIO document archive
	if err := storage.Init(); err != nil {
		log.Printf("Warning: MinIO storage not available: %v", err)
		log.Println("Uploaded documents will not be archived")
	} else {
		log.Println("MinIO storage initialized")
	}

	// Load configuration
	config, err := loadConfig("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Create the AI structuring provider; the pipeline runs on fallback
	// extraction alone when none is configured.
	provider := createProvider(config)
	if provider != nil {
		log.Printf("AI structuring provider: %s", provider.Name())
	} else {
		log.Println("No AI provider configured - running rules-only extraction")
	}

	assessor := services.NewAssessor(config, provider)

	// Create API handler
	handler := api.NewHandler(config, assessor)
	router := handler.SetupRoutes()

	// Add login endpoint
	router.HandleFunc("/api/login", auth.LoginHandler).Methods("POST")

	// Wrap router with JWT middleware (skips /health and /api/login)
	protectedRouter := auth.JWTMiddleware(router)

	// Start server
	addr := fmt.Sprintf("%s:%d", config.Host, config.Port)
	log.Printf("Starting Customs Risk Service v%s on %s", api.Version, addr)
	log.Printf("Default AI Provider: %s", config.AI.DefaultProvider)
	log.Printf("Database: %v", db.Pool != nil)
	log.Printf("Storage: %v", storage.Available())
	log.Printf("Endpoints:")
	log.Printf("  POST http://%s/api/login           - Authenticate", addr)
	log.Printf("  POST http://%s/api/assess-invoice  - Assess invoice risk (requires JWT)", addr)
	log.Printf("  POST http://%s/api/simulate        - What-if re-scoring (requires JWT)", addr)
	log.Printf("  POST http://%s/api/feedback        - Record shipment outcome (requires JWT)", addr)
	log.Printf("  GET  http://%s/api/stats           - Evidence counters (requires JWT)", addr)
	log.Printf("  GET  http://%s/health              - Health check", addr)

	if err := http.ListenAndServe(addr, protectedRouter); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func createProvider(config *models.Config) ai.Provider {
	switch config.AI.DefaultProvider {
	case "openai":
		if config.AI.OpenAI.APIKey == "" {
			log.Println("Warning: AI provider openai selected but OPENAI_API_KEY is not set")
			return nil
		}
		return ai.NewOpenAIProvider(config.AI.OpenAI.APIKey, config.AI.OpenAI.BaseURL, config.AI.OpenAI.Model)
	case "gemini":
		if config.AI.Gemini.APIKey == "" {
			log.Println("Warning: AI provider gemini selected but GEMINI_API_KEY is not set")
			return nil
		}
		return ai.NewGeminiProvider(config.AI.Gemini.APIKey, config.AI.Gemini.Model)
	case "", "none":
		return nil
	default:
		log.Printf("Warning: unknown AI provider %q, running without one", config.AI.DefaultProvider)
		return nil
	}
}

func loadConfig(path string) (*models.Config, error) {
	config := models.DefaultConfig()

	// Read config file; shipped defaults apply when it is absent
	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Override with environment variables if present
	if port := os.Getenv("PORT"); port != "" {
		fmt.Sscanf(port, "%d", &config.Port)
	}
	if host := os.Getenv("HOST"); host != "" {
		config.Host = host
	}
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		config.AI.OpenAI.APIKey = apiKey
	}
	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		config.AI.Gemini.APIKey = apiKey
	}
	if provider := os.Getenv("AI_PROVIDER"); provider != "" {
		config.AI.DefaultProvider = provider
	}
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		config.AI.OpenAI.BaseURL = baseURL
	}
	if model := os.Getenv("OPENAI_MODEL"); model != "" {
		config.AI.OpenAI.Model = model
	}
	if model := os.Getenv("GEMINI_MODEL"); model != "" {
		config.AI.Gemini.Model = model
	}

	return config, nil
}
