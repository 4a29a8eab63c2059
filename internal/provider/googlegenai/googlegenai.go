// Package googlegenai provides a weather provider generating parameters with Google's Gemini models.
package googlegenai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/genai"

	"github.com/jmylchreest/atrium/internal/market"
	"github.com/jmylchreest/atrium/internal/provider"
	httputil "github.com/jmylchreest/atrium/internal/util/httpx"
	"github.com/jmylchreest/atrium/internal/weather"
)

const (
	// weatherInstruction is the schema briefing sent with every request so the
	// model responds with a complete parameter set the scene can apply directly.
	weatherInstruction = `You are the weather director for a floating island gallery scene. Respond with a single JSON object describing the scene weather. Fields: skyColor (hex), fogDensity (0-1), fogColor (hex), sunIntensity (0-2), sunColor (hex), ambientIntensity (0-1), weatherType (sunny|cloudy|rainy|stormy|foggy|snowy), particleIntensity (0-1), windSpeed (0-10), cloudSpeed (0-5), mood (calm|energetic|melancholic|mysterious|chaotic), waterEffect (calm|ripples|waves|turbulent|frozen), waterColor (hex), specialEvents (array from meteor_shower, shooting_star, fireball, fire_ring, aurora, lightning), islandState (normal|glowing|smoking|frozen|burning), ambientEffects (array from birds, embers, sparkles, snowfall, fireflies), effectIntensity (0-1), fishCount (0-100), floatingOrbCount (5-30), energyBeamIntensity (0-1), reasoning (one short sentence). Respond with JSON only, no prose around it.`

	// modelPrefix is the prefix that Google API returns for model names.
	modelPrefix = "models/"

	// defaultModel is the default model used when none is specified.
	defaultModel = "gemini-2.5-flash"

	// defaultBackend is the default backend used when none is specified.
	defaultBackend = "gemini-api"
)

// Provider implements the provider.Provider interface for Gemini weather generation.
type Provider struct {
	prompt    string
	model     string
	backend   string
	marketURL string

	// Caching
	cacheEnabled   bool
	cacheDir       string
	cacheMaxAge    time.Duration
	cacheOverwrite bool

	// Model listing
	listModels bool
}

// New creates a new Google Gen AI weather provider with default settings.
func New() *Provider {
	home, err := os.UserHomeDir()
	defaultCacheDir := ".cache/atrium/google-genai"
	if err == nil {
		defaultCacheDir = filepath.Join(home, ".cache", "atrium", "google-genai")
	}

	return &Provider{
		model:        defaultModel,
		backend:      defaultBackend,
		cacheEnabled: true,
		cacheDir:     defaultCacheDir,
		cacheMaxAge:  15 * time.Minute,
	}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "google-genai"
}

// Description returns a human-readable description.
func (p *Provider) Description() string {
	return "Generate weather parameters with Google Gemini"
}

// Version returns the provider version.
func (p *Provider) Version() string {
	return "0.0.1"
}

// RegisterFlags registers provider-specific flags.
func (p *Provider) RegisterFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&p.prompt, "prompt", "", "Creative direction for the weather (required unless --market-url is set)")
	cmd.Flags().StringVar(&p.model, "model", p.model, "Gemini model to use")
	cmd.Flags().StringVar(&p.backend, "genai-backend", p.backend, "Google Gen AI backend to use (gemini-api or vertex-ai)")
	cmd.Flags().StringVar(&p.marketURL, "market-url", "", "Market statistics endpoint to include as context")

	// Cache flags
	cmd.Flags().BoolVar(&p.cacheEnabled, "cache", p.cacheEnabled, "Enable parameter caching")
	cmd.Flags().StringVar(&p.cacheDir, "cache-dir", p.cacheDir, "Cache directory")
	cmd.Flags().DurationVar(&p.cacheMaxAge, "cache-max-age", p.cacheMaxAge, "Maximum age before cached parameters are regenerated")
	cmd.Flags().BoolVar(&p.cacheOverwrite, "cache-overwrite", p.cacheOverwrite, "Overwrite existing cache")

	// Model listing flag
	cmd.Flags().BoolVar(&p.listModels, "list-models", false, "List available Gemini models and exit")
}

// Validate checks if required inputs are configured.
func (p *Provider) Validate() error {
	// Skip validation if just listing models
	if p.listModels {
		return nil
	}
	if p.prompt == "" && p.marketURL == "" {
		return fmt.Errorf("either --prompt or --market-url is required")
	}
	return nil
}

// Derive generates weather parameters using Google Gen AI.
func (p *Provider) Derive(ctx context.Context, opts provider.DeriveOptions) (weather.Params, error) {
	// If list-models flag is set, list models and exit
	if p.listModels {
		if err := p.listAvailableModels(ctx, opts.Verbose); err != nil {
			return weather.Params{}, fmt.Errorf("failed to list models: %w", err)
		}
		os.Exit(0)
	}

	if opts.Verbose {
		fmt.Fprintf(os.Stderr, "Google Gen AI Provider Configuration:\n")
		fmt.Fprintf(os.Stderr, "  Prompt: %s\n", p.prompt)
		fmt.Fprintf(os.Stderr, "  Model: %s\n", p.model)
		fmt.Fprintf(os.Stderr, "  Backend: %s\n", p.backend)
		fmt.Fprintf(os.Stderr, "  Market URL: %s\n", p.marketURL)
		fmt.Fprintf(os.Stderr, "  Cache: %v (dir: %s, max age: %s)\n", p.cacheEnabled, p.cacheDir, p.cacheMaxAge)
	}

	// Determine cache path
	paramsPath, err := p.getParamsPath()
	if err != nil {
		return weather.Params{}, fmt.Errorf("failed to determine cache path: %w", err)
	}

	// Generate parameters if the cache is disabled, missing or expired
	if p.cacheOverwrite || !p.cacheUsable(paramsPath) {
		fmt.Fprintf(os.Stderr, "[google-genai] backend=%s model=%s\n", p.backend, p.model)
		fmt.Fprintf(os.Stderr, "Waiting for response...\n")

		data, err := p.generateParams(ctx, opts.Verbose)
		if err != nil {
			return weather.Params{}, fmt.Errorf("failed to generate weather: %w", err)
		}

		if p.cacheEnabled {
			if err := os.WriteFile(paramsPath, data, 0o600); err != nil {
				return weather.Params{}, fmt.Errorf("failed to write cache: %w", err)
			}
			fmt.Fprintf(os.Stderr, "Parameters cached: %s\n", paramsPath)
		}

		return parseParams(data, opts.At())
	}

	fmt.Fprintf(os.Stderr, "Using cached parameters: %s\n", paramsPath)
	data, err := os.ReadFile(paramsPath) // #nosec G304 - Cache path is derived internally
	if err != nil {
		return weather.Params{}, fmt.Errorf("failed to read cache: %w", err)
	}

	return parseParams(data, opts.At())
}

// getParamsPath determines where to save/load the generated parameters.
func (p *Provider) getParamsPath() (string, error) {
	if !p.cacheEnabled {
		tmpFile, err := os.CreateTemp("", "atrium-genai-*.json")
		if err != nil {
			return "", fmt.Errorf("failed to create temp file: %w", err)
		}
		tmpFile.Close()
		return tmpFile.Name(), nil
	}

	if err := os.MkdirAll(p.cacheDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create cache directory: %w", err)
	}

	hash := sha256.Sum256([]byte(p.prompt + p.model + p.marketURL))
	hashStr := hex.EncodeToString(hash[:])[:16]
	filename := fmt.Sprintf("genai-%s.json", hashStr)

	return filepath.Join(p.cacheDir, filename), nil
}

// cacheUsable reports whether a cached parameter file exists and is younger
// than the configured maximum age.
func (p *Provider) cacheUsable(path string) bool {
	if !p.cacheEnabled {
		return false
	}
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return p.cacheMaxAge <= 0 || time.Since(info.ModTime()) < p.cacheMaxAge
}

// clientSetup encapsulates client configuration, creation, and logging.
// Returns the configured client or an error.
func (p *Provider) clientSetup(ctx context.Context, verbose bool) (*genai.Client, error) {
	clientConfig := &genai.ClientConfig{}

	if p.backend == "vertex-ai" {
		clientConfig.Backend = genai.BackendVertexAI
	} else {
		clientConfig.Backend = genai.BackendGeminiAPI
	}

	// Check for API key (required for Gemini API backend)
	if clientConfig.Backend == genai.BackendGeminiAPI {
		apiKey := os.Getenv("GOOGLE_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("GOOGLE_API_KEY environment variable is required\nGet one at: https://aistudio.google.com/api-keys")
		}
		clientConfig.APIKey = apiKey
	}

	// Create client
	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gen AI client: %w", err)
	}

	// Log backend information if verbose
	if verbose {
		backendName := "Gemini API"
		if client.ClientConfig().Backend == genai.BackendVertexAI {
			backendName = "Vertex AI"
		}
		fmt.Fprintf(os.Stderr, "Using %s backend\n", backendName)
	}

	return client, nil
}

// buildPrompt assembles the full model prompt: the schema briefing, optional
// market context, and the user's creative direction.
func (p *Provider) buildPrompt(ctx context.Context, verbose bool) (string, error) {
	parts := []string{weatherInstruction}

	if p.marketURL != "" {
		if verbose {
			fmt.Fprintf(os.Stderr, "Fetching market context from: %s\n", p.marketURL)
		}

		content, err := httputil.Fetch(ctx, p.marketURL, httputil.FetchOptions{})
		if err != nil {
			return "", fmt.Errorf("failed to fetch market context: %w", err)
		}

		var snap market.Snapshot
		if err := json.Unmarshal(content, &snap); err != nil {
			return "", fmt.Errorf("failed to parse market context: %w", err)
		}
		snap.Normalize()
		agg := snap.Aggregated

		parts = append(parts, fmt.Sprintf(
			"Market context: average 24h change %+.2f%%, volatility %.2f, total volume %.1fB, sentiment %s, trending strength %.2f. The weather must reflect this market.",
			agg.AverageChange, agg.Volatility, snap.TotalVolume24h()/1e9, agg.MarketSentiment, agg.TrendingStrength))
	}

	if p.prompt != "" {
		parts = append(parts, "Creative direction: "+p.prompt)
	}

	return strings.Join(parts, "\n\n"), nil
}

// generateParams calls Google Gen AI SDK to produce a parameter JSON document.
func (p *Provider) generateParams(ctx context.Context, verbose bool) ([]byte, error) {
	client, err := p.clientSetup(ctx, verbose)
	if err != nil {
		return nil, err
	}

	promptText, err := p.buildPrompt(ctx, verbose)
	if err != nil {
		return nil, err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Calling GenerateContent with model: %s\n", p.model)
		fmt.Fprintf(os.Stderr, "  Prompt length: %d bytes\n", len(promptText))
	}

	// Build generation config for JSON output
	genConfig := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}

	contents := genai.Text(promptText)

	// Generate content
	response, err := client.Models.GenerateContent(ctx, p.model, contents, genConfig)
	if err != nil {
		return nil, fmt.Errorf("weather generation failed: %w", err)
	}

	// Check if we got any parts in the response
	if len(response.Candidates) == 0 || response.Candidates[0].Content == nil || len(response.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("no weather data in response")
	}

	// Extract the JSON text from the first text part
	var text string
	for _, part := range response.Candidates[0].Content.Parts {
		if part.Text != "" {
			text = part.Text
			break
		}
	}

	if text == "" {
		return nil, fmt.Errorf("no text data found in response")
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Received response: %d bytes\n", len(text))
	}

	return []byte(stripFences(text)), nil
}

// stripFences removes a markdown code fence some models wrap around JSON
// output even in JSON mode.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

// parseParams decodes a model response into normalized weather parameters.
func parseParams(data []byte, now time.Time) (weather.Params, error) {
	var params weather.Params
	if err := json.Unmarshal(data, &params); err != nil {
		return weather.Params{}, fmt.Errorf("failed to parse generated weather: %w", err)
	}

	if params.WeatherType == "" {
		return weather.Params{}, fmt.Errorf("generated weather has no weatherType")
	}

	if params.Timestamp.IsZero() {
		params.Timestamp = now
	}
	params.Normalize()
	return params, nil
}

// listAvailableModels lists available Gemini models from the API.
func (p *Provider) listAvailableModels(ctx context.Context, verbose bool) error {
	client, err := p.clientSetup(ctx, verbose)
	if err != nil {
		// For list-models, fall back to hardcoded list on API key error
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		fmt.Fprintf(os.Stderr, "Showing known models instead:\n\n")
		ListModels()
		return nil
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Fetching available models from API...\n\n")
	}

	fmt.Println("Available Weather Generation Models:")
	fmt.Println()
	fmt.Printf("Default Model: %s\n", defaultModel)
	fmt.Printf("Default Backend: %s\n", defaultBackend)
	fmt.Println()

	modelCount := 0
	for model, err := range client.Models.All(ctx) {
		if err != nil {
			// If we encounter an error, show what we got so far and fall back
			if modelCount > 0 {
				fmt.Fprintf(os.Stderr, "\nWarning: Error during model listing: %v\n", err)
				fmt.Fprintf(os.Stderr, "Showing %d models retrieved before error\n\n", modelCount)
				return nil
			}
			// If no models retrieved, fall back to hardcoded list
			fmt.Fprintf(os.Stderr, "Warning: Could not fetch models from API: %v\n", err)
			fmt.Fprintf(os.Stderr, "Showing known models instead:\n\n")
			ListModels()
			return nil
		}

		// Filter for text-capable Gemini models
		if model.Name != "" && isWeatherModel(model.Name) {
			modelCount++

			// Remove "models/" prefix from model name for cleaner output
			modelName := strings.TrimPrefix(model.Name, modelPrefix)

			fmt.Printf("Model: %s\n", modelName)
			if model.DisplayName != "" {
				fmt.Printf("  Display Name: %s\n", model.DisplayName)
			}
			if model.Description != "" {
				fmt.Printf("  Description: %s\n", model.Description)
			}
			fmt.Println()
		}
	}

	if modelCount == 0 {
		fmt.Println("No suitable models found via API.")
		fmt.Println("Showing known models instead:")
		fmt.Println()
		ListModels()
	} else if verbose {
		fmt.Fprintf(os.Stderr, "\nTotal models found: %d\n", modelCount)
	}

	fmt.Println()
	fmt.Println("Pricing Information:")
	fmt.Println("  For current pricing and free tier details, visit:")
	fmt.Println("  https://ai.google.dev/gemini-api/docs/pricing")

	return nil
}

// isWeatherModel checks if a model can produce structured JSON weather output.
// Image, embedding and TTS models are excluded.
func isWeatherModel(name string) bool {
	nameLower := strings.ToLower(name)

	if !strings.Contains(nameLower, "gemini") {
		return false
	}

	for _, excluded := range []string{"image", "imagen", "embedding", "tts", "audio"} {
		if strings.Contains(nameLower, excluded) {
			return false
		}
	}

	return true
}

// ListModels prints known Gemini weather generation models to stdout.
func ListModels() {
	models := []struct {
		ID          string
		Name        string
		Description string
	}{
		{
			ID:          "gemini-2.5-flash",
			Name:        "Gemini 2.5 Flash",
			Description: "Fast structured output, ideal for frequent weather refreshes (default)",
		},
		{
			ID:          "gemini-2.5-pro",
			Name:        "Gemini 2.5 Pro",
			Description: "Highest quality reasoning over market context",
		},
		{
			ID:          "gemini-2.0-flash",
			Name:        "Gemini 2.0 Flash",
			Description: "Previous generation model (stable)",
		},
	}

	fmt.Println("Available Weather Generation Models:")
	fmt.Println()
	fmt.Printf("Default Model: %s\n", defaultModel)
	fmt.Printf("Default Backend: %s\n", defaultBackend)
	fmt.Println()

	for _, model := range models {
		fmt.Printf("ID: %s\n", model.ID)
		fmt.Printf("  Name: %s\n", model.Name)
		fmt.Printf("  Description: %s\n", model.Description)
		fmt.Println()
	}

	fmt.Println("Pricing Information:")
	fmt.Println("  For current pricing and free tier details, visit:")
	fmt.Println("  https://ai.google.dev/gemini-api/docs/pricing")
}
