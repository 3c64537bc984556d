package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and saves the result
// to path.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to promptsuite! Let's configure your workspace.")
	fmt.Println()

	providerPrompt := promptui.Select{
		Label: "Select text-generation provider",
		Items: []string{"openai", "openrouter", "ollama", "offline"},
	}
	_, providerStr, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	provider := ProviderType(providerStr)
	preset := GetPreset(provider)

	modelPrompt := promptui.Prompt{
		Label:   "Model",
		Default: preset.Model,
	}
	model, err := modelPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("model: %w", err)
	}

	dataPrompt := promptui.Prompt{
		Label:   "Data directory (history, feedback and corpus database)",
		Default: ".promptsuite",
	}
	dataDir, err := dataPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}

	corpusPrompt := promptui.Prompt{
		Label:   "Corpus files to import (comma-separated globs, blank for none)",
		Default: "",
	}
	corpusStr, err := corpusPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("corpus paths: %w", err)
	}

	thresholdPrompt := promptui.Prompt{
		Label:   "Quality accept threshold (0-10)",
		Default: "8.5",
		Validate: func(s string) error {
			v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil || v < 0 || v > 10 {
				return fmt.Errorf("enter a number between 0 and 10")
			}
			return nil
		},
	}
	thresholdStr, err := thresholdPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("accept threshold: %w", err)
	}
	threshold, _ := strconv.ParseFloat(strings.TrimSpace(thresholdStr), 64)

	cfg := DefaultConfig()
	cfg.Provider = provider
	cfg.Model = model
	cfg.EmbeddingProvider = preset.EmbeddingProvider
	if preset.EmbeddingModel != "" {
		cfg.EmbeddingModel = preset.EmbeddingModel
	}
	cfg.DataDir = dataDir
	cfg.CorpusPaths = splitAndTrim(corpusStr)
	cfg.AcceptThreshold = threshold

	if envVar := APIKeyEnvVar(provider); envVar != "" && os.Getenv(envVar) == "" {
		fmt.Printf("\nNote: Set %s in your environment before running promptsuite generate.\n", envVar)
	}

	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

// splitAndTrim splits a comma-separated string and trims whitespace.
func splitAndTrim(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if token := strings.TrimSpace(part); token != "" {
			result = append(result, token)
		}
	}
	return result
}
