package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/manifoldco/promptui"

	"github.com/ziadkadry99/logscope/internal/timerange"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to .logscope.yml.
func RunWizard() (*Config, error) {
	fmt.Println("Welcome to logscope! Let's configure your backend connection.")
	fmt.Println()

	// Confirm before clobbering an existing config.
	if _, err := os.Stat(DefaultPath); err == nil {
		confirm := promptui.Prompt{
			Label:     fmt.Sprintf("%s already exists, overwrite", DefaultPath),
			IsConfirm: true,
		}
		if _, err := confirm.Run(); err != nil {
			return nil, fmt.Errorf("keeping existing %s", DefaultPath)
		}
	}

	// 1. Backend endpoint.
	endpointPrompt := promptui.Prompt{
		Label: "Backend endpoint URL",
		Validate: func(s string) error {
			if strings.TrimSpace(s) == "" {
				return fmt.Errorf("endpoint is required")
			}
			return nil
		},
	}
	endpoint, err := endpointPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("endpoint: %w", err)
	}

	// 2. API token. Blank is fine; it can come from the environment instead.
	tokenPrompt := promptui.Prompt{
		Label: "API token (leave blank to use " + TokenEnv + ")",
		Mask:  '*',
	}
	token, err := tokenPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("token: %w", err)
	}

	// 3. Root scope.
	rootPrompt := promptui.Prompt{
		Label: "Root scope (the hierarchy root, enables federated queries)",
		Validate: func(s string) error {
			if strings.TrimSpace(s) == "" {
				return fmt.Errorf("root scope is required")
			}
			return nil
		},
	}
	root, err := rootPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("root scope: %w", err)
	}

	// 4. Default scope.
	defaultPrompt := promptui.Prompt{
		Label:   "Default query scope (leave blank to query the root)",
		Default: "",
	}
	defaultScope, err := defaultPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("default scope: %w", err)
	}

	// 5. Default time range.
	names := timerange.Names()
	rangePrompt := promptui.Select{
		Label: "Default time range",
		Items: names,
	}
	rangeIdx, _, err := rangePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("time range: %w", err)
	}

	// 6. Federation include patterns.
	includePrompt := promptui.Prompt{
		Label:   "Restrict federation to scope patterns (comma-separated globs, blank for all)",
		Default: "",
	}
	includeStr, err := includePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("include patterns: %w", err)
	}

	// Build the config.
	cfg := DefaultConfig()
	cfg.Backend.Endpoint = strings.TrimSpace(endpoint)
	cfg.Backend.Token = token
	cfg.Scopes.Root = strings.TrimSpace(root)
	cfg.Scopes.Default = strings.TrimSpace(defaultScope)
	cfg.Query.DefaultTimeRange = names[rangeIdx]
	cfg.Federation.Include = splitAndTrim(includeStr)

	if token == "" {
		fmt.Printf("\nNote: Set %s in your environment before running queries.\n", TokenEnv)
	}

	if err := cfg.Save(DefaultPath); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", DefaultPath)
	return cfg, nil
}

// splitAndTrim splits a comma-separated string and drops empty tokens.
func splitAndTrim(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if token := strings.TrimSpace(part); token != "" {
			result = append(result, token)
		}
	}
	return result
}
