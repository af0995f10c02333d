package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/KaramelBytes/dataclinic-cli/internal/ai"
	cfgpkg "github.com/KaramelBytes/dataclinic-cli/internal/config"
	"github.com/KaramelBytes/dataclinic-cli/internal/utils"
)

type runtimeOptions struct {
	ProviderFlag string
	OllamaHost   string
}

func buildRuntime(cfg *cfgpkg.Global, opts runtimeOptions) (ai.Runtime, string, error) {
	httpTimeout := 60 * time.Second
	retryMax := 3
	baseDelay := 500 * time.Millisecond
	maxDelay := 4 * time.Second
	if cfg != nil {
		if cfg.HTTPTimeoutSec > 0 {
			httpTimeout = time.Duration(cfg.HTTPTimeoutSec) * time.Second
		}
		if cfg.RetryMaxAttempts > 0 {
			retryMax = cfg.RetryMaxAttempts
		}
		if cfg.RetryBaseDelayMs > 0 {
			baseDelay = time.Duration(cfg.RetryBaseDelayMs) * time.Millisecond
		}
		if cfg.RetryMaxDelayMs > 0 {
			maxDelay = time.Duration(cfg.RetryMaxDelayMs) * time.Millisecond
		}
	}

	providerName := ai.NormalizeProvider(opts.ProviderFlag)
	if providerName == "" && cfg != nil {
		providerName = ai.NormalizeProvider(cfg.DefaultProvider)
	}
	if providerName == "" {
		providerName = ai.ProviderOpenRouter
	}

	apiKey := os.Getenv("OPENROUTER_API_KEY")
	if apiKey == "" && cfg != nil {
		apiKey = cfg.APIKey
	}

	rc := ai.RuntimeConfig{
		HTTPTimeout: httpTimeout,
		RetryMax:    retryMax,
		BaseDelay:   baseDelay,
		MaxDelay:    maxDelay,
		APIKey:      apiKey,
	}

	if providerName == ai.ProviderOllama {
		host := strings.TrimSpace(opts.OllamaHost)
		if host == "" && cfg != nil {
			host = cfg.OllamaHost
		}
		if host == "" {
			host = "http://127.0.0.1:11434"
		}
		rc.Host = host
		if cfg != nil && cfg.OllamaTimeoutSec > 0 {
			rc.HTTPTimeout = time.Duration(cfg.OllamaTimeoutSec) * time.Second
		}
	}

	client, ok := ai.GetRuntime(providerName, rc)
	if !ok {
		return nil, providerName, fmt.Errorf("provider not supported: %s (available: %s)", providerName, strings.Join(ai.Providers(), ", "))
	}
	return client, providerName, nil
}

func selectModel(cfg *cfgpkg.Global, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if cfg != nil && cfg.DefaultModel != "" {
		return cfg.DefaultModel
	}
	return "openai/gpt-4o-mini"
}

// promptEstimate describes the size of a chat request before it is sent.
type promptEstimate struct {
	Tokens  int
	CostUSD float64
	Known   bool
	Fits    bool
}

func estimatePrompt(model string, cc ai.ChatContext, prompt string, maxTokens int) promptEstimate {
	msgs := cc.Messages(prompt)
	sections := make(map[string]string, len(msgs))
	for _, m := range msgs {
		sections[m.Role] = m.Content
	}
	var e promptEstimate
	for _, n := range utils.TokenBreakdown(sections) {
		e.Tokens += n
	}
	e.CostUSD, e.Known = ai.EstimateCostUSD(model, e.Tokens, maxTokens)
	e.Fits = ai.FitsContext(model, e.Tokens, maxTokens)
	return e
}

// printEstimate writes a one-line estimate, plus a warning when the prompt
// does not fit the model's context window.
func printEstimate(w io.Writer, model string, e promptEstimate) {
	if e.Known {
		fmt.Fprintf(w, "Prompt ≈ %d tokens for %s (est. $%.4f)\n", e.Tokens, model, e.CostUSD)
	} else {
		fmt.Fprintf(w, "Prompt ≈ %d tokens for %s\n", e.Tokens, model)
	}
	if !e.Fits {
		fmt.Fprintf(w, "⚠ Warning: prompt plus max tokens may exceed the context window of %s\n", model)
	}
}
