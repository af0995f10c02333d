package ai

import "sort"

// ModelInfo carries the context window and pricing used for pre-flight
// warnings. Prices are USD per 1K tokens and only indicative.
type ModelInfo struct {
	Name          string  `json:"name"`
	ContextTokens int     `json:"context_tokens"`
	InputPerK     float64 `json:"input_per_k,omitempty"`
	OutputPerK    float64 `json:"output_per_k,omitempty"`
}

var models = map[string]ModelInfo{
	"openai/gpt-4o-mini":               {Name: "openai/gpt-4o-mini", ContextTokens: 128000, InputPerK: 0.0006, OutputPerK: 0.0024},
	"openai/gpt-4o":                    {Name: "openai/gpt-4o", ContextTokens: 128000, InputPerK: 0.005, OutputPerK: 0.015},
	"anthropic/claude-3-haiku":         {Name: "anthropic/claude-3-haiku", ContextTokens: 200000, InputPerK: 0.00025, OutputPerK: 0.00125},
	"google/gemini-1.5-flash":          {Name: "google/gemini-1.5-flash", ContextTokens: 1000000, InputPerK: 0.0002, OutputPerK: 0.0008},
	"meta-llama/llama-3.1-8b-instruct": {Name: "meta-llama/llama-3.1-8b-instruct", ContextTokens: 131072},
	"deepseek/deepseek-r1:free":        {Name: "deepseek/deepseek-r1:free", ContextTokens: 128000},
	// Common local (Ollama) tags
	"llama3:latest":         {Name: "llama3:latest", ContextTokens: 8192},
	"llama3.1:8b-instruct":  {Name: "llama3.1:8b-instruct", ContextTokens: 8192},
	"mistral:7b-instruct":   {Name: "mistral:7b-instruct", ContextTokens: 8192},
	"phi3:mini-4k-instruct": {Name: "phi3:mini-4k-instruct", ContextTokens: 4096},
}

// LookupModel returns ModelInfo and ok flag.
func LookupModel(name string) (ModelInfo, bool) {
	mi, ok := models[name]
	return mi, ok
}

// Catalog returns the known models sorted by name.
func Catalog() []ModelInfo {
	out := make([]ModelInfo, 0, len(models))
	for _, mi := range models {
		out = append(out, mi)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// EstimateCostUSD estimates total cost in USD for given tokens using model pricing.
// If the model is unknown, returns 0 and ok=false.
func EstimateCostUSD(model string, promptTokens, completionTokens int) (float64, bool) {
	mi, ok := LookupModel(model)
	if !ok {
		return 0, false
	}
	return float64(promptTokens)/1000.0*mi.InputPerK + float64(completionTokens)/1000.0*mi.OutputPerK, true
}

// FitsContext reports whether prompt plus completion tokens fit the model's
// window. Unknown models always fit.
func FitsContext(model string, promptTokens, maxTokens int) bool {
	mi, ok := LookupModel(model)
	if !ok || mi.ContextTokens == 0 {
		return true
	}
	return promptTokens+maxTokens <= mi.ContextTokens
}
