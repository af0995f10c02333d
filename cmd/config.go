package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/dataclinic-cli/internal/ai"
	cfgpkg "github.com/KaramelBytes/dataclinic-cli/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set Data Clinic configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "api_key: %s\n", mask(c.APIKey))
		fmt.Fprintf(w, "default_model: %s\n", c.DefaultModel)
		if c.DefaultProvider != "" {
			fmt.Fprintf(w, "default_provider: %s\n", c.DefaultProvider)
		}
		fmt.Fprintf(w, "max_tokens: %d\n", c.MaxTokens)
		fmt.Fprintf(w, "temperature: %.3f\n", c.Temperature)
		fmt.Fprintf(w, "ask_llm: %t\n", c.AskLLM)
		fmt.Fprintf(w, "sessions_dir: %s\n", c.SessionsDir)
		fmt.Fprintf(w, "histogram_bins: %d\n", c.HistogramBins)
		fmt.Fprintf(w, "sample_rows: %d\n", c.SampleRows)
		if c.MaxRows > 0 {
			fmt.Fprintf(w, "max_rows: %d\n", c.MaxRows)
		}
		fmt.Fprintf(w, "workers: %d\n", c.Workers)
		fmt.Fprintf(w, "ollama_host: %s\n", c.OllamaHost)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		c, err := requireConfig()
		if err != nil {
			return err
		}
		intVal := func(min int) (int, error) {
			i, err := strconv.Atoi(val)
			if err != nil || i < min {
				return 0, fmt.Errorf("invalid int for %s: %v", key, val)
			}
			return i, nil
		}
		switch key {
		case "api_key":
			c.APIKey = val
		case "default_model":
			c.DefaultModel = val
		case "default_provider":
			p := ai.NormalizeProvider(val)
			if p != ai.ProviderOpenRouter && p != ai.ProviderOllama {
				return fmt.Errorf("invalid default_provider: %s (use openrouter or ollama)", val)
			}
			c.DefaultProvider = p
		case "max_tokens":
			if c.MaxTokens, err = intVal(1); err != nil {
				return err
			}
		case "temperature":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return fmt.Errorf("invalid float for temperature: %w", err)
			}
			c.Temperature = f
		case "ask_llm":
			b, err := strconv.ParseBool(val)
			if err != nil {
				return fmt.Errorf("invalid bool for ask_llm: %w", err)
			}
			c.AskLLM = b
		case "sessions_dir":
			c.SessionsDir = val
		case "histogram_bins":
			if c.HistogramBins, err = intVal(1); err != nil {
				return err
			}
		case "sample_rows":
			if c.SampleRows, err = intVal(0); err != nil {
				return err
			}
		case "max_rows":
			if c.MaxRows, err = intVal(0); err != nil {
				return err
			}
		case "workers":
			if c.Workers, err = intVal(1); err != nil {
				return err
			}
		case "ollama_host":
			c.OllamaHost = val
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 6 {
		return "******"
	}
	return s[:3] + "****" + s[len(s)-3:]
}
