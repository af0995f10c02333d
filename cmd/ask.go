package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/dataclinic-cli/internal/ai"
	"github.com/KaramelBytes/dataclinic-cli/internal/analysis"
	"github.com/KaramelBytes/dataclinic-cli/internal/clinic"
	"github.com/KaramelBytes/dataclinic-cli/internal/utils"
)

var (
	askLLM        bool
	askModel      string
	askProvider   string
	askOllamaHost string
	askMaxTokens  int
	askStream     bool
	askJSON       bool
	askDryRun     bool
)

var askCmd = &cobra.Command{
	Use:   "ask <session> <text...>",
	Short: "Run a free-text command (and optionally ask the LLM) against a session",
	Long: `Interpret free text such as "fill nulls in Age with mean", "drop column
Notes" or "scatter Age vs Salary" against a session. Cleaning commands update
the stored table; chart commands store the chart.

With --llm (or ask_llm: true in config) the question and a compact context
(columns, one sample row, dataset insights) are first sent to the chat model.
Chat failures are reported as warnings and never block the local command.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, s, err := openSession(args[0])
		if err != nil {
			return err
		}
		text := strings.Join(args[1:], " ")
		w := cmd.OutOrStdout()

		useLLM := askLLM
		if !cmd.Flags().Changed("llm") && cfg != nil {
			useLLM = cfg.AskLLM
		}
		a := &clinic.Assistant{AskLLM: useLLM, Log: logger}
		if useLLM {
			model := selectModel(cfg, askModel)
			maxTokens := askMaxTokens
			if maxTokens <= 0 && cfg != nil {
				maxTokens = cfg.MaxTokens
			}
			t := s.Table()
			in := analysis.ComputeInsights(t, analysis.DescriptiveStats(t))
			est := estimatePrompt(model, ai.NewChatContext(t, &in), text, maxTokens)
			if !askJSON {
				printEstimate(cmd.ErrOrStderr(), model, est)
			}
			if askDryRun {
				return nil
			}
			rt, provider, err := buildRuntime(cfg, runtimeOptions{ProviderFlag: askProvider, OllamaHost: askOllamaHost})
			if err != nil {
				return err
			}
			a.Runtime, a.Provider, a.Model, a.MaxTokens = rt, provider, model, maxTokens
			if askStream && !askJSON {
				if _, ok := rt.(ai.StreamRuntime); ok {
					a.OnDelta = func(d string) { fmt.Fprint(w, d) }
				} else {
					fmt.Fprintln(cmd.ErrOrStderr(), "⚠ Streaming not supported for this provider; falling back to non-streaming.")
				}
			}
		} else if askDryRun {
			return fmt.Errorf("--dry-run needs --llm")
		}

		r := a.Handle(context.Background(), s, text)
		if err := st.Save(s); err != nil {
			return err
		}

		if askJSON {
			out := map[string]any{
				"session": s.Name,
				"message": r.Message,
				"changed": r.Changed,
			}
			if r.LLM != "" {
				out["llm"] = r.LLM
			}
			if r.LLMErr != nil {
				out["llm_error"] = r.LLMErr.Error()
			}
			if r.Step != "" {
				out["step"] = r.Step
			}
			if r.Chart != nil {
				out["chart"] = r.Chart
			}
			b, err := utils.PrettyJSON(out)
			if err != nil {
				return err
			}
			fmt.Fprintln(w, string(b))
			return nil
		}

		if r.LLMErr != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Warning: %v\n", r.LLMErr)
		}
		if r.LLM != "" {
			if a.OnDelta != nil {
				fmt.Fprintln(w)
			} else {
				heading(w, "ASSISTANT")
				fmt.Fprintln(w, r.LLM)
			}
			fmt.Fprintln(w)
		}
		switch {
		case r.Changed:
			fmt.Fprintf(w, "✓ %s (%d rows, %d columns)\n", r.Step, len(s.Rows), len(s.Columns))
		case r.Chart != nil:
			fmt.Fprintf(w, "✓ %s\n", r.Message)
			fmt.Fprintf(w, "  Print it with: dataclinic chart %s --last\n", s.Name)
		case r.Err != nil:
			fmt.Fprintf(w, "✗ %s\n", r.Message)
		default:
			fmt.Fprintln(w, r.Message)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().BoolVar(&askLLM, "llm", false, "ask the chat model before interpreting (default from config ask_llm)")
	askCmd.Flags().StringVarP(&askModel, "model", "m", "", "model to use (default from config)")
	askCmd.Flags().StringVar(&askProvider, "provider", "", "chat provider: openrouter | ollama (default from config)")
	askCmd.Flags().StringVar(&askOllamaHost, "ollama-host", "", "Ollama host URL (default from config)")
	askCmd.Flags().IntVar(&askMaxTokens, "max-tokens", 0, "max reply tokens (0 = config max_tokens)")
	askCmd.Flags().BoolVar(&askStream, "stream", false, "stream the model reply as it arrives")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "print JSON")
	askCmd.Flags().BoolVar(&askDryRun, "dry-run", false, "estimate the chat prompt and exit without sending it")
}
