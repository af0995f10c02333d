package ai

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/KaramelBytes/dataclinic-cli/internal/analysis"
	"github.com/KaramelBytes/dataclinic-cli/internal/table"
	"github.com/KaramelBytes/dataclinic-cli/internal/utils"
)

// DefaultChatTemperature keeps dataset answers close to the numbers.
const DefaultChatTemperature = 0.2

// Preview budgets for the context pieces, in estimated tokens.
const (
	systemPreviewTokens = 75
	userPreviewTokens   = 250
)

const systemPreamble = "You are a specialized data analysis assistant. Always respond directly with insights. Do NOT suggest commands. Be conversational."

// ChatContext is the compact view of the session shipped with each question.
type ChatContext struct {
	Columns  []string           `json:"columns"`
	Sample   []table.Row        `json:"sample"`
	Insights *analysis.Insights `json:"insights,omitempty"`
}

// NewChatContext builds the context for t: its columns, at most one sample
// row and the given insights.
func NewChatContext(t *table.Table, in *analysis.Insights) ChatContext {
	cc := ChatContext{Columns: append([]string(nil), t.Columns...), Insights: in}
	if t.Len() > 0 {
		cc.Sample = []table.Row{t.Rows[0]}
	}
	return cc
}

func compactJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// SystemContent is the system message: the preamble plus short previews of
// the context.
func (cc ChatContext) SystemContent() string {
	var b strings.Builder
	b.WriteString(systemPreamble)
	if len(cc.Columns) > 0 {
		b.WriteString("\nAvailable Columns: " + strings.Join(cc.Columns, ", "))
	}
	if len(cc.Sample) > 0 {
		b.WriteString("\nSample Data: " + utils.TruncateToTokenLimit(compactJSON(cc.Sample), systemPreviewTokens))
	}
	if cc.Insights != nil {
		b.WriteString("\nExisting Insights: " + utils.TruncateToTokenLimit(compactJSON(cc.Insights), systemPreviewTokens))
	}
	return b.String()
}

// UserContent is the question followed by the longer context previews.
func (cc ChatContext) UserContent(prompt string) string {
	pieces := []string{prompt}
	if len(cc.Columns) > 0 {
		pieces = append(pieces, "Columns: "+strings.Join(cc.Columns, ", "))
	}
	if len(cc.Sample) > 0 {
		pieces = append(pieces, "Sample Row: "+utils.TruncateToTokenLimit(compactJSON(cc.Sample[0]), userPreviewTokens))
	}
	if cc.Insights != nil {
		pieces = append(pieces, "Insights: "+utils.TruncateToTokenLimit(compactJSON(cc.Insights), userPreviewTokens))
	}
	return strings.Join(pieces, "\n")
}

// Messages returns the system and user messages for prompt.
func (cc ChatContext) Messages(prompt string) []Message {
	return []Message{
		{Role: "system", Content: cc.SystemContent()},
		{Role: "user", Content: cc.UserContent(prompt)},
	}
}

// Ask forwards prompt with cc to rt and returns the reply text.
func Ask(ctx context.Context, rt Runtime, model, prompt string, cc ChatContext, maxTokens int) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", errors.New("prompt is required")
	}
	resp, err := rt.Generate(ctx, GenerateRequest{
		Model:       model,
		Messages:    cc.Messages(prompt),
		MaxTokens:   maxTokens,
		Temperature: DefaultChatTemperature,
	})
	if err != nil {
		return "", err
	}
	content := resp.Content()
	if content == "" {
		return "", errors.New("no content returned from model")
	}
	return content, nil
}

// AskStream is Ask over a streaming runtime. Each chunk is passed to onDelta
// as it arrives; the joined reply is returned.
func AskStream(ctx context.Context, rt StreamRuntime, model, prompt string, cc ChatContext, maxTokens int, onDelta func(string)) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", errors.New("prompt is required")
	}
	var sb strings.Builder
	err := rt.GenerateStream(ctx, GenerateRequest{
		Model:       model,
		Messages:    cc.Messages(prompt),
		MaxTokens:   maxTokens,
		Temperature: DefaultChatTemperature,
	}, func(delta string) {
		sb.WriteString(delta)
		if onDelta != nil {
			onDelta(delta)
		}
	})
	if err != nil {
		return sb.String(), err
	}
	if sb.Len() == 0 {
		return "", errors.New("no content returned from model")
	}
	return sb.String(), nil
}
