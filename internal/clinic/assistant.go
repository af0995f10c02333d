package clinic

import (
	"context"

	"go.uber.org/zap"

	"github.com/KaramelBytes/dataclinic-cli/internal/ai"
	"github.com/KaramelBytes/dataclinic-cli/internal/analysis"
	"github.com/KaramelBytes/dataclinic-cli/internal/charts"
	"github.com/KaramelBytes/dataclinic-cli/internal/command"
	"github.com/KaramelBytes/dataclinic-cli/internal/logging"
	"github.com/KaramelBytes/dataclinic-cli/internal/session"
)

// Assistant handles one free-text turn against a session.
type Assistant struct {
	Runtime   ai.Runtime
	Provider  string
	Model     string
	AskLLM    bool
	MaxTokens int
	// OnDelta receives streamed reply chunks when the runtime can stream.
	OnDelta func(string)
	Log     *zap.Logger
}

// Reply is the outcome of a turn.
type Reply struct {
	// LLM is the chat reply; empty when the model was not asked or failed.
	LLM string
	// LLMErr explains a failed chat request; the turn still completes.
	LLMErr  error
	Message string
	Chart   *charts.Spec
	Step    string
	Changed bool
	Err     error
}

// Handle asks the chat service first when enabled, then interprets text as a
// local command. Chat failures are logged and never block the local command.
// A table change replaces the session table, appends the step and
// regenerates suggestions. The caller saves the session.
func (a *Assistant) Handle(ctx context.Context, sess *session.Session, text string) Reply {
	log := logging.OrNop(a.Log).Named("assistant")
	t := sess.Table()
	sess.AddTurn("user", text)

	var r Reply
	if a.AskLLM && a.Runtime != nil {
		in := analysis.ComputeInsights(t, analysis.DescriptiveStats(t))
		cc := ai.NewChatContext(t, &in)
		var reply string
		var err error
		if sr, ok := a.Runtime.(ai.StreamRuntime); ok && a.OnDelta != nil {
			reply, err = ai.AskStream(ctx, sr, a.Model, text, cc, a.MaxTokens, a.OnDelta)
		} else {
			reply, err = ai.Ask(ctx, a.Runtime, a.Model, text, cc, a.MaxTokens)
		}
		if err != nil {
			r.LLMErr = ai.Explain(err, a.Provider, a.Model)
			log.Warn("chat request failed",
				zap.String("provider", a.Provider),
				zap.String("model", a.Model),
				zap.Error(err))
		} else {
			r.LLM = reply
			sess.AddTurn("assistant", reply)
		}
	}

	act := command.Interpret(text, t.Columns)
	out := command.Apply(act, t)
	r.Message, r.Chart, r.Err = out.Message, out.Chart, out.Err
	if out.Changed() {
		sess.Replace(out.Table, out.Step)
		r.Step, r.Changed = out.Step, true
	}
	if out.Chart != nil {
		sess.SetChart(out.Chart)
	}
	sess.AddTurn("assistant", out.Message)
	log.Debug("turn handled",
		zap.String("op", string(act.Op)),
		zap.Bool("resolved", act.Resolved()),
		zap.Bool("changed", r.Changed),
		zap.Bool("chart", r.Chart != nil),
		zap.Error(out.Err))
	return r
}
