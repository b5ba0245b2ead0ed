// Package workflow implements the budgeted triage pipeline for scam
// assessment: Normalizer → Retriever → Router, then either a fast path
// straight to execution or a deep path through Planner, Analyst and
// Supervisor. Every run terminates with a valid RiskAssessment and a
// persisted run artifact, no matter which stages fail along the way.
package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/veridex-io/mailguard/internal/document"
	"github.com/veridex-io/mailguard/internal/mcp"
	mgotel "github.com/veridex-io/mailguard/internal/otel"
	"github.com/veridex-io/mailguard/internal/runlog"
)

var tracer = mgotel.Tracer("github.com/veridex-io/mailguard/internal/workflow")

// Agent names recorded in processing metadata.
const (
	AgentPlanner    = "planner"
	AgentAnalyst    = "analyst"
	AgentSupervisor = "supervisor"
	AgentExecuter   = "executer"
)

// Defaults applied when RunnerConfig leaves the budget unset.
const (
	DefaultMaxToolCalls = 5
	DefaultTimeBudget   = 6 * time.Second
)

// Invoker dispatches tool calls to their servers. *mcp.Client satisfies it.
type Invoker interface {
	Invoke(ctx context.Context, call mcp.ToolCall) (interface{}, error)
}

// JSONReasoner performs one reasoning call and decodes the JSON object
// reply. *llm.Reasoner satisfies it.
type JSONReasoner interface {
	ChatJSON(ctx context.Context, stage, system string, payload interface{}) (map[string]interface{}, error)
}

// RunnerConfig wires a Runner's collaborators.
type RunnerConfig struct {
	Invoker      Invoker
	Reasoner     JSONReasoner
	Runs         *runlog.Store
	MaxToolCalls int
	TimeBudget   time.Duration
}

// Runner executes triage runs. Safe for concurrent use: all per-run state
// lives in the run context.
type Runner struct {
	invoker    Invoker
	reasoner   JSONReasoner
	runs       *runlog.Store
	maxCalls   int
	timeBudget time.Duration
}

// NewRunner creates a Runner, applying budget defaults.
func NewRunner(cfg RunnerConfig) *Runner {
	if cfg.MaxToolCalls <= 0 {
		cfg.MaxToolCalls = DefaultMaxToolCalls
	}
	if cfg.TimeBudget <= 0 {
		cfg.TimeBudget = DefaultTimeBudget
	}
	return &Runner{
		invoker:    cfg.Invoker,
		reasoner:   cfg.Reasoner,
		runs:       cfg.Runs,
		maxCalls:   cfg.MaxToolCalls,
		timeBudget: cfg.TimeBudget,
	}
}

// runContext carries one run's state through the pipeline stages.
type runContext struct {
	id     string
	doc    *document.Document
	text   string
	route  string
	budget *Budget
	ledger *Ledger
	log    *runlog.Logger
	agents []string
}

func (rc *runContext) callAgent(name string) {
	rc.agents = append(rc.agents, name)
}

// Assess runs the full triage pipeline over one document. It never returns
// an error: every failure mode degrades into a valid assessment, and the
// run artifact is persisted before returning.
func (r *Runner) Assess(ctx context.Context, input interface{}) *RiskAssessment {
	workflowID := uuid.NewString()[:8]
	ctx, span := tracer.Start(ctx, "workflow.assess",
		trace.WithAttributes(mgotel.WorkflowID.String(workflowID)))
	defer span.End()

	doc := document.New(input)
	rc := &runContext{
		id:     workflowID,
		doc:    doc,
		budget: NewBudget(r.maxCalls, r.timeBudget),
		ledger: NewLedger(),
		log:    runlog.New(workflowID),
		agents: []string{},
	}

	log.Info().
		Str("workflow_id", workflowID).
		Str("document_kind", doc.Kind().String()).
		Int("document_len", doc.Len()).
		Msg("workflow_started")

	// Step 1: normalize the input into plain text, converting structured
	// records and byte blobs through the processing tools.
	rc.log.StepStart("normalize", "convert input to plain text")
	calls, err := document.Normalize(doc)
	if err != nil {
		rc.log.Error("unsupported_input", err.Error())
		rc.log.StepEnd(map[string]interface{}{"error": err.Error()})
		a := r.degradedAssessment(rc, "document could not be processed: "+err.Error())
		return r.finalize(ctx, rc, span, "unsupported", a)
	}
	r.executeCalls(ctx, rc, calls)
	rc.text = normalizedText(rc, doc)
	rc.log.StepEnd(map[string]interface{}{"text_len": len(rc.text)})

	// Step 2: retrieve the prior from previously assessed documents.
	rc.log.StepStart("retrieve", "similarity search over past assessments")
	confidence, probability := r.retrieve(ctx, rc)
	rc.log.StepEnd(map[string]interface{}{
		"confidence_level": confidence,
		"scam_probability": probability,
	})

	// Step 3: route. Fast routes skip straight to execution with the
	// retrieval scores as the verdict; analysis routes run the deep path.
	rc.log.StepStart("route", "select analysis path")
	decision := r.route(ctx, rc, confidence, probability)
	rc.route = string(decision.Route)
	span.SetAttributes(mgotel.WorkflowRoute.String(string(decision.Route)))
	rc.log.Decision("route_selected", decision.Reasoning, decision.SkipToExecution, map[string]interface{}{
		"route":          string(decision.Route),
		"agents_to_call": decision.Agents,
	})
	rc.log.StepEnd(map[string]interface{}{"route": string(decision.Route)})
	log.Info().
		Str("workflow_id", rc.id).
		Str("route", string(decision.Route)).
		Bool("skip_to_execution", decision.SkipToExecution).
		Msg("route_selected")

	var a *RiskAssessment
	if decision.SkipToExecution {
		a = r.fastAssessment(rc, decision, confidence, probability)
	} else {
		// Step 4: plan which evidence probes to run, then run them.
		rc.callAgent(AgentPlanner)
		rc.log.StepStart("plan", "select evidence probes")
		planned := r.plan(ctx, rc)
		rc.log.StepEnd(map[string]interface{}{"planned_calls": len(planned)})
		r.executeCalls(ctx, rc, planned)

		// Step 5: analyze the evidence into an interim classification.
		rc.callAgent(AgentAnalyst)
		rc.log.StepStart("analyze", "classify against gathered evidence")
		d := r.analyze(ctx, rc)
		rc.log.StepEnd(map[string]interface{}{
			"draft_verdict":    d.Verdict,
			"scam_probability": d.Probability,
		})

		// Step 6: supervise the draft for verdict/score consistency.
		rc.callAgent(AgentSupervisor)
		rc.log.StepStart("supervise", "review draft classification")
		final := r.supervise(ctx, rc, d)
		rc.log.StepEnd(map[string]interface{}{"verdict": final.Verdict})

		a = r.assessmentFromDraft(rc, decision, final)
	}

	// Step 7: execute the verdict's side effects, best-effort.
	rc.callAgent(AgentExecuter)
	rc.log.StepStart("execute", "apply verdict side effects")
	r.execute(ctx, rc, a)
	rc.log.StepEnd(map[string]interface{}{"calls_made": rc.budget.CallsMade()})

	return r.finalize(ctx, rc, span, string(decision.Route), a)
}

// invoke dispatches one tool call, charging the budget and recording the
// outcome in the ledger and the run artifact.
func (r *Runner) invoke(ctx context.Context, rc *runContext, call mcp.ToolCall) (interface{}, error) {
	start := time.Now()
	out, err := r.invoker.Invoke(ctx, call)
	dur := time.Since(start)

	rc.budget.Record()
	rc.log.ToolCall(call.Name(), call.Args, out, err, dur)
	if err != nil {
		rc.ledger.AddError(call, err)
		log.Warn().
			Str("workflow_id", rc.id).
			Str("tool", call.Name()).
			Dur("duration", dur).
			Err(err).
			Msg("tool_call_failed")
		return nil, err
	}
	rc.ledger.AddEvidence(call, out)
	log.Debug().
		Str("workflow_id", rc.id).
		Str("tool", call.Name()).
		Dur("duration", dur).
		Msg("tool_call_succeeded")
	return out, nil
}

// executeCalls runs a batch of calls in order, stopping when the budget is
// exhausted. Individual failures are recorded and do not stop the batch.
func (r *Runner) executeCalls(ctx context.Context, rc *runContext, calls []mcp.ToolCall) {
	for i, call := range calls {
		if !rc.budget.Allow() {
			rc.log.Decision("budget_exhausted", "remaining calls skipped", true, map[string]interface{}{
				"calls_made":    rc.budget.CallsMade(),
				"calls_skipped": len(calls) - i,
			})
			log.Warn().
				Str("workflow_id", rc.id).
				Int("calls_made", rc.budget.CallsMade()).
				Int("calls_skipped", len(calls)-i).
				Msg("budget_exhausted")
			return
		}
		_, _ = r.invoke(ctx, rc, call)
	}
}

// normalizedText picks the text the reasoning stages see. Preference order:
// the conversion tool's output, the document's own text, a JSON rendering of
// the record when conversion failed.
func normalizedText(rc *runContext, doc *document.Document) string {
	if out, ok := rc.ledger.FirstOutput("data-processor.process_email"); ok {
		if s := textFromOutput(out); s != "" {
			return s
		}
	}
	if out, ok := rc.ledger.FirstOutput("data-processor.process_pdf"); ok {
		if s := textFromOutput(out); s != "" {
			return s
		}
	}
	if doc.Kind() == document.KindText {
		return doc.Text()
	}
	if doc.Kind() == document.KindRecord {
		if raw, err := json.Marshal(doc.Record()); err == nil {
			return string(raw)
		}
	}
	return ""
}

// textFromOutput unwraps a conversion tool reply: either a bare string or
// an object with a "text" field.
func textFromOutput(out interface{}) string {
	switch v := out.(type) {
	case string:
		return v
	case map[string]interface{}:
		s, _ := v["text"].(string)
		return s
	}
	return ""
}

// fastAssessment builds the result for a fast route directly from the
// retrieval scores, with no further reasoning.
func (r *Runner) fastAssessment(rc *runContext, decision RoutingDecision, confidence, probability float64) *RiskAssessment {
	return &RiskAssessment{
		IsScam:          decision.FinalVerdict,
		ConfidenceLevel: clampConfidence(confidence),
		ScamProbability: clampProbability(probability),
		Explanation: fmt.Sprintf("routed %s on retrieval scores (confidence %.2f, scam probability %.0f): %s",
			decision.Route, confidence, probability, decision.Reasoning),
		Text: rc.text,
	}
}

// assessmentFromDraft builds the result for an analysis route from the
// supervised draft.
func (r *Runner) assessmentFromDraft(rc *runContext, decision RoutingDecision, d draft) *RiskAssessment {
	return &RiskAssessment{
		IsScam:          d.Verdict,
		ConfidenceLevel: clampConfidence(d.Confidence),
		ScamProbability: clampProbability(d.Probability),
		Explanation:     d.Explanation,
		Text:            rc.text,
	}
}

// degradedAssessment builds the valid-but-neutral result used when the
// pipeline cannot analyze the input at all.
func (r *Runner) degradedAssessment(rc *runContext, reason string) *RiskAssessment {
	return &RiskAssessment{
		IsScam:          VerdictSuspicious,
		ConfidenceLevel: 0,
		ScamProbability: neutralProbability,
		Explanation:     reason,
		Text:            rc.text,
	}
}

// finalize attaches the evidence and metadata, persists the run artifact
// and emits the closing log line. The assessment is returned even when
// persistence fails.
func (r *Runner) finalize(ctx context.Context, rc *runContext, span trace.Span, route string, a *RiskAssessment) *RiskAssessment {
	a.ToolEvidence = rc.ledger.Evidence()
	a.ToolErrors = rc.ledger.Errors()
	a.Metadata = ProcessingMetadata{
		WorkflowID:        rc.id,
		TotalTime:         rc.budget.Elapsed().Seconds(),
		EvidenceGathered:  rc.ledger.EvidenceCount(),
		ErrorsEncountered: rc.ledger.ErrorCount(),
		Route:             route,
		AgentsCalled:      rc.agents,
	}

	if err := a.Validate(); err != nil {
		// Last line of defense: a stage produced out-of-range values.
		log.Error().
			Str("workflow_id", rc.id).
			Err(err).
			Msg("assessment_invalid")
		a.IsScam = VerdictSuspicious
		a.ConfidenceLevel = clampConfidence(a.ConfidenceLevel)
		a.ScamProbability = clampProbability(a.ScamProbability)
	}

	rc.log.Metric("total_time_seconds", a.Metadata.TotalTime)
	rc.log.Metric("tool_calls", float64(rc.budget.CallsMade()))
	rc.log.Metric("evidence_gathered", float64(a.Metadata.EvidenceGathered))
	rc.log.Metric("errors_encountered", float64(a.Metadata.ErrorsEncountered))
	artifact := rc.log.Complete(route, a.IsScam, a)

	if r.runs != nil {
		if err := r.runs.Save(ctx, artifact); err != nil {
			log.Error().
				Str("workflow_id", rc.id).
				Err(err).
				Msg("run_persist_failed")
		}
	}

	span.SetAttributes(
		attribute.String("workflow.verdict", a.IsScam),
		attribute.Int("workflow.tool_calls", rc.budget.CallsMade()),
	)
	log.Info().
		Str("workflow_id", rc.id).
		Str("route", route).
		Str("verdict", a.IsScam).
		Float64("scam_probability", a.ScamProbability).
		Float64("total_time", a.Metadata.TotalTime).
		Int("evidence_gathered", a.Metadata.EvidenceGathered).
		Int("errors_encountered", a.Metadata.ErrorsEncountered).
		Msg("workflow_completed")
	return a
}
