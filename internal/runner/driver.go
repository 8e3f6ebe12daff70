package runner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"agentevals/internal/agent"
	"agentevals/internal/agent/call"
	"agentevals/internal/banking"
	"agentevals/internal/eval"
	"agentevals/internal/export"
	"agentevals/internal/extract"
	"agentevals/internal/history"
	"agentevals/internal/vcs"
)

// driver holds the resolved state of one run.
type driver struct {
	spec     Evaluation
	deps     Dependencies
	opts     Options
	provider agent.Provider
	entry    *agent.Agent
	meta     history.RunMetadata
	observer RunObserver
	logger   *zap.Logger
	verbose  verboseLogger
}

// Run drives one evaluation through INIT, GENERATE, RELOAD_SCORE, PERSIST and DONE.
// Cases run sequentially; results keep dataset order.
func Run(ctx context.Context, spec Evaluation, deps Dependencies, opts Options) (EvalResult, error) {
	d, err := newDriver(ctx, spec, deps, opts)
	if err != nil {
		return EvalResult{}, err
	}
	result, err := d.run(ctx)
	d.observer.OnRunEnd(result, err)
	if err != nil {
		d.logger.Error("evaluation failed", zap.String("run_id", d.meta.RunID), zap.Error(err))
		return EvalResult{}, err
	}
	return result, nil
}

func newDriver(ctx context.Context, spec Evaluation, deps Dependencies, opts Options) (*driver, error) {
	if deps.ProviderFactory == nil {
		return nil, fmt.Errorf("provider factory is required")
	}
	if deps.Sessions == nil {
		return nil, fmt.Errorf("session store is required")
	}
	if deps.History == nil {
		return nil, fmt.Errorf("history store is required")
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Commit == nil {
		deps.Commit = vcs.NewClient("", nil).CommitOrUnknown
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if strings.TrimSpace(opts.Model) == "" {
		opts.Model = DefaultModel
	}
	if strings.TrimSpace(opts.ResultsDir) == "" {
		opts.ResultsDir = "results"
	}
	observer := opts.Observer
	if observer == nil {
		observer = MultiObserver(nil)
	}

	provider, err := deps.ProviderFactory(opts.Model)
	if err != nil {
		return nil, fmt.Errorf("build provider: %w", err)
	}
	entry := spec.EntryAgent(banking.NewTopology())
	if entry == nil {
		return nil, fmt.Errorf("evaluation %s has no entry agent", spec.EvalType)
	}
	meta := history.BuildRunMetadata(deps.Now(), opts.Model, spec.Dataset.Name, spec.EvalType, deps.Commit(ctx))

	return &driver{
		spec:     spec,
		deps:     deps,
		opts:     opts,
		provider: provider,
		entry:    entry,
		meta:     meta,
		observer: observer,
		logger:   deps.Logger.With(zap.String("component", "runner"), zap.String("eval_type", spec.EvalType)),
		verbose:  newVerboseLogger(opts.Verbose, opts.VerboseWriter, opts.NoColor),
	}, nil
}

func (d *driver) run(ctx context.Context) (EvalResult, error) {
	d.enter(PhaseInit)
	d.observer.OnRunStart(d.meta, len(d.spec.Dataset.Cases))
	for i, c := range d.spec.Dataset.Cases {
		d.observer.OnCaseEvent(CaseEvent{EvalType: d.spec.EvalType, Index: i, CaseID: c.ID, Prompt: c.Prompt, Expected: c.Expected, Type: CaseQueued, EmittedAt: d.deps.Now()})
	}
	d.logger.Info("evaluation started",
		zap.String("run_id", d.meta.RunID),
		zap.String("model", d.meta.Model),
		zap.String("dataset", d.meta.Dataset),
		zap.Int("cases", len(d.spec.Dataset.Cases)))

	d.enter(PhaseGenerate)
	records, err := d.generate(ctx)
	if err != nil {
		return EvalResult{}, err
	}

	d.enter(PhaseReloadScore)
	cases, err := d.reloadAndScore(ctx, records)
	if err != nil {
		return EvalResult{}, err
	}

	d.enter(PhasePersist)
	result, err := d.persist(ctx, cases)
	if err != nil {
		return EvalResult{}, err
	}

	d.enter(PhaseDone)
	d.logger.Info("evaluation finished",
		zap.String("run_id", result.RunID),
		zap.Int("correct", result.Correct),
		zap.Int("total", result.Total),
		zap.Float64("accuracy", result.Accuracy))
	return result, nil
}

func (d *driver) enter(phase Phase) {
	d.observer.OnPhase(d.spec.EvalType, phase)
	switch phase {
	case PhaseGenerate:
		d.verbose.heading("=== Phase 1: Generate conversations and store in sessions ===")
	case PhaseReloadScore:
		d.verbose.heading(fmt.Sprintf("=== Phase 2: Reload sessions and evaluate %s accuracy ===", d.labelNoun()))
	}
}

func (d *driver) labelNoun() string {
	if d.spec.EvalType == EvalTool {
		return "tool call"
	}
	return "routing"
}

// generate runs every case against a fresh session (phase 1).
func (d *driver) generate(ctx context.Context) ([]runRecord, error) {
	records := make([]runRecord, 0, len(d.spec.Dataset.Cases))
	for i, c := range d.spec.Dataset.Cases {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		started := d.deps.Now()
		d.observer.OnCaseEvent(CaseEvent{EvalType: d.spec.EvalType, Index: i, CaseID: c.ID, Prompt: c.Prompt, Expected: c.Expected, Type: CaseRunning, EmittedAt: started})

		record, err := d.runCase(ctx, c.ID, c.Prompt, c.Expected)
		if err != nil {
			if !d.opts.ContinueOnError {
				return nil, fmt.Errorf("case %s: %w", c.ID, err)
			}
			d.logger.Warn("case failed", zap.String("case_id", c.ID), zap.Error(err))
			record = runRecord{CaseID: c.ID, Prompt: c.Prompt, Expected: c.Expected, Actual: ActualError, Err: err}
			d.verbose.failure(fmt.Sprintf("- %s: expected=%s actual=%s error=%v", c.ID, c.Expected, ActualError, err))
			d.observer.OnCaseEvent(CaseEvent{EvalType: d.spec.EvalType, Index: i, CaseID: c.ID, Prompt: c.Prompt, Expected: c.Expected, Actual: ActualError, Type: CaseFailed, Error: err.Error(), Duration: d.deps.Now().Sub(started), EmittedAt: d.deps.Now()})
			records = append(records, record)
			continue
		}

		line := fmt.Sprintf("- %s: expected=%-20s actual=%-20s conv_id=%s", record.CaseID, record.Expected, record.Actual, record.ConversationID)
		d.verbose.line(line)
		d.observer.OnCaseEvent(CaseEvent{EvalType: d.spec.EvalType, Index: i, CaseID: c.ID, Prompt: c.Prompt, Expected: c.Expected, Actual: record.Actual, ConversationID: record.ConversationID, Type: CaseGenerated, Duration: d.deps.Now().Sub(started), EmittedAt: d.deps.Now()})
		records = append(records, record)
	}
	return records, nil
}

func (d *driver) runCase(ctx context.Context, caseID, prompt, expected string) (runRecord, error) {
	sess, err := d.deps.Sessions.Create(ctx)
	if err != nil {
		return runRecord{}, fmt.Errorf("create session: %w", err)
	}
	result, err := call.RunCall(ctx, call.Request{
		Agent:    d.entry,
		Input:    prompt,
		Session:  sess,
		Provider: d.provider,
		Model:    d.opts.Model,
		Limits:   call.RunLimits{MaxTurns: d.opts.MaxTurns},
		Logger:   d.logger.With(zap.String("case_id", caseID)),
	})
	if err != nil {
		return runRecord{}, err
	}
	outcome := d.spec.Extract(extract.FromResult(result))

	convID := sess.CachedID()
	if convID == "" {
		convID, err = sess.ResolveID(ctx)
		if err != nil {
			return runRecord{}, fmt.Errorf("resolve session id: %w", err)
		}
	}
	return runRecord{
		CaseID:         caseID,
		Prompt:         prompt,
		Expected:       expected,
		Actual:         outcome.Label,
		AllTools:       outcome.AllTools,
		ConversationID: convID,
		FinalOutput:    result.FinalOutput,
	}, nil
}

// reloadAndScore reopens each session and scores its record (phase 2).
func (d *driver) reloadAndScore(ctx context.Context, records []runRecord) ([]eval.CaseResult, error) {
	cases := make([]eval.CaseResult, 0, len(records))
	for i, record := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		d.observer.OnCaseEvent(CaseEvent{EvalType: d.spec.EvalType, Index: i, CaseID: record.CaseID, Prompt: record.Prompt, Expected: record.Expected, Actual: record.Actual, ConversationID: record.ConversationID, Type: CaseReloading, EmittedAt: d.deps.Now()})

		caseErr := record.Err
		reloaded, err := d.reload(ctx, record.ConversationID)
		if err != nil {
			if !d.opts.ContinueOnError {
				return nil, fmt.Errorf("case %s: %w", record.CaseID, err)
			}
			d.logger.Warn("session reload failed", zap.String("case_id", record.CaseID), zap.Error(err))
			if caseErr == nil {
				caseErr = fmt.Errorf("reload session %s: %w", record.ConversationID, err)
			}
		}

		// A case whose session cannot be reopened is never scored correct.
		correct := caseErr == nil && eval.Score(record.Actual, record.Expected)
		result := eval.CaseResult{
			CaseID:         record.CaseID,
			Prompt:         record.Prompt,
			Expected:       record.Expected,
			Actual:         record.Actual,
			AllTools:       record.AllTools,
			ConversationID: record.ConversationID,
			FinalOutput:    record.FinalOutput,
			ReloadedItems:  reloaded,
			Correct:        correct,
		}
		if caseErr != nil {
			result.Error = caseErr.Error()
		}
		cases = append(cases, result)

		d.verbose.scored(d.scoredLine(result), correct)
		eventType := CaseIncorrect
		switch {
		case correct:
			eventType = CaseCorrect
		case record.Err == nil && caseErr != nil:
			eventType = CaseFailed
		}
		d.observer.OnCaseEvent(CaseEvent{EvalType: d.spec.EvalType, Index: i, CaseID: record.CaseID, Prompt: record.Prompt, Expected: record.Expected, Actual: record.Actual, ConversationID: record.ConversationID, ReloadedItems: reloaded, Type: eventType, Error: result.Error, EmittedAt: d.deps.Now()})
	}
	return cases, nil
}

// reload reports how many items the stored session holds. Failed cases have no session.
func (d *driver) reload(ctx context.Context, conversationID string) (int, error) {
	if conversationID == "" {
		return 0, nil
	}
	sess, err := d.deps.Sessions.Open(ctx, conversationID)
	if err != nil {
		return 0, err
	}
	items, err := sess.GetItems(ctx)
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

func (d *driver) scoredLine(result eval.CaseResult) string {
	status := "❌"
	if result.Correct {
		status = "✅"
	}
	if d.spec.EvalType == EvalTool {
		tools := extract.NoTool
		if len(result.AllTools) > 0 {
			tools = strings.Join(result.AllTools, ", ")
		}
		return fmt.Sprintf("%s %s | expected=%s, actual=%s | all_tools=[%s] | reloaded_items=%d",
			status, result.CaseID, result.Expected, result.Actual, tools, result.ReloadedItems)
	}
	return fmt.Sprintf("%s %s | expected=%s, actual=%s | reloaded_items=%d",
		status, result.CaseID, result.Expected, result.Actual, result.ReloadedItems)
}

// persist writes the CSV, appends history, and feeds the optional sink.
func (d *driver) persist(ctx context.Context, cases []eval.CaseResult) (EvalResult, error) {
	scored := make([]eval.ScoredResult, 0, len(cases))
	for _, c := range cases {
		scored = append(scored, eval.ScoredResult{Message: c.Prompt, Target: c.Expected, Output: c.Actual, Correct: c.Correct})
	}
	summary := eval.Summarize(scored)

	csvPath, err := export.WriteResults(d.opts.ResultsDir, d.deps.Now(), d.meta, scored)
	if err != nil {
		return EvalResult{}, err
	}
	d.verbose.line("Results saved to: " + csvPath)

	record := history.Record{
		RunMetadata: d.meta,
		Accuracy:    summary.Accuracy,
		Correct:     summary.Correct,
		Total:       summary.Total,
		CSVPath:     csvPath,
	}
	if err := d.deps.History.Append(record); err != nil {
		return EvalResult{}, err
	}
	if d.deps.Sink != nil {
		if err := d.deps.Sink.RecordRun(ctx, record, cases); err != nil {
			d.logger.Warn("result sink failed", zap.String("run_id", d.meta.RunID), zap.Error(err))
		}
	}
	d.verbose.summary("Accuracy: " + summary.String())

	return EvalResult{
		RunID:    d.meta.RunID,
		Model:    d.meta.Model,
		EvalType: d.meta.EvalType,
		Accuracy: summary.Accuracy,
		Correct:  summary.Correct,
		Total:    summary.Total,
		Results:  scored,
		CSVPath:  csvPath,
		Cases:    cases,
	}, nil
}

