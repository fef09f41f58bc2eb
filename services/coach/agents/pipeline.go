// Copyright (C) 2026 HandLab AI (dev@handlab.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package agents

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/HandLabAI/HandCoach/services/coach/cards"
	"github.com/HandLabAI/HandCoach/services/coach/datatypes"
	"github.com/HandLabAI/HandCoach/services/coach/tags"
	"github.com/HandLabAI/HandCoach/services/llm"
)

// Stage names, used in StageError, the Degraded list and metrics labels.
const (
	StageBoard     = "board"
	StageRanges    = "ranges"
	StageEquity    = "equity"
	StageAdvantage = "advantage"
	StageSPR       = "spr"
	StageStrategy  = "strategy"
	StageMistakes  = "mistakes"
	StageNarrative = "narrative"
)

// StageError wraps a stage failure so the orchestrator can degrade that
// section of the output instead of aborting the analysis.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("stage %s: %v", e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

// StageObserver receives per-stage timings for metrics. Implementations
// must be safe for concurrent use.
type StageObserver interface {
	StageCompleted(stage string, elapsed time.Duration, degraded bool)
}

const defaultStageTimeout = 30 * time.Second

// Pipeline runs the seven analysis stages for one hand. It holds no
// per-request state; a single Pipeline serves concurrent requests.
type Pipeline struct {
	LLM          llm.Client
	StageTimeout time.Duration
	Observer     StageObserver
}

// NewPipeline builds a pipeline around the given LLM backend. A nil
// client is allowed; every LLM-backed stage then runs its deterministic
// fallback.
func NewPipeline(client llm.Client) *Pipeline {
	return &Pipeline{LLM: client, StageTimeout: defaultStageTimeout}
}

// Analyze runs the full pipeline. Stage ordering is strict where data
// flows (board -> ranges -> equity -> advantage -> strategy -> mistakes);
// the SPR calculator has no range dependency and runs concurrently with
// that chain. The returned CoachOutput is always structurally complete:
// stage failures degrade their section and are listed in Degraded. An
// error is returned only for malformed input.
func (p *Pipeline) Analyze(ctx context.Context, in datatypes.HandInput) (datatypes.CoachOutput, error) {
	if err := validateInput(in); err != nil {
		return datatypes.CoachOutput{}, err
	}

	out := datatypes.CoachOutput{
		HandID:       in.HandID,
		HeroPosition: in.HeroPosition,
	}
	var degraded []string

	var board datatypes.BoardAnalysis
	var sprData datatypes.SPRData

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		start := time.Now()
		sctx, cancel := p.withTimeout(gctx)
		defer cancel()
		var deg bool
		board, deg = ClassifyBoard(sctx, p.LLM, in)
		p.observe(StageBoard, start, deg)
		if deg {
			degradedAppend(&degraded, StageBoard)
		}
		return nil
	})
	g.Go(func() error {
		start := time.Now()
		sprData = CalculateSPR(in)
		p.observe(StageSPR, start, false)
		return nil
	})
	// Neither goroutine returns an error; failures show up as degraded
	// sections instead.
	_ = g.Wait()
	out.Board = board
	out.SPR = sprData

	start := time.Now()
	sctx, cancel := p.withTimeout(ctx)
	rangeData, err := BuildRanges(sctx, p.LLM, in, board)
	cancel()
	if err != nil {
		slog.Error("range builder failed, continuing with degraded ranges", "error", err)
		degradedAppend(&degraded, StageRanges)
		rangeData = minimalRanges(in)
	}
	p.observe(StageRanges, start, err != nil)
	out.HeroClassification = rangeData.HeroClass

	start = time.Now()
	sctx, cancel = p.withTimeout(ctx)
	equityData, err := CalculateEquity(sctx, p.LLM, in, rangeData)
	cancel()
	if err != nil {
		slog.Error("equity calculator failed, continuing without equity", "error", err)
		degradedAppend(&degraded, StageEquity)
	}
	p.observe(StageEquity, start, err != nil)

	start = time.Now()
	sctx, cancel = p.withTimeout(ctx)
	advantageData, deg := AnalyzeAdvantage(sctx, p.LLM, in, board, rangeData)
	cancel()
	if deg {
		degradedAppend(&degraded, StageAdvantage)
	}
	p.observe(StageAdvantage, start, deg)

	start = time.Now()
	sctx, cancel = p.withTimeout(ctx)
	strategy, deg := GenerateStrategy(sctx, p.LLM, in, board, rangeData, equityData, advantageData, sprData)
	cancel()
	if deg {
		degradedAppend(&degraded, StageStrategy)
	}
	p.observe(StageStrategy, start, deg)
	out.Strategy = strategy

	start = time.Now()
	out.Mistakes = DetectMistakes(in, strategy, rangeData, equityData, sprData)
	p.observe(StageMistakes, start, false)

	start = time.Now()
	narrative, deg := p.coachNarrative(ctx, strategy, out.Mistakes)
	if deg {
		degradedAppend(&degraded, StageNarrative)
	}
	p.observe(StageNarrative, start, deg)
	out.GTOStrategyText = narrative.GTOStrategy
	out.ExploitDeviation = narrative.ExploitDeviation
	out.LearningTags = tags.Normalize(narrative.LearningTags)

	out.StructuredData = datatypes.StructuredData{
		Mistakes:   out.Mistakes.Decisions,
		Ranges:     rangeData,
		Equity:     equityData,
		Advantages: advantageData,
	}
	out.Degraded = degraded
	return out, nil
}

func (p *Pipeline) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := p.StageTimeout
	if timeout <= 0 {
		timeout = defaultStageTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

func (p *Pipeline) observe(stage string, start time.Time, degraded bool) {
	if p.Observer != nil {
		p.Observer.StageCompleted(stage, time.Since(start), degraded)
	}
}

func validateInput(in datatypes.HandInput) error {
	if _, err := heroHole(in); err != nil {
		return fmt.Errorf("invalid input: %w", err)
	}
	if _, err := cards.ParseBoard(in.Board); err != nil {
		return fmt.Errorf("invalid input: %w", err)
	}
	if in.HeroStack < 0 || in.VillainStack < 0 {
		return fmt.Errorf("invalid input: negative stack")
	}
	return nil
}

func degradedAppend(list *[]string, stage string) {
	for _, s := range *list {
		if s == stage {
			return
		}
	}
	*list = append(*list, stage)
}

// minimalRanges keeps the pipeline alive when range building failed:
// default-width ranges and an unknown hero class.
func minimalRanges(in datatypes.HandInput) datatypes.RangeData {
	pr := datatypes.PlayerRange{
		Description: "range unavailable",
		Spectrum:    "top 20%",
	}
	return datatypes.RangeData{
		Preflop: datatypes.StreetRanges{Hero: pr, Villain: pr},
		HeroClass: datatypes.HeroClassification{
			Bucket:         "unknown",
			Tier:           datatypes.TierMarginal,
			Percentile:     0.5,
			Interpretation: "hand class unavailable",
		},
	}
}

type coachNarrative struct {
	GTOStrategy      string   `json:"gto_strategy"`
	ExploitDeviation string   `json:"exploit_deviation"`
	LearningTags     []string `json:"learning_tags"`
}

// coachNarrative turns the structured results into coaching prose, with a
// deterministic renderer as the fallback.
func (p *Pipeline) coachNarrative(ctx context.Context, strategy datatypes.GTOStrategy, mistakes datatypes.MistakeAnalysis) (coachNarrative, bool) {
	fallback := renderNarrative(strategy, mistakes)
	if p.LLM == nil {
		return fallback, true
	}

	sctx, cancel := p.withTimeout(ctx)
	defer cancel()
	prompt := fmt.Sprintf("Strategy summary:\n%s\nMistake review:\n%s",
		fallback.GTOStrategy, fallback.ExploitDeviation)
	resp, err := p.LLM.Complete(sctx, systemPromptCoachText, prompt, llm.GenerationParams{JSONMode: true})
	if err != nil {
		slog.Warn("coach narrative call failed, using rendered text", "error", err)
		return fallback, true
	}
	var parsed coachNarrative
	if err := llm.ExtractJSON(resp, &parsed); err != nil {
		slog.Warn("coach narrative unparseable, using rendered text", "error", err)
		return fallback, true
	}
	if parsed.GTOStrategy == "" {
		parsed.GTOStrategy = fallback.GTOStrategy
	}
	if parsed.ExploitDeviation == "" {
		parsed.ExploitDeviation = fallback.ExploitDeviation
	}
	if len(parsed.LearningTags) == 0 {
		parsed.LearningTags = fallback.LearningTags
	}
	return parsed, false
}

// renderNarrative is the deterministic prose renderer.
func renderNarrative(strategy datatypes.GTOStrategy, mistakes datatypes.MistakeAnalysis) coachNarrative {
	var s strings.Builder
	writeMixed := func(street, point string, m datatypes.MixedActionRecommendation) {
		fmt.Fprintf(&s, "%s %s: %s", street, point, m.Primary.Action)
		if m.Primary.Sizing != "" {
			fmt.Fprintf(&s, " %s", m.Primary.Sizing)
		}
		fmt.Fprintf(&s, " (%.0f%%)", m.Primary.Frequency*100)
		if m.Alternative != nil {
			fmt.Fprintf(&s, ", mixing %s (%.0f%%)", m.Alternative.Action, m.Alternative.Frequency*100)
		}
		fmt.Fprintf(&s, ". %s\n", m.Primary.Reasoning)
	}

	writeMixed("preflop", "open", strategy.Preflop.InitialAction)
	if strategy.Preflop.VsThreeBet != nil {
		writeMixed("preflop", "vs 3-bet", *strategy.Preflop.VsThreeBet)
	}
	if strategy.Preflop.VsFourBet != nil {
		writeMixed("preflop", "vs 4-bet", *strategy.Preflop.VsFourBet)
	}
	for _, street := range datatypes.PostflopStreets {
		tree := strategy.ForStreet(street)
		if tree == nil {
			continue
		}
		points := tree.DecisionPoints()
		for _, point := range datatypes.DecisionPointOrder {
			if m, ok := points[point]; ok {
				writeMixed(string(street), point, m)
			}
		}
	}

	var d strings.Builder
	if mistakes.MistakeCount == 0 {
		fmt.Fprintf(&d, "No clear mistakes: %d optimal and %d acceptable decisions.\n",
			mistakes.OptimalCount, mistakes.AcceptableCount)
	} else {
		fmt.Fprintf(&d, "%d mistake(s) costing about %.2f pots in EV.\n",
			mistakes.MistakeCount, mistakes.TotalEVLost)
		for _, m := range mistakes.Decisions {
			if m.Verdict != datatypes.PlayMistake {
				continue
			}
			fmt.Fprintf(&d, "- %s %s: %s (severity %s). %s\n",
				m.Street, m.DecisionPoint, m.HeroAction, m.Severity, m.Reasoning)
		}
		if mistakes.WorstLeak != "" {
			fmt.Fprintf(&d, "Biggest leak: %s.\n", mistakes.WorstLeak)
		}
	}

	var learnTags []string
	if mistakes.WorstLeak != "" {
		learnTags = append(learnTags, mistakes.WorstLeak)
	}
	leaks := make([]string, 0, len(mistakes.LeakBuckets))
	for leak := range mistakes.LeakBuckets {
		leaks = append(leaks, leak)
	}
	sort.Slice(leaks, func(i, j int) bool {
		li, lj := mistakes.LeakBuckets[leaks[i]], mistakes.LeakBuckets[leaks[j]]
		if li != lj {
			return li > lj // costliest leak first
		}
		return leaks[i] < leaks[j]
	})
	learnTags = append(learnTags, leaks...)
	return coachNarrative{
		GTOStrategy:      s.String(),
		ExploitDeviation: d.String(),
		LearningTags:     tags.Normalize(learnTags),
	}
}
