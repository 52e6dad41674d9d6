package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/andreypavlenko/scout/internal/platform/cache"
	"github.com/andreypavlenko/scout/internal/platform/llm"
	"github.com/andreypavlenko/scout/internal/platform/logger"
	"github.com/andreypavlenko/scout/modules/providers/model"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	confidenceThreshold = 70
	assessmentMaxTokens = 300
	assessmentTemp      = 0.3
)

// hardExclusions are consumer-product phrases that disqualify a candidate
// outright, before any I/O.
var hardExclusions = []string{
	"dating app", "dating platform", "matchmaking app",
	"food delivery", "restaurant delivery", "meal delivery",
	"social network", "social media platform",
	"consumer marketplace", "e-commerce platform",
	"mobile game", "gaming platform",
	"music streaming", "video streaming",
}

// gateKeywords provisionally accept a candidate without an LLM round trip.
var gateKeywords = []string{
	"b2b", "enterprise", "saas", "api", "platform", "insurance", "claim",
	"underwriting", "risk", "compliance", "devops", "integration",
	"automation", "developer tool",
}

const assessmentSystemPrompt = `You are a conservative analyst assessing whether a company could plausibly supply B2B software or services to a large insurance enterprise.

Respond with exactly three lines:
DECISION: VIABLE or NOT_VIABLE
CONFIDENCE: an integer from 0 to 100
REASON: one short sentence`

// completer is the slice of the LLM gateway the filter needs.
type completer interface {
	Complete(ctx context.Context, req *llm.Request) (*llm.Response, error)
	DefaultModel() string
	BreakerState() string
}

// ProviderFilter is the multi-stage viability funnel: hard exclusions, a
// local keyword gate, then a cached, rate-limited LLM assessment.
type ProviderFilter struct {
	gateway completer
	cache   *cache.LRU[model.Decision]
	scorer  *Scorer
	workers int
	log     *logger.Logger

	mu      sync.Mutex
	lastRun *model.FilterResult
}

// NewProviderFilter creates a provider filter with the given worker count.
func NewProviderFilter(gateway completer, assessments *cache.LRU[model.Decision], scorer *Scorer, workers int, log *logger.Logger) *ProviderFilter {
	if workers <= 0 {
		workers = 3
	}
	return &ProviderFilter{
		gateway: gateway,
		cache:   assessments,
		scorer:  scorer,
		workers: workers,
		log:     log,
	}
}

// outcome is the per-candidate result slot, indexed by input position so the
// output preserves input order regardless of worker scheduling.
type outcome struct {
	accepted *model.AcceptedCandidate
	rejected *model.RejectedCandidate
	pending  bool
}

// Filter classifies candidates as viable B2B providers or not. Every
// candidate lands in exactly one of accepted, rejected, or (on cancellation)
// pending.
func (f *ProviderFilter) Filter(ctx context.Context, candidates []*model.Candidate) *model.FilterResult {
	outcomes := make([]outcome, len(candidates))

	// Local stages first: they need no I/O and decide most candidates.
	var undecided []int
	for i, cand := range candidates {
		text := strings.ToLower(cand.Name + " " + cand.Description)

		if phrase, excluded := matchHardExclusion(text); excluded {
			outcomes[i].rejected = &model.RejectedCandidate{
				Candidate: cand,
				Reason:    model.HardExcluded(phrase),
			}
			continue
		}

		if matchesGate(strings.ToLower(cand.Description)) {
			outcomes[i].accepted = f.accept(cand, "keyword_gate")
			continue
		}

		undecided = append(undecided, i)
	}

	// LLM stage for the rest, bounded by the worker pool. An open circuit
	// short-circuits the whole stage.
	if len(undecided) > 0 {
		if f.gateway.BreakerState() == llm.StateOpen {
			for _, i := range undecided {
				outcomes[i].rejected = &model.RejectedCandidate{
					Candidate: candidates[i],
					Reason:    model.RejectReason{Kind: model.ReasonUnavailable, Detail: "circuit open"},
				}
			}
		} else {
			f.assessBatch(ctx, candidates, undecided, outcomes)
		}
	}

	result := &model.FilterResult{}
	for i := range outcomes {
		switch {
		case outcomes[i].accepted != nil:
			result.Accepted = append(result.Accepted, outcomes[i].accepted)
		case outcomes[i].rejected != nil:
			result.Rejected = append(result.Rejected, outcomes[i].rejected)
		case outcomes[i].pending:
			result.Partial = true
			result.Pending = append(result.Pending, candidates[i])
		}
	}

	f.mu.Lock()
	f.lastRun = result
	f.mu.Unlock()

	return result
}

// LastRun returns the most recent filter result, or nil.
func (f *ProviderFilter) LastRun() *model.FilterResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastRun
}

func (f *ProviderFilter) assessBatch(ctx context.Context, candidates []*model.Candidate, undecided []int, outcomes []outcome) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.workers)

	for _, idx := range undecided {
		idx := idx
		cand := candidates[idx]

		if gctx.Err() != nil {
			outcomes[idx].pending = true
			continue
		}

		g.Go(func() error {
			if gctx.Err() != nil {
				outcomes[idx].pending = true
				return nil
			}

			decision, err := f.assess(gctx, cand)
			if err != nil {
				if gctx.Err() != nil {
					outcomes[idx].pending = true
					return nil
				}
				outcomes[idx].rejected = &model.RejectedCandidate{
					Candidate: cand,
					Reason:    model.RejectReason{Kind: model.ReasonUnavailable, Detail: errorDetail(err)},
				}
				return nil
			}

			outcomes[idx] = f.decide(cand, decision)
			return nil
		})
	}

	_ = g.Wait()
}

// decide folds the conservative confidence ladder: only a confident VIABLE
// verdict accepts.
func (f *ProviderFilter) decide(cand *model.Candidate, decision model.Decision) outcome {
	switch {
	case decision.Kind == model.DecisionViable && decision.Confidence >= confidenceThreshold:
		return outcome{accepted: f.accept(cand, "llm_assessment")}
	case decision.Kind == model.DecisionNotViable && decision.Confidence >= confidenceThreshold:
		return outcome{rejected: &model.RejectedCandidate{
			Candidate: cand,
			Reason:    model.RejectReason{Kind: model.ReasonNotViable, Detail: decision.Reason},
		}}
	default:
		return outcome{rejected: &model.RejectedCandidate{
			Candidate: cand,
			Reason:    model.LowConfidence(decision.Confidence),
		}}
	}
}

func (f *ProviderFilter) accept(cand *model.Candidate, via string) *model.AcceptedCandidate {
	return &model.AcceptedCandidate{
		Candidate: cand,
		Score:     f.scorer.Score(cand),
		Via:       via,
	}
}

// assess runs the LLM assessment with the result cache wrapped around it.
func (f *ProviderFilter) assess(ctx context.Context, cand *model.Candidate) (model.Decision, error) {
	key := cache.Key(f.gateway.DefaultModel(), cand.Fingerprint(), map[string]any{
		"temperature": assessmentTemp,
		"max_tokens":  assessmentMaxTokens,
	})

	if decision, ok := f.cache.Get(key); ok {
		return decision, nil
	}

	temp := assessmentTemp
	resp, err := f.gateway.Complete(ctx, &llm.Request{
		System: assessmentSystemPrompt,
		Messages: []llm.Message{
			llm.NewUserMessage(assessmentPrompt(cand)),
		},
		MaxTokens:   assessmentMaxTokens,
		Temperature: &temp,
	})
	if err != nil {
		return model.Decision{}, err
	}

	decision, err := parseDecision(resp.Content)
	if err != nil {
		f.log.Warn("unparseable viability assessment",
			zap.String("candidate", cand.Name),
			zap.Error(err),
		)
		// Treat malformed output as maximum uncertainty.
		decision = model.Decision{Kind: model.DecisionUncertain, Reason: "unparseable response"}
	}

	f.cache.Put(key, decision)
	return decision, nil
}

func assessmentPrompt(cand *model.Candidate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Company: %s\n", cand.Name)
	if cand.Industry != "" {
		fmt.Fprintf(&b, "Industry: %s\n", cand.Industry)
	}
	fmt.Fprintf(&b, "Description: %s\n", cand.Description)
	return b.String()
}

// parseDecision extracts DECISION/CONFIDENCE/REASON lines from the model
// output.
func parseDecision(content string) (model.Decision, error) {
	decision := model.Decision{Kind: model.DecisionUncertain}
	foundDecision := false

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		upper := strings.ToUpper(line)

		switch {
		case strings.HasPrefix(upper, "DECISION:"):
			value := strings.ToUpper(strings.TrimSpace(line[len("DECISION:"):]))
			switch {
			case strings.Contains(value, "NOT_VIABLE") || strings.Contains(value, "NOT VIABLE"):
				decision.Kind = model.DecisionNotViable
			case strings.Contains(value, "VIABLE"):
				decision.Kind = model.DecisionViable
			default:
				continue
			}
			foundDecision = true

		case strings.HasPrefix(upper, "CONFIDENCE:"):
			value := strings.TrimSpace(line[len("CONFIDENCE:"):])
			value = strings.TrimSuffix(value, "%")
			if conf, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
				if conf < 0 {
					conf = 0
				}
				if conf > 100 {
					conf = 100
				}
				decision.Confidence = conf
			}

		case strings.HasPrefix(upper, "REASON:"):
			decision.Reason = strings.TrimSpace(line[len("REASON:"):])
		}
	}

	if !foundDecision {
		return decision, errors.New("missing DECISION line")
	}
	return decision, nil
}

func matchHardExclusion(text string) (string, bool) {
	for _, phrase := range hardExclusions {
		if strings.Contains(text, phrase) {
			return phrase, true
		}
	}
	return "", false
}

func matchesGate(description string) bool {
	for _, kw := range gateKeywords {
		if strings.Contains(description, kw) {
			return true
		}
	}
	return false
}

func errorDetail(err error) string {
	switch {
	case errors.Is(err, llm.ErrCircuitOpen):
		return "circuit open"
	case errors.Is(err, llm.ErrRateLimited):
		return "rate limited"
	case errors.Is(err, llm.ErrUnavailable):
		return "gateway unavailable"
	default:
		return "assessment failed"
	}
}
