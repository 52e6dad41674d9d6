package service

import (
	"hash/fnv"
	"math/rand"
	"sort"
	"time"

	"github.com/andreypavlenko/scout/modules/startups/model"
	"github.com/andreypavlenko/scout/modules/startups/taxonomy"
)

// stageWeights adjusts scores by investment stage: early stages surface
// slightly more, late stages slightly less.
var stageWeights = map[model.Stage]float64{
	model.StagePreSeed:     1.10,
	model.StageSeed:        1.00,
	model.StageSeriesA:     1.00,
	model.StageSeriesB:     1.00,
	model.StageSeriesC:     0.90,
	model.StageSeriesDPlus: 0.80,
	model.StageGrowth:      0.80,
	model.StageUndisclosed: 1.00,
}

const (
	freshnessBoost       = 1.5
	categoryAffinity     = 1.3
	stageAffinity        = 1.2
	affinityCap          = 1.5
	overlapPenalty       = 0.9
	samePenaltyStage     = 0.95
	diversityWindow      = 5
	maxConsecutiveShared = 3
	firstWindow          = 10
)

// tierMinimums are the first-10 guarantees applied when the pool can satisfy
// them.
var tierMinimums = map[int]int{1: 1, 2: 2, 3: 1, 4: 1}

// UserProfile captures the vote-derived preferences of a user.
type UserProfile struct {
	Seen            map[int64]struct{}
	LikedCategories map[string]struct{}
	LikedStages     map[model.Stage]int
}

// HasLikes reports whether the profile carries at least one interested vote.
func (p *UserProfile) HasLikes() bool {
	return p != nil && (len(p.LikedCategories) > 0 || len(p.LikedStages) > 0)
}

// Prioritizer ranks startups with deterministic scoring, vote-based
// personalization, diversity over a sliding window, and seeded exploration.
type Prioritizer struct {
	classifier *taxonomy.Classifier
}

// NewPrioritizer creates a prioritizer over the given classifier.
func NewPrioritizer(classifier *taxonomy.Classifier) *Prioritizer {
	return &Prioritizer{classifier: classifier}
}

// Seed derives the exploration RNG seed from the user and the epoch day, so
// repeated requests within a day see the same order.
func Seed(userID string, now time.Time) int64 {
	if userID == "" {
		userID = "anon"
	}
	h := fnv.New64a()
	h.Write([]byte(userID))
	h.Write([]byte{':'})
	epochDay := now.UTC().Unix() / 86400
	var buf [8]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(epochDay >> (8 * i))
	}
	h.Write(buf[:])
	return int64(h.Sum64())
}

type ranked struct {
	startup    *model.Startup
	categories []taxonomy.Category
	tier       int
	score      float64
}

// Rank orders the candidates and returns at most limit startups. It never
// fails: an empty candidate set yields an empty result.
func (p *Prioritizer) Rank(candidates []*model.Startup, profile *UserProfile, limit, minScore int, seed int64) []*model.Startup {
	if limit <= 0 || len(candidates) == 0 {
		return nil
	}

	rng := rand.New(rand.NewSource(seed))
	personalized := profile.HasLikes()

	pool := make([]*ranked, 0, len(candidates))
	for _, s := range candidates {
		base := p.classifier.BaseScore(s)
		if base < minScore {
			continue
		}

		score := float64(base)

		if w, ok := stageWeights[s.Stage]; ok {
			score *= w
		}

		if profile != nil {
			if _, seen := profile.Seen[s.ID]; !seen {
				score *= freshnessBoost
			}
		}

		categories := p.classifier.Classify(s)

		if personalized {
			affinity := 1.0
			if overlapsLiked(categories, profile.LikedCategories) {
				affinity *= categoryAffinity
			}
			if _, ok := profile.LikedStages[s.Stage]; ok {
				affinity *= stageAffinity
			}
			if affinity > affinityCap {
				affinity = affinityCap
			}
			score *= affinity
		}

		pool = append(pool, &ranked{
			startup:    s,
			categories: categories,
			tier:       taxonomy.BestTier(categories),
			score:      score,
		})
	}

	if len(pool) == 0 {
		return nil
	}

	// Exploration noise is drawn in deterministic candidate order so the
	// whole ranking is a pure function of (inputs, seed).
	sortRanked(pool)
	for _, r := range pool {
		r.score *= 0.9 + rng.Float64()*0.2
	}
	sortRanked(pool)

	result := p.emitDiverse(pool, limit)
	p.enforceFirstWindow(result, pool)

	out := make([]*model.Startup, len(result))
	for i, r := range result {
		out[i] = r.startup
	}
	return out
}

// emitDiverse greedily emits candidates, penalizing category and stage
// repetition against the last five emitted, and refusing a fourth
// consecutive entry sharing a category when an alternative exists.
func (p *Prioritizer) emitDiverse(pool []*ranked, limit int) []*ranked {
	if limit > len(pool) {
		limit = len(pool)
	}

	remaining := make([]*ranked, len(pool))
	copy(remaining, pool)
	result := make([]*ranked, 0, limit)

	for len(result) < limit && len(remaining) > 0 {
		window := result
		if len(window) > diversityWindow {
			window = window[len(window)-diversityWindow:]
		}

		bestIdx := -1
		bestScore := 0.0
		fallbackIdx := -1
		fallbackScore := 0.0

		for i, cand := range remaining {
			effective := cand.score
			stagePenalized := false
			for _, emitted := range window {
				if categoriesOverlap(cand.categories, emitted.categories) {
					effective *= overlapPenalty
				}
				if !stagePenalized && emitted.startup.Stage == cand.startup.Stage {
					effective *= samePenaltyStage
					stagePenalized = true
				}
			}

			better := func(idx int, score float64) bool {
				return idx < 0 || effective > score ||
					(effective == score && cand.startup.ID < remaining[idx].startup.ID)
			}

			if better(fallbackIdx, fallbackScore) {
				fallbackIdx, fallbackScore = i, effective
			}
			if wouldRepeatCategory(result, cand) {
				continue
			}
			if better(bestIdx, bestScore) {
				bestIdx, bestScore = i, effective
			}
		}

		if bestIdx < 0 {
			bestIdx = fallbackIdx
		}

		result = append(result, remaining[bestIdx])
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}

	return result
}

// wouldRepeatCategory reports whether emitting cand would create a fourth
// consecutive entry sharing a category.
func wouldRepeatCategory(result []*ranked, cand *ranked) bool {
	if len(result) < maxConsecutiveShared {
		return false
	}
	tail := result[len(result)-maxConsecutiveShared:]
	for _, emitted := range tail {
		if !categoriesOverlap(cand.categories, emitted.categories) {
			return false
		}
	}
	return true
}

// enforceFirstWindow promotes entries so the first ten positions meet the
// tier minimums whenever the pool can satisfy them. Tiers are served in
// priority order; an entry is displaced only while its tier is above quota.
func (p *Prioritizer) enforceFirstWindow(result []*ranked, pool []*ranked) {
	if len(result) <= 1 {
		return
	}

	window := firstWindow
	if window > len(result) {
		window = len(result)
	}

	poolCounts := make(map[int]int)
	for _, r := range pool {
		poolCounts[r.tier]++
	}

	have := make(map[int]int)
	for _, r := range result[:window] {
		have[r.tier]++
	}

	for tier := 1; tier <= 4; tier++ {
		needed := tierMinimums[tier]
		if poolCounts[tier] < needed {
			needed = poolCounts[tier]
		}

		for have[tier] < needed {
			// Displace the last window entry whose tier is above quota.
			dst := -1
			for i := window - 1; i >= 0; i-- {
				t := result[i].tier
				if have[t] > tierMinimums[t] {
					dst = i
					break
				}
			}
			if dst < 0 {
				// Every window entry sits at or below its tier quota: the
				// window is too short for the remaining minimums, so the
				// scored order is kept.
				break
			}

			// Pull the best later entry of this tier into the window,
			// falling back to an unemitted pool candidate.
			src := -1
			for i := window; i < len(result); i++ {
				if result[i].tier == tier {
					src = i
					break
				}
			}

			if src >= 0 {
				have[result[dst].tier]--
				result[dst], result[src] = result[src], result[dst]
				have[tier]++
				continue
			}

			replacement := bestUnemitted(pool, result, tier)
			if replacement == nil {
				break
			}
			have[result[dst].tier]--
			result[dst] = replacement
			have[tier]++
		}
	}
}

// bestUnemitted returns the highest-scored pool candidate of the given tier
// that is not already in result.
func bestUnemitted(pool, result []*ranked, tier int) *ranked {
	emitted := make(map[*ranked]struct{}, len(result))
	for _, r := range result {
		emitted[r] = struct{}{}
	}

	var best *ranked
	for _, r := range pool {
		if r.tier != tier {
			continue
		}
		if _, ok := emitted[r]; ok {
			continue
		}
		if best == nil || r.score > best.score ||
			(r.score == best.score && r.startup.ID < best.startup.ID) {
			best = r
		}
	}
	return best
}

func sortRanked(pool []*ranked) {
	sort.SliceStable(pool, func(i, j int) bool {
		if pool[i].score != pool[j].score {
			return pool[i].score > pool[j].score
		}
		return pool[i].startup.ID < pool[j].startup.ID
	})
}

func overlapsLiked(categories []taxonomy.Category, liked map[string]struct{}) bool {
	for _, cat := range categories {
		if _, ok := liked[cat.Name]; ok {
			return true
		}
	}
	return false
}

func categoriesOverlap(a, b []taxonomy.Category) bool {
	for _, ca := range a {
		for _, cb := range b {
			if ca.Name == cb.Name {
				return true
			}
		}
	}
	return false
}
