package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/andreypavlenko/scout/internal/platform/logger"
	redisPlatform "github.com/andreypavlenko/scout/internal/platform/redis"
	"github.com/andreypavlenko/scout/modules/startups/model"
	"github.com/andreypavlenko/scout/modules/startups/ports"
	"github.com/andreypavlenko/scout/modules/startups/taxonomy"
	votesPorts "github.com/andreypavlenko/scout/modules/votes/ports"
	"go.uber.org/zap"
)

// prioritizedCacheTTL bounds how long a cached prioritized order may serve as
// a fallback; within a day the order is stable anyway due to seeding.
const prioritizedCacheTTL = 24 * time.Hour

// StartupService is the corpus facade: snapshot reads, classification
// insights, and prioritization.
type StartupService struct {
	repo       ports.StartupRepository
	votes      votesPorts.VoteRepository
	classifier *taxonomy.Classifier
	ranker     *Prioritizer
	redis      *redisPlatform.Client
	log        *logger.Logger

	snap atomic.Pointer[Snapshot]
}

// NewStartupService creates a new startup service. The redis client is
// optional; without it the prioritized fallback cache is disabled.
func NewStartupService(
	repo ports.StartupRepository,
	votes votesPorts.VoteRepository,
	classifier *taxonomy.Classifier,
	redisClient *redisPlatform.Client,
	log *logger.Logger,
) *StartupService {
	svc := &StartupService{
		repo:       repo,
		votes:      votes,
		classifier: classifier,
		ranker:     NewPrioritizer(classifier),
		redis:      redisClient,
		log:        log,
	}
	svc.snap.Store(NewSnapshot(nil))
	return svc
}

// LoadSnapshot builds a fresh snapshot from persistent storage and swaps it
// in atomically. Readers of the previous snapshot are unaffected.
func (s *StartupService) LoadSnapshot(ctx context.Context) error {
	startups, err := s.repo.All(ctx)
	if err != nil {
		return fmt.Errorf("failed to load corpus: %w", err)
	}

	snap := NewSnapshot(startups)
	s.snap.Store(snap)
	s.log.Info("corpus snapshot loaded", zap.Int("startups", snap.Len()))
	return nil
}

// ReplaceSnapshot swaps in a pre-built snapshot. Used by the seed path and
// tests.
func (s *StartupService) ReplaceSnapshot(startups []*model.Startup) {
	s.snap.Store(NewSnapshot(startups))
}

// Snapshot returns the current corpus snapshot.
func (s *StartupService) Snapshot() *Snapshot {
	return s.snap.Load()
}

// GetStartup returns one startup by id.
func (s *StartupService) GetStartup(id int64) (*model.Startup, error) {
	startup, ok := s.Snapshot().Get(id)
	if !ok {
		return nil, model.ErrStartupNotFound
	}
	return startup, nil
}

// GetStartupByName returns the first startup whose name matches
// case-insensitively, preferring exact matches over substring ones.
func (s *StartupService) GetStartupByName(name string) (*model.Startup, error) {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return nil, model.ErrStartupNotFound
	}

	var substring *model.Startup
	for _, startup := range s.Snapshot().All() {
		lower := strings.ToLower(startup.Name)
		if lower == needle {
			return startup, nil
		}
		if substring == nil && strings.Contains(lower, needle) {
			substring = startup
		}
	}
	if substring != nil {
		return substring, nil
	}
	return nil, model.ErrStartupNotFound
}

// List returns a page of startups matching the filter plus the total count.
func (s *StartupService) List(filter *model.ListFilter, skip, limit int) ([]*model.StartupDTO, int) {
	page, total := s.Snapshot().Search(filter, skip, limit)

	dtos := make([]*model.StartupDTO, 0, len(page))
	for _, startup := range page {
		dtos = append(dtos, startup.ToDTO())
	}
	return dtos, total
}

// TopByFunding returns the top startups by total funding.
func (s *StartupService) TopByFunding(limit int) []*model.StartupDTO {
	top := s.Snapshot().TopByFunding(limit)
	dtos := make([]*model.StartupDTO, 0, len(top))
	for _, startup := range top {
		dtos = append(dtos, startup.ToDTO())
	}
	return dtos
}

// Insights returns category and tier rationale for one startup.
func (s *StartupService) Insights(id int64) (*model.InsightsDTO, error) {
	startup, err := s.GetStartup(id)
	if err != nil {
		return nil, err
	}
	return s.insightsOf(startup), nil
}

// BatchInsights returns insights for a list of ids. Ids may arrive as
// numbers or strings; unknown ids are skipped.
func (s *StartupService) BatchInsights(ids []any) []*model.InsightsDTO {
	insights := make([]*model.InsightsDTO, 0, len(ids))
	for _, raw := range ids {
		id, ok := parseID(raw)
		if !ok {
			continue
		}
		startup, err := s.GetStartup(id)
		if err != nil {
			continue
		}
		insights = append(insights, s.insightsOf(startup))
	}
	return insights
}

func (s *StartupService) insightsOf(startup *model.Startup) *model.InsightsDTO {
	categories := s.classifier.Classify(startup)
	return &model.InsightsDTO{
		StartupID:  startup.ID,
		Name:       startup.Name,
		Categories: taxonomy.Names(categories),
		Tier:       taxonomy.BestTier(categories),
		BaseScore:  s.classifier.BaseScore(startup),
		Stage:      startup.Stage,
	}
}

// PrioritizedResult is the outcome of a prioritization request.
type PrioritizedResult struct {
	Startups     []*model.StartupDTO
	Total        int
	Personalized bool
	FromCache    bool
}

// Prioritize ranks the corpus for a user. It never fails: an empty snapshot
// yields an empty result with a warning, and vote-store errors degrade to an
// unpersonalized ranking.
func (s *StartupService) Prioritize(ctx context.Context, userID string, limit, minScore int) *PrioritizedResult {
	snap := s.Snapshot()
	if snap.Len() == 0 {
		s.log.Warn("prioritize called with empty corpus snapshot")
		if cached := s.cachedPrioritized(ctx, userID, limit, minScore); cached != nil {
			return cached
		}
		return &PrioritizedResult{Startups: []*model.StartupDTO{}}
	}

	profile := s.buildProfile(ctx, userID)
	seed := Seed(userID, time.Now())

	ranked := s.ranker.Rank(snap.All(), profile, limit, minScore, seed)

	dtos := make([]*model.StartupDTO, 0, len(ranked))
	for _, startup := range ranked {
		dtos = append(dtos, startup.ToDTO())
	}

	result := &PrioritizedResult{
		Startups:     dtos,
		Total:        snap.Len(),
		Personalized: profile.HasLikes(),
	}
	s.storePrioritized(ctx, userID, limit, minScore, result)
	return result
}

// buildProfile loads the vote history of a user. Errors degrade to a profile
// without likes (nil when the seen set cannot be loaded) rather than failing
// the request.
func (s *StartupService) buildProfile(ctx context.Context, userID string) *UserProfile {
	if userID == "" || s.votes == nil {
		return nil
	}

	seen, err := s.votes.SeenStartups(ctx, userID)
	if err != nil {
		s.log.Warn("failed to load seen startups", zap.String("user_id", userID), zap.Error(err))
		return nil
	}

	votes, err := s.votes.VotesOf(ctx, userID)
	if err != nil {
		s.log.Warn("failed to load votes", zap.String("user_id", userID), zap.Error(err))
		return &UserProfile{Seen: seen}
	}

	profile := &UserProfile{
		Seen:            seen,
		LikedCategories: make(map[string]struct{}),
		LikedStages:     make(map[model.Stage]int),
	}

	snap := s.Snapshot()
	for _, vote := range votes {
		if !vote.Interested {
			continue
		}
		startup, ok := snap.Get(vote.StartupID)
		if !ok {
			continue
		}
		for _, cat := range s.classifier.Classify(startup) {
			profile.LikedCategories[cat.Name] = struct{}{}
		}
		profile.LikedStages[startup.Stage]++
	}

	if len(profile.LikedCategories) == 0 && len(profile.LikedStages) == 0 {
		return &UserProfile{Seen: seen}
	}
	return profile
}

// EnrichedSearch returns startups whose enrichment matches the query,
// optionally restricted to one enrichment field.
func (s *StartupService) EnrichedSearch(query, enrichmentType string, limit int) []*model.StartupDTO {
	needle := strings.ToLower(strings.TrimSpace(query))
	if limit <= 0 {
		limit = 20
	}

	var out []*model.StartupDTO
	for _, startup := range s.Snapshot().All() {
		if len(startup.Enrichment) == 0 {
			continue
		}
		if enrichmentType != "" {
			if _, ok := startup.Enrichment[enrichmentType]; !ok {
				continue
			}
		}
		if needle != "" && !enrichmentContains(startup, needle) {
			continue
		}
		out = append(out, startup.ToDTO())
		if len(out) >= limit {
			break
		}
	}
	return out
}

// Enrichment returns the free-form enrichment object of a startup.
func (s *StartupService) Enrichment(id int64) (map[string]any, error) {
	startup, err := s.GetStartup(id)
	if err != nil {
		return nil, err
	}
	if len(startup.Enrichment) == 0 {
		return nil, model.ErrEnrichmentNotFound
	}
	return startup.Enrichment, nil
}

// EnrichmentStats summarizes enrichment coverage over the corpus.
func (s *StartupService) EnrichmentStats() *model.EnrichmentStatsDTO {
	snap := s.Snapshot()
	stats := &model.EnrichmentStatsDTO{
		Total:  snap.Len(),
		ByType: make(map[string]int),
	}

	for _, startup := range snap.All() {
		if len(startup.Enrichment) == 0 {
			continue
		}
		stats.WithData++
		for key := range startup.Enrichment {
			stats.ByType[key]++
		}
	}

	if stats.Total > 0 {
		stats.CoveragePct = float64(stats.WithData) / float64(stats.Total) * 100
	}
	return stats
}

func enrichmentContains(startup *model.Startup, needle string) bool {
	if strings.Contains(strings.ToLower(startup.Name), needle) {
		return true
	}
	raw, err := json.Marshal(startup.Enrichment)
	if err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(string(raw)), needle)
}

func (s *StartupService) prioritizedCacheKey(userID string, limit, minScore int) string {
	if userID == "" {
		userID = "anon"
	}
	epochDay := time.Now().UTC().Unix() / 86400
	return fmt.Sprintf("prioritized:%s:%d:%d:%d", userID, epochDay, limit, minScore)
}

func (s *StartupService) storePrioritized(ctx context.Context, userID string, limit, minScore int, result *PrioritizedResult) {
	if s.redis == nil {
		return
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, s.prioritizedCacheKey(userID, limit, minScore), payload, prioritizedCacheTTL).Err(); err != nil {
		s.log.Debug("failed to cache prioritized result", zap.Error(err))
	}
}

func (s *StartupService) cachedPrioritized(ctx context.Context, userID string, limit, minScore int) *PrioritizedResult {
	if s.redis == nil {
		return nil
	}
	payload, err := s.redis.Get(ctx, s.prioritizedCacheKey(userID, limit, minScore)).Bytes()
	if err != nil {
		return nil
	}
	var result PrioritizedResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil
	}
	result.FromCache = true
	return &result
}

func parseID(raw any) (int64, bool) {
	switch v := raw.(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	case string:
		id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, false
		}
		return id, true
	default:
		return 0, false
	}
}
