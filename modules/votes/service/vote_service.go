package service

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/andreypavlenko/scout/modules/votes/model"
	"github.com/andreypavlenko/scout/modules/votes/ports"
)

// duplicateWindow is how long an identical re-vote counts as an accidental
// double submit rather than a changed mind.
const duplicateWindow = 2 * time.Second

// VoteService handles vote and rating business logic. Writes are serialized
// per (user, startup) pair.
type VoteService struct {
	repo ports.VoteRepository

	mu    sync.Mutex
	locks map[string]*sync.Mutex
	last  map[string]lastVote
}

type lastVote struct {
	interested bool
	at         time.Time
}

// NewVoteService creates a new vote service
func NewVoteService(repo ports.VoteRepository) *VoteService {
	return &VoteService{
		repo:  repo,
		locks: make(map[string]*sync.Mutex),
		last:  make(map[string]lastVote),
	}
}

// RecordVote validates and records a vote.
func (s *VoteService) RecordVote(ctx context.Context, req *model.CreateVoteRequest) (*model.VoteDTO, error) {
	if strings.TrimSpace(req.UserID) == "" {
		return nil, model.ErrUserIDRequired
	}
	if req.StartupID <= 0 {
		return nil, model.ErrStartupIDRequired
	}

	key := voteKey(req.UserID, req.StartupID)
	lock := s.lockFor(key)
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	prev, seen := s.last[key]
	s.mu.Unlock()
	if seen && prev.interested == req.Interested && time.Since(prev.at) < duplicateWindow {
		return nil, model.ErrDuplicateVote
	}

	vote := &model.Vote{
		UserID:     strings.TrimSpace(req.UserID),
		StartupID:  req.StartupID,
		Interested: req.Interested,
	}

	if err := s.repo.RecordVote(ctx, vote); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.last[key] = lastVote{interested: req.Interested, at: vote.CreatedAt}
	s.mu.Unlock()

	return vote.ToDTO(), nil
}

// VotesOf returns the effective votes of a user.
func (s *VoteService) VotesOf(ctx context.Context, userID string) ([]*model.VoteDTO, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, model.ErrUserIDRequired
	}

	votes, err := s.repo.VotesOf(ctx, userID)
	if err != nil {
		return nil, err
	}

	dtos := make([]*model.VoteDTO, 0, len(votes))
	for _, vote := range votes {
		dtos = append(dtos, vote.ToDTO())
	}
	return dtos, nil
}

// RecordRating validates and upserts a rating.
func (s *VoteService) RecordRating(ctx context.Context, req *model.CreateRatingRequest) (*model.RatingDTO, error) {
	if strings.TrimSpace(req.UserID) == "" {
		return nil, model.ErrUserIDRequired
	}
	if req.StartupID <= 0 {
		return nil, model.ErrStartupIDRequired
	}
	if req.Score < 1 || req.Score > 5 {
		return nil, model.ErrInvalidScore
	}

	key := voteKey(req.UserID, req.StartupID)
	lock := s.lockFor(key)
	lock.Lock()
	defer lock.Unlock()

	rating := &model.Rating{
		UserID:    strings.TrimSpace(req.UserID),
		StartupID: req.StartupID,
		Score:     req.Score,
	}

	if err := s.repo.RecordRating(ctx, rating); err != nil {
		return nil, err
	}

	return rating.ToDTO(), nil
}

// RatingsOf returns all ratings of a user.
func (s *VoteService) RatingsOf(ctx context.Context, userID string) ([]*model.RatingDTO, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, model.ErrUserIDRequired
	}

	ratings, err := s.repo.RatingsOf(ctx, userID)
	if err != nil {
		return nil, err
	}

	dtos := make([]*model.RatingDTO, 0, len(ratings))
	for _, rating := range ratings {
		dtos = append(dtos, rating.ToDTO())
	}
	return dtos, nil
}

func (s *VoteService) lockFor(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[key] = lock
	}
	return lock
}

func voteKey(userID string, startupID int64) string {
	return userID + "/" + strconv.FormatInt(startupID, 10)
}
