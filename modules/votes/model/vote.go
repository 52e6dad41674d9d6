package model

import "time"

// Vote is a swipe decision on a startup. Votes are append-only; the latest
// vote per (user, startup) pair is authoritative.
type Vote struct {
	ID         string
	UserID     string
	StartupID  int64
	Interested bool
	CreatedAt  time.Time
}

// Rating is a 1-5 star rating, last-write-wins per (user, startup).
type Rating struct {
	ID        string
	UserID    string
	StartupID int64
	Score     int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// VoteDTO is the JSON shape of a vote.
type VoteDTO struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	StartupID  int64     `json:"startup_id"`
	Interested bool      `json:"interested"`
	CreatedAt  time.Time `json:"created_at"`
}

// RatingDTO is the JSON shape of a rating.
type RatingDTO struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	StartupID int64     `json:"startup_id"`
	Score     int       `json:"score"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToDTO converts Vote to VoteDTO
func (v *Vote) ToDTO() *VoteDTO {
	return &VoteDTO{
		ID:         v.ID,
		UserID:     v.UserID,
		StartupID:  v.StartupID,
		Interested: v.Interested,
		CreatedAt:  v.CreatedAt,
	}
}

// ToDTO converts Rating to RatingDTO
func (r *Rating) ToDTO() *RatingDTO {
	return &RatingDTO{
		ID:        r.ID,
		UserID:    r.UserID,
		StartupID: r.StartupID,
		Score:     r.Score,
		UpdatedAt: r.UpdatedAt,
	}
}
