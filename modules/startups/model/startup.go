package model

import (
	"strings"
	"time"
)

// Stage is the normalized investment stage.
type Stage string

const (
	StagePreSeed     Stage = "pre_seed"
	StageSeed        Stage = "seed"
	StageSeriesA     Stage = "series_a"
	StageSeriesB     Stage = "series_b"
	StageSeriesC     Stage = "series_c"
	StageSeriesDPlus Stage = "series_d_plus"
	StageGrowth      Stage = "growth"
	StageUndisclosed Stage = "undisclosed"
)

// ParseStage normalizes free-text stage labels deterministically. The raw
// label is treated as opaque beyond this mapping; anything unrecognized is
// Undisclosed.
func ParseStage(raw string) Stage {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")

	switch {
	case s == "":
		return StageUndisclosed
	case strings.Contains(s, "pre seed") || strings.Contains(s, "preseed"):
		return StagePreSeed
	case strings.Contains(s, "series a"):
		return StageSeriesA
	case strings.Contains(s, "series b"):
		return StageSeriesB
	case strings.Contains(s, "series c"):
		return StageSeriesC
	case strings.Contains(s, "series d") || strings.Contains(s, "series e") ||
		strings.Contains(s, "series f") || strings.Contains(s, "late stage"):
		return StageSeriesDPlus
	case strings.Contains(s, "growth") || strings.Contains(s, "expansion"):
		return StageGrowth
	case strings.Contains(s, "seed"):
		return StageSeed
	default:
		return StageUndisclosed
	}
}

// Startup is a corpus entry. Immutable within a snapshot generation.
type Startup struct {
	ID                  int64
	Name                string
	Description         string
	ShortDescription    string
	PrimaryIndustry     string
	SecondaryIndustries []string
	BusinessTypes       []string
	Stage               Stage
	RawStage            string
	TotalFundingUSDM    *float64
	LastFundingDate     *time.Time
	Employees           string
	Country             string
	City                string
	Website             *string
	LogoURL             *string
	Topics              []string
	TechStack           []string
	MaturityScore       *int
	Enrichment          map[string]any
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Short returns the short description, deriving one from the description
// when absent.
func (s *Startup) Short() string {
	if s.ShortDescription != "" {
		return s.ShortDescription
	}
	const max = 160
	if len(s.Description) <= max {
		return s.Description
	}
	cut := s.Description[:max]
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return cut + "…"
}

// SearchText returns the lowercased text the classifier and keyword filters
// match against: name, descriptions, topics, and tech stack.
func (s *Startup) SearchText() string {
	var b strings.Builder
	b.WriteString(s.Name)
	b.WriteByte(' ')
	b.WriteString(s.Description)
	b.WriteByte(' ')
	b.WriteString(s.ShortDescription)
	for _, t := range s.Topics {
		b.WriteByte(' ')
		b.WriteString(t)
	}
	for _, t := range s.TechStack {
		b.WriteByte(' ')
		b.WriteString(t)
	}
	return strings.ToLower(b.String())
}

// StartupDTO is the JSON projection of a startup.
type StartupDTO struct {
	ID                  int64      `json:"id"`
	Name                string     `json:"name"`
	ShortDescription    string     `json:"short_description"`
	Description         string     `json:"description,omitempty"`
	PrimaryIndustry     string     `json:"primary_industry"`
	SecondaryIndustries []string   `json:"secondary_industries,omitempty"`
	BusinessTypes       []string   `json:"business_types,omitempty"`
	Stage               Stage      `json:"stage"`
	TotalFundingUSDM    *float64   `json:"total_funding_usd_millions,omitempty"`
	LastFundingDate     *time.Time `json:"last_funding_date,omitempty"`
	Employees           string     `json:"employees,omitempty"`
	Country             string     `json:"country"`
	City                string     `json:"city,omitempty"`
	Website             *string    `json:"website,omitempty"`
	LogoURL             *string    `json:"logo_url,omitempty"`
	Topics              []string   `json:"topics,omitempty"`
	TechStack           []string   `json:"tech_stack,omitempty"`
	MaturityScore       *int       `json:"maturity_score,omitempty"`
}

// ToDTO converts Startup to StartupDTO
func (s *Startup) ToDTO() *StartupDTO {
	return &StartupDTO{
		ID:                  s.ID,
		Name:                s.Name,
		ShortDescription:    s.Short(),
		Description:         s.Description,
		PrimaryIndustry:     s.PrimaryIndustry,
		SecondaryIndustries: s.SecondaryIndustries,
		BusinessTypes:       s.BusinessTypes,
		Stage:               s.Stage,
		TotalFundingUSDM:    s.TotalFundingUSDM,
		LastFundingDate:     s.LastFundingDate,
		Employees:           s.Employees,
		Country:             s.Country,
		City:                s.City,
		Website:             s.Website,
		LogoURL:             s.LogoURL,
		Topics:              s.Topics,
		TechStack:           s.TechStack,
		MaturityScore:       s.MaturityScore,
	}
}

// Projection returns a compact projection used by tool results and list
// endpoints that do not need the full record.
func (s *Startup) Projection() map[string]any {
	p := map[string]any{
		"id":                s.ID,
		"name":              s.Name,
		"short_description": s.Short(),
		"primary_industry":  s.PrimaryIndustry,
		"stage":             s.Stage,
		"country":           s.Country,
	}
	if s.City != "" {
		p["city"] = s.City
	}
	if s.TotalFundingUSDM != nil {
		p["total_funding_usd_millions"] = *s.TotalFundingUSDM
	}
	return p
}
