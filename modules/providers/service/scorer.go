package service

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/andreypavlenko/scout/modules/providers/model"
	startupsModel "github.com/andreypavlenko/scout/modules/startups/model"
	"github.com/andreypavlenko/scout/modules/startups/taxonomy"
)

const (
	fundingCap   = 40.0
	teamCap      = 30.0
	maturityCap  = 20.0
	relevanceCap = 10.0

	fundingDecayPerYear = 0.10
)

// Scorer computes the composite score of accepted candidates: log-scaled
// funding with yearly decay, log-scaled team size, maturity, and category
// relevance.
type Scorer struct {
	classifier *taxonomy.Classifier
	now        func() time.Time
}

// NewScorer creates a scorer over the taxonomy classifier.
func NewScorer(classifier *taxonomy.Classifier) *Scorer {
	return &Scorer{classifier: classifier, now: time.Now}
}

// Score returns the composite score of a candidate.
func (s *Scorer) Score(cand *model.Candidate) float64 {
	return s.fundingScore(cand) + s.teamScore(cand) + s.maturityScore(cand) + s.relevanceScore(cand)
}

// fundingScore log-scales total funding and decays it by 10% per year since
// the last round.
func (s *Scorer) fundingScore(cand *model.Candidate) float64 {
	if cand.TotalFundingUSDM == nil || *cand.TotalFundingUSDM <= 0 {
		return 0
	}

	// log10(millions+1): $0 -> 0, ~$10M -> 1, ~$100M -> 2, ~$1B -> 3 (the cap).
	score := math.Log10(*cand.TotalFundingUSDM+1) / 3 * fundingCap

	if cand.LastFundingDate != nil {
		years := s.now().Sub(*cand.LastFundingDate).Hours() / (24 * 365)
		if years > 0 {
			score *= math.Pow(1-fundingDecayPerYear, years)
		}
	}

	return math.Min(score, fundingCap)
}

// teamScore log-scales headcount from the employee range label.
func (s *Scorer) teamScore(cand *model.Candidate) float64 {
	employees := parseEmployees(cand.Employees)
	if employees <= 0 {
		return 0
	}

	// log10 headcount: 10 -> 1, 100 -> 2, 1000 -> 3.
	score := math.Log10(float64(employees)+1) / 3 * teamCap
	return math.Min(score, teamCap)
}

func (s *Scorer) maturityScore(cand *model.Candidate) float64 {
	if cand.MaturityScore == nil {
		return 0
	}
	m := float64(*cand.MaturityScore)
	if m < 0 {
		m = 0
	}
	if m > 100 {
		m = 100
	}
	return m / 100 * maturityCap
}

func (s *Scorer) relevanceScore(cand *model.Candidate) float64 {
	probe := &startupsModel.Startup{
		Name:            cand.Name,
		Description:     cand.Description,
		PrimaryIndustry: cand.Industry,
	}
	base := float64(s.classifier.BaseScore(probe))
	return base / 100 * relevanceCap
}

// parseEmployees extracts the upper bound of range labels like "11-25",
// "500+", or plain numbers.
func parseEmployees(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}

	if strings.HasSuffix(raw, "+") {
		if n, err := strconv.Atoi(strings.TrimSuffix(raw, "+")); err == nil {
			return n
		}
		return 0
	}

	if i := strings.IndexByte(raw, '-'); i >= 0 {
		if n, err := strconv.Atoi(strings.TrimSpace(raw[i+1:])); err == nil {
			return n
		}
		return 0
	}

	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	return 0
}
