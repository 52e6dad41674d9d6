package model

import "time"

// Candidate is a company evaluated for B2B provider viability.
type Candidate struct {
	Name             string     `json:"name"`
	Description      string     `json:"description"`
	Industry         string     `json:"industry,omitempty"`
	TotalFundingUSDM *float64   `json:"total_funding_usd_millions,omitempty"`
	LastFundingDate  *time.Time `json:"last_funding_date,omitempty"`
	Employees        string     `json:"employees,omitempty"`
	MaturityScore    *int       `json:"maturity_score,omitempty"`
}

// Fingerprint identifies a candidate for assessment caching.
func (c *Candidate) Fingerprint() map[string]string {
	return map[string]string{
		"name":        c.Name,
		"description": c.Description,
		"industry":    c.Industry,
	}
}
