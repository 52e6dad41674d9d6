package service

import (
	"sort"
	"strings"
	"time"

	"github.com/andreypavlenko/scout/modules/startups/model"
)

// Snapshot is an immutable in-memory view of the corpus. Readers hold a
// snapshot for the duration of a request; refreshes swap the pointer and
// never mutate a published snapshot.
type Snapshot struct {
	startups  []*model.Startup
	byID      map[int64]*model.Startup
	byFunding []*model.Startup
	loadedAt  time.Time
}

// NewSnapshot builds a snapshot with its indexes from a corpus load.
func NewSnapshot(startups []*model.Startup) *Snapshot {
	snap := &Snapshot{
		startups: startups,
		byID:     make(map[int64]*model.Startup, len(startups)),
		loadedAt: time.Now().UTC(),
	}
	for _, s := range startups {
		snap.byID[s.ID] = s
	}

	snap.byFunding = make([]*model.Startup, len(startups))
	copy(snap.byFunding, startups)
	sort.SliceStable(snap.byFunding, func(i, j int) bool {
		a, b := snap.byFunding[i], snap.byFunding[j]
		switch {
		case a.TotalFundingUSDM == nil && b.TotalFundingUSDM == nil:
			return a.ID < b.ID
		case a.TotalFundingUSDM == nil:
			return false // nulls last
		case b.TotalFundingUSDM == nil:
			return true
		case *a.TotalFundingUSDM != *b.TotalFundingUSDM:
			return *a.TotalFundingUSDM > *b.TotalFundingUSDM
		default:
			return a.ID < b.ID
		}
	})

	return snap
}

// Len returns the corpus size.
func (s *Snapshot) Len() int { return len(s.startups) }

// LoadedAt returns when the snapshot was built.
func (s *Snapshot) LoadedAt() time.Time { return s.loadedAt }

// Get returns the startup with the given id.
func (s *Snapshot) Get(id int64) (*model.Startup, bool) {
	startup, ok := s.byID[id]
	return startup, ok
}

// All returns the corpus in load order (id order when built from the
// repository). Callers must not mutate it.
func (s *Snapshot) All() []*model.Startup { return s.startups }

// TopByFunding returns up to limit startups sorted descending by total
// funding, nulls last, ties broken by id ascending.
func (s *Snapshot) TopByFunding(limit int) []*model.Startup {
	if limit <= 0 || limit > len(s.byFunding) {
		limit = len(s.byFunding)
	}
	return s.byFunding[:limit]
}

// Search returns the page of startups matching the filter plus the total
// match count.
func (s *Snapshot) Search(filter *model.ListFilter, skip, limit int) ([]*model.Startup, int) {
	var matched []*model.Startup
	for _, startup := range s.startups {
		if matchesFilter(startup, filter) {
			matched = append(matched, startup)
		}
	}

	total := len(matched)
	if skip < 0 {
		skip = 0
	}
	if skip >= total {
		return nil, total
	}
	end := total
	if limit > 0 && skip+limit < end {
		end = skip + limit
	}
	return matched[skip:end], total
}

func matchesFilter(s *model.Startup, filter *model.ListFilter) bool {
	if filter == nil {
		return true
	}
	if filter.Industry != "" && !industryMatches(s, filter.Industry) {
		return false
	}
	if filter.Country != "" && !strings.EqualFold(s.Country, filter.Country) {
		return false
	}
	if filter.City != "" && !strings.EqualFold(s.City, filter.City) {
		return false
	}
	if filter.Stage != "" && s.Stage != filter.Stage {
		return false
	}
	if filter.MinFundingUSD > 0 {
		if s.TotalFundingUSDM == nil || *s.TotalFundingUSDM < filter.MinFundingUSD {
			return false
		}
	}
	if filter.NameSubstring != "" &&
		!strings.Contains(strings.ToLower(s.Name), strings.ToLower(filter.NameSubstring)) {
		return false
	}
	return true
}

func industryMatches(s *model.Startup, industry string) bool {
	needle := strings.ToLower(industry)
	if strings.Contains(strings.ToLower(s.PrimaryIndustry), needle) {
		return true
	}
	for _, sec := range s.SecondaryIndustries {
		if strings.Contains(strings.ToLower(sec), needle) {
			return true
		}
	}
	// Topic labels double as industry tags in the corpus.
	for _, topic := range s.Topics {
		if strings.Contains(strings.ToLower(topic), needle) {
			return true
		}
	}
	return false
}
