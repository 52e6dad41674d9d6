package service

import (
	"testing"

	"github.com/andreypavlenko/scout/modules/startups/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fundedStartup(id int64, name string, funding *float64) *model.Startup {
	return &model.Startup{ID: id, Name: name, TotalFundingUSDM: funding, Stage: model.StageSeed}
}

func f(v float64) *float64 { return &v }

func TestSnapshot_Get(t *testing.T) {
	snap := NewSnapshot([]*model.Startup{fundedStartup(1, "A", nil)})

	s, ok := snap.Get(1)
	require.True(t, ok)
	assert.Equal(t, "A", s.Name)

	_, ok = snap.Get(99)
	assert.False(t, ok)
}

func TestSnapshot_TopByFunding(t *testing.T) {
	snap := NewSnapshot([]*model.Startup{
		fundedStartup(1, "NoFunding", nil),
		fundedStartup(2, "Big", f(120)),
		fundedStartup(3, "Small", f(5)),
		fundedStartup(4, "AlsoBig", f(120)),
	})

	t.Run("sorts descending with nulls last and ties by id", func(t *testing.T) {
		top := snap.TopByFunding(4)
		require.Len(t, top, 4)
		assert.Equal(t, int64(2), top[0].ID)
		assert.Equal(t, int64(4), top[1].ID)
		assert.Equal(t, int64(3), top[2].ID)
		assert.Equal(t, int64(1), top[3].ID)
	})

	t.Run("respects limit", func(t *testing.T) {
		assert.Len(t, snap.TopByFunding(2), 2)
	})
}

func TestSnapshot_Search(t *testing.T) {
	snap := NewSnapshot([]*model.Startup{
		{ID: 1, Name: "Hookle", PrimaryIndustry: "Marketing", Country: "Finland", Stage: model.StageSeed},
		{ID: 2, Name: "InsureCo", PrimaryIndustry: "Insurance", Country: "Germany", Stage: model.StageSeriesB, TotalFundingUSDM: f(50)},
		{ID: 3, Name: "DataHook", PrimaryIndustry: "Analytics", Country: "Germany", Stage: model.StageSeed},
	})

	t.Run("name substring is case-insensitive", func(t *testing.T) {
		page, total := snap.Search(&model.ListFilter{NameSubstring: "hook"}, 0, 10)
		assert.Equal(t, 2, total)
		require.Len(t, page, 2)
	})

	t.Run("filters by country", func(t *testing.T) {
		_, total := snap.Search(&model.ListFilter{Country: "germany"}, 0, 10)
		assert.Equal(t, 2, total)
	})

	t.Run("filters by stage and min funding", func(t *testing.T) {
		page, total := snap.Search(&model.ListFilter{Stage: model.StageSeriesB, MinFundingUSD: 10}, 0, 10)
		assert.Equal(t, 1, total)
		require.Len(t, page, 1)
		assert.Equal(t, int64(2), page[0].ID)
	})

	t.Run("paginates", func(t *testing.T) {
		page, total := snap.Search(nil, 1, 1)
		assert.Equal(t, 3, total)
		require.Len(t, page, 1)
		assert.Equal(t, int64(2), page[0].ID)
	})

	t.Run("skip beyond total yields empty page", func(t *testing.T) {
		page, total := snap.Search(nil, 10, 5)
		assert.Equal(t, 3, total)
		assert.Empty(t, page)
	})
}
