package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextAvailableTransfers(t *testing.T) {
	cases := []struct {
		name  string
		prior SeasonState
		used  int
		want  int
	}{
		{"first race", NewSeasonState(), 7, 2},
		{"used fewer than available", savedState(2), 1, 3},
		{"used none", savedState(2), 0, 3},
		{"used all", savedState(2), 2, 2},
		{"used more than available", savedState(2), 4, 2},
		{"rolled over, used all", savedState(3), 3, 2},
		{"rolled over, used two", savedState(3), 2, 3},
		{"unlimited on saved team", savedState(UnlimitedTransfers), 5, 2},
		{"unlimited on saved team, none used", savedState(UnlimitedTransfers), 0, 2},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, NextAvailableTransfers(tc.prior, tc.used), tc.name)
	}
}

func TestSeasonState_Clone(t *testing.T) {
	s := savedState(2, ChipWildcard)
	c := s.Clone()
	c.SelectedEntities[0] = "Z"
	c.UsedChips[0] = ChipLimitless

	assert.Equal(t, "A", s.SelectedEntities[0])
	assert.Equal(t, ChipWildcard, s.UsedChips[0])
}

func TestSeasonState_Queries(t *testing.T) {
	s := savedState(2, ChipExtraDRS)
	assert.False(t, s.IsFirstRace())
	assert.True(t, s.Holds("X"))
	assert.False(t, s.Holds("Q"))
	assert.True(t, s.HasUsed(ChipExtraDRS))
	assert.False(t, s.HasUsed(ChipAutopilot))

	assert.True(t, NewSeasonState().IsFirstRace())
	assert.Equal(t, UnlimitedTransfers, NewSeasonState().AvailableTransfers)
}
