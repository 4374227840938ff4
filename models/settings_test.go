package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveLog(t *testing.T) {
	d, err := Derive(TournamentSettings{Type: TypeLogTournament, MaxTeams: 4, NumFaceEachOther: 1})
	require.NoError(t, err)
	assert.Equal(t, 6, d.MinMatches)
	assert.Equal(t, 7, d.MaxMatches)
	assert.Equal(t, 2, d.MatchesPerRound)
	assert.Equal(t, 3, d.MaxRounds)
	assert.Equal(t, 3, d.MinRounds)
	assert.Equal(t, FieldAlternateHomeAway, d.FieldSelectSequence)

	d, err = Derive(TournamentSettings{Type: TypeLogTournament, MaxTeams: 5, NumFaceEachOther: 2})
	require.NoError(t, err)
	assert.Equal(t, 10, d.MinMatches)
	assert.Equal(t, 21, d.MaxMatches)
	assert.Equal(t, 2, d.MatchesPerRound)
	assert.Equal(t, 10, d.MaxRounds)
	assert.Equal(t, 5, d.MinRounds)
}

func TestDeriveSingleElimination(t *testing.T) {
	d, err := Derive(TournamentSettings{Type: TypeSingleElimination, MaxTeams: 8})
	require.NoError(t, err)
	assert.Equal(t, 7, d.MaxMatches)
	assert.Equal(t, 4, d.MatchesInFirstRound)
	assert.Equal(t, 2, d.GroupsInFirstRound)
	assert.Equal(t, []int{4, 2, 1}, d.MatchesInRound)
	assert.Equal(t, []int{4, 4, 5, 5, 6, 6, -1}, d.WinnerNextMatch)
	assert.Equal(t, 4, d.RoundBase(1))
	assert.Equal(t, 6, d.RoundBase(2))
}

func TestDeriveCustom(t *testing.T) {
	d, err := Derive(TournamentSettings{Type: TypeCustom, MaxTeams: 12, GroupSize: 4, NumFaceEachOther: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, d.NumGroups())
	assert.Equal(t, 18, d.MinMatches)
	assert.Equal(t, 18, d.MaxMatches)
	assert.Equal(t, 6, d.MatchesPerRound)
	assert.Equal(t, 3, d.MaxRounds)
}

func TestDeriveRejectsInvalidSettings(t *testing.T) {
	cases := map[string]TournamentSettings{
		"too few teams":     {Type: TypeLogTournament, MaxTeams: 3, NumFaceEachOther: 1},
		"too many teams":    {Type: TypeLogTournament, MaxTeams: 51, NumFaceEachOther: 1},
		"no legs":           {Type: TypeLogTournament, MaxTeams: 6},
		"not power of two":  {Type: TypeSingleElimination, MaxTeams: 12},
		"chance above one":  {Type: TypeSingleElimination, MaxTeams: 8, HumansInSameGroupChance: 1.5},
		"negative chance":   {Type: TypeSingleElimination, MaxTeams: 8, HumansInSameMatchChance: -0.1},
		"group not divisor": {Type: TypeCustom, MaxTeams: 10, GroupSize: 4, NumFaceEachOther: 1},
		"group too small":   {Type: TypeCustom, MaxTeams: 10, GroupSize: 1, NumFaceEachOther: 1},
		"unknown type":      {Type: "swiss", MaxTeams: 8},
		"unknown sequence":  {Type: TypeLogTournament, MaxTeams: 8, NumFaceEachOther: 1, FieldSelectSequence: "sideways"},
		"negative ai":       {Type: TypeLogTournament, MaxTeams: 8, NumFaceEachOther: 1, MaxAiDifficulty: -1},
	}
	for name, s := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Derive(s)
			assert.ErrorIs(t, err, ErrInvalidConfiguration)
		})
	}
}

func TestMatchInfoSwapAndWinner(t *testing.T) {
	m := NewMatchInfo(3, true)
	assert.False(t, m.Done())
	assert.Equal(t, NoWinner, m.Winner())

	m.SetTeam(0, "A", 0)
	m.SetTeam(1, "B", NoHuman)
	m.HomeTeam = 0
	m.TeamScores = [2]int{2, 1}
	m.Swap()

	assert.Equal(t, [2]string{"B", "A"}, m.TeamIDs)
	assert.Equal(t, [2]int{1, 2}, m.TeamScores)
	assert.Equal(t, [2]bool{false, true}, m.IsPlayer)
	assert.Equal(t, [2]int{NoHuman, 0}, m.HumanIndex)
	assert.Equal(t, 1, m.HomeTeam)
	assert.Equal(t, 1, m.Winner())
	assert.Equal(t, "B 1 - 2 A", m.String())
}

func TestParseSettingsList(t *testing.T) {
	list, err := ParseSettingsList([]byte(`[{"id":"cup","type":"single_elimination","max_teams":8}]`))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, TypeSingleElimination, list[0].Type)

	_, err = ParseSettingsList([]byte(`{`))
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}
