package services

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimulateAiMatchNeverDrawsWhenWinnerNeeded(t *testing.T) {
	for i := 0; i < 2000; i++ {
		rng := rand.New(rand.NewSource(int64(i)))
		a, b := simulateAiMatch(rng, aiSide{level: i % 4}, aiSide{level: (i / 4) % 4}, true, false)
		assert.NotEqual(t, a, b, "seed %d", i)
		assert.GreaterOrEqual(t, min(a, b), 0)
		assert.LessOrEqual(t, max(a, b), 6)
	}
}

func TestSimulateAiMatchScoreBounds(t *testing.T) {
	for i := 0; i < 2000; i++ {
		rng := rand.New(rand.NewSource(int64(i)))
		a, b := simulateAiMatch(rng, aiSide{level: 0, position: 3}, aiSide{level: 5, position: 1}, false, true)
		assert.GreaterOrEqual(t, min(a, b), 0)
		assert.LessOrEqual(t, max(a, b), 6)
		if a != b {
			assert.GreaterOrEqual(t, max(a, b), 1)
		}
	}
}

func TestSimulateAiMatchFavoursStrongerTeam(t *testing.T) {
	const runs = 2000
	strongerWins := 0
	for i := 0; i < runs; i++ {
		rng := rand.New(rand.NewSource(int64(i)))
		a, b := simulateAiMatch(rng, aiSide{level: 0}, aiSide{level: 3}, true, false)
		if b > a {
			strongerWins++
		}
	}
	assert.Greater(t, strongerWins, runs*85/100)
}

func TestSimulateAiMatchUsesLogPositionOnEqualLevels(t *testing.T) {
	const runs = 2000
	leaderWins := 0
	for i := 0; i < runs; i++ {
		rng := rand.New(rand.NewSource(int64(i)))
		a, b := simulateAiMatch(rng, aiSide{level: 2, position: 4}, aiSide{level: 2, position: 0}, true, true)
		if b > a {
			leaderWins++
		}
	}
	assert.Greater(t, leaderWins, runs*90/100)
}

func TestSimulateAiMatchDrawsHappen(t *testing.T) {
	draws := 0
	for i := 0; i < 500; i++ {
		rng := rand.New(rand.NewSource(int64(i)))
		a, b := simulateAiMatch(rng, aiSide{level: 1}, aiSide{level: 1}, false, false)
		if a == b {
			draws++
		}
	}
	assert.Greater(t, draws, 150)
}

func TestStreamsAreDeterministic(t *testing.T) {
	a := newStream(42, streamFields, 3)
	b := newStream(42, streamFields, 3)
	other := newStream(42, streamFields, 4)
	same, differs := true, false
	for i := 0; i < 10; i++ {
		x, y, z := a.Int63(), b.Int63(), other.Int63()
		same = same && x == y
		differs = differs || x != z
	}
	assert.True(t, same)
	assert.True(t, differs)
	assert.NotEqual(t, newStream(42, streamTeams, 0).Int63(), newStream(42, streamSchedule, 0).Int63())
}

func TestSimulateAiMatchWeakerSideWinsByOneGoal(t *testing.T) {
	const runs = 20000
	oneGoal, wider := 0, 0
	for i := 0; i < runs; i++ {
		rng := rand.New(rand.NewSource(int64(i)))
		a, b := simulateAiMatch(rng, aiSide{level: 1}, aiSide{level: 2}, false, false)
		switch {
		case a == b+1:
			oneGoal++
		case a > b+1:
			wider++
		}
	}
	// Only upsets let the weaker side win by more than one goal.
	upsetShare := upsetChance / 2
	assert.Less(t, float64(wider)/runs, upsetShare)

	minority := (1 - upsetChance) * (1 - strongerWinChance[1]) * oneGoalChance
	assert.InDelta(t, minority+upsetShare, float64(oneGoal+wider)/runs, 0.01)
}

func TestSimulateAiMatchCapsStrongerWinChance(t *testing.T) {
	const runs = 20000
	want := (1-upsetChance)*strongerWinChance[3] + upsetChance/2
	for _, weaker := range []int{0, 2} {
		strongerWins := 0
		for i := 0; i < runs; i++ {
			rng := rand.New(rand.NewSource(int64(i)))
			a, b := simulateAiMatch(rng, aiSide{level: 5}, aiSide{level: weaker}, true, false)
			if a > b {
				strongerWins++
			}
		}
		assert.InDelta(t, want, float64(strongerWins)/runs, 0.01, "gap %d", 5-weaker)
	}
}
