package brackets

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/Dosada05/tournament-engine/models"
)

const (
	// maxFailedRounds is the number of completed rounds a leg may throw away
	// before the leg is abandoned.
	maxFailedRounds = 20
	// maxSearchSteps bounds the candidate scans of a single leg.
	maxSearchSteps = 2_000_000
)

// randomLegSteps is the step ceiling of the shuffled leg search.
var randomLegSteps = maxSearchSteps

var (
	errLegExhausted    = errors.New("leg exhausted its round retry budget")
	errLegStepsCeiling = errors.New("leg exceeded its search step ceiling")
)

// pairing is an unordered match between two team indices, a < b.
type pairing struct {
	a, b int
}

func (p pairing) has(t int) bool { return p.a == t || p.b == t }

func (p pairing) overlaps(q pairing) bool { return p.has(q.a) || p.has(q.b) }

type RoundRobinGenerator struct{}

func NewRoundRobinGenerator() BracketGenerator {
	return &RoundRobinGenerator{}
}

func (g *RoundRobinGenerator) GetName() string {
	return "RoundRobin"
}

// GenerateBracket builds a log tournament: NumFaceEachOther legs of rounds in
// which every team meets every other team once per leg, followed by a final
// between the two best placed teams.
func (g *RoundRobinGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) (*GeneratedBracket, error) {
	if err := validateParams(params); err != nil {
		return nil, err
	}
	s := params.Settings
	if s.Type != models.TypeLogTournament {
		return nil, fmt.Errorf("%w: %s cannot build a %q tournament", models.ErrInvalidConfiguration, g.GetName(), s.Type)
	}

	explain := newExplain(g.GetName())
	rounds, err := scheduleRoundRobin(ctx, params.TeamIDs, params.PlayerTeamIDs, s.NumFaceEachOther, -1, params.Rand, explain)
	if err != nil {
		return nil, err
	}

	matches := make([]models.MatchInfo, 0, s.MaxMatches)
	for r, round := range rounds {
		for _, p := range round {
			matches = append(matches, newScheduledMatch(r+1, false, params.TeamIDs[p.a], params.TeamIDs[p.b], params.PlayerTeamIDs))
		}
	}

	var anchors []anchor
	legMatches := len(matches) / s.NumFaceEachOther
	for leg := 0; leg < s.NumFaceEachOther; leg++ {
		start := leg * legMatches
		if h := firstHuman(matches[start]); h != "" {
			anchors = append(anchors, anchor{team: h, from: start})
		}
	}
	alternateColumns(matches, anchors, explain)
	reportSideStreaks(matches, params.PlayerTeamIDs, explain)

	matches = append(matches, models.NewMatchInfo(len(rounds)+1, true))
	if len(matches) != s.MaxMatches {
		return nil, fmt.Errorf("%w: built %d matches, expected %d", models.ErrSchedulingFailed, len(matches), s.MaxMatches)
	}

	return &GeneratedBracket{
		Matches:         matches,
		FinalMatchIndex: len(matches) - 1,
		Explain:         explain,
	}, nil
}

// scheduleRoundRobin returns legs*rounds rounds of pairings over teams. A
// failed leg throws the whole schedule away once and rebuilds it from a
// circle-method ordering; the second failure is reported.
func scheduleRoundRobin(ctx context.Context, teams, players []string, legs, group int, rng *rand.Rand, explain *Explain) ([][]pairing, error) {
	humans := make([]bool, len(teams))
	for i, id := range teams {
		humans[i] = HumanIndexOf(players, id) != models.NoHuman
	}

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			explain.Regenerations++
			explain.warnf("shuffled leg search gave up (%v), schedule rebuilt from a circle ordering", lastErr)
		}
		lastErr = nil

		var rounds [][]pairing
		for leg := 0; leg < legs; leg++ {
			b := newLegBuilder(teams, humans, rng, attempt > 0)
			legRounds, err := b.build(ctx)
			explain.Legs = append(explain.Legs, b.report(group, leg))
			if err != nil {
				lastErr = err
				break
			}
			rounds = append(rounds, legRounds...)
		}
		if lastErr == nil {
			return rounds, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
	}
	return nil, fmt.Errorf("%w: %w", models.ErrSchedulingFailed, lastErr)
}

// legBuilder fills the rounds of one leg by depth-first search over the
// ordered pair list. Each position of a round scans the list from the
// position after the previous pick, so every round is enumerated once as a
// set. A team whose remaining fixtures equal the remaining rounds has to play
// in the round being filled.
type legBuilder struct {
	teams      []string
	pairs      []pairing
	perRound   int
	rounds     int
	seed       int
	structured bool

	used      []bool
	inRound   []bool
	remaining []int
	chosen    []int

	steps        int
	maxSteps     int
	failedRounds int
	freshenSwaps int
}

func newLegBuilder(teams []string, humans []bool, rng *rand.Rand, structured bool) *legBuilder {
	if structured {
		b := newLegSearch(teams, circlePairs(len(teams), humans, rng), 0)
		b.structured = true
		return b
	}
	pairs := allPairs(len(teams))
	rng.Shuffle(len(pairs), func(i, j int) { pairs[i], pairs[j] = pairs[j], pairs[i] })
	b := newLegSearch(teams, pairs, pickSeed(pairs, humans, rng))
	b.maxSteps = randomLegSteps
	return b
}

// newLegSearch prepares a search over an already ordered pair list.
func newLegSearch(teams []string, pairs []pairing, seed int) *legBuilder {
	n := len(teams)
	b := &legBuilder{
		teams:    teams,
		pairs:    pairs,
		perRound: n / 2,
		seed:     seed,
		maxSteps: maxSearchSteps,
	}
	b.rounds = len(b.pairs) / b.perRound

	b.used = make([]bool, len(b.pairs))
	b.inRound = make([]bool, n)
	b.remaining = make([]int, n)
	for i := range b.remaining {
		b.remaining[i] = n - 1
	}
	return b
}

func (b *legBuilder) build(ctx context.Context) ([][]pairing, error) {
	total := b.rounds * b.perRound
	b.place(b.seed)

	cursor := 0
	for len(b.chosen) < total {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		pos := len(b.chosen)
		round, slot := pos/b.perRound, pos%b.perRound
		left := b.rounds - round
		uncovered := b.uncoveredMustPlay(left)
		slotsAfter := b.perRound - slot - 1

		found := -1
		for i := cursor; i < len(b.pairs); i++ {
			b.steps++
			if b.used[i] {
				continue
			}
			p := b.pairs[i]
			if b.inRound[p.a] || b.inRound[p.b] {
				continue
			}
			need := uncovered
			if b.remaining[p.a] == left {
				need--
			}
			if b.remaining[p.b] == left {
				need--
			}
			if need > 2*slotsAfter {
				continue
			}
			found = i
			break
		}
		if b.steps > b.maxSteps {
			return nil, errLegStepsCeiling
		}

		if found >= 0 {
			b.place(found)
			next := len(b.chosen)
			if next%b.perRound == 0 || next == 1 {
				cursor = 0
			} else {
				cursor = found + 1
			}
			continue
		}

		// Nothing fits: take back the previous pick and try its next
		// alternative. Leaving a fresh round means the round before it was
		// a dead end.
		if slot == 0 {
			b.failedRounds++
			if b.failedRounds >= maxFailedRounds {
				return nil, errLegExhausted
			}
		}
		if pos == 1 {
			return nil, errLegExhausted
		}
		cursor = b.unplace() + 1
	}

	rounds := make([][]pairing, b.rounds)
	for r := range rounds {
		rounds[r] = make([]pairing, b.perRound)
		for s := 0; s < b.perRound; s++ {
			rounds[r][s] = b.pairs[b.chosen[r*b.perRound+s]]
		}
	}
	b.freshen(rounds)
	return rounds, nil
}

func (b *legBuilder) place(i int) {
	p := b.pairs[i]
	b.used[i] = true
	b.inRound[p.a], b.inRound[p.b] = true, true
	b.remaining[p.a]--
	b.remaining[p.b]--
	b.chosen = append(b.chosen, i)
	if len(b.chosen)%b.perRound == 0 {
		clear(b.inRound)
	}
}

func (b *legBuilder) unplace() int {
	pos := len(b.chosen)
	if pos%b.perRound == 0 {
		for _, j := range b.chosen[pos-b.perRound:] {
			p := b.pairs[j]
			b.inRound[p.a], b.inRound[p.b] = true, true
		}
	}
	i := b.chosen[pos-1]
	b.chosen = b.chosen[:pos-1]
	p := b.pairs[i]
	b.used[i] = false
	b.inRound[p.a], b.inRound[p.b] = false, false
	b.remaining[p.a]++
	b.remaining[p.b]++
	return i
}

func (b *legBuilder) uncoveredMustPlay(left int) int {
	n := 0
	for t, rem := range b.remaining {
		if !b.inRound[t] && rem == left {
			n++
		}
	}
	return n
}

// freshen moves a match that shares no team with the previous match to the
// front of each round. The leg's first round keeps its seed.
func (b *legBuilder) freshen(rounds [][]pairing) {
	for r := 1; r < len(rounds); r++ {
		prev := rounds[r-1][len(rounds[r-1])-1]
		if !rounds[r][0].overlaps(prev) {
			continue
		}
		for k := 1; k < len(rounds[r]); k++ {
			if !rounds[r][k].overlaps(prev) {
				rounds[r][0], rounds[r][k] = rounds[r][k], rounds[r][0]
				b.freshenSwaps++
				break
			}
		}
	}
}

func (b *legBuilder) report(group, leg int) LegReport {
	seed := b.pairs[b.seed]
	return LegReport{
		Group:        group,
		Leg:          leg,
		FailedRounds: b.failedRounds,
		Steps:        b.steps,
		SeedPair:     [2]string{b.teams[seed.a], b.teams[seed.b]},
		Structured:   b.structured,
		FreshenSwaps: b.freshenSwaps,
	}
}

func allPairs(n int) []pairing {
	pairs := make([]pairing, 0, n*(n-1)/2)
	for a := 0; a < n; a++ {
		for b := a + 1; b < n; b++ {
			pairs = append(pairs, pairing{a, b})
		}
	}
	return pairs
}

// pickSeed returns the index of a random pair that contains a human team, or
// of any pair when there are no humans.
func pickSeed(pairs []pairing, humans []bool, rng *rand.Rand) int {
	candidates := make([]int, 0, len(pairs))
	for i, p := range pairs {
		if humans[p.a] || humans[p.b] {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return rng.Intn(len(pairs))
	}
	return candidates[rng.Intn(len(candidates))]
}

// circlePairs orders all pairs by the rounds of the circle method over a
// shuffled team order. The first round holds a human and its seed pair is
// moved to index 0.
func circlePairs(n int, humans []bool, rng *rand.Rand) []pairing {
	slots := rng.Perm(n)
	if n%2 == 1 {
		slots = append(slots, -1)
	}
	m := len(slots)

	rounds := make([][]pairing, 0, m-1)
	for r := 0; r < m-1; r++ {
		round := make([]pairing, 0, m/2)
		for i := 0; i < m/2; i++ {
			a, b := slots[i], slots[m-1-i]
			if a < 0 || b < 0 {
				continue
			}
			if a > b {
				a, b = b, a
			}
			round = append(round, pairing{a, b})
		}
		rng.Shuffle(len(round), func(i, j int) { round[i], round[j] = round[j], round[i] })
		rounds = append(rounds, round)

		last := slots[m-1]
		copy(slots[2:], slots[1:m-1])
		slots[1] = last
	}
	rng.Shuffle(len(rounds), func(i, j int) { rounds[i], rounds[j] = rounds[j], rounds[i] })

	for r, round := range rounds {
		if containsHuman(round, humans) {
			rounds[0], rounds[r] = rounds[r], rounds[0]
			break
		}
	}
	seed := pickSeed(rounds[0], humans, rng)
	rounds[0][0], rounds[0][seed] = rounds[0][seed], rounds[0][0]

	pairs := make([]pairing, 0, n*(n-1)/2)
	for _, round := range rounds {
		pairs = append(pairs, round...)
	}
	return pairs
}

func containsHuman(round []pairing, humans []bool) bool {
	for _, p := range round {
		if humans[p.a] || humans[p.b] {
			return true
		}
	}
	return false
}

func newScheduledMatch(matchDay int, needsWinner bool, teamA, teamB string, players []string) models.MatchInfo {
	m := models.NewMatchInfo(matchDay, needsWinner)
	m.SetTeam(0, teamA, HumanIndexOf(players, teamA))
	m.SetTeam(1, teamB, HumanIndexOf(players, teamB))
	return m
}

func firstHuman(m models.MatchInfo) string {
	for slot, isPlayer := range m.IsPlayer {
		if isPlayer {
			return m.TeamIDs[slot]
		}
	}
	return ""
}

// anchor is a human that opens a leg. From match index from on the team
// switches side on every appearance.
type anchor struct {
	team string
	from int
}

// alternateColumns orients every scheduled match. An anchor team takes the
// side opposite to its previous appearance, or the left without one. Any
// other match keeps the orientation with the shorter same-side run for its
// two teams.
func alternateColumns(matches []models.MatchInfo, anchors []anchor, explain *Explain) {
	anchoredFrom := make(map[string]int, len(anchors))
	for _, a := range anchors {
		if _, ok := anchoredFrom[a.team]; ok {
			continue
		}
		anchoredFrom[a.team] = a.from
		explain.Anchors = append(explain.Anchors, a.team)
	}

	sides := make(map[string][]int)
	for k := range matches {
		m := &matches[k]
		if !m.HasTeams() {
			continue
		}

		swap, anchored := false, false
		for slot, id := range m.TeamIDs {
			if from, ok := anchoredFrom[id]; !ok || k < from {
				continue
			}
			want := 0
			if hist := sides[id]; len(hist) > 0 {
				want = 1 - hist[len(hist)-1]
			}
			swap, anchored = want != slot, true
			break
		}
		if !anchored {
			a, b := sides[m.TeamIDs[0]], sides[m.TeamIDs[1]]
			keep := max(sideRun(a, 0), sideRun(b, 1))
			flip := max(sideRun(a, 1), sideRun(b, 0))
			swap = flip < keep
		}
		if swap {
			m.Swap()
			explain.OrientationSwaps++
		}
		sides[m.TeamIDs[0]] = append(sides[m.TeamIDs[0]], 0)
		sides[m.TeamIDs[1]] = append(sides[m.TeamIDs[1]], 1)
	}
}

// sideRun is the length of the same-side run a team reaches by playing its
// next match on side.
func sideRun(hist []int, side int) int {
	n := 1
	for i := len(hist) - 1; i >= 0 && hist[i] == side; i-- {
		n++
	}
	return n
}

func reportSideStreaks(matches []models.MatchInfo, players []string, explain *Explain) {
	for _, id := range players {
		longest, run, last := 0, 0, -1
		for _, m := range matches {
			slot := m.SlotOf(id)
			if slot < 0 {
				continue
			}
			if slot == last {
				run++
			} else {
				run, last = 1, slot
			}
			longest = max(longest, run)
		}
		if longest > 2 {
			explain.warnf("team %s plays %d matches in a row on the same side", id, longest)
		}
	}
}
