package services

import "math/rand"

// stream names one sequence of random draws derived from the tournament
// seed. Each consumer owns its stream so a restored tournament replays the
// same draws regardless of what ran before it.
type stream uint64

const (
	streamAiLevels stream = iota + 1
	streamTeams
	streamSchedule
	streamStandings
	streamFields
	streamAiResults
)

// splitmix64 finalizer.
func mix(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

func newStream(seed int64, s stream, index int) *rand.Rand {
	x := mix(uint64(seed)) ^ mix(uint64(s)<<32|uint64(uint32(index)))
	return rand.New(rand.NewSource(int64(mix(x))))
}
