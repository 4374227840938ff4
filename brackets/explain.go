package brackets

import "fmt"

// LegReport describes how one round-robin leg was built.
type LegReport struct {
	Group        int       `json:"group"`
	Leg          int       `json:"leg"`
	FailedRounds int       `json:"failed_rounds"`
	Steps        int       `json:"steps"`
	SeedPair     [2]string `json:"seed_pair"`
	Structured   bool      `json:"structured"`
	FreshenSwaps int       `json:"freshen_swaps"`
}

// Explain is the scheduling report returned next to a generated bracket.
type Explain struct {
	Generator        string      `json:"generator"`
	Regenerations    int         `json:"regenerations"`
	Legs             []LegReport `json:"legs,omitempty"`
	Anchors          []string    `json:"anchors,omitempty"`
	OrientationSwaps int         `json:"orientation_swaps"`
	Warnings         []string    `json:"warnings,omitempty"`
}

func newExplain(generator string) *Explain {
	return &Explain{Generator: generator}
}

func (e *Explain) warnf(format string, args ...any) {
	e.Warnings = append(e.Warnings, fmt.Sprintf(format, args...))
}
