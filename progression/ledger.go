package progression

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
)

var (
	ErrUnknownPerk     = errors.New("unknown perk")
	ErrLocked          = errors.New("perk requirement not met")
	ErrNoPoints        = errors.New("no upgrade points available")
	ErrAlreadyUnlocked = errors.New("perk already unlocked")
)

// Ledger tracks cumulative deliveries, milestone points and unlocked perks.
// It holds no references to simulation state; the world copies Perks() each tick.
type Ledger struct {
	total      float64
	next       float64
	multiplier float64
	points     int
	milestones int
	unlocked   map[PerkID]bool
	perks      Perks
}

// NewLedger creates a ledger whose first milestone is first and each
// following milestone is the previous one times multiplier.
func NewLedger(first, multiplier float64) *Ledger {
	if first <= 0 {
		first = 500
	}
	if multiplier <= 1 {
		multiplier = 2
	}
	return &Ledger{
		next:       first,
		multiplier: multiplier,
		unlocked:   make(map[PerkID]bool),
		perks:      BasePerks(),
	}
}

// Deposit adds delivered resource and returns how many milestones it crossed.
// Each crossed milestone grants one point.
func (l *Ledger) Deposit(amount float32) int {
	if amount <= 0 {
		return 0
	}
	l.total += float64(amount)
	crossed := 0
	for l.total >= l.next {
		l.next = math.Floor(l.next * l.multiplier)
		l.points++
		l.milestones++
		crossed++
	}
	return crossed
}

// Total returns the cumulative delivered amount.
func (l *Ledger) Total() float64 { return l.total }

// NextMilestone returns the total at which the next point is granted.
func (l *Ledger) NextMilestone() float64 { return l.next }

// Points returns unspent points.
func (l *Ledger) Points() int { return l.points }

// Milestones returns how many milestones have been reached.
func (l *Ledger) Milestones() int { return l.milestones }

// Perks returns the current multiplier record by value.
func (l *Ledger) Perks() Perks { return l.perks }

// Unlocked reports whether a perk has been bought.
func (l *Ledger) Unlocked(id PerkID) bool { return l.unlocked[id] }

// Available returns perks that are not yet unlocked and whose requirement is met.
func (l *Ledger) Available() []Perk {
	var out []Perk
	for _, p := range Catalog {
		if l.unlocked[p.ID] {
			continue
		}
		if p.Requires != "" && !l.unlocked[p.Requires] {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Choices offers up to n random available perks.
func (l *Ledger) Choices(rng *rand.Rand, n int) []Perk {
	avail := l.Available()
	rng.Shuffle(len(avail), func(i, j int) { avail[i], avail[j] = avail[j], avail[i] })
	if n < len(avail) {
		avail = avail[:n]
	}
	return avail
}

// Unlock spends one point on the given perk.
func (l *Ledger) Unlock(id PerkID) error {
	p, ok := Lookup(id)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPerk, id)
	}
	if l.unlocked[id] {
		return fmt.Errorf("%w: %s", ErrAlreadyUnlocked, id)
	}
	if p.Requires != "" && !l.unlocked[p.Requires] {
		return fmt.Errorf("%w: %s needs %s", ErrLocked, id, p.Requires)
	}
	if l.points <= 0 {
		return ErrNoPoints
	}

	l.points--
	l.unlocked[id] = true
	p.apply(&l.perks)
	return nil
}

// LogValue implements slog.LogValuer.
func (l *Ledger) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Float64("total", l.total),
		slog.Float64("next_milestone", l.next),
		slog.Int("milestones", l.milestones),
		slog.Int("points", l.points),
		slog.Int("unlocked", len(l.unlocked)),
	)
}
