package browser

import (
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// Simulator performs coarse human-like interaction on a page: incremental
// scrolling, pointer movement, an incidental UI toggle, and randomized
// pauses. Every delay and distance is drawn from a bounded range; fixed
// deterministic timing is itself a detection signal. The routine never
// fails the run, individual misses are swallowed and logged.
type Simulator struct {
	rng *rand.Rand
	log *slog.Logger

	// sleep is swappable so tests can run without real delays.
	sleep func(time.Duration)
}

// NewSimulator creates a Simulator. seed = 0 picks a time-based seed;
// any other value makes the interaction sequence reproducible.
func NewSimulator(seed int64, log *slog.Logger) *Simulator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Simulator{
		rng:   rand.New(rand.NewPCG(uint64(seed), 0)),
		log:   log,
		sleep: time.Sleep,
	}
}

// between returns a random value in [lo, hi).
func (s *Simulator) between(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + s.rng.IntN(hi-lo)
}

// Simulate runs the full interaction sequence. Errors from any sub-step
// are logged and swallowed.
func (s *Simulator) Simulate(page *rod.Page) {
	s.scroll(page)
	s.moveMouse(page)
	s.toggleFilter(page)

	// Trailing pause before extraction starts.
	s.sleep(time.Duration(s.between(500, 1500)) * time.Millisecond)
}

// scroll performs 3-6 incremental scrolls with randomized distance and
// inter-step delay, letting lazy content settle the way a reader would.
func (s *Simulator) scroll(page *rod.Page) {
	steps := s.between(3, 7)
	for i := 0; i < steps; i++ {
		dy := float64(s.between(200, 800))
		if err := page.Mouse.Scroll(0, dy, 1); err != nil {
			s.log.Debug("scroll step failed", "step", i, "error", err)
			return
		}
		s.sleep(time.Duration(s.between(200, 700)) * time.Millisecond)
	}
}

// moveMouse wanders the pointer to a few random points inside the viewport.
func (s *Simulator) moveMouse(page *rod.Page) {
	res, err := page.Eval(`() => ({ w: window.innerWidth, h: window.innerHeight })`)
	if err != nil {
		s.log.Debug("viewport probe failed", "error", err)
		return
	}
	w := res.Value.Get("w").Int()
	h := res.Value.Get("h").Int()
	if w < 2 || h < 2 {
		return
	}

	moves := s.between(2, 6)
	for i := 0; i < moves; i++ {
		x := float64(s.between(1, w))
		y := float64(s.between(1, h))
		if err := page.Mouse.MoveLinear(proto.Point{X: x, Y: y}, s.between(5, 15)); err != nil {
			s.log.Debug("mouse move failed", "step", i, "error", err)
			return
		}
		s.sleep(time.Duration(s.between(100, 400)) * time.Millisecond)
	}
}

// toggleFilter clicks a non-destructive filter control and reverts it.
// The control is optional; its absence is not an error.
func (s *Simulator) toggleFilter(page *rod.Page) {
	el, err := page.Timeout(2 * time.Second).Element(`button.fltr__mini-pill, .lst__search`)
	if err != nil {
		s.log.Debug("no toggleable control found, skipping")
		return
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		s.log.Debug("toggle click failed", "error", err)
		return
	}
	s.sleep(time.Duration(s.between(300, 800)) * time.Millisecond)
	// Revert so the list state is unchanged for extraction.
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		s.log.Debug("toggle revert failed", "error", err)
	}
}
