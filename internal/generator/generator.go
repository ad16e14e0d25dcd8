package generator

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/NaePawat/zentry-backend-challenge/internal/model"
)

var adjectives = []string{
	"brave", "calm", "eager", "fuzzy", "gentle", "happy", "jolly", "keen",
	"lucky", "mellow", "nifty", "proud", "quick", "shiny", "witty", "zesty",
}

var nouns = []string{
	"falcon", "otter", "panda", "maple", "comet", "ember", "harbor", "island",
	"lantern", "meadow", "nebula", "orchid", "pebble", "quartz", "ridge", "willow",
}

// Generator produces batches of synthetic social-graph events. It keeps a
// growing pool of usernames it has already issued, so dependent events
// usually reference real users but are free to collide with existing edges
// or, occasionally, reference users that never registered. The pipeline's
// idempotency checks exist precisely because no guarantee is made here.
//
// Safe for concurrent use; batches are restartable across ticks.
type Generator struct {
	mu    sync.Mutex
	rng   *rand.Rand
	known []string
	seq   int
}

func New(seed uint64) *Generator {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Generator{
		rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

func (g *Generator) NextBatch(count int) []model.Event {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := time.Now().UTC()
	events := make([]model.Event, 0, count)
	for i := 0; i < count; i++ {
		events = append(events, g.next(now))
	}
	return events
}

func (g *Generator) next(now time.Time) model.Event {
	roll := g.rng.Float64()
	switch {
	case roll < 0.5 || len(g.known) < 2:
		name := g.nextUsername()
		g.known = append(g.known, name)
		return model.Event{Type: model.EventRegister, Name: name, CreatedAt: now}
	case roll < 0.75:
		a, b := g.pickPair()
		return model.Event{Type: model.EventAddFriend, User1Name: a, User2Name: b, CreatedAt: now}
	case roll < 0.9:
		a, b := g.pickPair()
		return model.Event{Type: model.EventUnfriend, User1Name: a, User2Name: b, CreatedAt: now}
	default:
		referred, referrer := g.pickPair()
		return model.Event{Type: model.EventReferral, User: referred, ReferredBy: referrer, CreatedAt: now}
	}
}

// nextUsername is unique per generator except for a small duplicate rate that
// exercises the register handler's conflict path.
func (g *Generator) nextUsername() string {
	if len(g.known) > 0 && g.rng.Float64() < 0.02 {
		return g.pickName()
	}
	g.seq++
	return fmt.Sprintf("%s_%s_%d",
		adjectives[g.rng.IntN(len(adjectives))],
		nouns[g.rng.IntN(len(nouns))],
		g.seq)
}

func (g *Generator) pickName() string {
	return g.known[g.rng.IntN(len(g.known))]
}

func (g *Generator) pickPair() (string, string) {
	a := g.pickName()
	b := g.pickName()
	// The pool can hold repeated names, so retries are bounded.
	for i := 0; b == a && i < 8; i++ {
		b = g.pickName()
	}
	return a, b
}
