package systems

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pthm-cable/nodlets/config"
	"github.com/pthm-cable/nodlets/progression"
	"github.com/pthm-cable/nodlets/store"
)

func TestReplenishAndSync(t *testing.T) {
	agents, hubs, _ := newStores()
	h := hubs.Spawn(store.Hub{X: 500, Y: 500, Size: 40, BaseInfluence: 200, TargetPop: 3})
	pop := NewPopulation(SpawnParamsFrom(config.Default()))
	rng := rand.New(rand.NewSource(1))
	perks := progression.BasePerks()

	for tick := 0; tick < 10; tick++ {
		SyncHubs(agents, hubs, perks)
		pop.Replenish(agents, hubs, rng, perks)
	}
	if agents.Count() != 3 {
		t.Fatalf("count = %d, want 3", agents.Count())
	}
	for i := 0; i < agents.Count(); i++ {
		d := math.Hypot(float64(agents.X[i]-500), float64(agents.Y[i]-500))
		if math.Abs(d-40) > 1e-3 {
			t.Errorf("agent %d spawned at distance %v, want perimeter 40", i, d)
		}
		if agents.Hub[i] != int32(h) || agents.Carried[i] != 0 {
			t.Errorf("agent %d = %+v", i, agents.Row(i))
		}
	}

	perks.CapacityBonus = 2
	perks.InfluenceBonus = 50
	for tick := 0; tick < 10; tick++ {
		SyncHubs(agents, hubs, perks)
		pop.Replenish(agents, hubs, rng, perks)
	}
	if agents.Count() != 5 {
		t.Errorf("count with bonus = %d, want 5", agents.Count())
	}
	if hubs.Influence[h] != 250 {
		t.Errorf("influence = %v, want 250", hubs.Influence[h])
	}
}

func TestReplenishPacedPerTick(t *testing.T) {
	agents, hubs, _ := newStores()
	hubs.Spawn(store.Hub{X: 500, Y: 500, Size: 40, BaseInfluence: 200, TargetPop: 10})
	pop := NewPopulation(SpawnParams{SpawnPerTick: 2, MinCapacity: 10, MaxCapacity: 10})

	SyncHubs(agents, hubs, progression.BasePerks())
	if n := pop.Replenish(agents, hubs, rand.New(rand.NewSource(1)), progression.BasePerks()); n != 2 {
		t.Errorf("spawned = %d, want 2", n)
	}
}

func TestReplenishStopsWhenStoreFull(t *testing.T) {
	agents := store.NewAgentStore(2, 1000, 1000, 100)
	hubs := store.NewHubStore(2)
	hubs.Spawn(store.Hub{X: 500, Y: 500, Size: 40, BaseInfluence: 200, TargetPop: 5})
	pop := NewPopulation(SpawnParams{SpawnPerTick: 5})

	SyncHubs(agents, hubs, progression.BasePerks())
	if n := pop.Replenish(agents, hubs, rand.New(rand.NewSource(1)), progression.BasePerks()); n != 2 {
		t.Errorf("spawned = %d, want 2", n)
	}
}

func TestAgeAndDespawn(t *testing.T) {
	agents, hubs, _ := newStores()
	hubs.Spawn(store.Hub{X: 500, Y: 500, Size: 40, BaseInfluence: 200})
	for k := 0; k < 4; k++ {
		a := seeker(0, 500, 500)
		a.Color = uint32(k)
		if k%2 == 0 {
			a.Lifespan = 1
		}
		agents.Spawn(a)
	}
	pop := NewPopulation(SpawnParams{})

	if dead := pop.Age(agents, 0.6); len(dead) != 0 {
		t.Fatalf("dead early: %v", dead)
	}
	dead := pop.Age(agents, 0.6)
	if len(dead) != 2 || dead[0] != 0 || dead[1] != 2 {
		t.Fatalf("dead = %v, want [0 2]", dead)
	}
	Despawn(agents, append(dead, 0))

	if agents.Count() != 2 {
		t.Fatalf("count = %d, want 2", agents.Count())
	}
	for i := 0; i < agents.Count(); i++ {
		if agents.Color[i]%2 == 0 {
			t.Errorf("mortal agent %d survived", agents.Color[i])
		}
	}
}

func TestContain(t *testing.T) {
	agents, hubs, _ := newStores()
	h := hubs.Spawn(store.Hub{X: 500, Y: 500, Size: 40, BaseInfluence: 100})

	out := seeker(h, 600.5, 500)
	out.VX, out.VY = 10, 3
	a := agents.Spawn(out)

	inward := seeker(h, 500, 600.25)
	inward.VY = -4
	b := agents.Spawn(inward)

	inside := seeker(h, 550, 550)
	inside.VX = 99
	c := agents.Spawn(inside)

	if n := Contain(agents, hubs, 0.5); n != 2 {
		t.Errorf("clamped = %d, want 2", n)
	}

	tests := []struct {
		name   string
		i      int
		wantVX float32
		wantVY float32
	}{
		{"outward reflected", a, -5, 3},
		{"already inward", b, 0, -4},
		{"inside untouched", c, 99, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := math.Hypot(float64(agents.X[tt.i]-500), float64(agents.Y[tt.i]-500))
			if d > 100+1e-3 {
				t.Errorf("distance %v exceeds influence", d)
			}
			if math.Abs(float64(agents.VX[tt.i]-tt.wantVX)) > 1e-4 || math.Abs(float64(agents.VY[tt.i]-tt.wantVY)) > 1e-4 {
				t.Errorf("velocity = (%v, %v), want (%v, %v)", agents.VX[tt.i], agents.VY[tt.i], tt.wantVX, tt.wantVY)
			}
		})
	}

	if math.Abs(float64(agents.X[a]-600)) > 1e-3 {
		t.Errorf("clamped x = %v, want 600", agents.X[a])
	}
}
