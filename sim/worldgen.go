package sim

import (
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/pthm-cable/nodlets/store"
)

// candidatesPerGenerator is how many noise samples compete for each generator slot.
const candidatesPerGenerator = 24

// Generate places hubs from config, generators on noise peaks and relays
// scattered around each generator. Half of the generators are drawn inside
// hub influence so every hub starts with something to forage.
func (w *World) Generate(seed int64) {
	cfg := w.cfg
	for _, p := range cfg.Hubs.Positions {
		w.AddHub(float32(p[0]), float32(p[1]))
	}

	noise := opensimplex.NewNormalized(seed)
	ww, wh := cfg.World.Width, cfg.World.Height
	margin := math.Min(ww, wh) * 0.05
	eco := cfg.Economy

	for g := 0; g < eco.Generators; g++ {
		bestX, bestY, best := 0.0, 0.0, -1.0
		for k := 0; k < candidatesPerGenerator; k++ {
			var x, y float64
			if w.hubs.Count() > 0 && g%2 == 0 {
				h := (g / 2) % w.hubs.Count()
				angle := w.rng.Float64() * 2 * math.Pi
				r := float64(w.hubs.Influence[h]) * 0.85 * math.Sqrt(w.rng.Float64())
				x = float64(w.hubs.X[h]) + math.Cos(angle)*r
				y = float64(w.hubs.Y[h]) + math.Sin(angle)*r
			} else {
				x = margin + w.rng.Float64()*(ww-2*margin)
				y = margin + w.rng.Float64()*(wh-2*margin)
			}
			x = clamp(x, margin, ww-margin)
			y = clamp(y, margin, wh-margin)

			if v := octaveNoise(noise, x, y, cfg.World.NoiseOctaves, cfg.World.NoiseScale, 0.5); v > best {
				bestX, bestY, best = x, y, v
			}
		}

		gi := w.nodes.SpawnGenerator(float32(bestX), float32(bestY),
			float32(eco.GeneratorAmount), float32(eco.GeneratorAmount), float32(eco.GeneratorRegen))
		if gi == store.Invalid {
			return
		}
		// Stagger emission so generators do not all fire on the same tick.
		w.nodes.EmitTimer[gi] = float32(w.rng.Float64() * eco.EmitInterval)

		for r := 0; r < eco.RelaysPerGenerator; r++ {
			angle := w.rng.Float64() * 2 * math.Pi
			dist := eco.RelaySpread * (0.5 + 0.5*w.rng.Float64())
			x := clamp(bestX+math.Cos(angle)*dist, margin, ww-margin)
			y := clamp(bestY+math.Sin(angle)*dist, margin, wh-margin)
			if w.nodes.SpawnRelay(float32(x), float32(y),
				float32(eco.RelayAmount), float32(eco.RelayAmount), float32(eco.RelayRegen)) == store.Invalid {
				return
			}
		}
	}
	w.nodes.RebuildGridIfDirty()
}

// octaveNoise returns fractal noise normalized to [0, 1].
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	if octaves < 1 {
		octaves = 1
	}
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
