package game

// Options configures the graphical frontend.
type Options struct {
	Title       string
	EffectLimit int // maximum live effects, 0 = unlimited
	MaxSpeed    int // highest tick multiplier reachable with the speed keys
}

// DefaultOptions returns the default frontend options.
func DefaultOptions() Options {
	return Options{
		Title:       "nodlets",
		EffectLimit: 2048,
		MaxSpeed:    10,
	}
}
