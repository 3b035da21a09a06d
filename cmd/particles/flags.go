package main

import (
	"github.com/gekko3d/particles/config"
	"github.com/spf13/pflag"
)

// options are command-line overrides. Only flags the user actually set
// replace values from the config file.
type options struct {
	configPath string
	count      int
	spread     float64
	seed       int64
	speed      float64
	debug      bool
	alphaMap   string
	font       string
	text       string
}

func (o *options) register(fs *pflag.FlagSet) {
	fs.StringVar(&o.configPath, "config", "", "config file path (yaml)")
	fs.IntVar(&o.count, "count", config.DefaultCount, "number of particles")
	fs.Float64Var(&o.spread, "spread", config.DefaultSpread, "half width of the particle cube")
	fs.Int64Var(&o.seed, "seed", 0, "random seed (0 seeds from the clock)")
	fs.Float64Var(&o.speed, "speed", config.DefaultAngularSpeed, "rotation speed in radians per second")
	fs.BoolVar(&o.debug, "debug", false, "log debug output and overlay a frame profile refreshed every second")
	fs.StringVar(&o.alphaMap, "alpha-map", "", "alpha mask image for each point")
	fs.StringVar(&o.font, "font", "", "TTF/OTF font file (default: Go Regular)")
	fs.StringVar(&o.text, "text", config.DefaultText, "text shown in the middle of the field; empty disables it")
}

func (o *options) resolve(fs *pflag.FlagSet) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if o.configPath != "" {
		var err error
		if cfg, err = config.Load(o.configPath); err != nil {
			return nil, err
		}
	}

	if fs.Changed("count") {
		cfg.Particles.Count = o.count
	}
	if fs.Changed("spread") {
		cfg.Particles.Spread = o.spread
	}
	if fs.Changed("seed") {
		cfg.Particles.Seed = o.seed
	}
	if fs.Changed("speed") {
		cfg.Animation.AngularSpeed = o.speed
	}
	if fs.Changed("debug") {
		cfg.Debug = o.debug
	}
	if fs.Changed("alpha-map") {
		cfg.Assets.AlphaMap = o.alphaMap
	}
	if fs.Changed("font") {
		cfg.Text.Font = o.font
	}
	if fs.Changed("text") {
		cfg.Text.Content = o.text
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
