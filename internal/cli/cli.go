// Package cli implements the dripctl command.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"

	"golang.org/x/text/language"

	"dripcalc/internal/config"
	"dripcalc/internal/dosing"
	"dripcalc/internal/models"
	"dripcalc/internal/render"
)

// Config holds the parsed command line.
type Config struct {
	Protocol config.ProtocolConfig

	// Initial is set when an initial dose was requested
	Initial *float64
	Reading models.Reading

	JSON    bool
	Explain bool
}

// ParseConfig parses args. Protocol defaults come from the optional -config
// file and DRIP_* environment variables; flags override both.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var (
		cfg        Config
		configPath string
		initial    float64
		policy     string
		low, high  float64
	)

	fs.StringVar(&configPath, "config", "", "path to YAML config file")
	fs.StringVar(&policy, "policy", "", "dosing policy: yale, simple or yale-hourly")
	fs.Float64Var(&cfg.Reading.PreviousBG, "prev", 0, "previous blood glucose, mg/dL")
	fs.Float64Var(&cfg.Reading.CurrentBG, "cur", 0, "current blood glucose, mg/dL")
	fs.Float64Var(&cfg.Reading.CurrentRate, "rate", 0, "current infusion rate, U/hr")
	fs.Float64Var(&cfg.Reading.HoursElapsed, "hours", 0, "hours since the previous reading (yale-hourly)")
	fs.Float64Var(&initial, "initial", 0, "initial blood glucose; computes the starting bolus and rate")
	fs.Float64Var(&low, "target-low", 0, "target range low bound for the simple policy")
	fs.Float64Var(&high, "target-high", 0, "target range high bound for the simple policy")
	fs.BoolVar(&cfg.JSON, "json", false, "print JSON instead of text")
	fs.BoolVar(&cfg.Explain, "explain", false, "print the protocol steps behind the decision")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	base, err := config.Load(configPath)
	if err != nil {
		return Config{}, err
	}
	cfg.Protocol = base.Protocol
	if set["policy"] {
		cfg.Protocol.Policy = policy
	}
	if set["target-low"] {
		cfg.Protocol.TargetLow = low
	}
	if set["target-high"] {
		cfg.Protocol.TargetHigh = high
	}

	if set["initial"] {
		cfg.Initial = &initial
		return cfg, nil
	}

	for _, name := range []string{"prev", "cur", "rate"} {
		if !set[name] {
			return Config{}, fmt.Errorf("-%s is required (or use -initial)", name)
		}
	}
	return cfg, nil
}

// Run computes the requested dose or decision and writes it to out.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r := render.New(language.English)

	if cfg.Initial != nil {
		dose, err := dosing.InitialDose(models.InitialReading{InitialBG: *cfg.Initial})
		if err != nil {
			return err
		}
		if cfg.JSON {
			return writeJSON(out, dose)
		}
		return render.Write(out, r.InitialDose(dose))
	}

	reg, err := cfg.Protocol.Registry()
	if err != nil {
		return err
	}
	policy, err := reg.Lookup(cfg.Protocol.Policy)
	if err != nil {
		return err
	}

	d, err := policy.Decide(cfg.Reading)
	if err != nil {
		if errors.Is(err, models.ErrInvalidInput) {
			return fmt.Errorf("reading rejected: %w", err)
		}
		return err
	}

	if cfg.JSON {
		return writeJSON(out, d)
	}

	lines := r.Decision(d)
	if cfg.Explain {
		for _, step := range d.Reasoning {
			lines = append(lines, render.Line{Style: render.StyleInfo, Text: step})
		}
	}
	return render.Write(out, lines)
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
