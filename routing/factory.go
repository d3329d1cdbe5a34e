package routing

import (
	"fmt"

	"github.com/spf13/cast"
)

// Names lists the known routing protocols.
var Names = []string{
	"direct", "epidemic", "sprayandwait", "prophet", "twohop", "firstcontact",
}

// Config selects a routing protocol. Profile holds protocol specific keys.
type Config struct {
	Name    string
	Profile map[string]string
}

// New creates the router of one node.
func New(cfg Config, s *Support) (Routing, error) {
	switch cfg.Name {
	case "direct":
		return NewDirect(s), nil
	case "", "epidemic":
		return NewEpidemic(s), nil
	case "sprayandwait":
		binary, err := profileBool(cfg.Profile, "binary", true)
		if err != nil {
			return nil, err
		}

		return NewSprayAndWait(s, binary), nil
	case "prophet":
		params, err := prophetParams(cfg.Profile)
		if err != nil {
			return nil, err
		}

		return NewProphet(s, params), nil
	case "twohop":
		return NewTwoHop(s), nil
	case "firstcontact":
		return NewFirstContact(s), nil
	default:
		return nil, fmt.Errorf("unknown routing protocol %q", cfg.Name)
	}
}

// ValidateConfig checks a routing configuration without creating a router.
func ValidateConfig(cfg Config) error {
	switch cfg.Name {
	case "sprayandwait":
		_, err := profileBool(cfg.Profile, "binary", true)
		return err
	case "prophet":
		_, err := prophetParams(cfg.Profile)
		return err
	}

	for _, n := range Names {
		if cfg.Name == n || cfg.Name == "" {
			return nil
		}
	}

	return fmt.Errorf("unknown routing protocol %q", cfg.Name)
}

func profileBool(profile map[string]string, key string, def bool) (bool, error) {
	v, ok := profile[key]
	if !ok {
		return def, nil
	}

	b, err := cast.ToBoolE(v)
	if err != nil {
		return false, fmt.Errorf("profile key %s: %w", key, err)
	}

	return b, nil
}

func profileFloat(
	profile map[string]string,
	key string,
	def float64,
	lo, hi float64,
) (float64, error) {
	v, ok := profile[key]
	if !ok {
		return def, nil
	}

	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, fmt.Errorf("profile key %s: %w", key, err)
	}

	if f < lo || f > hi {
		return 0, fmt.Errorf("profile key %s: %v not in [%v, %v]", key, f, lo, hi)
	}

	return f, nil
}

func prophetParams(profile map[string]string) (ProphetParams, error) {
	p := DefaultProphetParams()

	var err error

	if p.PInit, err = profileFloat(profile, "p_init", p.PInit, 0, 1); err != nil {
		return p, err
	}

	if p.Beta, err = profileFloat(profile, "beta", p.Beta, 0, 1); err != nil {
		return p, err
	}

	if p.Gamma, err = profileFloat(profile, "gamma", p.Gamma, 0, 1); err != nil {
		return p, err
	}

	p.AgingUnit, err = profileFloat(profile, "aging_unit", p.AgingUnit, 0, 1e12)

	return p, err
}
