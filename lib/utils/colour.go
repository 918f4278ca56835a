package utils

import (
	"fmt"
	"image/color"
	"regexp"

	yaml "github.com/goccy/go-yaml"
)

var colourRe = regexp.MustCompile(`^#[0-9A-Fa-f]{8}$`)

// Colour is a normalised RGBA colour as GL consumes it.
type Colour struct {
	R, G, B, A float32
}

func ColourValidate(c string) bool {
	return colourRe.MatchString(c)
}

func ColourParse(s string) (c color.RGBA) {
	fmt.Sscanf(s, "#%02x%02x%02x%02x", &c.R, &c.G, &c.B, &c.A)
	return
}

func ColourFromRGBA(c color.RGBA) Colour {
	return Colour{
		R: float32(c.R) / 255,
		G: float32(c.G) / 255,
		B: float32(c.B) / 255,
		A: float32(c.A) / 255,
	}
}

// UnmarshalYAML accepts either a "#rrggbbaa" string or a list of four
// floats in [0, 1].
func (c *Colour) UnmarshalYAML(b []byte) error {
	var raw any
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case string:
		if !ColourValidate(v) {
			return fmt.Errorf("%s is not a valid RGBA hex colour", v)
		}
		*c = ColourFromRGBA(ColourParse(v))
		return nil
	case []any:
		if len(v) != 4 {
			return fmt.Errorf("colour needs four components, got %d", len(v))
		}
		var components [4]float32
		for i, e := range v {
			f, ok := toFloat(e)
			if !ok {
				return fmt.Errorf("colour component %v is not a number", e)
			}
			components[i] = f
		}
		*c = Colour{R: components[0], G: components[1], B: components[2], A: components[3]}
		return c.Validate()
	default:
		return fmt.Errorf("colour must be a hex string or a list of four floats")
	}
}

func toFloat(v any) (float32, bool) {
	switch n := v.(type) {
	case float64:
		return float32(n), true
	case float32:
		return n, true
	case int:
		return float32(n), true
	case int64:
		return float32(n), true
	case uint64:
		return float32(n), true
	default:
		return 0, false
	}
}

func (c Colour) Validate() error {
	for _, v := range []float32{c.R, c.G, c.B, c.A} {
		if v < 0 || v > 1 {
			return fmt.Errorf("colour component %v is outside [0, 1]", v)
		}
	}
	return nil
}

func (c Colour) String() string {
	return fmt.Sprintf("(%g, %g, %g, %g)", c.R, c.G, c.B, c.A)
}
