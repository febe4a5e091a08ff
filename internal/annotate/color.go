package annotate

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/screentools/screenshot-mcp/internal/fault"
)

// namedColors covers the CSS color names accepted for annotation styling.
var namedColors = map[string]color.NRGBA{
	"black":   {0, 0, 0, 255},
	"white":   {255, 255, 255, 255},
	"red":     {255, 0, 0, 255},
	"green":   {0, 128, 0, 255},
	"lime":    {0, 255, 0, 255},
	"blue":    {0, 0, 255, 255},
	"yellow":  {255, 255, 0, 255},
	"orange":  {255, 165, 0, 255},
	"purple":  {128, 0, 128, 255},
	"violet":  {238, 130, 238, 255},
	"indigo":  {75, 0, 130, 255},
	"cyan":    {0, 255, 255, 255},
	"magenta": {255, 0, 255, 255},
	"pink":    {255, 192, 203, 255},
	"brown":   {165, 42, 42, 255},
	"gray":    {128, 128, 128, 255},
	"grey":    {128, 128, 128, 255},
	"silver":  {192, 192, 192, 255},
	"gold":    {255, 215, 0, 255},
	"navy":    {0, 0, 128, 255},
	"teal":    {0, 128, 128, 255},
	"olive":   {128, 128, 0, 255},
	"maroon":  {128, 0, 0, 255},
	"coral":   {255, 127, 80, 255},
	"salmon":  {250, 128, 114, 255},
}

// ResolveColor converts a named color or hex string ("#RGB", "#RRGGBB",
// "#RRGGBBAA") to an NRGBA value.
func ResolveColor(s string) (color.NRGBA, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if c, ok := namedColors[name]; ok {
		return c, nil
	}

	hex := name
	alpha := uint8(255)
	if strings.HasPrefix(hex, "#") && len(hex) == 9 {
		var a uint8
		if _, err := fmt.Sscanf(hex[7:9], "%02x", &a); err != nil {
			return color.NRGBA{}, fault.New(fault.InvalidArgument, "cannot resolve color %q", s)
		}
		alpha = a
		hex = hex[:7]
	}

	c, err := colorful.Hex(hex)
	if err != nil {
		return color.NRGBA{}, fault.New(fault.InvalidArgument, "cannot resolve color %q", s)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: alpha}, nil
}

// ResolveFill converts an optional box fill color. An empty string means
// no fill. Six-digit hex fills are made semi-transparent; named colors
// and explicit-alpha hex values keep their alpha as given.
func ResolveFill(s string) (*color.NRGBA, error) {
	if s == "" {
		return nil, nil
	}
	c, err := ResolveColor(s)
	if err != nil {
		return nil, err
	}
	if hex := strings.TrimSpace(s); strings.HasPrefix(hex, "#") && len(hex) == 7 {
		c.A = fillAlpha
	}
	return &c, nil
}
