// Package ipfplot renders IPF fit diagnostics — convergence curves and
// factor heatmaps — as gonum.org/v1/plot plots, adapted from causalgo's
// pkg/visualization SURD bar-chart renderer.
package ipfplot

import "image/color"

// Colors defines the color scheme for IPF diagnostic plots.
var Colors = map[string]color.RGBA{
	"convergence": {R: 77, G: 121, B: 167, A: 255},  // #4D79A7
	"tolerance":   {R: 225, G: 87, B: 89, A: 255},    // #E15759
	"border":      {R: 0, G: 0, B: 0, A: 255},        // black
	"grid":        {R: 200, G: 200, B: 200, A: 255},  // light gray
}

// GetColor returns the color for a named plot element, falling back to
// gray for an unknown name.
func GetColor(name string) color.RGBA {
	if c, ok := Colors[name]; ok {
		return c
	}
	return color.RGBA{R: 128, G: 128, B: 128, A: 255}
}

// LightenColor lightens an RGB color by factor (0.0-1.0). factor=0
// returns the original color, factor=1 returns white.
func LightenColor(c color.RGBA, factor float64) color.RGBA {
	if factor < 0 {
		factor = 0
	}
	if factor > 1 {
		factor = 1
	}
	lighten := func(component uint8) uint8 {
		f := float64(component) / 255.0
		lightened := f + (1.0-f)*factor
		return uint8(lightened * 255.0)
	}
	return color.RGBA{R: lighten(c.R), G: lighten(c.G), B: lighten(c.B), A: c.A}
}
