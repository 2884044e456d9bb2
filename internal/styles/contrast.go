package styles

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// minReadableRatio is the WCAG AA threshold for normal text.
const minReadableRatio = 4.5

// ReadableOn returns fg if it has enough contrast against bg,
// otherwise black or white, whichever reads better. Both arguments
// are hex colors.
func ReadableOn(fg, bg string) string {
	f, errF := colorful.Hex(fg)
	b, errB := colorful.Hex(bg)
	if errF != nil || errB != nil {
		return fg
	}
	if contrastRatio(f, b) >= minReadableRatio {
		return fg
	}
	black, _ := colorful.Hex("#000000")
	white, _ := colorful.Hex("#FFFFFF")
	if contrastRatio(black, b) >= contrastRatio(white, b) {
		return "#000000"
	}
	return "#FFFFFF"
}

func contrastRatio(fg, bg colorful.Color) float64 {
	l1 := relativeLuminance(fg)
	l2 := relativeLuminance(bg)
	if l1 < l2 {
		l1, l2 = l2, l1
	}
	return (l1 + 0.05) / (l2 + 0.05)
}

func relativeLuminance(c colorful.Color) float64 {
	r := linearize(c.R)
	g := linearize(c.G)
	b := linearize(c.B)
	return 0.2126*r + 0.7152*g + 0.0722*b
}

func linearize(v float64) float64 {
	if v <= 0.03928 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}
