package capabilities

import (
	"fmt"
	"sort"
)

// URFCapabilities is the set of URF capability tokens a printer
// advertises in its urf-supported attribute (spec §6).
type URFCapabilities struct {
	ColorModes  []string // W8 (grayscale), SRGB24 (color)
	Duplex      []string // DM1 (simplex), DM3 (duplex-long), DM4 (duplex-short)
	Quality     []string // CP1-CP255 (print quality levels)
	Resolutions []int    // DPI values
}

// NewURFCapabilities derives URF capability tokens from a printer's
// parsed capabilities.
func NewURFCapabilities(c *Capabilities) *URFCapabilities {
	u := &URFCapabilities{
		ColorModes:  []string{"W8"},
		Duplex:      []string{"DM1"},
		Quality:     []string{"CP255"},
		Resolutions: c.Resolutions,
	}

	if c.ColorSupported {
		u.ColorModes = append(u.ColorModes, "SRGB24")
	}
	if c.DuplexSupported {
		u.Duplex = append(u.Duplex, "DM3", "DM4")
	}
	if len(u.Resolutions) == 0 {
		u.Resolutions = []int{300}
	}

	return u
}

// Values returns the urf-supported (1setOf keyword) attribute values:
// color modes, quality levels, a resolution range token, then duplex
// modes, each as a separate keyword value (spec §6).
func (u *URFCapabilities) Values() []string {
	var out []string
	out = append(out, u.ColorModes...)
	out = append(out, u.Quality...)
	out = append(out, u.resolutionString())
	out = append(out, u.Duplex...)
	return out
}

// resolutionString returns the RS token, e.g. "RS300" or "RS300-600".
func (u *URFCapabilities) resolutionString() string {
	if len(u.Resolutions) == 0 {
		return "RS300"
	}

	sorted := make([]int, len(u.Resolutions))
	copy(sorted, u.Resolutions)
	sort.Ints(sorted)

	unique := []int{sorted[0]}
	for i := 1; i < len(sorted); i++ {
		if sorted[i] != sorted[i-1] {
			unique = append(unique, sorted[i])
		}
	}

	if len(unique) == 1 {
		return fmt.Sprintf("RS%d", unique[0])
	}
	return fmt.Sprintf("RS%d-%d", unique[0], unique[len(unique)-1])
}

// DefaultURFCapabilities returns sensible defaults when printer
// information is unavailable.
func DefaultURFCapabilities() *URFCapabilities {
	return &URFCapabilities{
		ColorModes:  []string{"W8", "SRGB24"},
		Duplex:      []string{"DM1"},
		Quality:     []string{"CP255"},
		Resolutions: []int{300, 600},
	}
}
