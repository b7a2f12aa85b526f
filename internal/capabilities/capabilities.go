// Package capabilities turns a decoded Get-Printer-Attributes response
// into a Capabilities struct, and builds the urf-supported attribute
// value for a printer's own advertised capabilities.
package capabilities

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/WaffleThief123/ipprasterctl/internal/ipp"
)

// Capabilities summarizes the attributes a client cares about from a
// Get-Printer-Attributes response.
type Capabilities struct {
	Name            string
	MakeModel       string
	Location        string
	ColorSupported  bool
	DuplexSupported bool
	Resolutions     []int
	MediaSupported  []string
	MediaDefault    string
}

var resolutionPattern = regexp.MustCompile(`(\d+)(?:x(\d+))?dpi`)

// ParseResolutions extracts DPI values from IPP resolution strings.
// Formats: "300dpi", "600x600dpi", "300x600dpi".
func ParseResolutions(values []string) []int {
	seen := make(map[int]bool)
	var resolutions []int

	for _, v := range values {
		matches := resolutionPattern.FindStringSubmatch(strings.ToLower(v))
		if len(matches) < 2 {
			continue
		}
		if dpi, err := strconv.Atoi(matches[1]); err == nil && !seen[dpi] {
			seen[dpi] = true
			resolutions = append(resolutions, dpi)
		}
		if len(matches) >= 3 && matches[2] != "" {
			if dpi, err := strconv.Atoi(matches[2]); err == nil && !seen[dpi] {
				seen[dpi] = true
				resolutions = append(resolutions, dpi)
			}
		}
	}

	return resolutions
}

// ParseDuplexSupport checks whether a sides-supported value set
// indicates duplex capability.
func ParseDuplexSupport(values []string) bool {
	for _, v := range values {
		v = strings.ToLower(v)
		if strings.Contains(v, "two-sided") || v == "duplex" {
			return true
		}
	}
	return false
}

// FromGroup builds a Capabilities struct from a decoded printer
// attribute-group (spec §6 "client facade").
func FromGroup(g *ipp.Group) *Capabilities {
	c := &Capabilities{
		Name:      keywordOf(g, "printer-name"),
		MakeModel: keywordOf(g, "printer-make-and-model"),
		Location:  keywordOf(g, "printer-location"),
	}

	if a := g.Get("color-supported"); a != nil && len(a.Values) > 0 {
		c.ColorSupported = a.Values[0].Bool
	}

	if a := g.Get("sides-supported"); a != nil {
		c.DuplexSupported = ParseDuplexSupport(keywordsOf(a))
	}

	if a := g.Get("printer-resolution-supported"); a != nil {
		c.Resolutions = resolutionsFromValues(a)
	}

	if a := g.Get("media-supported"); a != nil {
		c.MediaSupported = keywordsOf(a)
	}
	c.MediaDefault = keywordOf(g, "media-default")

	return c
}

func keywordOf(g *ipp.Group, name string) string {
	a := g.Get(name)
	if a == nil || len(a.Values) == 0 {
		return ""
	}
	return a.Values[0].Text
}

func keywordsOf(a *ipp.Attribute) []string {
	out := make([]string, 0, len(a.Values))
	for _, v := range a.Values {
		out = append(out, v.Text)
	}
	return out
}

// resolutionsFromValues extracts DPI feed resolutions from a
// printer-resolution(1setOf resolution) attribute.
func resolutionsFromValues(a *ipp.Attribute) []int {
	seen := make(map[int]bool)
	var out []int
	for _, v := range a.Values {
		dpi := int(v.Res.Feed)
		if dpi != 0 && !seen[dpi] {
			seen[dpi] = true
			out = append(out, dpi)
		}
	}
	return out
}

// GetDefaultResolution returns a sensible default resolution from
// available options.
func GetDefaultResolution(resolutions []int) int {
	if len(resolutions) == 0 {
		return 300
	}

	for _, dpi := range resolutions {
		if dpi == 300 || dpi == 600 {
			return dpi
		}
	}

	max := resolutions[0]
	for _, dpi := range resolutions[1:] {
		if dpi > max {
			max = dpi
		}
	}
	return max
}
