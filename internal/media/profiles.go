// Package media holds printer media-size profiles and builds the IPP
// media-col collection attribute and PWG page-size-name values derived
// from them.
package media

import "strings"

// Size pairs a PWG-standardized media name with its width/height in
// hundredths of a millimeter (the unit IPP's x-dimension/y-dimension
// members use) and a human-readable description.
type Size struct {
	Name               string
	WidthHundredthsMM  int
	HeightHundredthsMM int
	Description        string
}

// Profile defines the media sizes available on a specific printer model.
type Profile struct {
	Name         string
	ModelMatch   []string
	Sizes        []Size
	DefaultMedia string
}

var builtinProfiles = []Profile{
	{
		Name:       "zebra-4x6",
		ModelMatch: []string{"Zebra", "ZPL"},
		Sizes: []Size{
			{"oe_4x6-label_4x6in", 10160, 15240, "4x6 inch shipping label"},
			{"oe_4x4-label_4x4in", 10160, 10160, "4x4 inch square label"},
			{"oe_4x3-label_4x3in", 10160, 7620, "4x3 inch label"},
			{"oe_4x2-label_4x2in", 10160, 5080, "4x2 inch label"},
			{"oe_2.25x1.25-label_2.25x1.25in", 5715, 3175, "2.25x1.25 inch barcode label"},
		},
		DefaultMedia: "oe_4x6-label_4x6in",
	},
	{
		Name:       "dymo-labelwriter",
		ModelMatch: []string{"DYMO", "LabelWriter"},
		Sizes: []Size{
			{"oe_w167h288_30256", 5867, 10160, "Shipping label 2.31\" x 4\" (#30256)"},
			{"oe_w79h252_30252", 2845, 8890, "Address label 1.12\" x 3.5\" (#30252)"},
			{"oe_w101h252_30320", 3556, 8890, "Address label 1.4\" x 3.5\" (#30320)"},
			{"oe_w54h144_30330", 1905, 5080, "Return address 0.75\" x 2\" (#30330)"},
			{"oe_w162h90_30323", 5385, 3175, "Shipping label 2.12\" x 1.25\" (#30323)"},
		},
		DefaultMedia: "oe_w167h288_30256",
	},
	{
		Name:       "brother-ql",
		ModelMatch: []string{"Brother", "QL-"},
		Sizes: []Size{
			{"oe_62x100mm_62x100mm", 6200, 10000, "62x100mm shipping label"},
			{"oe_62x29mm_62x29mm", 6200, 2900, "62x29mm address label"},
			{"oe_29x90mm_29x90mm", 2900, 9000, "29x90mm narrow label"},
			{"oe_17x54mm_17x54mm", 1700, 5400, "17x54mm small label"},
			{"oe_12mm_12mm", 1200, 1200, "12mm continuous tape"},
		},
		DefaultMedia: "oe_62x100mm_62x100mm",
	},
	{
		Name:       "rollo",
		ModelMatch: []string{"Rollo"},
		Sizes: []Size{
			{"oe_4x6-label_4x6in", 10160, 15240, "4x6 inch shipping label"},
			{"oe_4x4-label_4x4in", 10160, 10160, "4x4 inch square label"},
			{"oe_4x2-label_4x2in", 10160, 5080, "4x2 inch label"},
		},
		DefaultMedia: "oe_4x6-label_4x6in",
	},
}

// Registry manages media profiles.
type Registry struct {
	profiles []Profile
	custom   map[string]Profile
}

// NewRegistry creates a registry preloaded with the builtin profiles.
func NewRegistry() *Registry {
	return &Registry{
		profiles: append([]Profile(nil), builtinProfiles...),
		custom:   make(map[string]Profile),
	}
}

// AddProfile adds a custom profile to the registry.
func (r *Registry) AddProfile(p Profile) {
	r.profiles = append(r.profiles, p)
}

// SetCustom pins a profile to a specific printer name.
func (r *Registry) SetCustom(printerName string, p Profile) {
	r.custom[printerName] = p
}

// GetProfile finds the best matching profile for a printer: a custom
// pin by name first, then a model-match, else nil.
func (r *Registry) GetProfile(printerName, makeModel string) *Profile {
	if p, ok := r.custom[printerName]; ok {
		return &p
	}

	makeModelLower := strings.ToLower(makeModel)
	for i := range r.profiles {
		for _, match := range r.profiles[i].ModelMatch {
			if strings.Contains(makeModelLower, strings.ToLower(match)) {
				return &r.profiles[i]
			}
		}
	}

	return nil
}

// GetProfileByName finds a profile by its registry name.
func (r *Registry) GetProfileByName(name string) *Profile {
	for i := range r.profiles {
		if r.profiles[i].Name == name {
			return &r.profiles[i]
		}
	}
	return nil
}

// ListProfiles returns all registered profile names.
func (r *Registry) ListProfiles() []string {
	names := make([]string, len(r.profiles))
	for i, p := range r.profiles {
		names[i] = p.Name
	}
	return names
}

// MediaNames returns just the IPP media names from the profile.
func (p *Profile) MediaNames() []string {
	names := make([]string, len(p.Sizes))
	for i, s := range p.Sizes {
		names[i] = s.Name
	}
	return names
}

// SizeByName finds a Size within the profile by its IPP media name.
func (p *Profile) SizeByName(name string) *Size {
	for i := range p.Sizes {
		if p.Sizes[i].Name == name {
			return &p.Sizes[i]
		}
	}
	return nil
}
