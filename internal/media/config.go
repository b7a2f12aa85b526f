package media

// ConfigOverride is a per-printer media configuration loaded from a
// config file (spec §6, cmd/ipprasterctl's YAML config layer).
type ConfigOverride struct {
	PrinterName  string
	ProfileName  string
	MediaSizes   []string
	DefaultMedia string
}

// ApplyConfigOverrides loads config overrides into the registry.
func (r *Registry) ApplyConfigOverrides(overrides []ConfigOverride) {
	for _, o := range overrides {
		if o.ProfileName != "" {
			if p := r.GetProfileByName(o.ProfileName); p != nil {
				r.SetCustom(o.PrinterName, *p)
			}
			continue
		}
		if len(o.MediaSizes) == 0 {
			continue
		}
		p := Profile{Name: "custom-" + o.PrinterName, DefaultMedia: o.DefaultMedia}
		for _, name := range o.MediaSizes {
			p.Sizes = append(p.Sizes, Size{Name: name})
		}
		if p.DefaultMedia == "" {
			p.DefaultMedia = p.Sizes[0].Name
		}
		r.SetCustom(o.PrinterName, p)
	}
}
