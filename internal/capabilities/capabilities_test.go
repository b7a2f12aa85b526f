package capabilities

import (
	"reflect"
	"testing"

	"github.com/WaffleThief123/ipprasterctl/internal/ipp"
)

func TestParseResolutions(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   []int
	}{
		{"single resolution", []string{"300dpi"}, []int{300}},
		{"square resolution", []string{"600x600dpi"}, []int{600}},
		{"asymmetric resolution", []string{"300x600dpi"}, []int{300, 600}},
		{"multiple resolutions", []string{"300dpi", "600dpi", "1200dpi"}, []int{300, 600, 1200}},
		{"empty", []string{}, nil},
		{"invalid format", []string{"not a resolution"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseResolutions(tt.values)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseResolutions() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseDuplexSupport(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   bool
	}{
		{"one-sided only", []string{"one-sided"}, false},
		{"two-sided long edge", []string{"one-sided", "two-sided-long-edge"}, true},
		{"two-sided short edge", []string{"one-sided", "two-sided-short-edge"}, true},
		{"duplex keyword", []string{"simplex", "duplex"}, true},
		{"empty", []string{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseDuplexSupport(tt.values); got != tt.want {
				t.Errorf("ParseDuplexSupport() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetDefaultResolution(t *testing.T) {
	tests := []struct {
		name        string
		resolutions []int
		want        int
	}{
		{"empty uses fallback", []int{}, 300},
		{"prefers 300", []int{150, 300, 1200}, 300},
		{"prefers 600", []int{150, 600, 1200}, 600},
		{"uses highest if no 300/600", []int{150, 1200}, 1200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetDefaultResolution(tt.resolutions); got != tt.want {
				t.Errorf("GetDefaultResolution() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFromGroup(t *testing.T) {
	g := &ipp.Group{Tag: ipp.TagPrinterAttrs}
	g.Set("printer-name", ipp.NewNameWithoutLanguage("label-printer"))
	g.Set("printer-make-and-model", ipp.NewTextWithoutLanguage("Zebra ZPL"))
	g.Set("color-supported", ipp.NewBoolean(false))
	g.Add("sides-supported", ipp.NewKeyword("one-sided"))
	g.Get("sides-supported").Add(ipp.NewKeyword("two-sided-long-edge"))
	g.Add("printer-resolution-supported", ipp.NewResolution(300, 300, 3))
	g.Get("printer-resolution-supported").Add(ipp.NewResolution(600, 600, 3))
	g.Set("media-default", ipp.NewKeyword("oe_4x6-label_4x6in"))

	c := FromGroup(g)
	if c.Name != "label-printer" || c.MakeModel != "Zebra ZPL" {
		t.Fatalf("name/model mismatch: %+v", c)
	}
	if c.ColorSupported {
		t.Fatalf("ColorSupported = true, want false")
	}
	if !c.DuplexSupported {
		t.Fatalf("DuplexSupported = false, want true")
	}
	if !reflect.DeepEqual(c.Resolutions, []int{300, 600}) {
		t.Fatalf("Resolutions = %v, want [300 600]", c.Resolutions)
	}
	if c.MediaDefault != "oe_4x6-label_4x6in" {
		t.Fatalf("MediaDefault = %q", c.MediaDefault)
	}
}

func TestURFCapabilitiesValues(t *testing.T) {
	c := &Capabilities{ColorSupported: true, DuplexSupported: true, Resolutions: []int{300, 600}}
	u := NewURFCapabilities(c)
	values := u.Values()

	want := []string{"W8", "SRGB24", "CP255", "RS300-600", "DM1", "DM3", "DM4"}
	if !reflect.DeepEqual(values, want) {
		t.Fatalf("Values() = %v, want %v", values, want)
	}
}

func TestURFCapabilitiesSingleResolution(t *testing.T) {
	u := NewURFCapabilities(&Capabilities{Resolutions: []int{600}})
	values := u.Values()
	found := false
	for _, v := range values {
		if v == "RS600" {
			found = true
		}
	}
	if !found {
		t.Fatalf("Values() = %v, missing RS600", values)
	}
}
