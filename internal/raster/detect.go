package raster

import "strings"

// Format identifies which raster container a byte stream is encoded in
// (spec §4.8).
type Format int

const (
	FormatUnknown Format = iota
	FormatURF
	FormatPWG
)

func (f Format) String() string {
	switch f {
	case FormatURF:
		return "URF"
	case FormatPWG:
		return "PWG"
	default:
		return "unknown"
	}
}

// DetectFormat identifies a raster document by its magic bytes, trying
// PWG's 4-byte "RaS2" synchronization word before URF's 8-byte
// "UNIRAST\0" magic. When neither magic matches, it falls back to the
// path's suffix: .urf -> URF, .pwg or .ras -> PWG (spec §8 scenario S6,
// ported from guess_format). path may be empty when no filesystem name
// is available, in which case only the magic-byte check applies.
func DetectFormat(data []byte, path string) Format {
	if len(data) >= 4 && string(data[0:4]) == pwgMagic {
		return FormatPWG
	}
	if len(data) >= 8 && string(data[0:8]) == urfMagic {
		return FormatURF
	}

	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".urf"):
		return FormatURF
	case strings.HasSuffix(lower, ".pwg"), strings.HasSuffix(lower, ".ras"):
		return FormatPWG
	default:
		return FormatUnknown
	}
}

// Decode autodetects the container format (by magic bytes, falling back
// to path's suffix) and decodes accordingly. For a URF document it
// returns the single stream-wide URFHeader and nil PWG headers; for a
// PWG document it returns one PWGHeader per page and a nil URFHeader.
// path may be empty.
func Decode(data []byte, path string, sink DiagSink) (Format, *URFHeader, []*PWGHeader, []*PixelGrid, error) {
	switch DetectFormat(data, path) {
	case FormatPWG:
		headers, pages, err := DecodePWG(data, sink)
		return FormatPWG, nil, headers, pages, err
	case FormatURF:
		h, pages, err := DecodeURF(data, sink)
		return FormatURF, h, nil, pages, err
	default:
		return FormatUnknown, nil, nil, nil, errAt(ErrBadMagic, 0, "unrecognized raster container magic")
	}
}
