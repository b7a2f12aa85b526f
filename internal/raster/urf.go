package raster

import "encoding/binary"

// URF magic and fixed header size (Apple UNIRAST, spec §4.6).
const (
	urfMagic      = "UNIRAST\x00"
	urfHeaderSize = 44
)

var urfValidBPP = map[uint8]bool{8: true, 24: true, 32: true, 64: true}

// urfBytesPerPixel maps a URF bits-per-pixel field to the byte stride a
// PixelGrid row uses for it; unrecognized values fall back to 3 (SRGB24)
// since that is by far the common case and the value is only advisory
// once a warning has already fired for it.
func urfBytesPerPixel(bpp uint8) int {
	switch bpp {
	case 8:
		return 1
	case 32:
		return 4
	case 64:
		return 8
	default:
		return 3
	}
}

// URFHeader is the 44-byte Apple URF (UNIRAST) page header (spec §4.6).
// Unknown0-3 are preserved verbatim through decode/encode even though
// their semantics are undocumented upstream.
type URFHeader struct {
	Pages      uint32
	BPP        uint8
	ColorSpace uint8
	Duplex     uint8
	Quality    uint8
	Unknown0   uint32
	Unknown1   uint32
	PageWidth  uint32
	PageHeight uint32
	DPI        uint32
	Unknown2   uint32
	Unknown3   uint32
}

// DecodeURF parses a URF/UNIRAST document: a 44-byte header shared by the
// whole stream, followed by h.Pages PackBits-like compressed pages, each
// of dimensions page-width x page-height (spec §4.5).
func DecodeURF(data []byte, sink DiagSink) (*URFHeader, []*PixelGrid, error) {
	if len(data) < urfHeaderSize {
		return nil, nil, errAt(ErrTruncatedInput, len(data), "input shorter than the 44-byte URF header")
	}
	if string(data[0:8]) != urfMagic {
		return nil, nil, errAt(ErrBadMagic, 0, "missing UNIRAST magic")
	}

	h := &URFHeader{
		Pages:      binary.BigEndian.Uint32(data[8:12]),
		BPP:        data[12],
		ColorSpace: data[13],
		Duplex:     data[14],
		Quality:    data[15],
		Unknown0:   binary.BigEndian.Uint32(data[16:20]),
		Unknown1:   binary.BigEndian.Uint32(data[20:24]),
		PageWidth:  binary.BigEndian.Uint32(data[24:28]),
		PageHeight: binary.BigEndian.Uint32(data[28:32]),
		DPI:        binary.BigEndian.Uint32(data[32:36]),
		Unknown2:   binary.BigEndian.Uint32(data[36:40]),
		Unknown3:   binary.BigEndian.Uint32(data[40:44]),
	}

	if h.Pages == 0 {
		warn(sink, "pages", "zero or less pages found")
	}
	if !urfValidBPP[h.BPP] {
		warn(sink, "bpp", "bits-per-pixel not in the valid set {8,24,32,64}")
	}
	if h.ColorSpace > 6 {
		warn(sink, "colorSpace", "color space value is not in the documented range")
	}
	if h.Duplex > 3 {
		warn(sink, "duplex", "duplex value is not in the valid range")
	}
	if h.Quality != 0 && (h.Quality < 3 || h.Quality > 5) {
		warn(sink, "quality", "quality value is not in the valid range")
	}
	if h.PageWidth == 0 {
		warn(sink, "pageWidth", "zero or less page width found")
	}
	if h.PageHeight == 0 {
		warn(sink, "pageHeight", "zero or less page height found")
	}

	bytesPerPixel := urfBytesPerPixel(h.BPP)
	offset := urfHeaderSize
	pages := make([]*PixelGrid, 0, h.Pages)
	for p := uint32(0); p < h.Pages; p++ {
		grid, consumed, err := DecodePackBits(data[offset:], int(h.PageWidth), int(h.PageHeight), bytesPerPixel, sink)
		if err != nil {
			return nil, nil, err
		}
		pages = append(pages, grid)
		offset += consumed
	}
	return h, pages, nil
}

// EncodeURF serializes a URF header and its pages to the URF wire format
// (spec §4.5). h.Pages is written to the wire as-is and every grid in
// pages is encoded; it is the caller's responsibility to keep len(pages)
// consistent with h.Pages.
func EncodeURF(h *URFHeader, pages []*PixelGrid) []byte {
	out := make([]byte, urfHeaderSize)
	copy(out[0:8], urfMagic)
	binary.BigEndian.PutUint32(out[8:12], h.Pages)
	out[12] = h.BPP
	out[13] = h.ColorSpace
	out[14] = h.Duplex
	out[15] = h.Quality
	binary.BigEndian.PutUint32(out[16:20], h.Unknown0)
	binary.BigEndian.PutUint32(out[20:24], h.Unknown1)
	binary.BigEndian.PutUint32(out[24:28], h.PageWidth)
	binary.BigEndian.PutUint32(out[28:32], h.PageHeight)
	binary.BigEndian.PutUint32(out[32:36], h.DPI)
	binary.BigEndian.PutUint32(out[36:40], h.Unknown2)
	binary.BigEndian.PutUint32(out[40:44], h.Unknown3)

	for _, grid := range pages {
		out = append(out, EncodePackBits(grid)...)
	}
	return out
}
