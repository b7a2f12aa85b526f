package raster

import "encoding/binary"

// PWG Raster stream magic and fixed per-page header size ([PWG5102.4],
// spec §4.6). The stream magic appears once, before the first page; each
// page then carries its own 1796-byte header.
const (
	pwgMagic           = "RaS2"
	pwgStreamMagicSize = 4
	pwgPageHeaderSize  = 1796
	pwgHeaderSize      = pwgStreamMagicSize + pwgPageHeaderSize
)

var pwgColorSpaceNames = map[uint32]string{
	1: "Rgb", 3: "Black", 6: "Cmyk", 18: "Sgray", 19: "Srgb", 20: "AdobeRgb",
	48: "Device1", 49: "Device2", 50: "Device3", 51: "Device4", 52: "Device5",
	53: "Device6", 54: "Device7", 55: "Device8", 56: "Device9", 57: "Device10",
	58: "Device11", 59: "Device12", 60: "Device13", 61: "Device14", 62: "Device15",
}

const pwgSecondMagic = "PwgRaster"

// PWGHeader is the 1796-byte PWG Raster page header (spec §4.7). Field
// offsets below are relative to byte 4 (after the "RaS2" synchronization
// word) and follow [PWG5102.4] exactly, including every reserved gap.
type PWGHeader struct {
	MediaColor           string // 64 bytes, offset 64
	MediaType            string // 64 bytes, offset 128
	PrintContentOptimize string // 64 bytes, offset 192
	// offset 256: 12 bytes reserved
	CutMedia      uint32 // offset 268
	Duplex        uint32 // offset 272
	HWResolutionX uint32 // offset 276
	HWResolutionY uint32 // offset 280
	// offset 284: 16 bytes reserved
	InsertSheet uint32 // offset 300
	Jog         uint32 // offset 304
	LeadingEdge uint32 // offset 308
	// offset 312: 12 bytes reserved
	MediaPosition     uint32 // offset 324
	MediaWeightMetric uint32 // offset 328
	// offset 332: 8 bytes reserved
	NumCopies   uint32 // offset 340
	Orientation uint32 // offset 344
	// offset 348: 4 bytes reserved
	PageSizeX uint32 // offset 352
	PageSizeY uint32 // offset 356
	// offset 360: 8 bytes reserved
	Tumble uint32 // offset 368
	Width  uint32 // offset 372
	Height uint32 // offset 376
	// offset 380: 4 bytes reserved
	BitsPerColor uint32 // offset 384
	BitsPerPixel uint32 // offset 388
	BytesPerLine uint32 // offset 392
	ColorOrder   uint32 // offset 396
	ColorSpace   uint32 // offset 400
	// offset 404: 16 bytes reserved
	NumColors uint32 // offset 420
	// offset 424: 28 bytes reserved
	TotalPageCount     uint32  // offset 452
	CrossFeedTransform uint32  // offset 456
	FeedTransform      uint32  // offset 460
	ImageBoxLeft       uint32  // offset 464
	ImageBoxTop        uint32  // offset 468
	ImageBoxRight      uint32  // offset 472
	ImageBoxBottom     uint32  // offset 476
	AlternatePrimary   [4]byte // offset 480
	PrintQuality       uint32  // offset 484
	// offset 488: 20 bytes reserved
	VendorIdentifier uint32 // offset 508
	VendorLength     uint32 // offset 512
	VendorData       []byte // 1088 bytes, offset 516
	// offset 1604: 64 bytes reserved
	RenderingIntent string // 64 bytes, offset 1668
	PageSizeName    string // 64 bytes, offset 1732
}

// DecodePWG parses a PWG Raster document: the 4-byte stream magic, then
// one 1796-byte header plus PackBits-like compressed pixel data per page,
// repeated until the input is exhausted (spec §4.6).
func DecodePWG(data []byte, sink DiagSink) ([]*PWGHeader, []*PixelGrid, error) {
	if len(data) < pwgStreamMagicSize || string(data[0:4]) != pwgMagic {
		return nil, nil, errAt(ErrBadMagic, 0, "missing RaS2 synchronization word")
	}

	offset := pwgStreamMagicSize
	var headers []*PWGHeader
	var pages []*PixelGrid
	for offset < len(data) {
		if offset+pwgPageHeaderSize > len(data) {
			return nil, nil, errAt(ErrTruncatedInput, offset, "input shorter than the 1796-byte PWG page header")
		}
		h, bytesPerPixel, err := decodePWGHeader(data[offset:offset+pwgPageHeaderSize], sink)
		if err != nil {
			return nil, nil, err
		}
		offset += pwgPageHeaderSize

		grid, consumed, err := DecodePackBits(data[offset:], int(h.Width), int(h.Height), bytesPerPixel, sink)
		if err != nil {
			return nil, nil, err
		}
		offset += consumed

		headers = append(headers, h)
		pages = append(pages, grid)
	}
	if len(headers) == 0 {
		return nil, nil, errAt(ErrTruncatedInput, offset, "no pages found after the RaS2 stream magic")
	}
	return headers, pages, nil
}

// decodePWGHeader parses one 1796-byte PWG page header (b holds exactly
// that many bytes, the stream magic and any preceding pages already
// consumed) and returns it alongside its bytes-per-pixel.
func decodePWGHeader(b []byte, sink DiagSink) (*PWGHeader, int, error) {
	if trimNull(b[0:64]) != pwgSecondMagic {
		warn(sink, "pwgRaster", "second header field does not match the expected PwgRaster tag")
	}

	h := &PWGHeader{
		MediaColor:           trimNull(b[64:128]),
		MediaType:            trimNull(b[128:192]),
		PrintContentOptimize: trimNull(b[192:256]),
		CutMedia:             be32(b, 268),
		Duplex:               be32(b, 272),
		HWResolutionX:        be32(b, 276),
		HWResolutionY:        be32(b, 280),
		InsertSheet:          be32(b, 300),
		Jog:                  be32(b, 304),
		LeadingEdge:          be32(b, 308),
		MediaPosition:        be32(b, 324),
		MediaWeightMetric:    be32(b, 328),
		NumCopies:            be32(b, 340),
		Orientation:          be32(b, 344),
		PageSizeX:            be32(b, 352),
		PageSizeY:            be32(b, 356),
		Tumble:               be32(b, 368),
		Width:                be32(b, 372),
		Height:               be32(b, 376),
		BitsPerColor:         be32(b, 384),
		BitsPerPixel:         be32(b, 388),
		BytesPerLine:         be32(b, 392),
		ColorOrder:           be32(b, 396),
		ColorSpace:           be32(b, 400),
		NumColors:            be32(b, 420),
		TotalPageCount:       be32(b, 452),
		CrossFeedTransform:   be32(b, 456),
		FeedTransform:        be32(b, 460),
		ImageBoxLeft:         be32(b, 464),
		ImageBoxTop:          be32(b, 468),
		ImageBoxRight:        be32(b, 472),
		ImageBoxBottom:       be32(b, 476),
		PrintQuality:         be32(b, 484),
		VendorIdentifier:     be32(b, 508),
		VendorLength:         be32(b, 512),
		VendorData:           append([]byte(nil), b[516:516+1088]...),
		RenderingIntent:      trimNull(b[1668:1732]),
		PageSizeName:         trimNull(b[1732:1796]),
	}
	copy(h.AlternatePrimary[:], b[480:484])

	if _, ok := pwgColorSpaceNames[h.ColorSpace]; !ok {
		return nil, 0, errField(ErrUnsupportedColorSpace, "colorSpace", "unrecognized PWG color space value")
	}
	if h.Width == 0 {
		warn(sink, "width", "zero page width")
	}
	if h.Height == 0 {
		warn(sink, "height", "zero page height")
	}
	if h.ColorOrder > 2 {
		warn(sink, "colorOrder", "color order value is not in the valid range")
	}
	if h.Duplex > 1 {
		warn(sink, "duplex", "duplex value is not in the valid range")
	}
	if h.PrintQuality != 0 && (h.PrintQuality < 3 || h.PrintQuality > 5) {
		warn(sink, "printQuality", "print quality value is not in the valid range")
	}
	bytesPerPixel := int(h.BitsPerPixel / 8)
	if h.BitsPerPixel%8 != 0 || bytesPerPixel <= 0 {
		return nil, 0, errField(ErrUnsupportedBitDepth, "bitsPerPixel", "bits-per-pixel must be a positive multiple of 8")
	}
	wantBytesPerLine := (int(h.BitsPerPixel)*int(h.Width) + 7) / 8
	if int(h.BytesPerLine) != wantBytesPerLine {
		return nil, 0, errField(ErrBytesPerLineMismatch, "bytesPerLine",
			"bytesPerLine does not match TRUNCATE((bitsPerPixel*width+7)/8)")
	}

	return h, bytesPerPixel, nil
}

// EncodePWG serializes a sequence of PWG page headers and pixel grids to
// the PWG Raster wire format (spec §4.6). headers and pages must be the
// same length; the stream magic is written once, then each page's header
// and compressed body in turn.
func EncodePWG(headers []*PWGHeader, pages []*PixelGrid) []byte {
	out := make([]byte, pwgStreamMagicSize)
	copy(out[0:4], pwgMagic)

	for i, h := range headers {
		out = append(out, encodePWGHeader(h)...)
		out = append(out, EncodePackBits(pages[i])...)
	}
	return out
}

func encodePWGHeader(h *PWGHeader) []byte {
	b := make([]byte, pwgPageHeaderSize)

	putStringField(b[0:64], pwgSecondMagic)
	putStringField(b[64:128], h.MediaColor)
	putStringField(b[128:192], h.MediaType)
	putStringField(b[192:256], h.PrintContentOptimize)

	putBE32(b, 268, h.CutMedia)
	putBE32(b, 272, h.Duplex)
	putBE32(b, 276, h.HWResolutionX)
	putBE32(b, 280, h.HWResolutionY)
	putBE32(b, 300, h.InsertSheet)
	putBE32(b, 304, h.Jog)
	putBE32(b, 308, h.LeadingEdge)
	putBE32(b, 324, h.MediaPosition)
	putBE32(b, 328, h.MediaWeightMetric)
	putBE32(b, 340, h.NumCopies)
	putBE32(b, 344, h.Orientation)
	putBE32(b, 352, h.PageSizeX)
	putBE32(b, 356, h.PageSizeY)
	putBE32(b, 368, h.Tumble)
	putBE32(b, 372, h.Width)
	putBE32(b, 376, h.Height)
	putBE32(b, 384, h.BitsPerColor)
	putBE32(b, 388, h.BitsPerPixel)
	putBE32(b, 392, h.BytesPerLine)
	putBE32(b, 396, h.ColorOrder)
	putBE32(b, 400, h.ColorSpace)
	putBE32(b, 420, h.NumColors)
	putBE32(b, 452, h.TotalPageCount)
	putBE32(b, 456, h.CrossFeedTransform)
	putBE32(b, 460, h.FeedTransform)
	putBE32(b, 464, h.ImageBoxLeft)
	putBE32(b, 468, h.ImageBoxTop)
	putBE32(b, 472, h.ImageBoxRight)
	putBE32(b, 476, h.ImageBoxBottom)
	copy(b[480:484], h.AlternatePrimary[:])
	putBE32(b, 484, h.PrintQuality)
	putBE32(b, 508, h.VendorIdentifier)
	putBE32(b, 512, h.VendorLength)
	copy(b[516:516+1088], h.VendorData)
	putStringField(b[1668:1732], h.RenderingIntent)
	putStringField(b[1732:1796], h.PageSizeName)

	return b
}

func be32(b []byte, offset int) uint32 {
	return binary.BigEndian.Uint32(b[offset : offset+4])
}

func putBE32(b []byte, offset int, v uint32) {
	binary.BigEndian.PutUint32(b[offset:offset+4], v)
}

func putStringField(dst []byte, s string) {
	n := copy(dst, s)
	for i := n; i < len(dst); i++ {
		dst[i] = 0
	}
}

func trimNull(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
