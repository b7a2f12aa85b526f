package raster

// PackBits-like run codes (spec §4.4). A repeat-count byte n in [0,127]
// means "copy the following pixel n+1 times"; n in [129,255] (signed
// negative) means "copy the following (256-n)+1 pixels verbatim"; the
// sentinel 0x80 means "fill the rest of the line with 0xFF bytes."
const (
	codeFillRestOfLine = 0x80
	maxRunLength       = 128
)

// DecodePackBits decodes PackBits-like compressed scanline data into a
// pixel grid of the given dimensions (spec §4.4, ported from the
// reference codec's line-oriented decode loop). It also returns the
// number of bytes consumed from data, so a multi-page container can
// locate the next page immediately after this one.
func DecodePackBits(data []byte, width, height, bytesPerPixel int, sink DiagSink) (*PixelGrid, int, error) {
	grid, err := NewPixelGrid(width, height, bytesPerPixel)
	if err != nil {
		return nil, 0, err
	}
	if len(data) == 0 {
		return grid, 0, nil
	}

	x, y := 0, 0
	i := 0

	lineStart := i
	lineRepeat := int(data[i])
	i++
	lineBodyStart := i

	for i < len(data) && y < height {
		code := data[i]

		switch {
		case code == codeFillRestOfLine:
			for x < width {
				fillPixel(grid.Rows[y], x, bytesPerPixel, 0xFF)
				x++
			}
			i++

		case code < codeFillRestOfLine:
			repeatTimes := int(code) + 1
			if i+1+bytesPerPixel > len(data) {
				return nil, 0, errRow(ErrTruncatedInput, y, i, "repeat-pixel run truncated before its pixel value")
			}
			pixel := data[i+1 : i+1+bytesPerPixel]
			for n := 0; n < repeatTimes && x < width; n++ {
				copy(grid.Rows[y][x*bytesPerPixel:(x+1)*bytesPerPixel], pixel)
				x++
			}
			i += 1 + bytesPerPixel

		default: // code > codeFillRestOfLine
			repeatPixels := (256 - int(code)) + 1
			if i+1+bytesPerPixel*repeatPixels > len(data) {
				return nil, 0, errRow(ErrTruncatedInput, y, i, "verbatim-copy run truncated before its pixel data")
			}
			for n := 0; n < repeatPixels && x < width; n++ {
				start := i + 1 + n*bytesPerPixel
				copy(grid.Rows[y][x*bytesPerPixel:(x+1)*bytesPerPixel], data[start:start+bytesPerPixel])
				x++
			}
			i += 1 + bytesPerPixel*repeatPixels
		}

		if x >= width {
			x = 0
			y++

			if y >= height {
				// This page is complete; the next byte (if any) belongs to
				// whatever follows this page, not to a line-repeat count
				// for a line this page doesn't have.
				continue
			}

			if lineRepeat > 0 {
				i = lineBodyStart
				lineRepeat--
			} else if i < len(data) {
				lineStart = i
				lineRepeat = int(data[i])
				i++
				lineBodyStart = i
			}
		}
	}

	if y < height {
		return nil, 0, errRow(ErrTruncatedInput, y, lineStart, "input exhausted before all scanlines were produced")
	}

	return grid, i, nil
}

func fillPixel(row []byte, x, bytesPerPixel int, b byte) {
	start := x * bytesPerPixel
	for k := 0; k < bytesPerPixel; k++ {
		row[start+k] = b
	}
}

// EncodePackBits compresses a pixel grid to PackBits-like scanline data
// (spec §4.4). Each line is encoded as one or more repeat-pixel runs; a
// run never exceeds 128 pixels so its count byte stays non-negative.
func EncodePackBits(grid *PixelGrid) []byte {
	bpp := grid.BytesPerPixel
	out := make([]byte, 0, grid.Height*(grid.Width*bpp/4+2))

	for y := 0; y < grid.Height; y++ {
		row := grid.Rows[y]
		out = append(out, 0) // line-repeat byte: always 0, lines are never repeated on encode.

		x := 0
		for x < grid.Width {
			pixel := row[x*bpp : (x+1)*bpp]
			toX := x
			for toX+1 < grid.Width &&
				bytesEqual(pixel, row[(toX+1)*bpp:(toX+2)*bpp]) &&
				(toX-x) < maxRunLength-1 {
				toX++
			}
			out = append(out, byte(toX-x))
			out = append(out, pixel...)
			x = toX + 1
		}
	}

	return out
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
