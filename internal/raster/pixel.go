package raster

// maxPixels and maxUncompressedBytes bound accepted page dimensions so a
// malformed header can't trigger an unbounded allocation (spec §5).
const (
	maxPixels            = 100_000_000
	maxUncompressedBytes = 1 << 30 // 1 GiB
)

// PixelGrid is a decoded grid of pixels of known width, height and
// bytes-per-pixel (spec §3). Each codec owns the grid it produces;
// callers own grids they pass in.
type PixelGrid struct {
	Width         int
	Height        int
	BytesPerPixel int

	// Rows holds Height scanlines of Width*BytesPerPixel bytes each,
	// top-to-bottom, left-to-right (spec §4.4).
	Rows [][]byte
}

// NewPixelGrid allocates a zeroed grid, after checking the requested
// dimensions against the page-size cap (spec §5).
func NewPixelGrid(width, height, bytesPerPixel int) (*PixelGrid, error) {
	if err := checkPageSize(width, height, bytesPerPixel); err != nil {
		return nil, err
	}
	rows := make([][]byte, height)
	for i := range rows {
		rows[i] = make([]byte, width*bytesPerPixel)
	}
	return &PixelGrid{Width: width, Height: height, BytesPerPixel: bytesPerPixel, Rows: rows}, nil
}

func checkPageSize(width, height, bytesPerPixel int) error {
	if width <= 0 || height <= 0 || bytesPerPixel <= 0 {
		return errField(ErrPageTooLarge, "dimensions", "width, height and bytes-per-pixel must be positive")
	}
	if width > maxPixels/height {
		return errField(ErrPageTooLarge, "width*height", "page exceeds the 100-megapixel cap")
	}
	pixels := width * height
	if pixels > maxPixels {
		return errField(ErrPageTooLarge, "width*height", "page exceeds the 100-megapixel cap")
	}
	if bytesPerPixel > maxUncompressedBytes/pixels {
		return errField(ErrPageTooLarge, "width*height*bytesPerPixel", "page exceeds the 1 GiB uncompressed cap")
	}
	return nil
}
