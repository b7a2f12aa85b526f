package media

import "github.com/WaffleThief123/ipprasterctl/internal/ipp"

// BuildMediaCol constructs an IPP media-col collection attribute value
// for a size: media-col { media-size { x-dimension, y-dimension } }
// (spec §8 scenario S5).
func BuildMediaCol(size Size) ipp.Value {
	xDim := ipp.NewAttribute("x-dimension", ipp.NewInteger(int32(size.WidthHundredthsMM)))
	yDim := ipp.NewAttribute("y-dimension", ipp.NewInteger(int32(size.HeightHundredthsMM)))
	mediaSize := ipp.NewAttribute("media-size", ipp.NewCollection(xDim, yDim))
	return ipp.NewCollection(mediaSize)
}

// PWGPageSizeName returns the PWG5101.1 media-standardized name for a
// size, for the PWG raster header's page-size-name field (spec §3).
// Profile size names are already PWG5101.1 tokens, so this is an
// identity lookup kept as its own function for callers that don't want
// to reach into Size directly.
func PWGPageSizeName(size Size) string {
	return size.Name
}
