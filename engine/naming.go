package engine

import (
	"fmt"
	"math"
	"path/filepath"

	"github.com/drummonds/pdftopng/config"
)

// OutputName formats "{prefix}{pageNumber}.png", the 1-based page number zero padded to zeroPad digits
func OutputName(prefix string, pageNumber, zeroPad int) string {
	return fmt.Sprintf("%s%0*d.png", prefix, zeroPad, pageNumber)
}

// OutputPath is where the page with the given zero-based index is written
func OutputPath(cfg config.Configuration, index int) string {
	return filepath.Join(cfg.PageDir(), OutputName(cfg.Prefix, index+1, cfg.ZeroPad))
}

// scaledToWidth mirrors imaging.Resize with a zero height: the height keeps the aspect ratio
func scaledToWidth(width, height, maxWidth int) (int, int) {
	if maxWidth <= 0 || width <= maxWidth || width == 0 {
		return width, height
	}
	h := int(math.Max(1, math.Round(float64(height)*float64(maxWidth)/float64(width))))
	return maxWidth, h
}
