// Package display renders user-facing output: the banner, byte formatting,
// and the batch summary table.
package display

import (
	"fmt"
)

// FormatBytes renders a byte count with binary units, one decimal place
// above plain bytes.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	value := float64(n)
	suffixes := []string{"KiB", "MiB", "GiB", "TiB", "PiB", "EiB"}
	for i, suffix := range suffixes {
		value /= unit
		if value < unit || i == len(suffixes)-1 {
			return fmt.Sprintf("%.1f %s", value, suffix)
		}
	}
	return ""
}
