// Package display holds the banner and human-readable formatting helpers
// used by batch summary output.
package display

import (
	"fmt"
	"time"
)

// FormatBytes returns a human-readable size (B, KiB, MiB, GiB, TiB, PiB).
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	suffixes := []string{"KiB", "MiB", "GiB", "TiB", "PiB", "EiB"}
	if exp >= len(suffixes) {
		exp = len(suffixes) - 1
		div = 1
		for i := 0; i <= exp; i++ {
			div *= unit
		}
	}
	return fmt.Sprintf("%.1f %s", float64(bytes)/float64(div), suffixes[exp])
}

// FormatDuration renders an elapsed duration as "Ns" below a minute and
// "XmYYs" above, for the per-video and batch summary lines.
func FormatDuration(d time.Duration) string {
	secs := int(d.Round(time.Second).Seconds())
	if secs < 60 {
		return fmt.Sprintf("%ds", secs)
	}
	return fmt.Sprintf("%dm%02ds", secs/60, secs%60)
}

// FormatFrameCount renders a frame total with a thousands separator so long
// videos stay readable in progress lines (e.g. "1,234,567").
func FormatFrameCount(frames int64) string {
	if frames < 1000 {
		return fmt.Sprintf("%d", frames)
	}
	return FormatFrameCount(frames/1000) + fmt.Sprintf(",%03d", frames%1000)
}
