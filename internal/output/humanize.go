package output

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	checkererrors "github.com/sandlbn/crate-checker/internal/errors"
)

// FormatDownloadCount renders a download count compactly: 500, 1.5K,
// 1.5M, 2.5B.
func FormatDownloadCount(count uint64) string {
	switch {
	case count < 1_000:
		return strconv.FormatUint(count, 10)
	case count < 1_000_000:
		return fmt.Sprintf("%.1fK", float64(count)/1_000)
	case count < 1_000_000_000:
		return fmt.Sprintf("%.1fM", float64(count)/1_000_000)
	default:
		return fmt.Sprintf("%.1fB", float64(count)/1_000_000_000)
	}
}

// FormatDuration renders a duration in human-readable form.
func FormatDuration(d time.Duration) string {
	secs := int64(d.Seconds())
	switch {
	case secs == 0:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case secs < 60:
		return fmt.Sprintf("%d.%ds", secs, d.Milliseconds()%1000/100)
	default:
		return fmt.Sprintf("%dm %ds", secs/60, secs%60)
	}
}

// TruncateText shortens text to maxLength runes with an ellipsis.
func TruncateText(text string, maxLength int) string {
	runes := []rune(text)
	if len(runes) <= maxLength {
		return text
	}
	if maxLength <= 3 {
		return string(runes[:maxLength])
	}
	return string(runes[:maxLength-3]) + "..."
}

// ParseTimeout parses a timeout string written as a bare number of
// seconds or with an s/m/h suffix, e.g. "30", "45s", "2m", "1h".
func ParseTimeout(input string) (time.Duration, error) {
	s := strings.ToLower(strings.TrimSpace(input))
	if s == "" {
		return 0, checkererrors.NewValidationError("invalid_timeout", "timeout cannot be empty")
	}

	if secs, err := strconv.ParseUint(s, 10, 32); err == nil {
		return time.Duration(secs) * time.Second, nil
	}

	unit := time.Duration(0)
	switch s[len(s)-1] {
	case 's':
		unit = time.Second
	case 'm':
		unit = time.Minute
	case 'h':
		unit = time.Hour
	}
	if unit != 0 {
		if n, err := strconv.ParseUint(s[:len(s)-1], 10, 32); err == nil {
			return time.Duration(n) * unit, nil
		}
	}

	return 0, checkererrors.NewValidationError("invalid_timeout",
		fmt.Sprintf("invalid timeout format %q, use forms like 30s, 5m, or 1h", input))
}
