// Package timeutil formats and parses media timestamps.
package timeutil

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatTime formats seconds as H:MM:SS (e.g. 0:01:30, 1:11:22).
func FormatTime(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	total := int(seconds)
	return fmt.Sprintf("%d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}

// FormatSeconds formats seconds as M:SS.cc, the precision a trim range is shown with.
func FormatSeconds(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	hundredths := int(math.Round(seconds * 100))
	mins := hundredths / 6000
	secs := (hundredths % 6000) / 100
	return fmt.Sprintf("%d:%02d.%02d", mins, secs, hundredths%100)
}

// FormatFFmpeg formats seconds as HH:MM:SS.mmm for ffmpeg's -ss option.
func FormatFFmpeg(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	millis := int64(math.Round(seconds * 1000))
	h := millis / 3_600_000
	m := (millis % 3_600_000) / 60_000
	s := (millis % 60_000) / 1000
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, millis%1000)
}

// ParseTimeToSeconds parses HH:MM:SS, MM:SS or raw seconds. The last field may
// carry a fraction (1:02.5).
func ParseTimeToSeconds(timeStr string) (float64, error) {
	fields := strings.Split(strings.TrimSpace(timeStr), ":")
	if len(fields) > 3 || fields[0] == "" {
		return 0, fmt.Errorf("expected HH:MM:SS, MM:SS, or seconds, got '%s'", timeStr)
	}

	var total float64
	for i, f := range fields {
		last := i == len(fields)-1
		var v float64
		if last {
			parsed, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return 0, fmt.Errorf("expected HH:MM:SS, MM:SS, or seconds, got '%s'", timeStr)
			}
			v = parsed
		} else {
			parsed, err := strconv.Atoi(f)
			if err != nil {
				return 0, fmt.Errorf("expected HH:MM:SS, MM:SS, or seconds, got '%s'", timeStr)
			}
			v = float64(parsed)
		}
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("time must be a non-negative number, got '%s'", timeStr)
		}
		if len(fields) > 1 && i > 0 && v >= 60 {
			return 0, fmt.Errorf("minutes and seconds must be below 60, got '%s'", timeStr)
		}
		total = total*60 + v
	}
	return total, nil
}
