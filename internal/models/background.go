package models

import (
	"math"
	"time"
)

var backgroundImages = []string{
	"https://images.unsplash.com/photo-1517836357463-d25dfeac3438?auto=format&fit=crop&w=2000&q=80",
	"https://images.unsplash.com/photo-1534438327276-14e5300c3a48?auto=format&fit=crop&w=2000&q=80",
	"https://images.unsplash.com/photo-1599058945522-28d584b6f0ff?auto=format&fit=crop&w=2000&q=80",
	"https://images.unsplash.com/photo-1576678927484-cc907957088c?auto=format&fit=crop&w=2000&q=80",
	"https://images.unsplash.com/photo-1605296867724-fa87a8ef53fd?auto=format&fit=crop&w=2000&q=80",
}

// BackgroundImage picks a header image for a plan. The same seed always maps
// to the same image; plans use their creation timestamp as seed.
func BackgroundImage(seed string) string {
	if seed == "" {
		return backgroundImages[0]
	}
	return backgroundImages[seedIndex(seed, len(backgroundImages))]
}

// BackgroundSeed renders a creation time the way it is stored by the browser
// client (ISO 8601, millisecond precision, UTC) for use as an image seed.
// The zero time yields the empty seed.
func BackgroundSeed(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}

// seedIndex folds the UTF-16 code units of seed into a hash using
// h = c + (int32(h)<<5 - h). The shift wraps at 32 bits but the
// subtraction does not, so h is carried as a float64.
func seedIndex(seed string, n int) int {
	var h float64
	for _, c := range utf16Units(seed) {
		shifted := float64(int32(uint32(int64(h)) << 5))
		h = float64(c) + (shifted - h)
	}
	return int(math.Mod(math.Abs(h), float64(n)))
}

func utf16Units(s string) []uint16 {
	units := make([]uint16, 0, len(s))
	for _, r := range s {
		if r >= 0x10000 {
			r -= 0x10000
			units = append(units, uint16(0xD800+(r>>10)), uint16(0xDC00+(r&0x3FF)))
			continue
		}
		units = append(units, uint16(r))
	}
	return units
}
