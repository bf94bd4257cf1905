package viewshed

import "math"

// Window is an azimuth interval in compass degrees [0, 360). A window with
// Min > Max wraps through north, so {350, 10} covers 355° and 5° but not
// 180°. Min == Max covers the full circle.
type Window struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// FullCircle admits every bearing.
var FullCircle = Window{Min: 0, Max: 360}

// Contains reports whether the azimuth falls inside the window.
func (w Window) Contains(azimuth float64) bool {
	az := normalize(azimuth)
	min := normalize(w.Min)
	max := w.Max

	// 360 only normalizes to 0 on the lower bound; as an upper bound it
	// means "all the way around".
	if max != 360 {
		max = normalize(max)
	}

	if min == max {
		return true
	}
	if min < max {
		return az >= min && az <= max
	}
	return az >= min || az <= max
}

// normalize maps a bearing into [0, 360).
func normalize(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

// azimuth returns the compass bearing from the observer to a planar offset
// (dx east, dy north), measured clockwise from north in [0, 360).
func azimuth(dx, dy float64) float64 {
	return normalize(math.Atan2(dx, dy) * 180.0 / math.Pi)
}
