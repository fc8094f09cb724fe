package panel

import "fmt"

// enteringThresholdSecs treats trains this close as already entering the
// station, matching the physical panels.
const enteringThresholdSecs = 15

// TimeRemaining formats the countdown for an upcoming train. Both timestamps
// are epoch milliseconds. With simplify set (used for the second-listed
// train) the seconds are dropped once at least two full minutes remain.
func TimeRemaining(arrivalMs, nowMs int64, simplify bool) string {
	diffMs := arrivalMs - nowMs
	if diffMs <= 0 {
		return TextEntering
	}

	totalSeconds := diffMs / 1000
	if totalSeconds <= enteringThresholdSecs {
		return TextEntering
	}

	minutes := totalSeconds / 60
	seconds := totalSeconds % 60

	if simplify && minutes >= 2 {
		return fmt.Sprintf("%d min", minutes)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}
