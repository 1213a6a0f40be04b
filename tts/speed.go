package tts

import (
	"fmt"
	"math"
)

// Available speed presets
var (
	SpeedSteps   = []float64{0.5, 0.75, 1.0, 1.25, 1.5, 2.0}
	DefaultSpeed = 1.0
	MinSpeed     = 0.5
	MaxSpeed     = 2.0
)

const speedEpsilon = 0.001

// SnapSpeed returns the speed step nearest to speed. Values outside
// [MinSpeed, MaxSpeed] clamp to the closest end; NaN maps to DefaultSpeed.
func SnapSpeed(speed float64) float64 {
	if math.IsNaN(speed) {
		return DefaultSpeed
	}

	nearest := SpeedSteps[0]
	minDiff := math.MaxFloat64
	for _, step := range SpeedSteps {
		diff := math.Abs(step - speed)
		if diff < minDiff {
			minDiff = diff
			nearest = step
		}
	}
	return nearest
}

// IsValidSpeed checks if a speed value is one of the available discrete steps.
func IsValidSpeed(speed float64) bool {
	for _, step := range SpeedSteps {
		if math.Abs(step-speed) < speedEpsilon {
			return true
		}
	}
	return false
}

// NextSpeed returns the step above speed, or speed and false at the maximum.
func NextSpeed(speed float64) (float64, bool) {
	i := speedIndex(speed)
	if i >= len(SpeedSteps)-1 {
		return SpeedSteps[len(SpeedSteps)-1], false
	}
	return SpeedSteps[i+1], true
}

// PreviousSpeed returns the step below speed, or speed and false at the minimum.
func PreviousSpeed(speed float64) (float64, bool) {
	i := speedIndex(speed)
	if i <= 0 {
		return SpeedSteps[0], false
	}
	return SpeedSteps[i-1], true
}

// FormatSpeed returns a compact speed representation such as "1x" or "1.25x".
func FormatSpeed(speed float64) string {
	if speed == math.Trunc(speed) {
		return fmt.Sprintf("%.0fx", speed)
	}
	return fmt.Sprintf("%gx", speed)
}

func speedIndex(speed float64) int {
	snapped := SnapSpeed(speed)
	for i, step := range SpeedSteps {
		if math.Abs(step-snapped) < speedEpsilon {
			return i
		}
	}
	return 0
}
