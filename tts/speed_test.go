package tts

import (
	"math"
	"testing"
)

func TestSnapSpeed(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{1.0, 1.0},
		{0.1, 0.5},
		{0.6, 0.5},
		{0.7, 0.75},
		{1.1, 1.0},
		{1.3, 1.25},
		{1.8, 2.0},
		{5, 2.0},
		{-1, 0.5},
		{math.NaN(), DefaultSpeed},
	}

	for _, tt := range tests {
		if got := SnapSpeed(tt.in); got != tt.want {
			t.Errorf("SnapSpeed(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestIsValidSpeed(t *testing.T) {
	for _, s := range SpeedSteps {
		if !IsValidSpeed(s) {
			t.Errorf("IsValidSpeed(%v) = false", s)
		}
	}
	if IsValidSpeed(1.1) {
		t.Error("IsValidSpeed(1.1) = true")
	}
}

func TestNextPreviousSpeed(t *testing.T) {
	if got, ok := NextSpeed(1.0); !ok || got != 1.25 {
		t.Errorf("NextSpeed(1.0) = %v, %v", got, ok)
	}
	if got, ok := NextSpeed(2.0); ok || got != 2.0 {
		t.Errorf("NextSpeed(2.0) = %v, %v", got, ok)
	}
	if got, ok := PreviousSpeed(0.75); !ok || got != 0.5 {
		t.Errorf("PreviousSpeed(0.75) = %v, %v", got, ok)
	}
	if got, ok := PreviousSpeed(0.5); ok || got != 0.5 {
		t.Errorf("PreviousSpeed(0.5) = %v, %v", got, ok)
	}
}

func TestFormatSpeed(t *testing.T) {
	tests := map[float64]string{
		1.0:  "1x",
		2.0:  "2x",
		0.5:  "0.5x",
		1.25: "1.25x",
	}
	for in, want := range tests {
		if got := FormatSpeed(in); got != want {
			t.Errorf("FormatSpeed(%v) = %q, want %q", in, got, want)
		}
	}
}
