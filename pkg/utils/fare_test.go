package utils

import "testing"

func TestComputeFareRounding(t *testing.T) {
	// 50 + 15*4.4 + 3*6.6 = 135.8 -> 136
	if got := ComputeFare(CarRates, 4.4, 6.6); got != 136 {
		t.Fatalf("expected 136, got %d", got)
	}
}

func TestComputeFareBaseOnly(t *testing.T) {
	if got := ComputeFare(MotoRates, 0, 0); got != 20 {
		t.Fatalf("expected base fare 20, got %d", got)
	}
}

func TestComputeFareMonotonicInDistance(t *testing.T) {
	prev := -1
	for km := 0.0; km <= 20; km += 0.5 {
		fare := ComputeFare(AutoRates, km, 10)
		if fare < prev {
			t.Fatalf("fare decreased at %fkm: %d < %d", km, fare, prev)
		}
		prev = fare
	}
}

func TestComputeFareMonotonicInDuration(t *testing.T) {
	prev := -1
	for min := 0.0; min <= 60; min += 1.5 {
		fare := ComputeFare(CarRates, 5, min)
		if fare < prev {
			t.Fatalf("fare decreased at %fmin: %d < %d", min, fare, prev)
		}
		prev = fare
	}
}
