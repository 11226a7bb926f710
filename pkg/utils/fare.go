package utils

import (
	"math"
)

// VehicleRates holds the pricing knobs for one vehicle class.
type VehicleRates struct {
	BaseFare      float64 `json:"baseFare"`
	PerKmRate     float64 `json:"perKmRate"`
	PerMinuteRate float64 `json:"perMinuteRate"`
}

// Fixed rate table in whole currency units.
var (
	AutoRates = VehicleRates{BaseFare: 30, PerKmRate: 10, PerMinuteRate: 2}
	CarRates  = VehicleRates{BaseFare: 50, PerKmRate: 15, PerMinuteRate: 3}
	MotoRates = VehicleRates{BaseFare: 20, PerKmRate: 8, PerMinuteRate: 1.5}
)

// ComputeFare applies the rate formula for a single vehicle class, rounding
// to the nearest integer currency unit.
func ComputeFare(rates VehicleRates, distanceKm, durationMin float64) int {
	fare := rates.BaseFare + rates.PerKmRate*distanceKm + rates.PerMinuteRate*durationMin
	return int(math.Round(fare))
}
