package models

import (
	"gorm.io/gorm"
)

// RideStatus constants. Transitions are monotonic:
// pending -> accepted -> ongoing -> completed
const (
	RideStatusPending   = "pending"
	RideStatusAccepted  = "accepted"
	RideStatusOngoing   = "ongoing"
	RideStatusCompleted = "completed"
)

// Vehicle type constants
const (
	VehicleTypeAuto = "auto"
	VehicleTypeCar  = "car"
	VehicleTypeMoto = "moto"
)

// ValidVehicleType reports whether t is one of the supported vehicle classes.
func ValidVehicleType(t string) bool {
	switch t {
	case VehicleTypeAuto, VehicleTypeCar, VehicleTypeMoto:
		return true
	}
	return false
}

// Ride is one requester-to-captain trip transaction. Fare and OTP are set at
// creation and never recomputed. The OTP is only revealed to the rider's side;
// it is stripped from captain-facing payloads except the dispatch offer.
type Ride struct {
	gorm.Model
	UserID      uint     `json:"userId" gorm:"not null"`
	CaptainID   *uint    `json:"captainId,omitempty" gorm:"null"`
	Pickup      string   `json:"pickup" gorm:"not null"`
	Destination string   `json:"destination" gorm:"not null"`
	VehicleType string   `json:"vehicleType" gorm:"not null"`
	Fare        int      `json:"fare" gorm:"not null"`
	OTP         string   `json:"otp,omitempty" gorm:"column:otp;not null"`
	Status      string   `json:"status" gorm:"not null;default:'pending'"`
	User        *User    `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Captain     *Captain `json:"captain,omitempty" gorm:"foreignKey:CaptainID"`
}

// TableName specifies the table name
func (Ride) TableName() string {
	return "rides"
}

// FareEstimate holds the per-vehicle-class fare quote in whole currency units.
type FareEstimate struct {
	Auto int `json:"auto"`
	Car  int `json:"car"`
	Moto int `json:"moto"`
}

// ForVehicleType returns the quote for a single class.
func (f FareEstimate) ForVehicleType(t string) int {
	switch t {
	case VehicleTypeAuto:
		return f.Auto
	case VehicleTypeCar:
		return f.Car
	case VehicleTypeMoto:
		return f.Moto
	}
	return 0
}
