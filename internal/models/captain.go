package models

import (
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Captain is a driver. Latitude/Longitude are nil until the first location
// update; ConnID is empty while offline. A captain is only eligible for
// matching when both are present.
type Captain struct {
	gorm.Model
	Username     string   `json:"username" gorm:"column:username;unique;not null"`
	Email        string   `json:"email" gorm:"column:email;unique;not null"`
	Password     string   `json:"-" gorm:"-:migration"`
	PasswordHash string   `json:"-" gorm:"column:password_hash;not null"`
	PhoneNumber  string   `json:"phoneNumber" gorm:"column:phone_number"`
	VehicleType  string   `json:"vehicleType" gorm:"column:vehicle_type;not null"`
	VehiclePlate string   `json:"vehiclePlate" gorm:"column:vehicle_plate"`
	Latitude     *float64 `json:"lat,omitempty" gorm:"column:latitude"`
	Longitude    *float64 `json:"lng,omitempty" gorm:"column:longitude"`
	ConnID       string   `json:"-" gorm:"column:conn_id"`
}

// TableName specifies the table name
func (Captain) TableName() string {
	return "captains"
}

// Matchable reports whether the captain can be offered rides.
func (cap *Captain) Matchable() bool {
	return cap.Latitude != nil && cap.Longitude != nil && cap.ConnID != ""
}

func (cap *Captain) HashPassword() error {
	if cap.Password == "" {
		return nil
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(cap.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	cap.PasswordHash = string(hashedPassword)
	return nil
}

func (cap *Captain) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(cap.PasswordHash), []byte(password))
}
