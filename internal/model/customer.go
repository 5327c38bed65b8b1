package model

import "time"

// Customer mirrors the `customers` table. A customer owns zero or more
// vehicles; vehicles are embedded in detail responses, not stored here.
type Customer struct {
	ID        string    `json:"id"`    // customers.id (uuid)
	Name      string    `json:"name"`  // customers.name
	Phone     string    `json:"phone"` // customers.phone
	Email     string    `json:"email,omitempty"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Vehicle mirrors the `vehicles` table. Every vehicle belongs to exactly
// one customer.
//
// Fields:
//  ID         – primary key (uuid).
//  CustomerID – owning customer.
//  Make/Model – manufacturer and model name.
//  Year       – model year, 1900..current+1.
//  Plate      – registration plate, unique per shop.
type Vehicle struct {
	ID         string    `json:"id"`
	CustomerID string    `json:"customer_id"`
	Make       string    `json:"make"`
	Model      string    `json:"model"`
	Year       int       `json:"year"`
	Plate      string    `json:"plate"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
