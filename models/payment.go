package models

import "time"

// Payment is recorded by the client after the card payment is confirmed.
// The referenced cart and menu ids are whatever the caller supplies.
type Payment struct {
	ID            string    `json:"_id" bson:"_id,omitempty" gorm:"primaryKey"`
	Email         string    `json:"email" bson:"email" gorm:"index"`
	TransactionID string    `json:"transactionId" bson:"transactionId"`
	Price         float64   `json:"price" bson:"price"`
	Quantity      int       `json:"quantity" bson:"quantity"`
	Date          time.Time `json:"date" bson:"date"`
	CartItems     []string  `json:"cartItems" bson:"cartItems" gorm:"serializer:json"`
	MenuItems     []string  `json:"menuItems" bson:"menuItems" gorm:"serializer:json"`
	ItemNames     []string  `json:"itemNames" bson:"itemNames" gorm:"serializer:json"`
	Status        string    `json:"status" bson:"status"`
}
