package models

import "time"

// CartItem is a menu item snapshot placed in a customer's cart.
type CartItem struct {
	ID         string    `json:"_id" bson:"_id,omitempty" gorm:"primaryKey"`
	MenuItemID string    `json:"menuItemId" bson:"menuItemId"`
	Name       string    `json:"name" bson:"name"`
	Image      string    `json:"image" bson:"image"`
	Price      float64   `json:"price" bson:"price"`
	UserEmail  string    `json:"userEmail" bson:"userEmail" gorm:"index;not null"`
	CreatedAt  time.Time `json:"createdAt" bson:"createdAt"`
}
