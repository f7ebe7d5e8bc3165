package models

import "time"

type MenuItem struct {
	ID        string    `json:"_id" bson:"_id,omitempty" gorm:"primaryKey"`
	Name      string    `json:"name" bson:"name" gorm:"not null"`
	Recipe    string    `json:"recipe" bson:"recipe"`
	Image     string    `json:"image" bson:"image"`
	Category  string    `json:"category" bson:"category" gorm:"index"`
	Price     float64   `json:"price" bson:"price"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}
