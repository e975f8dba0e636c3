package models

import "time"

// Cart is the scratch list of an anonymous session. There is at most one
// cart per SessionID and every write replaces Items wholesale.
type Cart struct {
	ID          string    `json:"_id" bson:"-" firestore:"-" gorm:"primary_key"`
	SessionID   string    `json:"sessionId" bson:"sessionId" firestore:"sessionId" gorm:"unique_index;not null"`
	Items       ItemList  `json:"items" bson:"items" firestore:"items" gorm:"type:text"`
	LastUpdated time.Time `json:"lastUpdated" bson:"lastUpdated" firestore:"lastUpdated"`
}

// TableName sets the table name for Cart
func (Cart) TableName() string {
	return "carts"
}

// NewCart returns an empty cart for the session stamped with now
func NewCart(sessionID string, now time.Time) *Cart {
	return &Cart{
		SessionID:   sessionID,
		Items:       ItemList{},
		LastUpdated: now,
	}
}
