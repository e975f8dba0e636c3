package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// LineItem is a snapshot of a menu item's name and price taken when it was
// added to a cart or an order. It never references the live MenuItem.
type LineItem struct {
	Name     string  `json:"name" bson:"name" firestore:"name"`
	Price    float64 `json:"price" bson:"price" firestore:"price"`
	Quantity int     `json:"quantity" bson:"quantity" firestore:"quantity"`
}

// Subtotal returns price times quantity
func (li LineItem) Subtotal() float64 {
	return li.Price * float64(li.Quantity)
}

// ItemList represents an ordered list of line items that can be stored in a
// single database column
type ItemList []LineItem

// Value converts the list to a JSON string for storage
func (l ItemList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal([]LineItem(l))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan converts the database value back to a list
func (l *ItemList) Scan(value interface{}) error {
	if value == nil {
		*l = ItemList{}
		return nil
	}

	var items []LineItem
	switch v := value.(type) {
	case []byte:
		if err := json.Unmarshal(v, &items); err != nil {
			return err
		}
	case string:
		if err := json.Unmarshal([]byte(v), &items); err != nil {
			return err
		}
	default:
		return errors.New("unsupported type for ItemList")
	}
	*l = ItemList(items)
	if *l == nil {
		*l = ItemList{}
	}
	return nil
}

// MarshalJSON always encodes an empty list as [] rather than null
func (l ItemList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]LineItem(l))
}

// Total sums the subtotal of every item
func (l ItemList) Total() float64 {
	var total float64
	for _, item := range l {
		total += item.Subtotal()
	}
	return total
}
