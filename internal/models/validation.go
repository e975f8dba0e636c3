package models

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError reports every invalid field of a record, keyed by the
// field's JSON name
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s: %s", k, e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

type fieldErrors map[string]string

func (f fieldErrors) add(field, msg string) {
	if _, exists := f[field]; !exists {
		f[field] = msg
	}
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return &ValidationError{Fields: f}
}

// ValidateMenuItem validates a menu item before it is written
func ValidateMenuItem(item *MenuItem) error {
	errs := fieldErrors{}
	if strings.TrimSpace(item.Name) == "" {
		errs.add("name", "is required")
	}
	if strings.TrimSpace(item.Description) == "" {
		errs.add("description", "is required")
	}
	if item.Price < 0 {
		errs.add("price", "must be greater than or equal to 0")
	}
	return errs.err()
}

// ValidateMenuItemPatch applies the create rules to the fields a patch sets
func ValidateMenuItemPatch(patch MenuItemPatch) error {
	errs := fieldErrors{}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		errs.add("name", "is required")
	}
	if patch.Description != nil && strings.TrimSpace(*patch.Description) == "" {
		errs.add("description", "is required")
	}
	if patch.Price != nil && *patch.Price < 0 {
		errs.add("price", "must be greater than or equal to 0")
	}
	return errs.err()
}

// ValidateOrder validates an order before it is written. An empty item
// list is rejected by the order handler, not here.
func ValidateOrder(order *Order) error {
	errs := fieldErrors{}
	if err := ValidateOrderStatus(order.Status); err != nil {
		errs.add("status", "must be one of: "+OrderStatusList())
	}
	if order.TotalPrice < 0 {
		errs.add("totalPrice", "must be greater than or equal to 0")
	}
	validateLineItems(errs, order.Items)
	return errs.err()
}

// ValidateOrderStatus rejects any status outside OrderStatuses
func ValidateOrderStatus(status OrderStatus) error {
	if _, ok := ParseOrderStatus(string(status)); !ok {
		return &ValidationError{Fields: map[string]string{"status": "must be one of: " + OrderStatusList()}}
	}
	return nil
}

// ValidateLineItems validates cart or order line items
func ValidateLineItems(items ItemList) error {
	errs := fieldErrors{}
	validateLineItems(errs, items)
	return errs.err()
}

func validateLineItems(errs fieldErrors, items ItemList) {
	for i, item := range items {
		prefix := fmt.Sprintf("items[%d]", i)
		if strings.TrimSpace(item.Name) == "" {
			errs.add(prefix+".name", "is required")
		}
		if item.Price < 0 {
			errs.add(prefix+".price", "must be greater than or equal to 0")
		}
		if item.Quantity < 1 {
			errs.add(prefix+".quantity", "must be at least 1")
		}
	}
}
