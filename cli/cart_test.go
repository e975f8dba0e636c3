package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	burger = MenuItem{ID: "1", Name: "Classic Burger", Price: 12.99, Available: true}
	cake   = MenuItem{ID: "2", Name: "Chocolate Cake", Price: 6.99, Available: true}
)

func TestLocalCartAdd(t *testing.T) {
	var c LocalCart
	c.Add(burger)
	c.Add(cake)
	c.Add(burger)

	assert.Equal(t, []CartItem{
		{Name: "Classic Burger", Price: 12.99, Quantity: 2},
		{Name: "Chocolate Cake", Price: 6.99, Quantity: 1},
	}, c.Items())
	assert.Equal(t, 3, c.Count())
	assert.InDelta(t, 32.97, c.Total(), 0.001)
}

func TestLocalCartSetQuantity(t *testing.T) {
	var c LocalCart
	c.Add(burger)
	c.Add(cake)

	c.SetQuantity("Classic Burger", 4)
	assert.Equal(t, 4, c.Items()[0].Quantity)

	c.SetQuantity("Classic Burger", 0)
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, "Chocolate Cake", c.Items()[0].Name)

	c.SetQuantity("Missing", 3)
	assert.Equal(t, 1, c.Len())
}

func TestLocalCartRemoveAndClear(t *testing.T) {
	var c LocalCart
	c.Add(burger)
	c.Add(cake)

	c.Remove("Classic Burger")
	assert.Equal(t, 1, c.Len())

	c.Clear()
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 0.0, c.Total())
}

func TestLocalCartReplace(t *testing.T) {
	var c LocalCart
	c.Add(burger)
	c.Replace([]CartItem{
		{Name: "Soup", Price: 4, Quantity: 2},
		{Name: "Ghost", Price: 1, Quantity: 0},
	})
	assert.Equal(t, []CartItem{{Name: "Soup", Price: 4, Quantity: 2}}, c.Items())
}

func TestLocalCartItemsIsCopy(t *testing.T) {
	var c LocalCart
	c.Add(burger)
	items := c.Items()
	items[0].Quantity = 99
	assert.Equal(t, 1, c.Items()[0].Quantity)
}
