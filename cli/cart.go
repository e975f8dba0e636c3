package main

// LocalCart is the client's working copy of the cart. Lines are keyed by
// item name; every change is pushed to the server as a whole list.
type LocalCart struct {
	items []CartItem
}

// Items returns a copy of the cart lines
func (c *LocalCart) Items() []CartItem {
	out := make([]CartItem, len(c.items))
	copy(out, c.items)
	return out
}

// Replace swaps in the lines loaded from the server
func (c *LocalCart) Replace(items []CartItem) {
	c.items = make([]CartItem, 0, len(items))
	for _, it := range items {
		if it.Quantity > 0 {
			c.items = append(c.items, it)
		}
	}
}

func (c *LocalCart) index(name string) int {
	for i, it := range c.items {
		if it.Name == name {
			return i
		}
	}
	return -1
}

// Add puts one of item in the cart, snapshotting its current price
func (c *LocalCart) Add(item MenuItem) {
	if i := c.index(item.Name); i >= 0 {
		c.items[i].Quantity++
		return
	}
	c.items = append(c.items, CartItem{Name: item.Name, Price: item.Price, Quantity: 1})
}

// SetQuantity changes a line's quantity; zero or less removes the line
func (c *LocalCart) SetQuantity(name string, quantity int) {
	i := c.index(name)
	if i < 0 {
		return
	}
	if quantity <= 0 {
		c.Remove(name)
		return
	}
	c.items[i].Quantity = quantity
}

// Remove drops a line
func (c *LocalCart) Remove(name string) {
	if i := c.index(name); i >= 0 {
		c.items = append(c.items[:i], c.items[i+1:]...)
	}
}

// Clear empties the cart
func (c *LocalCart) Clear() {
	c.items = nil
}

// Count is the number of units across all lines
func (c *LocalCart) Count() int {
	n := 0
	for _, it := range c.items {
		n += it.Quantity
	}
	return n
}

// Total sums price times quantity
func (c *LocalCart) Total() float64 {
	var total float64
	for _, it := range c.items {
		total += it.Price * float64(it.Quantity)
	}
	return total
}

// Len is the number of lines
func (c *LocalCart) Len() int {
	return len(c.items)
}
