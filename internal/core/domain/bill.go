package domain

import "github.com/google/uuid"

// BillLine is one priced line of an in-progress bill.
type BillLine struct {
	MenuItemID uuid.UUID `json:"menu_item_id"`
	Name       string    `json:"name"`
	Quantity   int       `json:"quantity"`
	UnitPrice  int64     `json:"unit_price"`
	TotalPrice int64     `json:"total_price"`
}

// Bill is the ephemeral ordered line list built before checkout. It is never
// persisted; checkout freezes its lines into order items.
type Bill struct {
	lines []BillLine
}

// NewBill returns an empty bill.
func NewBill() *Bill {
	return &Bill{}
}

// AddItem adds quantity of a menu item. If the item is already on the bill the
// quantities are summed and the line keeps the unit price fixed at first add;
// the price passed on subsequent adds is ignored.
func (b *Bill) AddItem(menuItemID uuid.UUID, name string, unitPrice int64, quantity int) {
	if quantity <= 0 {
		return
	}
	for i := range b.lines {
		if b.lines[i].MenuItemID == menuItemID {
			b.lines[i].Quantity += quantity
			b.lines[i].TotalPrice = int64(b.lines[i].Quantity) * b.lines[i].UnitPrice
			return
		}
	}
	b.lines = append(b.lines, BillLine{
		MenuItemID: menuItemID,
		Name:       name,
		Quantity:   quantity,
		UnitPrice:  unitPrice,
		TotalPrice: int64(quantity) * unitPrice,
	})
}

// SetQuantity replaces a line's quantity, recomputing its total at the fixed
// unit price. Zero or negative quantity removes the line.
func (b *Bill) SetQuantity(menuItemID uuid.UUID, quantity int) {
	for i := range b.lines {
		if b.lines[i].MenuItemID != menuItemID {
			continue
		}
		if quantity <= 0 {
			b.lines = append(b.lines[:i], b.lines[i+1:]...)
			return
		}
		b.lines[i].Quantity = quantity
		b.lines[i].TotalPrice = int64(quantity) * b.lines[i].UnitPrice
		return
	}
}

// Remove deletes a line entirely.
func (b *Bill) Remove(menuItemID uuid.UUID) {
	b.SetQuantity(menuItemID, 0)
}

// Lines returns the bill lines in insertion order.
func (b *Bill) Lines() []BillLine {
	return b.lines
}

// Total is the sum of line totals.
func (b *Bill) Total() int64 {
	var total int64
	for _, l := range b.lines {
		total += l.TotalPrice
	}
	return total
}

// IsEmpty reports whether the bill has no lines.
func (b *Bill) IsEmpty() bool {
	return len(b.lines) == 0
}
