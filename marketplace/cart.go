package marketplace

import (
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Storage key for the device cart. The cart is device-scoped, not per-user:
// logging in as a different account on the same device sees the same cart.
const keyCart = "cart"

// CartService manages the cart collection and its totals.
type CartService struct {
	col     *Collection[CartLine]
	taxRate decimal.Decimal
}

// NewCartService binds the cart to its storage key. taxRate is the configured
// rate used by Totals; zero value falls back to DefaultTaxRate.
func NewCartService(store *Store, taxRate decimal.Decimal) *CartService {
	if taxRate.IsZero() {
		taxRate = DefaultTaxRate
	}
	return &CartService{col: NewCollection[CartLine](store, keyCart), taxRate: taxRate}
}

// Add puts quantity copies of book into the cart. If a line for the book
// already exists its quantity is incremented, never duplicated into a second
// line. The line snapshots the book's display fields at add-time; later edits
// to the listing do not reach lines already in the cart. Quantities below one
// default to one.
func (s *CartService) Add(book Book, quantity int) (CartLine, error) {
	if quantity < 1 {
		quantity = 1
	}

	var line CartLine
	err := s.col.Mutate(func(items []CartLine) ([]CartLine, error) {
		for i, it := range items {
			if it.BookID == book.ID {
				items[i].Quantity += quantity
				line = items[i]
				return items, nil
			}
		}
		line = CartLine{
			BookID:   book.ID,
			Title:    book.Title,
			Author:   book.Author,
			Price:    book.Price,
			Image:    book.Image,
			Quantity: quantity,
		}
		return append(items, line), nil
	})
	if err != nil {
		return CartLine{}, err
	}
	zap.S().Debugw("cart updated", "book", book.ID, "quantity", line.Quantity)
	return line, nil
}

// SetQuantity sets the quantity of the line for bookID. A quantity of zero or
// less removes the line. Unknown bookID with a positive quantity is
// ErrNotFound.
func (s *CartService) SetQuantity(bookID string, quantity int) error {
	if quantity < 1 {
		return s.Remove(bookID)
	}
	return s.col.Update(
		func(l CartLine) bool { return l.BookID == bookID },
		func(l CartLine) CartLine {
			l.Quantity = quantity
			return l
		},
	)
}

// Remove drops the line for bookID; a missing line is a no-op.
func (s *CartService) Remove(bookID string) error {
	return s.col.Remove(func(l CartLine) bool { return l.BookID == bookID })
}

// Clear empties the cart.
func (s *CartService) Clear() error {
	return s.col.Replace([]CartLine{})
}

// Items returns the current cart lines.
func (s *CartService) Items() ([]CartLine, error) {
	return s.col.All()
}

// Contains reports whether bookID has a line in the cart and its quantity.
func (s *CartService) Contains(bookID string) (bool, int, error) {
	items, err := s.col.View()
	if err != nil {
		return false, 0, err
	}
	for _, it := range items {
		if it.BookID == bookID {
			return true, it.Quantity, nil
		}
	}
	return false, 0, nil
}

// Totals computes the order totals for the current cart contents at the
// configured tax rate. An empty cart yields all zeros.
func (s *CartService) Totals() (OrderTotals, error) {
	items, err := s.col.All()
	if err != nil {
		return OrderTotals{}, err
	}
	return ComputeOrderTotals(cartLineItems(items), s.taxRate), nil
}

func cartLineItems(lines []CartLine) []LineItem {
	out := make([]LineItem, len(lines))
	for i, l := range lines {
		out[i] = LineItem{Price: l.Price, Quantity: l.Quantity}
	}
	return out
}
