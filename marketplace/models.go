package marketplace

import (
	"time"

	"github.com/shopspring/decimal"
)

// Book statuses. A posted book starts out active and flips to sold once the
// owner marks the exchange as done.
const (
	StatusActive = "active"
	StatusSold   = "sold"
)

// Exchange record statuses.
const (
	ExchangePending   = "pending"
	ExchangeCompleted = "completed"
	ExchangeCancelled = "cancelled"
)

// Book is a single listing, either a read-only catalog entry or a book posted
// by a user of this device. Catalog books carry no UserID and IsPosted=false.
type Book struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Author      string          `json:"author"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description,omitempty"`
	Image       string          `json:"image,omitempty"`
	UserID      string          `json:"userId,omitempty"`
	Status      string          `json:"status,omitempty"`
	CreatedAt   time.Time       `json:"createdAt,omitempty"`
	IsPosted    bool            `json:"isPosted"`
}

// CartLine is one entry in the cart. Title, author, price and image are a
// snapshot of the book at add-time: editing the underlying listing later does
// not change lines already in the cart, so the cart total is fixed at the
// price the buyer saw.
type CartLine struct {
	BookID   string          `json:"bookId"`
	Title    string          `json:"title"`
	Author   string          `json:"author"`
	Price    decimal.Decimal `json:"price"`
	Image    string          `json:"image,omitempty"`
	Quantity int             `json:"quantity"`
}

// User is the active session profile. The password hash never leaves the
// credential store; this struct is what gets persisted under the session key.
type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	ProfileImage string `json:"profileImage,omitempty"`
}

// Profile holds the contact details stored per user, separate from the
// credential record.
type Profile struct {
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// ExchangeRecord is one completed or in-flight exchange in a user's history.
type ExchangeRecord struct {
	ID          string          `json:"id"`
	UserID      string          `json:"userId"`
	BookID      string          `json:"bookId"`
	BookTitle   string          `json:"bookTitle"`
	Counterpart string          `json:"counterpart,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// OrderSummary is what a checkout returns: the lines that were bought, the
// computed totals and the exchange records written to history.
type OrderSummary struct {
	Lines    []CartLine       `json:"lines"`
	Totals   OrderTotals      `json:"totals"`
	Records  []ExchangeRecord `json:"records"`
	PlacedAt time.Time        `json:"placedAt"`
}
