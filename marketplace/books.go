package marketplace

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Storage key for user-posted listings. One shared collection for every
// account on the device; per-user views are filtered out of it at read time.
const keyPostedBooks = "postedBooks"

// BookService manages the posted-books collection.
type BookService struct {
	col *Collection[Book]
}

// NewBookService binds the service to its storage key.
func NewBookService(store *Store) *BookService {
	return &BookService{col: NewCollection[Book](store, keyPostedBooks)}
}

// PostBookInput is the form a user fills in to list a book. Price arrives as
// typed text and is validated strictly rather than silently zeroed.
type PostBookInput struct {
	Title       string
	Author      string
	Category    string
	Price       string
	Description string
	Image       string
}

func (in PostBookInput) validate() (decimal.Decimal, error) {
	fields := map[string]string{}
	if strings.TrimSpace(in.Title) == "" {
		fields["title"] = "required"
	}
	if strings.TrimSpace(in.Author) == "" {
		fields["author"] = "required"
	}
	if strings.TrimSpace(in.Category) == "" {
		fields["category"] = "required"
	}

	price, err := NormalizePriceStrict(strings.TrimSpace(in.Price))
	if err != nil {
		fields["price"] = err.Error()
	} else if price.IsNegative() {
		fields["price"] = "must not be negative"
	}

	if len(fields) > 0 {
		return decimal.Zero, &ValidationError{Fields: fields}
	}
	return price, nil
}

// Post validates the form and appends a new active listing owned by userID.
// The created book, with its generated id and timestamp, is returned.
func (s *BookService) Post(userID string, in PostBookInput) (Book, error) {
	price, err := in.validate()
	if err != nil {
		return Book{}, err
	}

	book := Book{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(in.Title),
		Author:      strings.TrimSpace(in.Author),
		Category:    strings.TrimSpace(in.Category),
		Price:       price,
		Description: strings.TrimSpace(in.Description),
		Image:       strings.TrimSpace(in.Image),
		UserID:      userID,
		Status:      StatusActive,
		CreatedAt:   time.Now().UTC(),
		IsPosted:    true,
	}

	if err := s.col.Append(book); err != nil {
		return Book{}, err
	}
	zap.S().Infow("book posted", "id", book.ID, "owner", userID, "title", book.Title)
	return book, nil
}

// BookUpdate carries the fields an owner may change on a listing. Nil fields
// are left untouched; set fields are merged into the stored entity.
type BookUpdate struct {
	Title       *string
	Author      *string
	Category    *string
	Price       *string
	Description *string
	Image       *string
	Status      *string
}

// Update merges the given partial fields into the listing with id, operating
// on the full stored collection. A missing id is an error, not a silent
// success.
func (s *BookService) Update(id string, upd BookUpdate) (Book, error) {
	var price decimal.Decimal
	if upd.Price != nil {
		p, err := NormalizePriceStrict(strings.TrimSpace(*upd.Price))
		if err != nil {
			return Book{}, &ValidationError{Fields: map[string]string{"price": err.Error()}}
		}
		if p.IsNegative() {
			return Book{}, &ValidationError{Fields: map[string]string{"price": "must not be negative"}}
		}
		price = p
	}
	if upd.Status != nil && *upd.Status != StatusActive && *upd.Status != StatusSold {
		return Book{}, &ValidationError{Fields: map[string]string{"status": fmt.Sprintf("unknown status %q", *upd.Status)}}
	}

	var updated Book
	err := s.col.Update(
		func(b Book) bool { return b.ID == id },
		func(b Book) Book {
			if upd.Title != nil {
				b.Title = *upd.Title
			}
			if upd.Author != nil {
				b.Author = *upd.Author
			}
			if upd.Category != nil {
				b.Category = *upd.Category
			}
			if upd.Price != nil {
				b.Price = price
			}
			if upd.Description != nil {
				b.Description = *upd.Description
			}
			if upd.Image != nil {
				b.Image = *upd.Image
			}
			if upd.Status != nil {
				b.Status = *upd.Status
			}
			updated = b
			return b
		},
	)
	if err != nil {
		return Book{}, err
	}
	return updated, nil
}

// MarkSold flips a listing to sold.
func (s *BookService) MarkSold(id string) (Book, error) {
	status := StatusSold
	return s.Update(id, BookUpdate{Status: &status})
}

// Delete removes the listing with id. Deleting an unknown id is a no-op.
func (s *BookService) Delete(id string) error {
	return s.col.Remove(func(b Book) bool { return b.ID == id })
}

// Get returns the posted listing with id.
func (s *BookService) Get(id string) (Book, error) {
	books, err := s.col.All()
	if err != nil {
		return Book{}, err
	}
	for _, b := range books {
		if b.ID == id {
			return b, nil
		}
	}
	return Book{}, fmt.Errorf("posted book %q: %w", id, ErrNotFound)
}

// All returns every posted listing on the device, regardless of owner.
func (s *BookService) All() ([]Book, error) {
	return s.col.All()
}

// ForOwner returns the listings owned by userID, derived by filtering the
// full stored collection.
func (s *BookService) ForOwner(userID string) ([]Book, error) {
	return s.col.Filter(func(b Book) bool { return b.UserID == userID })
}
