package marketplace

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

//go:embed data/books.json
var catalogJSON []byte

// seedBook is the raw shape of a catalog entry. Prices in the seed data are
// display strings ("$8.50") and get normalized once at load.
type seedBook struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	Price       string `json:"price"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

// Catalog is the static, read-only seed catalog shipped with the app, keyed
// by category. It is never mutated; user listings live in the posted-books
// collection and are merged in at browse time.
type Catalog struct {
	books      []Book
	categories []string
}

// LoadCatalog decodes the embedded seed data.
func LoadCatalog() (*Catalog, error) {
	var byCategory map[string][]seedBook
	if err := json.Unmarshal(catalogJSON, &byCategory); err != nil {
		return nil, fmt.Errorf("decode seed catalog: %w", err)
	}

	categories := make([]string, 0, len(byCategory))
	for cat := range byCategory {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	var books []Book
	for _, cat := range categories {
		for _, sb := range byCategory[cat] {
			books = append(books, Book{
				ID:          sb.ID,
				Title:       sb.Title,
				Author:      sb.Author,
				Category:    cat,
				Price:       NormalizePrice(sb.Price),
				Description: sb.Description,
				Image:       sb.Image,
				Status:      StatusActive,
				IsPosted:    false,
			})
		}
	}

	return &Catalog{books: books, categories: categories}, nil
}

// Books returns a copy of every catalog entry.
func (c *Catalog) Books() []Book {
	return append([]Book(nil), c.books...)
}

// Categories returns the category names in sorted order.
func (c *Catalog) Categories() []string {
	return append([]string(nil), c.categories...)
}

// Get looks up a catalog entry by id.
func (c *Catalog) Get(id string) (Book, error) {
	for _, b := range c.books {
		if b.ID == id {
			return b, nil
		}
	}
	return Book{}, fmt.Errorf("catalog book %q: %w", id, ErrNotFound)
}

// matchesQuery reports whether the book matches a case-insensitive search
// over title, author and description.
func matchesQuery(b Book, query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(b.Title), q) ||
		strings.Contains(strings.ToLower(b.Author), q) ||
		strings.Contains(strings.ToLower(b.Description), q)
}
