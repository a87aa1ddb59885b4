package marketplace

import (
	"errors"
	"path/filepath"
	"testing"
)

func testMarketplace(t *testing.T) *Marketplace {
	t.Helper()
	var cfg Config
	cfg.Storage.Path = filepath.Join(t.TempDir(), "m.db")
	cfg.Pricing.TaxRate = "0.10"
	cfg.Pricing.Currency = "$"

	m, err := Open(cfg)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { m.Close() })
	return m
}

func TestBrowseMergesCatalogAndPostedBooks(t *testing.T) {
	m := testMarketplace(t)
	catalogCount := len(m.Catalog.Books())

	posted, err := m.Books.Post("u1", PostBookInput{
		Title: "Norwegian Wood", Author: "Haruki Murakami", Category: "Fiction", Price: "6.50",
	})
	if err != nil {
		t.Fatalf("post: %v", err)
	}

	all, err := m.Browse("", "")
	if err != nil {
		t.Fatalf("browse: %v", err)
	}
	if len(all) != catalogCount+1 {
		t.Errorf("browse = %d books, want %d", len(all), catalogCount+1)
	}

	// Sold listings drop out of browse.
	if _, err := m.Books.MarkSold(posted.ID); err != nil {
		t.Fatalf("markSold: %v", err)
	}
	all, err = m.Browse("", "")
	if err != nil {
		t.Fatalf("browse: %v", err)
	}
	if len(all) != catalogCount {
		t.Errorf("browse after sell = %d books, want %d", len(all), catalogCount)
	}
}

func TestBrowseCategoryAndQueryFilters(t *testing.T) {
	m := testMarketplace(t)

	fiction, err := m.Browse("Fiction", "")
	if err != nil {
		t.Fatalf("browse: %v", err)
	}
	if len(fiction) == 0 {
		t.Fatalf("no fiction books in catalog")
	}
	for _, b := range fiction {
		if b.Category != "Fiction" {
			t.Errorf("category filter leaked %q", b.Category)
		}
	}

	// "All" behaves like no filter.
	everything, err := m.Browse("All", "")
	if err != nil {
		t.Fatalf("browse: %v", err)
	}
	if len(everything) != len(m.Catalog.Books()) {
		t.Errorf("browse(All) = %d, want %d", len(everything), len(m.Catalog.Books()))
	}

	// Search is case-insensitive across title, author and description.
	hits, err := m.Browse("", "SAPIENS")
	if err != nil {
		t.Fatalf("browse: %v", err)
	}
	if len(hits) != 1 || hits[0].Title != "Sapiens" {
		t.Errorf("search hits = %v, want just Sapiens", hits)
	}
	hits, err = m.Browse("", "hawking")
	if err != nil {
		t.Fatalf("browse: %v", err)
	}
	if len(hits) != 1 || hits[0].Author != "Stephen Hawking" {
		t.Errorf("author search hits = %v, want Hawking's book", hits)
	}
}

func TestCheckout(t *testing.T) {
	m := testMarketplace(t)

	book, err := m.Catalog.Get("fic-001")
	if err != nil {
		t.Fatalf("catalog get: %v", err)
	}
	if _, err := m.Cart.Add(book, 2); err != nil {
		t.Fatalf("cart add: %v", err)
	}
	other, err := m.Catalog.Get("sci-001")
	if err != nil {
		t.Fatalf("catalog get: %v", err)
	}
	if _, err := m.Cart.Add(other, 1); err != nil {
		t.Fatalf("cart add: %v", err)
	}

	summary, err := m.Checkout("u1")
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if len(summary.Lines) != 2 || len(summary.Records) != 2 {
		t.Errorf("summary lines/records = %d/%d, want 2/2", len(summary.Lines), len(summary.Records))
	}
	// 2 * 8.50 + 9.75 = 26.75, plus 10% tax.
	if summary.Totals.FormattedTotal != "$29.43" {
		t.Errorf("total = %q, want $29.43", summary.Totals.FormattedTotal)
	}

	// Cart is cleared and the exchanges are in the user's history.
	items, err := m.Cart.Items()
	if err != nil {
		t.Fatalf("items: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("cart after checkout = %d lines, want 0", len(items))
	}
	records, err := m.History.ForUser("u1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("history = %d records, want 2", len(records))
	}
	for _, r := range records {
		if r.Status != ExchangeCompleted {
			t.Errorf("record status = %q, want %q", r.Status, ExchangeCompleted)
		}
	}
}

func TestCheckoutEmptyCart(t *testing.T) {
	m := testMarketplace(t)
	if _, err := m.Checkout("u1"); !errors.Is(err, ErrEmptyCart) {
		t.Errorf("checkout empty cart = %v, want ErrEmptyCart", err)
	}
}

func TestFindBookAcrossSources(t *testing.T) {
	m := testMarketplace(t)

	if _, err := m.FindBook("fic-001"); err != nil {
		t.Errorf("catalog lookup: %v", err)
	}

	posted, err := m.Books.Post("u1", PostBookInput{
		Title: "X", Author: "A", Category: "Fiction", Price: "3",
	})
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	if _, err := m.FindBook(posted.ID); err != nil {
		t.Errorf("posted lookup: %v", err)
	}

	if _, err := m.FindBook("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing lookup = %v, want ErrNotFound", err)
	}
}
