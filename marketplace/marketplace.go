package marketplace

import (
	"strings"
	"time"

	"go.uber.org/zap"
)

// Marketplace is a thin façade over the store and the per-domain services,
// keeping CLI code simple. Each domain owns its own storage key, so no
// cross-domain coordination is needed; the one multi-domain operation,
// Checkout, is a best-effort sequence (history first, then cart clear).
type Marketplace struct {
	store *Store
	cfg   Config

	Catalog   *Catalog
	Books     *BookService
	Cart      *CartService
	Favorites *FavoritesService
	History   *HistoryService
	Auth      *AuthService
	Profiles  *ProfileService
}

// Open opens (or creates) the store file named in cfg and wires every
// service.
func Open(cfg Config) (*Marketplace, error) {
	catalog, err := LoadCatalog()
	if err != nil {
		return nil, err
	}
	taxRate, err := cfg.TaxRate()
	if err != nil {
		return nil, err
	}
	store, err := OpenStore(cfg.Storage.Path)
	if err != nil {
		return nil, err
	}

	return &Marketplace{
		store:     store,
		cfg:       cfg,
		Catalog:   catalog,
		Books:     NewBookService(store),
		Cart:      NewCartService(store, taxRate),
		Favorites: NewFavoritesService(store),
		History:   NewHistoryService(store),
		Auth:      NewAuthService(store),
		Profiles:  NewProfileService(store),
	}, nil
}

// Close closes the underlying store.
func (m *Marketplace) Close() error { return m.store.Close() }

// CurrencySymbol returns the configured display symbol.
func (m *Marketplace) CurrencySymbol() string { return m.cfg.Pricing.Currency }

// Browse returns the catalog merged with active posted listings, optionally
// narrowed to a category ("" or "All" means everything) and a search query
// over title, author and description.
func (m *Marketplace) Browse(category, query string) ([]Book, error) {
	posted, err := m.Books.All()
	if err != nil {
		return nil, err
	}

	all := m.Catalog.Books()
	for _, b := range posted {
		if b.Status == StatusActive {
			all = append(all, b)
		}
	}

	out := make([]Book, 0, len(all))
	for _, b := range all {
		if category != "" && !strings.EqualFold(category, "All") && !strings.EqualFold(b.Category, category) {
			continue
		}
		if !matchesQuery(b, query) {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

// FindBook looks a book up by id across the catalog and posted listings.
func (m *Marketplace) FindBook(id string) (Book, error) {
	if b, err := m.Catalog.Get(id); err == nil {
		return b, nil
	}
	return m.Books.Get(id)
}

// Checkout places a local order for the current cart: it computes the totals,
// writes one completed exchange record per line to the user's history, and
// clears the cart. There is no payment step; the "purchase" is entirely
// on-device.
func (m *Marketplace) Checkout(userID string) (OrderSummary, error) {
	lines, err := m.Cart.Items()
	if err != nil {
		return OrderSummary{}, err
	}
	if len(lines) == 0 {
		return OrderSummary{}, ErrEmptyCart
	}

	totals, err := m.Cart.Totals()
	if err != nil {
		return OrderSummary{}, err
	}

	records := make([]ExchangeRecord, 0, len(lines))
	for _, l := range lines {
		rec, err := m.History.Record(ExchangeRecord{
			UserID:    userID,
			BookID:    l.BookID,
			BookTitle: l.Title,
			Price:     l.Price,
			Quantity:  l.Quantity,
			Status:    ExchangeCompleted,
		})
		if err != nil {
			return OrderSummary{}, err
		}
		records = append(records, rec)
	}

	if err := m.Cart.Clear(); err != nil {
		return OrderSummary{}, err
	}

	zap.S().Infow("checkout complete", "user", userID, "lines", len(lines), "total", totals.FormattedTotal)
	return OrderSummary{
		Lines:    lines,
		Totals:   totals,
		Records:  records,
		PlacedAt: time.Now().UTC(),
	}, nil
}
