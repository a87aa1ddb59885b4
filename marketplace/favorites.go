package marketplace

// Storage key for favorited book snapshots. Like the cart, favorites are
// device-scoped.
const keyFavorites = "favorites"

// FavoritesService manages the favorites set. Entries are book snapshots
// keyed by book id with set semantics: favoriting the same book twice keeps a
// single entry.
type FavoritesService struct {
	col *Collection[Book]
}

// NewFavoritesService binds the service to its storage key.
func NewFavoritesService(store *Store) *FavoritesService {
	return &FavoritesService{col: NewCollection[Book](store, keyFavorites)}
}

// Add snapshots book into the favorites set. Adding an already-favorited book
// is a no-op.
func (s *FavoritesService) Add(book Book) error {
	return s.col.Mutate(func(items []Book) ([]Book, error) {
		for _, it := range items {
			if it.ID == book.ID {
				return items, nil
			}
		}
		return append(items, book), nil
	})
}

// Remove drops bookID from the set; a missing id is a no-op.
func (s *FavoritesService) Remove(bookID string) error {
	return s.col.Remove(func(b Book) bool { return b.ID == bookID })
}

// List returns the favorited snapshots.
func (s *FavoritesService) List() ([]Book, error) {
	return s.col.All()
}

// IsFavorite reports whether bookID is in the set. A linear scan over the
// in-memory view; fine at local-catalog scale.
func (s *FavoritesService) IsFavorite(bookID string) (bool, error) {
	items, err := s.col.View()
	if err != nil {
		return false, err
	}
	for _, it := range items {
		if it.ID == bookID {
			return true, nil
		}
	}
	return false, nil
}
