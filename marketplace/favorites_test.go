package marketplace

import "testing"

func TestFavoritesMembership(t *testing.T) {
	favs := NewFavoritesService(newStore(t))
	book := testBook("b1", "Dune", "10.00")

	ok, err := favs.IsFavorite("b1")
	if err != nil {
		t.Fatalf("isFavorite: %v", err)
	}
	if ok {
		t.Errorf("favorite before add = true, want false")
	}

	if err := favs.Add(book); err != nil {
		t.Fatalf("add: %v", err)
	}
	ok, err = favs.IsFavorite("b1")
	if err != nil {
		t.Fatalf("isFavorite: %v", err)
	}
	if !ok {
		t.Errorf("favorite after add = false, want true")
	}

	if err := favs.Remove("b1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	ok, err = favs.IsFavorite("b1")
	if err != nil {
		t.Fatalf("isFavorite: %v", err)
	}
	if ok {
		t.Errorf("favorite after remove = true, want false")
	}
}

func TestFavoritesSetSemantics(t *testing.T) {
	favs := NewFavoritesService(newStore(t))
	book := testBook("b1", "Dune", "10.00")

	if err := favs.Add(book); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := favs.Add(book); err != nil {
		t.Fatalf("add again: %v", err)
	}

	list, err := favs.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("entries = %d, want 1 (no duplicates)", len(list))
	}
}

func TestRemoveMissingFavoriteIsNoOp(t *testing.T) {
	favs := NewFavoritesService(newStore(t))
	if err := favs.Remove("nope"); err != nil {
		t.Errorf("remove missing = %v, want nil", err)
	}
}
