package main

import (
	"fmt"
	"os"

	"bookbuddies/marketplace"
)

// Seeds a fresh store with demo accounts and listings so the app has
// something to show on first run. Wipes any existing store file first.
func main() {
	cfg, err := marketplace.LoadConfig("config.yml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading config: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Cleaning up existing store file...")
	if err := os.Remove(cfg.Storage.Path); err != nil && !os.IsNotExist(err) {
		fmt.Printf("Warning: Could not remove %s: %v\n", cfg.Storage.Path, err)
	}

	m, err := marketplace.Open(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
		os.Exit(1)
	}
	defer m.Close()

	demoUsers := []struct {
		name, email, password string
	}{
		{"Alice Nguyen", "alice@example.com", "reading-rainbow"},
		{"Ben Okafor", "ben@example.com", "turn-the-page"},
	}

	demoBooks := map[string][]marketplace.PostBookInput{
		"alice@example.com": {
			{Title: "Norwegian Wood", Author: "Haruki Murakami", Category: "Fiction", Price: "6.50", Description: "Well-read paperback, some notes in margins."},
			{Title: "Cosmos", Author: "Carl Sagan", Category: "Science", Price: "9.00", Description: "Hardcover, great condition."},
		},
		"ben@example.com": {
			{Title: "Zero to One", Author: "Peter Thiel", Category: "Business", Price: "8.75", Description: "Like new."},
		},
	}

	for _, du := range demoUsers {
		user, err := m.Auth.Signup(du.name, du.email, du.password)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error seeding user %s: %v\n", du.email, err)
			os.Exit(1)
		}
		fmt.Printf("Created user %s <%s>\n", user.Name, user.Email)

		for _, in := range demoBooks[du.email] {
			book, err := m.Books.Post(user.ID, in)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error seeding book %q: %v\n", in.Title, err)
				os.Exit(1)
			}
			fmt.Printf("  Posted %q (%s)\n", book.Title, book.ID)
		}
	}

	// Leave the store logged out so the demo starts at the login flow.
	if err := m.Auth.Logout(); err != nil {
		fmt.Fprintf(os.Stderr, "Error clearing session: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Seed complete.")
}
