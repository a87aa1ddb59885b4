package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"

	"bookbuddies/marketplace"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"
)

const defaultConfigFile = "config.yml"

// readPassword securely reads a password with masking.
func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", err
	}
	fmt.Println() // Add newline after password input
	return strings.TrimSpace(string(bytePassword)), nil
}

func initLogger(debug bool) {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building logger: %v\n", err)
		os.Exit(1)
	}
	zap.ReplaceGlobals(logger)
}

type app struct {
	configPath string
	m          *marketplace.Marketplace
}

func (a *app) open() error {
	cfg, err := marketplace.LoadConfig(a.configPath)
	if err != nil {
		return err
	}
	initLogger(cfg.IsDebug)
	m, err := marketplace.Open(cfg)
	if err != nil {
		return err
	}
	a.m = m
	return nil
}

func (a *app) close() {
	if a.m != nil {
		a.m.Close()
	}
}

// requireUser resolves the current session or tells the user to log in.
func (a *app) requireUser() (marketplace.User, error) {
	user, err := a.m.Auth.Current()
	if err != nil {
		return marketplace.User{}, fmt.Errorf("you need to log in first (bookbuddies login)")
	}
	return user, nil
}

func (a *app) printBooks(books []marketplace.Book) {
	if len(books) == 0 {
		fmt.Println("No books found.")
		return
	}
	sym := a.m.CurrencySymbol()
	fmt.Printf("%-38s %-28s %-20s %-14s %-10s %s\n", "ID", "TITLE", "AUTHOR", "CATEGORY", "PRICE", "STATUS")
	for _, b := range books {
		status := b.Status
		if !b.IsPosted {
			status = "catalog"
		}
		fmt.Printf("%-38s %-28s %-20s %-14s %-10s %s\n",
			b.ID, truncate(b.Title, 28), truncate(b.Author, 20), b.Category,
			marketplace.FormatPrice(b.Price, sym), status)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}

func main() {
	a := &app{}

	root := &cobra.Command{
		Use:           "bookbuddies",
		Short:         "A local marketplace for exchanging used books",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", defaultConfigFile, "path to config file")

	root.AddCommand(
		a.browseCmd(),
		a.categoriesCmd(),
		a.postCmd(),
		a.myBooksCmd(),
		a.updateBookCmd(),
		a.sellCmd(),
		a.deleteBookCmd(),
		a.cartCmd(),
		a.checkoutCmd(),
		a.favCmd(),
		a.historyCmd(),
		a.signupCmd(),
		a.loginCmd(),
		a.logoutCmd(),
		a.whoamiCmd(),
		a.profileCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// ------------------ Browse & search ------------------

func (a *app) browseCmd() *cobra.Command {
	var category, query string
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse the catalog and posted listings",
		RunE: func(cmd *cobra.Command, args []string) error {
			books, err := a.m.Browse(category, query)
			if err != nil {
				return err
			}
			a.printBooks(books)
			return nil
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "", "filter by category")
	cmd.Flags().StringVarP(&query, "query", "q", "", "search title, author and description")
	return cmd
}

func (a *app) categoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List catalog categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, c := range a.m.Catalog.Categories() {
				fmt.Println(c)
			}
			return nil
		},
	}
}

// ------------------ Posting ------------------

func (a *app) postCmd() *cobra.Command {
	var in marketplace.PostBookInput
	cmd := &cobra.Command{
		Use:   "post",
		Short: "Post a book for sale",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.requireUser()
			if err != nil {
				return err
			}
			book, err := a.m.Books.Post(user.ID, in)
			if err != nil {
				return err
			}
			fmt.Printf("Posted %q (%s) for %s\n", book.Title, book.ID,
				marketplace.FormatPrice(book.Price, a.m.CurrencySymbol()))
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Title, "title", "", "book title")
	cmd.Flags().StringVar(&in.Author, "author", "", "book author")
	cmd.Flags().StringVar(&in.Category, "category", "", "book category")
	cmd.Flags().StringVar(&in.Price, "price", "", "asking price, e.g. 12.50")
	cmd.Flags().StringVar(&in.Description, "desc", "", "description")
	cmd.Flags().StringVar(&in.Image, "image", "", "image reference")
	return cmd
}

func (a *app) myBooksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "my-books",
		Short: "List your posted books",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.requireUser()
			if err != nil {
				return err
			}
			books, err := a.m.Books.ForOwner(user.ID)
			if err != nil {
				return err
			}
			a.printBooks(books)
			return nil
		},
	}
}

func (a *app) updateBookCmd() *cobra.Command {
	var title, author, category, price, desc, image string
	cmd := &cobra.Command{
		Use:   "update-book <book-id>",
		Short: "Update one of your posted books",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireUser(); err != nil {
				return err
			}
			var upd marketplace.BookUpdate
			if cmd.Flags().Changed("title") {
				upd.Title = &title
			}
			if cmd.Flags().Changed("author") {
				upd.Author = &author
			}
			if cmd.Flags().Changed("category") {
				upd.Category = &category
			}
			if cmd.Flags().Changed("price") {
				upd.Price = &price
			}
			if cmd.Flags().Changed("desc") {
				upd.Description = &desc
			}
			if cmd.Flags().Changed("image") {
				upd.Image = &image
			}
			book, err := a.m.Books.Update(args[0], upd)
			if err != nil {
				return err
			}
			fmt.Printf("Updated %q\n", book.Title)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&author, "author", "", "new author")
	cmd.Flags().StringVar(&category, "category", "", "new category")
	cmd.Flags().StringVar(&price, "price", "", "new price")
	cmd.Flags().StringVar(&desc, "desc", "", "new description")
	cmd.Flags().StringVar(&image, "image", "", "new image reference")
	return cmd
}

func (a *app) sellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sell <book-id>",
		Short: "Mark one of your posted books as sold",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireUser(); err != nil {
				return err
			}
			book, err := a.m.Books.MarkSold(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("%q is now marked as sold.\n", book.Title)
			return nil
		},
	}
}

func (a *app) deleteBookCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-book <book-id>",
		Short: "Delete one of your posted books",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireUser(); err != nil {
				return err
			}
			if err := a.m.Books.Delete(args[0]); err != nil {
				return err
			}
			fmt.Println("Deleted.")
			return nil
		},
	}
}

// ------------------ Cart ------------------

func (a *app) cartCmd() *cobra.Command {
	cart := &cobra.Command{
		Use:   "cart",
		Short: "Manage the cart",
	}

	var qty int
	add := &cobra.Command{
		Use:   "add <book-id>",
		Short: "Add a book to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			book, err := a.m.FindBook(args[0])
			if err != nil {
				return err
			}
			line, err := a.m.Cart.Add(book, qty)
			if err != nil {
				return err
			}
			fmt.Printf("%q is in the cart (quantity %d).\n", line.Title, line.Quantity)
			return nil
		},
	}
	add.Flags().IntVar(&qty, "qty", 1, "quantity to add")

	rm := &cobra.Command{
		Use:   "rm <book-id>",
		Short: "Remove a book from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.m.Cart.Remove(args[0])
		},
	}

	setQty := &cobra.Command{
		Use:   "qty <book-id> <quantity>",
		Short: "Set the quantity of a cart line",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("quantity %q is not a number", args[1])
			}
			return a.m.Cart.SetQuantity(args[0], n)
		},
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show the cart and its totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			lines, err := a.m.Cart.Items()
			if err != nil {
				return err
			}
			if len(lines) == 0 {
				fmt.Println("The cart is empty.")
				return nil
			}
			sym := a.m.CurrencySymbol()
			for _, l := range lines {
				lineTotal := l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
				fmt.Printf("%-38s %-28s x%-3d %s\n", l.BookID, truncate(l.Title, 28), l.Quantity,
					marketplace.FormatPrice(lineTotal, sym))
			}
			totals, err := a.m.Cart.Totals()
			if err != nil {
				return err
			}
			fmt.Printf("\nSubtotal: %s\nTax:      %s\nTotal:    %s\n",
				totals.FormattedSubtotal, totals.FormattedTax, totals.FormattedTotal)
			return nil
		},
	}

	clear := &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.m.Cart.Clear()
		},
	}

	cart.AddCommand(add, rm, setQty, show, clear)
	return cart
}

func (a *app) checkoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "checkout",
		Short: "Place an order for the cart contents",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.requireUser()
			if err != nil {
				return err
			}
			summary, err := a.m.Checkout(user.ID)
			if err != nil {
				return err
			}
			fmt.Printf("Order placed: %d line(s), total %s. Thank you for your purchase!\n",
				len(summary.Lines), summary.Totals.FormattedTotal)
			return nil
		},
	}
}

// ------------------ Favorites ------------------

func (a *app) favCmd() *cobra.Command {
	fav := &cobra.Command{
		Use:   "fav",
		Short: "Manage favorites",
	}

	add := &cobra.Command{
		Use:   "add <book-id>",
		Short: "Add a book to favorites",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			book, err := a.m.FindBook(args[0])
			if err != nil {
				return err
			}
			if err := a.m.Favorites.Add(book); err != nil {
				return err
			}
			fmt.Printf("%q favorited.\n", book.Title)
			return nil
		},
	}

	rm := &cobra.Command{
		Use:   "rm <book-id>",
		Short: "Remove a book from favorites",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.m.Favorites.Remove(args[0])
		},
	}

	ls := &cobra.Command{
		Use:   "ls",
		Short: "List favorites",
		RunE: func(cmd *cobra.Command, args []string) error {
			books, err := a.m.Favorites.List()
			if err != nil {
				return err
			}
			a.printBooks(books)
			return nil
		},
	}

	fav.AddCommand(add, rm, ls)
	return fav
}

// ------------------ History ------------------

func (a *app) historyCmd() *cobra.Command {
	history := &cobra.Command{
		Use:   "history",
		Short: "Show your exchange history",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.requireUser()
			if err != nil {
				return err
			}
			records, err := a.m.History.ForUser(user.ID)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Println("No exchanges yet.")
				return nil
			}
			sym := a.m.CurrencySymbol()
			for _, r := range records {
				fmt.Printf("%-38s %-28s x%-3d %-10s %-10s %s\n", r.ID, truncate(r.BookTitle, 28),
					r.Quantity, marketplace.FormatPrice(r.Price, sym), r.Status,
					r.CreatedAt.Local().Format("2006-01-02 15:04"))
			}
			return nil
		},
	}

	setStatus := &cobra.Command{
		Use:   "set-status <record-id> <pending|completed|cancelled>",
		Short: "Change the status of an exchange record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireUser(); err != nil {
				return err
			}
			return a.m.History.UpdateStatus(args[0], args[1])
		},
	}

	history.AddCommand(setStatus)
	return history
}

// ------------------ Accounts ------------------

func (a *app) signupCmd() *cobra.Command {
	var name, email string
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readPassword("Choose a password: ")
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			user, err := a.m.Auth.Signup(name, email, password)
			if err != nil {
				return err
			}
			fmt.Printf("Welcome, %s! You are now logged in.\n", user.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	return cmd
}

func (a *app) loginCmd() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in",
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readPassword("Enter your password: ")
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			user, err := a.m.Auth.Login(email, password)
			if err != nil {
				return err
			}
			fmt.Printf("Welcome back, %s!\n", user.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email address")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.m.Auth.Logout(); err != nil {
				return err
			}
			fmt.Println("Logged out.")
			return nil
		},
	}
}

func (a *app) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current user",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.requireUser()
			if err != nil {
				return err
			}
			fmt.Printf("%s <%s>\n", user.Name, user.Email)
			return nil
		},
	}
}

// ------------------ Profile ------------------

func (a *app) profileCmd() *cobra.Command {
	profile := &cobra.Command{
		Use:   "profile",
		Short: "Show or edit your contact profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.requireUser()
			if err != nil {
				return err
			}
			p, err := a.m.Profiles.Load(user.ID)
			if err != nil {
				return err
			}
			fmt.Printf("Name:    %s\nEmail:   %s\nPhone:   %s\nAddress: %s\n",
				user.Name, user.Email, orDash(p.Phone), orDash(p.Address))
			return nil
		},
	}

	var phone, address string
	set := &cobra.Command{
		Use:   "set",
		Short: "Update phone and address",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.requireUser()
			if err != nil {
				return err
			}
			p, err := a.m.Profiles.Load(user.ID)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("phone") {
				p.Phone = phone
			}
			if cmd.Flags().Changed("address") {
				p.Address = address
			}
			if err := a.m.Profiles.Save(user.ID, p); err != nil {
				return err
			}
			fmt.Println("Profile updated.")
			return nil
		},
	}
	set.Flags().StringVar(&phone, "phone", "", "phone number")
	set.Flags().StringVar(&address, "address", "", "address")

	var name, image string
	rename := &cobra.Command{
		Use:   "rename",
		Short: "Change display name and profile image",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.m.Auth.UpdateProfile(name, image)
			if err != nil {
				return err
			}
			fmt.Printf("You are now %q.\n", user.Name)
			return nil
		},
	}
	rename.Flags().StringVar(&name, "name", "", "new display name")
	rename.Flags().StringVar(&image, "image", "", "profile image reference")

	profile.AddCommand(set, rename)
	return profile
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
