package cli

import (
	"context"
	"flag"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/mrlokans/highlights-keeper/internal/config"
)

// BooksCommand lists the logged-in user's import history.
type BooksCommand struct {
	baseCommand
	CountOnly bool
}

func NewBooksCommand(cfg *config.Config) *BooksCommand {
	return &BooksCommand{baseCommand: newBaseCommand(cfg)}
}

func (cmd *BooksCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("books", flag.ExitOnError)
	cmd.bindCommon(fs)
	fs.BoolVar(&cmd.CountOnly, "count", false, "Print only the number of imported books")
	return fs.Parse(args)
}

func (cmd *BooksCommand) Run() error {
	app, err := cmd.openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	identity, err := cmd.currentUser(app)
	if err != nil {
		return err
	}

	if cmd.CountOnly {
		count, err := app.Books.CountBooks(identity.Email)
		if err != nil {
			return err
		}
		cmd.printf("%d\n", count)
		return nil
	}

	books, err := app.Books.ListBooks(identity.Email)
	if err != nil {
		return err
	}
	if len(books) == 0 {
		cmd.printf("No books imported yet\n")
		return nil
	}

	w := tabwriter.NewWriter(cmd.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TITLE\tAUTHOR\tHIGHLIGHTS\tLAST IMPORTED")
	for _, b := range books {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", b.Title, b.Author, b.HighlightCount, b.LastImportedAt.Local().Format(time.DateTime))
	}
	return w.Flush()
}

// RemoveBookCommand deletes one title from the logged-in user's history.
type RemoveBookCommand struct {
	baseCommand
	Title string
}

func NewRemoveBookCommand(cfg *config.Config) *RemoveBookCommand {
	return &RemoveBookCommand{baseCommand: newBaseCommand(cfg)}
}

func (cmd *RemoveBookCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("remove-book", flag.ExitOnError)
	cmd.bindCommon(fs)
	fs.StringVar(&cmd.Title, "title", "", "Exact title to remove (required)")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if cmd.Title == "" {
		return fmt.Errorf("required flag -title not provided")
	}
	return nil
}

func (cmd *RemoveBookCommand) Run() error {
	app, err := cmd.openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	identity, err := cmd.currentUser(app)
	if err != nil {
		return err
	}

	if err := app.Books.RemoveBook(identity.Email, cmd.Title); err != nil {
		return err
	}
	cmd.printf("Removed %q\n", cmd.Title)
	return nil
}

// UpgradeCommand starts a checkout and prints where to complete it.
type UpgradeCommand struct {
	baseCommand
}

func NewUpgradeCommand(cfg *config.Config) *UpgradeCommand {
	return &UpgradeCommand{baseCommand: newBaseCommand(cfg)}
}

func (cmd *UpgradeCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("upgrade", flag.ExitOnError)
	cmd.bindCommon(fs)
	return fs.Parse(args)
}

func (cmd *UpgradeCommand) Run() error {
	app, err := cmd.openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	identity, err := cmd.currentUser(app)
	if err != nil {
		return err
	}

	offer := app.Upgrades.Upgrade(context.Background(), identity.Email)
	cmd.printf("Upgrading unlocks:\n")
	for _, reason := range offer.Reasons {
		cmd.printf("  - %s\n", reason)
	}
	if offer.Error != "" {
		cmd.printf("\n%s\n", offer.Error)
		return nil
	}
	cmd.printf("\nComplete your upgrade at:\n  %s\n", offer.CheckoutURL)
	return nil
}
