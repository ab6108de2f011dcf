package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/mrlokans/highlights-keeper/internal/config"
	"github.com/mrlokans/highlights-keeper/internal/kindle"
	"github.com/mrlokans/highlights-keeper/internal/services"
	"github.com/mrlokans/highlights-keeper/internal/subscription"
	"github.com/mrlokans/highlights-keeper/internal/utils"
)

// KindleImportCommand records every book in a Kindle My Clippings.txt file
// into the logged-in user's history.
type KindleImportCommand struct {
	baseCommand
	ClippingsPath string
	Verbose       bool
	DryRun        bool
}

func NewKindleImportCommand(cfg *config.Config) *KindleImportCommand {
	return &KindleImportCommand{baseCommand: newBaseCommand(cfg)}
}

func (cmd *KindleImportCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("kindle-import", flag.ExitOnError)
	cmd.bindCommon(fs)
	fs.StringVar(&cmd.ClippingsPath, "file", "", "Path to Kindle 'My Clippings.txt' file (required)")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "List every book found")
	fs.BoolVar(&cmd.DryRun, "dry-run", false, "Show what would be imported without making changes")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s kindle-import -file <path> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Record the books in a Kindle 'My Clippings.txt' in your import history.\n\n")
		fmt.Fprintf(os.Stderr, "The clippings file is typically found at:\n")
		fmt.Fprintf(os.Stderr, "  /Volumes/Kindle/documents/My Clippings.txt\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s kindle-import -file \"/Volumes/Kindle/documents/My Clippings.txt\"\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s kindle-import -file \"My Clippings.txt\" -dry-run -verbose\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if cmd.ClippingsPath == "" {
		return fmt.Errorf("required flag -file not provided")
	}
	return nil
}

func (cmd *KindleImportCommand) Run() error {
	file, err := os.Open(cmd.ClippingsPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("clippings file not found: %s", cmd.ClippingsPath)
		}
		return fmt.Errorf("failed to open clippings file: %w", err)
	}
	defer file.Close()

	summaries, err := kindle.NewParser().Summarize(file)
	if err != nil {
		return fmt.Errorf("failed to parse clippings: %w", err)
	}
	if len(summaries) == 0 {
		cmd.printf("No books with highlights found in clippings file\n")
		return nil
	}

	totalHighlights := 0
	for _, s := range summaries {
		totalHighlights += s.HighlightCount
	}
	cmd.printf("Found %d books with %d total highlights\n", len(summaries), totalHighlights)

	if cmd.Verbose || cmd.DryRun {
		for i, s := range summaries {
			title := utils.CleanTitle(s.Title)
			cmd.printf("%d. %q by %s (%d highlights)\n", i+1, title, utils.CleanAuthor(s.Author), s.HighlightCount)
		}
	}

	if cmd.DryRun {
		cmd.printf("Dry run: nothing was recorded\n")
		return nil
	}

	app, err := cmd.openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	identity, err := cmd.currentUser(app)
	if err != nil {
		return err
	}

	inputs := make([]services.ImportInput, 0, len(summaries))
	for _, s := range summaries {
		inputs = append(inputs, services.ImportInput{Title: s.Title, Author: s.Author, HighlightCount: s.HighlightCount})
	}

	result := app.Imports.ImportBatch(context.Background(), "kindle", identity.Email, inputs)
	cmd.printf("Recorded %d books (%d new, %d updated)\n", result.BooksCreated+result.BooksUpdated, result.BooksCreated, result.BooksUpdated)

	upgradeNeeded := false
	for _, f := range result.Failures {
		cmd.printf("  failed: %s: %s\n", f.Title, f.Error)
		if errors.Is(f.Err, subscription.ErrUpgradeRequired) {
			upgradeNeeded = true
		}
	}
	if upgradeNeeded {
		cmd.printf("Your free plan is full. Run the upgrade command to import the rest.\n")
	}

	if len(result.Books) == 0 && len(result.Failures) > 0 {
		return fmt.Errorf("no books were recorded")
	}
	return nil
}
