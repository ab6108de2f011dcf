package main

import (
	"fmt"
	"os"

	"github.com/mrlokans/highlights-keeper/internal/cli"
	"github.com/mrlokans/highlights-keeper/internal/config"
	"github.com/mrlokans/highlights-keeper/internal/entrypoint"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

type command interface {
	ParseFlags(args []string) error
	Run() error
}

func main() {
	cfg := config.NewConfig()

	// If no arguments or "serve" command, run the HTTP server
	if len(os.Args) < 2 || os.Args[1] == "serve" {
		entrypoint.Run(cfg, Version)
		return
	}

	command := os.Args[1]
	args := os.Args[2:]

	var cmd command
	switch command {
	case "register":
		cmd = cli.NewRegisterCommand(cfg)
	case "login":
		cmd = cli.NewLoginCommand(cfg)
	case "logout":
		cmd = cli.NewLogoutCommand(cfg)
	case "whoami":
		cmd = cli.NewWhoamiCommand(cfg)
	case "books":
		cmd = cli.NewBooksCommand(cfg)
	case "remove-book":
		cmd = cli.NewRemoveBookCommand(cfg)
	case "kindle-import":
		cmd = cli.NewKindleImportCommand(cfg)
	case "upgrade":
		cmd = cli.NewUpgradeCommand(cfg)
	case "purge-sessions":
		cmd = cli.NewPurgeSessionsCommand(cfg)
	case "version":
		fmt.Printf("highlights-keeper %s (%s)\n", Version, Commit)
		return
	case "-h", "--help", "help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}

	if err := cmd.ParseFlags(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := cmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  serve           Start the HTTP server (default if no command given)\n")
	fmt.Fprintf(os.Stderr, "  register        Create an account\n")
	fmt.Fprintf(os.Stderr, "  login           Log in and remember the session\n")
	fmt.Fprintf(os.Stderr, "  logout          Forget the remembered session\n")
	fmt.Fprintf(os.Stderr, "  whoami          Show who is logged in\n")
	fmt.Fprintf(os.Stderr, "  books           List imported books\n")
	fmt.Fprintf(os.Stderr, "  remove-book     Remove a book from your history\n")
	fmt.Fprintf(os.Stderr, "  kindle-import   Record books from Kindle 'My Clippings.txt'\n")
	fmt.Fprintf(os.Stderr, "  upgrade         Start an upgrade to the paid plan\n")
	fmt.Fprintf(os.Stderr, "  purge-sessions  Delete expired sessions now\n")
	fmt.Fprintf(os.Stderr, "  version         Print version information\n")
	fmt.Fprintf(os.Stderr, "\nUse '%s <command> -h' for help on a specific command.\n", os.Args[0])
}
