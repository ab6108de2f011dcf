package cli

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mrlokans/highlights-keeper/internal/config"
	"github.com/mrlokans/highlights-keeper/internal/entities"
	"github.com/mrlokans/highlights-keeper/internal/entrypoint"
	"github.com/mrlokans/highlights-keeper/internal/rememberme"
)

// ErrNotLoggedIn is returned by commands that need a remembered session.
var ErrNotLoggedIn = errors.New("not logged in (run the login command first)")

// baseCommand carries the flags and streams every command shares.
type baseCommand struct {
	cfg *config.Config

	DatabasePath string
	SessionPath  string

	Out io.Writer
	In  io.Reader
}

func newBaseCommand(cfg *config.Config) baseCommand {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	return baseCommand{cfg: cfg, Out: os.Stdout, In: os.Stdin}
}

func (b *baseCommand) bindCommon(fs *flag.FlagSet) {
	fs.StringVar(&b.DatabasePath, "db", b.cfg.Database.Path, "Path to the local database file")
	fs.StringVar(&b.SessionPath, "session-file", b.cfg.RememberMe.Path, "Path of the file that remembers the logged-in session")
}

// openApp opens the store with the session pointer kept in SessionPath.
func (b *baseCommand) openApp() (*entrypoint.App, error) {
	cfg := *b.cfg
	cfg.Database.Path = b.DatabasePath
	cfg.RememberMe.Path = b.SessionPath
	return entrypoint.NewApp(&cfg, rememberme.NewFileStore(b.SessionPath))
}

// currentUser resolves the remembered session or fails with ErrNotLoggedIn.
func (b *baseCommand) currentUser(app *entrypoint.App) (*entities.Identity, error) {
	identity, err := app.SessionService.CurrentSession()
	if err != nil {
		return nil, err
	}
	if identity == nil {
		return nil, ErrNotLoggedIn
	}
	return identity, nil
}

// readPassword returns flagValue, or the first line of In when the flag was left empty.
func (b *baseCommand) readPassword(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	fmt.Fprint(b.Out, "Password: ")
	line, err := bufio.NewReader(b.In).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (b *baseCommand) printf(format string, args ...any) {
	fmt.Fprintf(b.Out, format, args...)
}
