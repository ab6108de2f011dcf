package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/highlights-keeper/internal/auth"
	"github.com/mrlokans/highlights-keeper/internal/config"
)

type command interface {
	ParseFlags(args []string) error
	Run() error
}

type testEnv struct {
	cfg *config.Config
	dir string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	return &testEnv{
		dir: dir,
		cfg: &config.Config{
			Database:     config.Database{Path: filepath.Join(dir, "cli.db"), BusyTimeout: time.Second},
			Auth:         config.Auth{PasswordScheme: config.PasswordSchemeSHA256, PasswordSalt: "test-salt"},
			RememberMe:   config.RememberMe{Path: filepath.Join(dir, "session")},
			Subscription: config.Subscription{FreeBookLimit: 5},
		},
	}
}

// run wires a command to buffers and executes it.
func run(t *testing.T, cmd command, base *baseCommand, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	base.Out = &out
	base.In = strings.NewReader(stdin)

	require.NoError(t, cmd.ParseFlags(args))
	err := cmd.Run()
	return out.String(), err
}

func (e *testEnv) register(t *testing.T, email, password string) {
	t.Helper()
	cmd := NewRegisterCommand(e.cfg)
	_, err := run(t, cmd, &cmd.baseCommand, "", "-email", email, "-password", password, "-name", "Reader")
	require.NoError(t, err)
}

func (e *testEnv) login(t *testing.T, email, password string) error {
	t.Helper()
	cmd := NewLoginCommand(e.cfg)
	_, err := run(t, cmd, &cmd.baseCommand, password+"\n", "-email", email)
	return err
}

func (e *testEnv) whoami(t *testing.T) (string, error) {
	t.Helper()
	cmd := NewWhoamiCommand(e.cfg)
	return run(t, cmd, &cmd.baseCommand, "")
}

func TestCLI_RegisterLoginWhoamiLogout(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.whoami(t)
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	env.register(t, "Reader@Example.com", "secret")

	// Password read from stdin
	require.NoError(t, env.login(t, "reader@example.com", "secret"))

	out, err := env.whoami(t)
	require.NoError(t, err)
	assert.Equal(t, "Reader (reader@example.com)\n", out)

	logout := NewLogoutCommand(env.cfg)
	_, err = run(t, logout, &logout.baseCommand, "")
	require.NoError(t, err)

	_, err = env.whoami(t)
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestCLI_RegisterDuplicate(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "reader@example.com", "secret")

	cmd := NewRegisterCommand(env.cfg)
	_, err := run(t, cmd, &cmd.baseCommand, "", "-email", "READER@example.com", "-password", "other")
	assert.ErrorIs(t, err, auth.ErrDuplicateUser)
}

func TestCLI_LoginFailures(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "reader@example.com", "secret")

	assert.ErrorIs(t, env.login(t, "reader@example.com", "wrong"), auth.ErrInvalidCredentials)
	assert.ErrorIs(t, env.login(t, "nobody@example.com", "secret"), auth.ErrUserNotFound)

	_, err := os.Stat(env.cfg.RememberMe.Path)
	assert.True(t, os.IsNotExist(err), "failed logins leave no remembered session")
}

const clippings = `Dune (Frank Herbert)
- Your Highlight on Location 10-12 | Added on Monday, 1 January 2024 10:00:00

I must not fear.
==========
Emma.epub (Jane Austen)
- Your Highlight on page 7 | Added on Tuesday, 2 January 2024 09:00:00

Badly done, Emma!
==========
`

func TestCLI_KindleImportAndBooks(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "reader@example.com", "secret")
	require.NoError(t, env.login(t, "reader@example.com", "secret"))

	path := filepath.Join(env.dir, "My Clippings.txt")
	require.NoError(t, os.WriteFile(path, []byte(clippings), 0644))

	importCmd := NewKindleImportCommand(env.cfg)
	out, err := run(t, importCmd, &importCmd.baseCommand, "", "-file", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Recorded 2 books (2 new, 0 updated)")

	booksCmd := NewBooksCommand(env.cfg)
	out, err = run(t, booksCmd, &booksCmd.baseCommand, "")
	require.NoError(t, err)
	assert.Contains(t, out, "Dune")
	assert.Contains(t, out, "Emma")
	assert.NotContains(t, out, ".epub")

	countCmd := NewBooksCommand(env.cfg)
	out, err = run(t, countCmd, &countCmd.baseCommand, "", "-count")
	require.NoError(t, err)
	assert.Equal(t, "2\n", out)

	removeCmd := NewRemoveBookCommand(env.cfg)
	_, err = run(t, removeCmd, &removeCmd.baseCommand, "", "-title", "Dune")
	require.NoError(t, err)

	countCmd = NewBooksCommand(env.cfg)
	out, err = run(t, countCmd, &countCmd.baseCommand, "", "-count")
	require.NoError(t, err)
	assert.Equal(t, "1\n", out)
}

func TestCLI_KindleImportDryRun(t *testing.T) {
	env := newTestEnv(t)

	path := filepath.Join(env.dir, "My Clippings.txt")
	require.NoError(t, os.WriteFile(path, []byte(clippings), 0644))

	// No session needed for a dry run
	cmd := NewKindleImportCommand(env.cfg)
	out, err := run(t, cmd, &cmd.baseCommand, "", "-file", path, "-dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, `"Emma" by Jane Austen`)
	assert.Contains(t, out, "Dry run")

	_, err = os.Stat(env.cfg.Database.Path)
	assert.True(t, os.IsNotExist(err))
}

func TestCLI_KindleImportMissingFile(t *testing.T) {
	env := newTestEnv(t)
	cmd := NewKindleImportCommand(env.cfg)
	_, err := run(t, cmd, &cmd.baseCommand, "", "-file", filepath.Join(env.dir, "missing.txt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestCLI_UpgradeWithoutService(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "reader@example.com", "secret")
	require.NoError(t, env.login(t, "reader@example.com", "secret"))

	cmd := NewUpgradeCommand(env.cfg)
	out, err := run(t, cmd, &cmd.baseCommand, "")
	require.NoError(t, err)
	assert.Contains(t, out, "Upgrading unlocks:")
	assert.Contains(t, out, "not available")
}

func TestCLI_PurgeSessions(t *testing.T) {
	env := newTestEnv(t)
	cmd := NewPurgeSessionsCommand(env.cfg)
	_, err := run(t, cmd, &cmd.baseCommand, "")
	assert.NoError(t, err)
}

func TestCLI_RequiredFlags(t *testing.T) {
	env := newTestEnv(t)

	assert.Error(t, NewRegisterCommand(env.cfg).ParseFlags(nil))
	assert.Error(t, NewLoginCommand(env.cfg).ParseFlags(nil))
	assert.Error(t, NewRemoveBookCommand(env.cfg).ParseFlags(nil))
	assert.Error(t, NewKindleImportCommand(env.cfg).ParseFlags(nil))
}

func TestCLI_FlagsOverrideConfig(t *testing.T) {
	env := newTestEnv(t)
	other := filepath.Join(env.dir, "other.db")

	cmd := NewWhoamiCommand(env.cfg)
	require.NoError(t, cmd.ParseFlags([]string{"-db", other}))
	assert.Equal(t, other, cmd.DatabasePath)
	assert.Equal(t, env.cfg.RememberMe.Path, cmd.SessionPath)
}
