package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/mrlokans/highlights-keeper/internal/config"
)

// RegisterCommand creates an account. It does not log in.
type RegisterCommand struct {
	baseCommand
	Email       string
	Password    string
	DisplayName string
}

func NewRegisterCommand(cfg *config.Config) *RegisterCommand {
	return &RegisterCommand{baseCommand: newBaseCommand(cfg)}
}

func (cmd *RegisterCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	cmd.bindCommon(fs)
	fs.StringVar(&cmd.Email, "email", "", "Account email (required)")
	fs.StringVar(&cmd.Password, "password", "", "Account password (read from stdin if omitted)")
	fs.StringVar(&cmd.DisplayName, "name", "", "Display name")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s register -email <email> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if cmd.Email == "" {
		return fmt.Errorf("required flag -email not provided")
	}
	return nil
}

func (cmd *RegisterCommand) Run() error {
	password, err := cmd.readPassword(cmd.Password)
	if err != nil {
		return err
	}

	app, err := cmd.openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	identity, err := app.Auth.Register(cmd.Email, password, cmd.DisplayName)
	if err != nil {
		return err
	}

	cmd.printf("Registered %s\n", identity.Email)
	return nil
}

// LoginCommand verifies credentials and remembers the new session.
type LoginCommand struct {
	baseCommand
	Email    string
	Password string
}

func NewLoginCommand(cfg *config.Config) *LoginCommand {
	return &LoginCommand{baseCommand: newBaseCommand(cfg)}
}

func (cmd *LoginCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	cmd.bindCommon(fs)
	fs.StringVar(&cmd.Email, "email", "", "Account email (required)")
	fs.StringVar(&cmd.Password, "password", "", "Account password (read from stdin if omitted)")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if cmd.Email == "" {
		return fmt.Errorf("required flag -email not provided")
	}
	return nil
}

func (cmd *LoginCommand) Run() error {
	password, err := cmd.readPassword(cmd.Password)
	if err != nil {
		return err
	}

	app, err := cmd.openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	identity, err := app.Auth.Login(cmd.Email, password)
	if err != nil {
		return err
	}
	if _, err := app.SessionService.CreateSession(identity.Email); err != nil {
		return err
	}

	cmd.printf("Logged in as %s\n", identity.Email)
	return nil
}

// LogoutCommand forgets the remembered session.
type LogoutCommand struct {
	baseCommand
}

func NewLogoutCommand(cfg *config.Config) *LogoutCommand {
	return &LogoutCommand{baseCommand: newBaseCommand(cfg)}
}

func (cmd *LogoutCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("logout", flag.ExitOnError)
	cmd.bindCommon(fs)
	return fs.Parse(args)
}

func (cmd *LogoutCommand) Run() error {
	app, err := cmd.openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	app.SessionService.Logout()
	cmd.printf("Logged out\n")
	return nil
}

// WhoamiCommand prints the owner of the remembered session.
type WhoamiCommand struct {
	baseCommand
}

func NewWhoamiCommand(cfg *config.Config) *WhoamiCommand {
	return &WhoamiCommand{baseCommand: newBaseCommand(cfg)}
}

func (cmd *WhoamiCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("whoami", flag.ExitOnError)
	cmd.bindCommon(fs)
	return fs.Parse(args)
}

func (cmd *WhoamiCommand) Run() error {
	app, err := cmd.openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	identity, err := cmd.currentUser(app)
	if err != nil {
		return err
	}

	if identity.DisplayName != "" {
		cmd.printf("%s (%s)\n", identity.DisplayName, identity.Email)
	} else {
		cmd.printf("%s\n", identity.Email)
	}
	return nil
}
