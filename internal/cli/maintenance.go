package cli

import (
	"context"
	"flag"

	"github.com/mrlokans/highlights-keeper/internal/config"
)

// PurgeSessionsCommand deletes expired session rows right away, outside the
// server's schedule.
type PurgeSessionsCommand struct {
	baseCommand
}

func NewPurgeSessionsCommand(cfg *config.Config) *PurgeSessionsCommand {
	return &PurgeSessionsCommand{baseCommand: newBaseCommand(cfg)}
}

func (cmd *PurgeSessionsCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("purge-sessions", flag.ExitOnError)
	cmd.bindCommon(fs)
	return fs.Parse(args)
}

func (cmd *PurgeSessionsCommand) Run() error {
	app, err := cmd.openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	return app.PurgeExpiredSessions(context.Background())
}
