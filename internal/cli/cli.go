// Package cli wires config, storage, and sessions into the assistant
// command line.
package cli

import (
	"context"

	"github.com/urfave/cli/v3"
)

type Error struct {
	Code    int
	Message string
}

func Run(ctx context.Context, argv []string) *Error {
	var opts options

	cmd := &cli.Command{
		Name:  "assistant",
		Usage: "Offline English/Farsi conversational assistant",
		Flags: globalFlags(&opts),
		Commands: []*cli.Command{
			chatCommand(&opts),
			askCommand(&opts),
			remindersCommand(&opts),
			notesCommand(&opts),
			telegramCommand(&opts),
		},
	}

	if err := cmd.Run(ctx, argv); err != nil {
		return &Error{
			Code:    1,
			Message: err.Error(),
		}
	}

	return nil
}
