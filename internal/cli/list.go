package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"

	"github.com/xaenox/offline-assistant/internal/models"
)

const timeLayout = "2006-01-02 15:04"

type listFlags struct {
	owner string
	limit int64
}

func (f *listFlags) flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "owner",
			Usage:       "Owner whose entries are listed (a Telegram chat ID, or local)",
			Value:       LocalOwner,
			Destination: &f.owner,
		},
		&cli.IntFlag{
			Name:        "limit",
			Aliases:     []string{"n"},
			Usage:       "Maximum number of entries, newest first (0 lists all)",
			Value:       20,
			Destination: &f.limit,
		},
	}
}

func remindersCommand(opts *options) *cli.Command {
	var lf listFlags

	return &cli.Command{
		Name:  "reminders",
		Usage: "List stored reminders",
		Flags: lf.flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			e, err := opts.env(nil)
			if err != nil {
				return err
			}
			defer e.Close()

			reminders, err := e.store.ListReminders(ctx, lf.owner, int(lf.limit))
			if err != nil {
				return fmt.Errorf("failed to list reminders: %w", err)
			}
			renderReminders(c.Root().Writer, reminders)
			return nil
		},
	}
}

func notesCommand(opts *options) *cli.Command {
	var lf listFlags

	return &cli.Command{
		Name:  "notes",
		Usage: "List stored notes",
		Flags: lf.flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			e, err := opts.env(nil)
			if err != nil {
				return err
			}
			defer e.Close()

			notes, err := e.store.ListNotes(ctx, lf.owner, int(lf.limit))
			if err != nil {
				return fmt.Errorf("failed to list notes: %w", err)
			}
			renderNotes(c.Root().Writer, notes)
			return nil
		},
	}
}

func renderReminders(w io.Writer, reminders []*models.Reminder) {
	if len(reminders) == 0 {
		fmt.Fprintln(w, "No reminders.")
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Content", "Due", "Created"})
	table.SetAutoWrapText(false)
	for _, r := range reminders {
		table.Append([]string{
			shortID(r.ID),
			r.Content,
			formatTime(r.TriggerAt),
			formatTime(r.CreatedAt),
		})
	}
	table.Render()
}

func renderNotes(w io.Writer, notes []*models.Note) {
	if len(notes) == 0 {
		fmt.Fprintln(w, "No notes.")
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Category", "Content", "Created"})
	table.SetAutoWrapText(false)
	for _, n := range notes {
		table.Append([]string{
			shortID(n.ID),
			string(n.Category),
			n.Content,
			formatTime(n.CreatedAt),
		})
	}
	table.Render()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(timeLayout)
}
