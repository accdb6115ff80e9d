package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/chzyer/readline"
	"github.com/urfave/cli/v3"

	"github.com/xaenox/offline-assistant/internal/conversation"
	"github.com/xaenox/offline-assistant/internal/models"
)

func chatCommand(opts *options) *cli.Command {
	return &cli.Command{
		Name:  "chat",
		Usage: "Start an interactive chat session",
		Action: func(ctx context.Context, c *cli.Command) error {
			e, err := opts.env(nil)
			if err != nil {
				return err
			}
			defer e.Close()

			rl, err := readline.NewEx(&readline.Config{
				Prompt:          "> ",
				InterruptPrompt: "^C",
				EOFPrompt:       "exit",
			})
			if err != nil {
				return fmt.Errorf("failed to start readline: %w", err)
			}
			defer rl.Close()

			sess := e.session(LocalOwner)
			fmt.Fprintf(c.Root().Writer, "Offline assistant (%s mode). Type 'exit' to quit.\n", sess.Mode())
			return runChat(ctx, sess, rl, c.Root().Writer)
		},
	}
}

type lineReader interface {
	Readline() (string, error)
}

// runChat reads lines until exit, EOF or cancellation. Lines starting with
// '/' are local commands; everything else goes to the session.
func runChat(ctx context.Context, sess *conversation.Session, r lineReader, w io.Writer) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		line, err := r.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if line == "" {
				return nil
			}
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}

		line = strings.TrimSpace(line)
		switch line {
		case "":
			continue
		case "exit", "quit":
			return nil
		case "/reset":
			sess.Reset()
			fmt.Fprintln(w, "Session cleared.")
			continue
		case "/facts":
			printFacts(w, sess)
			continue
		}

		reply, err := sess.Handle(ctx, line)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		fmt.Fprintln(w, reply.Text)
	}
}

func printFacts(w io.Writer, sess *conversation.Session) {
	facts := sess.Facts()
	if len(facts) == 0 {
		fmt.Fprintln(w, "Nothing remembered yet.")
		return
	}

	keys := make([]string, 0, len(facts))
	for k := range facts {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "%s: %s\n", strings.ReplaceAll(k, "_", " "), facts[models.FactKey(k)])
	}
}

func askCommand(opts *options) *cli.Command {
	return &cli.Command{
		Name:      "ask",
		Usage:     "Answer a single utterance and exit",
		ArgsUsage: "<text>",
		Action: func(ctx context.Context, c *cli.Command) error {
			text := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
			if text == "" {
				return errors.New("nothing to ask")
			}

			e, err := opts.env(nil)
			if err != nil {
				return err
			}
			defer e.Close()

			reply, err := e.session(LocalOwner).Handle(ctx, text)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.Root().Writer, reply.Text)
			return nil
		},
	}
}
