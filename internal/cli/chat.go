package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/soyeahso/botline/internal/directline"
	"github.com/spf13/cobra"
)

// printer writes each timeline message exactly once, oldest first. It tracks
// written activities by identity rather than by count, so a catch-up batch
// inserting older entries mid-list still prints exactly the unseen ones.
type printer struct {
	mu   sync.Mutex
	out  io.Writer
	seen map[string]bool
}

func newPrinter(out io.Writer) *printer {
	return &printer{out: out, seen: make(map[string]bool)}
}

// printNew walks a newest-first snapshot from the oldest end and prints
// every message not yet written.
func (p *printer) printNew(snapshot []directline.Activity) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := len(snapshot) - 1; i >= 0; i-- {
		a := snapshot[i]
		key := printKey(a)
		if p.seen[key] {
			continue
		}
		p.seen[key] = true
		name := "?"
		if a.From != nil {
			if a.From.Name != "" {
				name = a.From.Name
			} else {
				name = a.From.ID
			}
		}
		fmt.Fprintf(p.out, "%s: %s\n", name, a.Text)
	}
}

func (p *printer) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seen = make(map[string]bool)
}

// printKey identifies an activity: the server id when assigned, else the
// timestamp, else the text itself.
func printKey(a directline.Activity) string {
	if a.ID != "" {
		return "id:" + a.ID
	}
	if a.Timestamp != nil {
		return "ts:" + a.Timestamp.UTC().Format(time.RFC3339Nano)
	}
	return "tx:" + a.Text
}

func newChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start (or resume) the conversation and chat interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := paths.EnsureDirs(); err != nil {
				return err
			}

			client, cleanup, err := buildClient(cfg)
			if err != nil {
				return err
			}
			defer cleanup()
			defer client.Close()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()

			p := newPrinter(out)
			client.Timeline().OnChange(func(count int) {
				p.printNew(client.Timeline().Snapshot())
			})
			client.Timeline().OnEvent(func(a directline.Activity) {
				log.Debug().Str("type", string(a.Type)).Msg("lifecycle activity")
			})

			conv, err := client.Start(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "connected to conversation %s\n", conv.ConversationID)

			scanner := bufio.NewScanner(cmd.InOrStdin())
			fmt.Fprint(out, "> ")
			for scanner.Scan() {
				line := strings.TrimSpace(scanner.Text())
				switch {
				case line == "":
				case line == "/quit":
					return nil
				case line == "/reset":
					if err := client.Reset(ctx); err != nil {
						fmt.Fprintf(out, "reset failed: %v\n", err)
						break
					}
					p.reset()
					if conv, err = client.Start(ctx); err != nil {
						return err
					}
					fmt.Fprintf(out, "new conversation %s\n", conv.ConversationID)
				default:
					if _, err := client.Send(ctx, line); err != nil {
						fmt.Fprintf(out, "send failed: %v\n", err)
					}
				}
				if ctx.Err() != nil {
					return nil
				}
				fmt.Fprint(out, "> ")
			}
			return scanner.Err()
		},
	}
	return cmd
}
