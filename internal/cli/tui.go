package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tessro/scrobblecord/internal/bridge"
	"github.com/tessro/scrobblecord/internal/logging"
	"github.com/tessro/scrobblecord/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:     "tui",
	Aliases: []string{"ui"},
	Short:   "Run the bridge with a live dashboard",
	Long: `Run the bridge inside an interactive terminal dashboard.

The dashboard provides a live view with:
  • Now Playing - current track and elapsed time
  • Presence - Discord account and last update
  • History - tracks seen this session
  • Events - bridge activity and errors

Keyboard shortcuts:
  q, Ctrl+C    Quit
  ?            Help
  c            Copy track link
  Tab          Switch panel`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	if !isTerminal(os.Stdout) {
		return errors.New("the dashboard needs an interactive terminal; use 'scrobblecord run' instead")
	}

	// Log lines would corrupt the screen unless they go to a file.
	if cfg.Log.File == "" {
		logger = logging.Discard()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	started := make(chan *session, 1)
	start := func(ctx context.Context, events chan<- bridge.Event) (*tui.Session, error) {
		sess, err := startSession(ctx, sessionOptions{events: events})
		if err != nil {
			return nil, err
		}
		started <- sess
		return &tui.Session{
			Driver:      sess.driver,
			LastFMUser:  cfg.LastFM.Username,
			DiscordUser: sess.discordUser(),
		}, nil
	}

	formatter, err := newFormatter(true)
	if err != nil {
		return err
	}

	err = tui.Run(ctx, start, tui.WithFormatter(formatter))

	select {
	case sess := <-started:
		sess.close()
	default:
	}
	return err
}
