package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tessro/scrobblecord/internal/bridge"
	errs "github.com/tessro/scrobblecord/internal/errors"
)

var (
	runInterval  time.Duration
	runRefresh   time.Duration
	runNoEmoji   bool
	runTimestamp bool
	runFormat    string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Mirror Last.fm now playing into Discord",
	Long: `Start the bridge. Every poll interval the user's Last.fm listening status is
fetched; when the track changes, or at least every refresh interval, the
Discord presence is updated. Stop with Ctrl+C.

Events printed:
  - Track changes and playback stopping
  - Presence updates and clears
  - Last.fm and Discord errors (the bridge keeps running)`,
	RunE: runRun,
}

func init() {
	addRunFlags(runCmd)
	rootCmd.AddCommand(runCmd)
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().DurationVarP(&runInterval, "interval", "i", 0, "poll interval (default from config)")
	cmd.Flags().DurationVar(&runRefresh, "refresh", 0, "max time between unchanged presence updates (default from config)")
	cmd.Flags().BoolVar(&runNoEmoji, "no-emoji", false, "disable emoji output")
	cmd.Flags().BoolVarP(&runTimestamp, "timestamp", "t", false, "show timestamps")
	cmd.Flags().StringVarP(&runFormat, "format", "f", "", "custom format template")
}

func runRun(cmd *cobra.Command, args []string) error {
	formatter, err := newFormatter(isTerminal(os.Stdout))
	if err != nil {
		return err
	}

	// Handle Ctrl+C gracefully
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	events := make(chan bridge.Event, 64)
	sess, err := startSession(ctx, sessionOptions{
		interval: runInterval,
		refresh:  runRefresh,
		events:   events,
	})
	if err != nil {
		return err
	}
	defer sess.close()

	if !JSONOutput() {
		fmt.Printf("Connected to Discord as %s, watching Last.fm user %s\n",
			orDefault(sess.discordUser(), "unknown"), cfg.LastFM.Username)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- sess.driver.Run(ctx)
	}()

	// Print events as they arrive
	for {
		select {
		case e := <-events:
			if e.Type == bridge.EventIdle {
				continue
			}
			if err := printEvent(os.Stdout, formatter, e); err != nil {
				return err
			}

		case err := <-errCh:
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
	}
}

// newFormatter builds the console formatter from config and flags. Emoji are
// only used on a terminal.
func newFormatter(tty bool) (*bridge.Formatter, error) {
	format := cfg.Output.Format
	if runFormat != "" {
		format = runFormat
	}
	if format != "" {
		if _, err := bridge.ParseTemplate(format); err != nil {
			return nil, errs.WithSuggestion(
				fmt.Errorf("%w: format: %v", errs.ErrInvalidConfig, err),
				"See https://pkg.go.dev/text/template for template syntax")
		}
	}

	return bridge.NewFormatter(
		bridge.WithEmoji(cfg.Output.Emoji && !runNoEmoji && tty),
		bridge.WithTimestamp(cfg.Output.Timestamp || runTimestamp),
		bridge.WithTemplate(format),
	), nil
}

type eventJSON struct {
	Type      string     `json:"type"`
	Time      time.Time  `json:"time"`
	Title     string     `json:"title,omitempty"`
	Artist    string     `json:"artist,omitempty"`
	Album     string     `json:"album,omitempty"`
	URL       string     `json:"url,omitempty"`
	StartedAt *time.Time `json:"started_at,omitempty"`
	Error     string     `json:"error,omitempty"`
}

func printEvent(w io.Writer, f *bridge.Formatter, e bridge.Event) error {
	if !JSONOutput() {
		_, err := fmt.Fprintln(w, f.Format(e))
		return err
	}

	out := eventJSON{Type: e.Type.String(), Time: e.Timestamp}
	track := e.Track
	if track == nil {
		track = e.Previous
	}
	if track != nil {
		out.Title = track.Title
		out.Artist = track.Artist
		out.Album = track.Album
		out.URL = track.URL
	}
	if !e.StartedAt.IsZero() {
		started := e.StartedAt
		out.StartedAt = &started
	}
	if e.Err != nil {
		out.Error = e.Err.Error()
	}
	return json.NewEncoder(w).Encode(out)
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
