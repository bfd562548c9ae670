package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/tessro/scrobblecord/internal/browser"
	"github.com/tessro/scrobblecord/internal/core"
	errs "github.com/tessro/scrobblecord/internal/errors"
	"github.com/tessro/scrobblecord/internal/presence"
	"github.com/tessro/scrobblecord/internal/tui/styles"
)

var (
	statusRecent int
	statusCopy   bool
	statusOpen   bool
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show what you're listening to",
	Long: `Fetch the current Last.fm listening status once and show the Discord
presence that the bridge would display for it. Discord is not contacted.`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().IntVarP(&statusRecent, "recent", "r", 0, "also show the last N tracks")
	statusCmd.Flags().BoolVar(&statusCopy, "copy", false, "copy the track link to the clipboard")
	statusCmd.Flags().BoolVar(&statusOpen, "open", false, "open the track page in your browser")
	rootCmd.AddCommand(statusCmd)
}

type statusResult struct {
	User     string
	Track    *core.Track
	Activity *core.Activity
	Recent   []core.Track
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if cfg.LastFM.APIKey == "" {
		return errs.ErrMissingAPIKey
	}
	if cfg.LastFM.Username == "" {
		return errs.ErrMissingUsername
	}

	lfm := newLastFMClient()
	track, err := lfm.NowPlaying(ctx, cfg.LastFM.Username)
	if err != nil {
		return err
	}

	result := &statusResult{User: cfg.LastFM.Username, Track: track}

	// Run the track through a reconciler to get exactly what would be shown.
	rec := presence.New(presence.WithPayloadOptions(payloadOptions()))
	rec.Reconcile(track, nil)
	if activity, ok := rec.BuildPayload(); ok {
		result.Activity = &activity
	}

	if statusRecent > 0 {
		recent, err := lfm.RecentTracks(ctx, cfg.LastFM.Username, statusRecent)
		if err != nil {
			return err
		}
		result.Recent = recent
	}

	if statusCopy {
		if err := copyTrackLink(track); err != nil {
			return err
		}
	}

	if statusOpen {
		if track == nil || track.URL == "" {
			return fmt.Errorf("nothing playing to open")
		}
		if err := browser.Open(track.URL); err != nil {
			return fmt.Errorf("failed to open browser: %w", err)
		}
	}

	if JSONOutput() {
		return outputStatusJSON(result)
	}
	return outputStatusText(result)
}

func copyTrackLink(track *core.Track) error {
	if track == nil || track.URL == "" {
		return fmt.Errorf("nothing playing to copy")
	}
	if err := clipboard.WriteAll(track.URL); err != nil {
		return fmt.Errorf("failed to copy link: %w", err)
	}
	if !JSONOutput() {
		fmt.Fprintln(os.Stderr, "Copied", track.URL)
	}
	return nil
}

func trackJSON(t *core.Track) map[string]interface{} {
	item := map[string]interface{}{
		"title":       t.Title,
		"artist":      t.Artist,
		"album":       t.Album,
		"url":         t.URL,
		"image":       t.Images.Best(),
		"now_playing": t.NowPlaying,
	}
	if !t.PlayedAt.IsZero() {
		item["played_at"] = t.PlayedAt
	}
	return item
}

func outputStatusJSON(r *statusResult) error {
	output := map[string]interface{}{
		"user":    r.User,
		"playing": r.Track != nil,
	}
	if r.Track != nil {
		output["track"] = trackJSON(r.Track)
	}
	if r.Activity != nil {
		output["presence"] = r.Activity
	}
	if r.Recent != nil {
		recent := make([]map[string]interface{}, 0, len(r.Recent))
		for i := range r.Recent {
			recent = append(recent, trackJSON(&r.Recent[i]))
		}
		output["recent"] = recent
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}

func outputStatusText(r *statusResult) error {
	fmt.Println(styles.Highlight.Render("[LAST.FM]") + " " + styles.Muted.Render(r.User))

	if r.Track == nil {
		fmt.Println("  " + styles.Muted.Render("Nothing playing"))
	} else {
		fmt.Printf("  %s %s\n", styles.Playing.Render("▶"), styles.Title.Render(r.Track.Title))
		line := r.Track.Artist
		if r.Track.Album != "" {
			line += " — " + r.Track.Album
		}
		fmt.Printf("    %s\n", styles.Subtitle.Render(line))
		if r.Track.URL != "" {
			fmt.Printf("    %s\n", styles.Dim.Render(r.Track.URL))
		}
	}

	fmt.Println()
	fmt.Println(styles.Discord.Render("[DISCORD]") + " " + styles.Muted.Render("presence preview"))
	if r.Activity == nil {
		fmt.Println("  " + styles.Muted.Render("(cleared)"))
	} else {
		a := r.Activity
		fmt.Printf("  %s\n", a.Details)
		fmt.Printf("  %s\n", a.State)
		fmt.Printf("  %s %s\n", styles.Label.Render("image:"), a.LargeImage)
		fmt.Printf("  %s %s\n", styles.Label.Render("hover:"), a.LargeText)
		for _, b := range a.Buttons {
			fmt.Printf("  %s %s → %s\n", styles.Label.Render("button:"), b.Label, b.URL)
		}
	}

	if len(r.Recent) > 0 {
		fmt.Println()
		t := NewTable("WHEN", "ARTIST", "TITLE")
		for _, track := range r.Recent {
			t.Row(playedWhen(track), TruncateString(track.Artist, 30), TruncateString(track.Title, 40))
		}
		t.Flush()
	}

	return nil
}

func playedWhen(t core.Track) string {
	if t.NowPlaying {
		return "now playing"
	}
	if t.PlayedAt.IsZero() {
		return "-"
	}
	return strings.TrimSpace(humanize.Time(t.PlayedAt))
}
