package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/tessro/scrobblecord/internal/config"
	"github.com/tessro/scrobblecord/internal/discord"
	errs "github.com/tessro/scrobblecord/internal/errors"
	"github.com/tessro/scrobblecord/internal/tui/styles"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check configuration, Last.fm and Discord",
	Long: `Run the same checks the bridge runs at startup and report each one:
config file, credentials, the Last.fm account, and the Discord IPC socket.`,
	RunE: runDoctor,
	Annotations: map[string]string{
		allowMissingConfig: "true",
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

type checkResult struct {
	Name       string `json:"name"`
	OK         bool   `json:"ok"`
	Detail     string `json:"detail"`
	Suggestion string `json:"suggestion,omitempty"`
}

func pass(name, detail string) checkResult {
	return checkResult{Name: name, OK: true, Detail: detail}
}

func fail(name string, err error) checkResult {
	return checkResult{Name: name, Detail: err.Error(), Suggestion: errs.GetSuggestion(err)}
}

func runDoctor(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	checks := []checkResult{checkConfigFile()}

	if err := cfg.RequireCredentials(); err != nil {
		checks = append(checks, fail("credentials", err))
	} else {
		checks = append(checks, pass("credentials", "api key, username and client id are set"))
	}

	if cfg.LastFM.APIKey != "" && cfg.LastFM.Username != "" {
		checks = append(checks, checkLastFM(ctx))
	}

	checks = append(checks, checkSockets())
	if cfg.Discord.ClientID != "" {
		checks = append(checks, checkDiscord(ctx))
	}

	failed := 0
	for _, c := range checks {
		if !c.OK {
			failed++
		}
	}

	if JSONOutput() {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(checks); err != nil {
			return err
		}
	} else {
		for _, c := range checks {
			fmt.Printf("%s %-12s %s\n", styles.Check(c.OK), c.Name, c.Detail)
			if c.Suggestion != "" {
				fmt.Printf("  %s\n", styles.Dim.Render(c.Suggestion))
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d checks failed", failed, len(checks))
	}
	return nil
}

func checkConfigFile() checkResult {
	path := cfgFile
	if path == "" {
		path = config.Path()
	}
	if _, err := os.Stat(path); err != nil {
		if cfgFile != "" {
			return fail("config", fmt.Errorf("%w: %s", errs.ErrConfigNotFound, path))
		}
		return pass("config", "no file at "+path+", using defaults and environment")
	}
	return pass("config", path)
}

func checkLastFM(ctx context.Context) checkResult {
	info, err := newLastFMClient().UserInfo(ctx, cfg.LastFM.Username)
	if err != nil {
		return fail("last.fm", err)
	}
	detail := fmt.Sprintf("%s, %s scrobbles", info.Name, humanize.Comma(info.PlayCount))
	if !info.Registered.IsZero() {
		detail += ", joined " + humanize.Time(info.Registered)
	}
	return pass("last.fm", detail)
}

func checkSockets() checkResult {
	var found []string
	for _, p := range discord.SocketPaths() {
		if _, err := os.Stat(p); err == nil {
			found = append(found, p)
		}
	}
	if len(found) == 0 {
		return fail("ipc socket", errs.ErrDiscordUnavailable)
	}
	return pass("ipc socket", strings.Join(found, ", "))
}

func checkDiscord(ctx context.Context) checkResult {
	dc := newDiscordClient()
	defer func() { _ = dc.Close() }()

	if err := dc.Connect(ctx); err != nil {
		if discord.IsInvalidClientID(err) {
			return fail("discord", errs.WithSuggestion(err,
				"discord.client_id must be the application ID from https://discord.com/developers/applications"))
		}
		if !errors.Is(err, errs.ErrDiscordUnavailable) {
			err = fmt.Errorf("%w: %v", errs.ErrDiscordUnavailable, err)
		}
		return fail("discord", err)
	}
	return pass("discord", "connected as "+orDefault(dc.User().DisplayName(), "unknown user"))
}
