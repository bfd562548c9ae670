package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/tessro/scrobblecord/internal/discord"
	"github.com/tessro/scrobblecord/internal/lastfm"
)

var (
	// Set via ldflags at build time
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

type versionInfo struct {
	Version    string `json:"version"`
	Commit     string `json:"commit"`
	BuildDate  string `json:"build_date"`
	GoVersion  string `json:"go_version"`
	OS         string `json:"os"`
	Arch       string `json:"arch"`
	IPCVersion int    `json:"discord_ipc_version"`
	LastFMAPI  string `json:"lastfm_api"`
}

func currentVersion() versionInfo {
	return versionInfo{
		Version:    Version,
		Commit:     Commit,
		BuildDate:  BuildDate,
		GoVersion:  runtime.Version(),
		OS:         runtime.GOOS,
		Arch:       runtime.GOARCH,
		IPCVersion: discord.RPCVersion,
		LastFMAPI:  lastfm.BaseURL,
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Annotations: map[string]string{
		allowMissingConfig: "true",
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		info := currentVersion()
		if JSONOutput() {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(info)
		}

		fmt.Printf("scrobblecord %s\n", info.Version)
		if Verbose() {
			fmt.Printf("  commit:      %s\n", info.Commit)
			fmt.Printf("  built:       %s\n", info.BuildDate)
			fmt.Printf("  go version:  %s\n", info.GoVersion)
			fmt.Printf("  platform:    %s/%s\n", info.OS, info.Arch)
			fmt.Printf("  discord ipc: v%d\n", info.IPCVersion)
			fmt.Printf("  last.fm api: %s\n", info.LastFMAPI)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
