package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/tessro/scrobblecord/internal/config"
)

var (
	configReveal  bool
	configNoInput bool
	configForce   bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `Commands for viewing and editing scrobblecord configuration.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the effective configuration, after defaults and environment overrides.`,
	RunE:  runConfigShow,
	Annotations: map[string]string{
		allowMissingConfig: "true",
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
	Annotations: map[string]string{
		allowMissingConfig: "true",
	},
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit configuration file",
	Long:  `Open the configuration file in your default editor.`,
	RunE:  runConfigEdit,
	Annotations: map[string]string{
		allowMissingConfig: "true",
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	Long: `Create a new configuration file. On a terminal you are asked for your
Last.fm API key, Last.fm username and Discord application ID.`,
	RunE: runConfigInit,
	Annotations: map[string]string{
		allowMissingConfig: "true",
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value.

Supported keys:
  lastfm.api_key            Last.fm API key
  lastfm.username           Last.fm user to mirror
  lastfm.timeout            Request timeout in milliseconds
  discord.client_id         Discord application ID
  discord.fallback_image    Asset shown when a track has no artwork
  discord.small_image       Small badge asset (empty to hide)
  discord.small_text        Small badge hover text
  discord.button_label      Label of the track link button
  sync.poll_interval        Milliseconds between Last.fm polls
  sync.refresh_interval     Max milliseconds between unchanged updates
  output.emoji              Emoji in console output (true/false)
  output.timestamp          Timestamps in console output (true/false)
  output.format             Console line template
  log.level                 debug, info, warn or error
  log.file                  Log file (empty for stderr)

Examples:
  scrobblecord config set lastfm.username rj
  scrobblecord config set sync.poll_interval 5000`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
	Annotations: map[string]string{
		allowMissingConfig: "true",
	},
}

type keyKind int

const (
	kindString keyKind = iota
	kindInt
	kindBool
)

var configKeys = map[string]keyKind{
	"lastfm.api_key":         kindString,
	"lastfm.username":        kindString,
	"lastfm.timeout":         kindInt,
	"discord.client_id":      kindString,
	"discord.fallback_image": kindString,
	"discord.small_image":    kindString,
	"discord.small_text":     kindString,
	"discord.button_label":   kindString,
	"sync.poll_interval":     kindInt,
	"sync.refresh_interval":  kindInt,
	"output.emoji":           kindBool,
	"output.timestamp":       kindBool,
	"output.format":          kindString,
	"log.level":              kindString,
	"log.file":               kindString,
}

func init() {
	configShowCmd.Flags().BoolVar(&configReveal, "reveal", false, "show the API key unmasked")
	configInitCmd.Flags().BoolVar(&configNoInput, "no-input", false, "write defaults and environment values without prompting")
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite an existing config file")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configEditCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	shown := cfg
	if !configReveal {
		shown = cfg.Redacted()
	}

	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(shown)
	}

	// Pretty print as TOML
	encoder := toml.NewEncoder(os.Stdout)
	encoder.Indent = "  "
	return encoder.Encode(shown)
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	path := getConfigPath()
	_, statErr := os.Stat(path)

	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
			"path":   path,
			"exists": statErr == nil,
		})
	}
	fmt.Println(path)
	return nil
}

func runConfigEdit(cmd *cobra.Command, args []string) error {
	configPath := getConfigPath()

	// Check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return fmt.Errorf("config file not found at %s. Run 'scrobblecord config init' first", configPath)
	}

	// Find editor
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = os.Getenv("VISUAL")
	}
	if editor == "" {
		// Try common editors
		for _, e := range []string{"nano", "vim", "vi", "notepad"} {
			if _, err := exec.LookPath(e); err == nil {
				editor = e
				break
			}
		}
	}
	if editor == "" {
		return fmt.Errorf("no editor found. Set EDITOR environment variable")
	}

	// Open editor
	editorCmd := exec.Command(editor, configPath)
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = os.Stdout
	editorCmd.Stderr = os.Stderr

	return editorCmd.Run()
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath := getConfigPath()

	// Check if file already exists
	if _, err := os.Stat(configPath); err == nil && !configForce {
		return fmt.Errorf("config file already exists at %s (use --force to overwrite)", configPath)
	}

	// Start from the effective config so environment values are kept
	values := *cfg

	if !configNoInput && isTerminal(os.Stdin) && !JSONOutput() {
		if err := initForm(&values).Run(); err != nil {
			return fmt.Errorf("setup cancelled: %w", err)
		}
	}

	if err := values.Validate(); err != nil {
		return err
	}
	if err := writeConfig(configPath, &values); err != nil {
		return err
	}

	if JSONOutput() {
		_ = json.NewEncoder(os.Stdout).Encode(map[string]string{
			"status": "created",
			"path":   configPath,
		})
	} else {
		fmt.Printf("Created config file: %s\n", configPath)
		if values.RequireCredentials() != nil {
			fmt.Println("\nNext steps:")
			fmt.Println("  1. Set lastfm.api_key, lastfm.username and discord.client_id in the config file")
			fmt.Println("  2. Run 'scrobblecord doctor' to check your setup")
		} else {
			fmt.Println("\nRun 'scrobblecord' to start mirroring.")
		}
	}

	return nil
}

// initForm asks for the three required values.
func initForm(values *config.Config) *huh.Form {
	required := func(name string) func(string) error {
		return func(s string) error {
			if strings.TrimSpace(s) == "" {
				return fmt.Errorf("%s is required", name)
			}
			return nil
		}
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Last.fm API key").
				Description("Create one at https://www.last.fm/api/account/create").
				Value(&values.LastFM.APIKey).
				Validate(required("API key")),
			huh.NewInput().
				Title("Last.fm username").
				Description("Whose listening status to mirror").
				Value(&values.LastFM.Username).
				Validate(required("username")),
			huh.NewInput().
				Title("Discord application ID").
				Description("From https://discord.com/developers/applications").
				Value(&values.Discord.ClientID).
				Validate(func(s string) error {
					if err := required("application ID")(s); err != nil {
						return err
					}
					if _, err := strconv.ParseUint(s, 10, 64); err != nil {
						return errors.New("application ID must be numeric")
					}
					return nil
				}),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Use emoji in console output?").
				Value(&values.Output.Emoji),
		),
	)
}

// writeConfig writes cfg as TOML with a header. The file holds an API key so
// it is only readable by the owner.
func writeConfig(path string, v interface{}) error {
	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	// Write header comment
	_, _ = fmt.Fprintln(f, "# scrobblecord configuration")
	_, _ = fmt.Fprintln(f, "# https://github.com/tessro/scrobblecord")
	_, _ = fmt.Fprintln(f, "")

	encoder := toml.NewEncoder(f)
	encoder.Indent = "  "
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.Path()
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := args[0]
	value := args[1]

	kind, ok := configKeys[key]
	if !ok {
		return fmt.Errorf("unknown key %q. Run 'scrobblecord config set --help' for the list", key)
	}

	configPath := getConfigPath()

	// Read the current config file as raw TOML
	rawConfig := make(map[string]interface{})
	if data, err := os.ReadFile(configPath); err == nil {
		if _, err := toml.Decode(string(data), &rawConfig); err != nil {
			return fmt.Errorf("failed to parse config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to read config: %w", err)
	}

	// Parse the key (e.g., "lastfm.username" -> ["lastfm", "username"])
	section, field, _ := strings.Cut(key, ".")

	// Get or create the section
	sectionMap, ok := rawConfig[section].(map[string]interface{})
	if !ok {
		sectionMap = make(map[string]interface{})
		rawConfig[section] = sectionMap
	}

	typedValue, err := parseValue(kind, value)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	sectionMap[field] = typedValue

	// Check the result before writing it
	check := config.Default()
	if _, err := toml.Decode(encodeTOML(rawConfig), check); err != nil {
		return fmt.Errorf("failed to apply %s: %w", key, err)
	}
	check.ApplyDefaults()
	if err := check.Validate(); err != nil {
		return err
	}

	if err := writeConfig(configPath, rawConfig); err != nil {
		return err
	}

	shown := value
	if key == "lastfm.api_key" {
		shown = check.Redacted().LastFM.APIKey
	}

	if JSONOutput() {
		_ = json.NewEncoder(os.Stdout).Encode(map[string]string{
			"status": "updated",
			"key":    key,
			"value":  shown,
		})
	} else {
		fmt.Printf("Set %s = %s\n", key, shown)
	}

	return nil
}

func parseValue(kind keyKind, value string) (interface{}, error) {
	switch kind {
	case kindInt:
		i, err := strconv.Atoi(value)
		if err != nil {
			return nil, errors.New("value must be an integer")
		}
		return i, nil
	case kindBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, errors.New("value must be true or false")
		}
		return b, nil
	default:
		return value, nil
	}
}

func encodeTOML(v interface{}) string {
	var b strings.Builder
	_ = toml.NewEncoder(&b).Encode(v)
	return b.String()
}
