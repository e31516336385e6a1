package server

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/crystal-mush/bwho/pkg/steamid"
	"github.com/crystal-mush/bwho/pkg/whois"
)

// Conf holds host configuration. Values are layered: DefaultConf, then the
// config file, then BWHO_* environment variables, then command-line flags.
type Conf struct {
	// --- Command ---
	CommandName        string `yaml:"command_name" json:"command_name" envconfig:"COMMAND_NAME"`
	Mode               string `yaml:"mode" json:"mode" envconfig:"MODE"` // targeted | roster
	RequiredPermission string `yaml:"required_permission" json:"required_permission" envconfig:"REQUIRED_PERMISSION"`

	// --- Data sources ---
	RosterFile string `yaml:"roster_file" json:"roster_file" envconfig:"ROSTER_FILE"` // YAML roster snapshot
	AdminsFile string `yaml:"admins_file" json:"admins_file" envconfig:"ADMINS_FILE"` // admins.json
	GroupsFile string `yaml:"groups_file" json:"groups_file" envconfig:"GROUPS_FILE"` // admin_groups.json
	AdminStore string `yaml:"admin_store" json:"admin_store" envconfig:"ADMIN_STORE"` // bbolt file, used when admins_file is empty
	WatchFiles bool   `yaml:"watch_files" json:"watch_files" envconfig:"WATCH_FILES"`

	// --- Console ---
	ConsolePlayer string `yaml:"console_player" json:"console_player" envconfig:"CONSOLE_PLAYER"` // SteamID the console acts as; empty = server console

	// --- Metrics ---
	MetricsAddr string `yaml:"metrics_addr" json:"metrics_addr" envconfig:"METRICS_ADDR"` // empty = disabled
}

// DefaultConf returns a Conf matching the stock plugin.
func DefaultConf() *Conf {
	return &Conf{
		CommandName:        whois.DefaultName,
		Mode:               whois.Targeted.String(),
		RequiredPermission: whois.DefaultPermission,
	}
}

// LoadConf loads a config file over the defaults. Format is picked by
// extension:
//   - .yaml / .yml  -> YAML
//   - .json / other -> JSON with comments (the plugin framework's config style)
//
// Relative data paths are resolved against the config file's directory.
func LoadConf(path string) (*Conf, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	c := DefaultConf()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("parsing YAML %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(jsonc.ToJSON(data), c); err != nil {
			return nil, fmt.Errorf("parsing JSON %s: %w", path, err)
		}
	}

	baseDir := filepath.Dir(path)
	for _, p := range []*string{&c.RosterFile, &c.AdminsFile, &c.GroupsFile, &c.AdminStore} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(baseDir, *p)
		}
	}
	return c, nil
}

// ApplyEnv overrides fields from BWHO_* environment variables.
func (c *Conf) ApplyEnv() error {
	if err := envconfig.Process("bwho", c); err != nil {
		return fmt.Errorf("server: environment: %w", err)
	}
	return nil
}

// Validate checks the configuration and fills blank command fields with
// their defaults.
func (c *Conf) Validate() error {
	c.CommandName = strings.TrimSpace(c.CommandName)
	if c.CommandName == "" {
		c.CommandName = whois.DefaultName
	}
	if strings.ContainsAny(c.CommandName, " \t\"") {
		return fmt.Errorf("server: command_name %q must be a single word", c.CommandName)
	}
	if slices.Contains(reservedNames, strings.ToLower(c.CommandName)) {
		return fmt.Errorf("server: command_name %q is a console command", c.CommandName)
	}
	if _, err := whois.ParseMode(c.Mode); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if strings.TrimSpace(c.RequiredPermission) == "" {
		c.RequiredPermission = whois.DefaultPermission
	}
	if c.ConsolePlayer != "" {
		if _, err := steamid.Parse(c.ConsolePlayer); err != nil {
			return fmt.Errorf("server: console_player: %w", err)
		}
	}
	return nil
}

// CommandMode returns the parsed Mode. Call Validate first.
func (c *Conf) CommandMode() whois.Mode {
	m, _ := whois.ParseMode(c.Mode)
	return m
}
