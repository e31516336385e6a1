package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/crystal-mush/bwho/pkg/adminconf"
	"github.com/crystal-mush/bwho/pkg/roster"
	"github.com/crystal-mush/bwho/pkg/server"
	"github.com/crystal-mush/bwho/pkg/validate"
)

func newCheckCmd(conf func() *server.Conf) *cobra.Command {
	var (
		asJSON bool
		fix    bool
	)
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Lint the admin files and roster snapshot",
		Long: `check reports admin entries and roster players that load but behave
surprisingly: identities that are not SteamIDs, undefined groups, malformed or
repeated flags, colliding slots. With --fix the fixable admin findings are
applied and admins.json is rewritten (comments are not preserved).

The command fails when any finding is an error.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := conf()
			data := &validate.Data{}
			if c.AdminsFile != "" {
				doc, err := adminconf.ReadFiles(c.AdminsFile, c.GroupsFile)
				if err != nil {
					return err
				}
				data.Admins = doc
			}
			if c.RosterFile != "" {
				snap, err := roster.OpenSnapshot(c.RosterFile)
				if err != nil {
					return err
				}
				data.Players = snap.ConnectedPlayers()
			}
			if data.Admins == nil && data.Players == nil {
				return fmt.Errorf("bwho: nothing to check, set admins_file or roster_file")
			}

			v := validate.New(data)
			v.Run()
			if fix && data.Admins != nil {
				if n := v.ApplyAll(); n > 0 {
					if err := writeAdmins(c.AdminsFile, data.Admins); err != nil {
						return err
					}
					log.Printf("bwho: applied %d fixes to %s", n, c.AdminsFile)
				}
			}

			r := validate.GenerateReport(v)
			var err error
			if asJSON {
				err = r.WriteJSON(cmd.OutOrStdout())
			} else {
				err = r.WriteText(cmd.OutOrStdout())
			}
			if err != nil {
				return err
			}
			if v.HasErrors() {
				return fmt.Errorf("bwho: check found errors")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Write the report as JSON")
	cmd.Flags().BoolVar(&fix, "fix", false, "Apply fixable findings and rewrite admins_file")
	return cmd
}

// writeAdmins replaces path with doc's admin entries via a temp file.
func writeAdmins(path string, doc *adminconf.Document) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("bwho: write %s: %w", tmp, err)
	}
	if err := doc.WriteAdmins(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("bwho: write %s: %w", tmp, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("bwho: write %s: %w", tmp, err)
	}
	return os.Rename(tmp, path)
}
