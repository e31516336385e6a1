package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/crystal-mush/bwho/pkg/adminconf"
	"github.com/crystal-mush/bwho/pkg/boltstore"
	"github.com/crystal-mush/bwho/pkg/server"
)

func newImportCmd(conf func() *server.Conf) *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Copy the admin files into the bbolt admin store",
		Long: `import parses --admins (and --groups) and replaces every record in
--admin-store with the result. Later runs without --admins read the store.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := conf()
			if c.AdminsFile == "" || c.AdminStore == "" {
				return fmt.Errorf("bwho: import needs both admins_file and admin_store")
			}

			dir, err := adminconf.Open(c.AdminsFile, c.GroupsFile)
			if err != nil {
				return err
			}
			store, err := boltstore.Open(c.AdminStore)
			if err != nil {
				return err
			}
			defer store.Close()

			recs := dir.Records()
			if err := store.ReplaceAll(c.AdminsFile, recs); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d admins into %s.\n", len(recs), store.Path())
			return nil
		},
	}
}
