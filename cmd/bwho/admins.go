package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/crystal-mush/bwho/pkg/adminconf"
	"github.com/crystal-mush/bwho/pkg/boltstore"
	"github.com/crystal-mush/bwho/pkg/perms"
	"github.com/crystal-mush/bwho/pkg/server"
	"github.com/crystal-mush/bwho/pkg/steamid"
)

func newAdminsCmd(conf func() *server.Conf) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admins",
		Short: "List or edit admin records",
	}
	cmd.AddCommand(newAdminsListCmd(conf))
	cmd.AddCommand(newAdminsSetCmd(conf))
	cmd.AddCommand(newAdminsRemoveCmd(conf))
	return cmd
}

func newAdminsListCmd(conf func() *server.Conf) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print every admin record with its effective permissions",
		Long: `list prints one line per admin: SteamID64, STEAM_X:Y:Z and [U:1:N] forms,
then the permissions the lookup command would show. Records come from
admins_file when set, otherwise from admin_store.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := conf()
			out := cmd.OutOrStdout()
			switch {
			case c.AdminsFile != "":
				dir, err := adminconf.Open(c.AdminsFile, c.GroupsFile)
				if err != nil {
					return err
				}
				for _, rec := range dir.Records() {
					id, err := steamid.Parse(rec.Identity)
					if err != nil {
						return err
					}
					printAdmin(out, id, rec)
				}
				return nil
			case c.AdminStore != "":
				store, err := boltstore.Open(c.AdminStore)
				if err != nil {
					return err
				}
				defer store.Close()
				return store.ForEach(func(id uint64, rec *perms.AdminRecord) error {
					printAdmin(out, steamid.ID(id), rec)
					return nil
				})
			}
			return fmt.Errorf("bwho: admins list needs admins_file or admin_store")
		},
	}
}

func printAdmin(w io.Writer, id steamid.ID, rec *perms.AdminRecord) {
	permText := "None"
	if p := perms.Aggregate(rec); len(p) > 0 {
		permText = strings.Join(p, ", ")
	}
	fmt.Fprintf(w, "%s | %s | %s | %s\n", id, id.SteamID2(), id.SteamID3(), permText)
}

func newAdminsSetCmd(conf func() *server.Conf) *cobra.Command {
	var (
		flags    []string
		groups   []string
		immunity uint
	)
	cmd := &cobra.Command{
		Use:   "set <steamid>",
		Short: "Create or replace an admin record in admin_store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, id, err := openStoreFor(conf(), args[0])
			if err != nil {
				return err
			}
			defer store.Close()

			rec := &perms.AdminRecord{Identity: id.String(), Groups: groups, Immunity: immunity}
			rec.AddFlags(flags...)
			if err := store.PutAdmin(rec); err != nil {
				return err
			}
			printAdmin(cmd.OutOrStdout(), id, rec)
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&flags, "flag", nil, "Permission flag such as @css/kick (repeatable)")
	cmd.Flags().StringSliceVar(&groups, "group", nil, "Group name such as #css/admins (repeatable)")
	cmd.Flags().UintVar(&immunity, "immunity", 0, "Immunity level")
	return cmd
}

func newAdminsRemoveCmd(conf func() *server.Conf) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <steamid>",
		Short: "Delete an admin record from admin_store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, id, err := openStoreFor(conf(), args[0])
			if err != nil {
				return err
			}
			defer store.Close()

			found, err := store.DeleteAdmin(uint64(id))
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("bwho: no admin record for %s", id)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s.\n", id)
			return nil
		},
	}
}

// openStoreFor parses an individual SteamID and opens the configured store.
func openStoreFor(c *server.Conf, arg string) (*boltstore.Store, steamid.ID, error) {
	if c.AdminStore == "" {
		return nil, 0, fmt.Errorf("bwho: admin_store is not set")
	}
	id, err := steamid.Parse(arg)
	if err != nil {
		return nil, 0, err
	}
	if !id.Valid() {
		return nil, 0, fmt.Errorf("bwho: %s is not an individual account", arg)
	}
	store, err := boltstore.Open(c.AdminStore)
	if err != nil {
		return nil, 0, err
	}
	return store, id, nil
}
