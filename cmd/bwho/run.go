package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/crystal-mush/bwho/pkg/server"
)

func newRunCmd(conf func() *server.Conf) *cobra.Command {
	return &cobra.Command{
		Use:   "run [token]",
		Short: "Run the lookup command once and print the replies",
		Long: `run executes the configured command once, as the --as player, and prints
each reply on its own line. In roster mode the token is ignored.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(conf())
			if err != nil {
				return err
			}
			defer a.Close()

			sess, err := consoleSession(a.srv, conf())
			if err != nil {
				return err
			}
			cw := server.NewConsoleWriter(cmd.OutOrStdout())
			a.srv.Bus.Subscribe(sess.Slot, cw)
			defer a.srv.Bus.Unsubscribe(sess.Slot, cw)

			var lookup []string
			if len(args) > 0 {
				lookup = []string{strings.Join(args, " ")}
			}
			a.srv.Invoke(sess, a.srv.Conf.CommandName, lookup)
			return nil
		},
	}
}

// consoleSession builds the session the console acts in.
func consoleSession(srv *server.Server, conf *server.Conf) (server.Session, error) {
	caller, err := server.ConsoleCaller(srv.Roster, conf.ConsolePlayer)
	if err != nil {
		return server.Session{}, err
	}
	sess := server.ConsoleSession()
	sess.Caller = caller
	return sess, nil
}
