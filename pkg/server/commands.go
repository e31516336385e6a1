package server

import (
	"fmt"
	"sort"
	"strings"
)

// CommandHandler is the signature for console command implementations.
type CommandHandler func(s *Server, sess Session, args []string)

// Command represents a registered command.
type Command struct {
	Name    string
	Help    string
	Handler CommandHandler
}

// Names of the console helpers registered next to the lookup command.
const (
	HelpCommand   = "help"
	ReloadCommand = "reload"
)

// reservedNames cannot be used as the lookup command's name.
var reservedNames = []string{HelpCommand, ReloadCommand}

// InitCommands registers the lookup command under its configured name plus
// the console helpers.
func InitCommands(s *Server) map[string]*Command {
	cmds := make(map[string]*Command)

	register := func(name, help string, handler CommandHandler) {
		cmds[strings.ToLower(name)] = &Command{Name: name, Help: help, Handler: handler}
	}

	register(s.Conf.CommandName, "Display connected player details", cmdLookup)
	register(HelpCommand, "List available commands", cmdHelp)
	register(ReloadCommand, "Re-read roster and admin files", cmdReload)

	return cmds
}

// DispatchCommand parses and dispatches one command line.
func DispatchCommand(s *Server, sess Session, input string) {
	fields := SplitArgs(input)
	if len(fields) == 0 {
		return
	}

	runCommand(s, sess, fields[0], fields[1:])
}

// runCommand runs the named command with already split arguments.
func runCommand(s *Server, sess Session, name string, args []string) {
	if cmd, ok := s.Commands[strings.ToLower(name)]; ok {
		cmd.Handler(s, sess, args)
		return
	}

	s.Metrics.UnknownCommand()
	s.Reply(sess, name, fmt.Sprintf("Unknown command: %s", name))
}

// SplitArgs splits a command line on whitespace. Double quotes group words
// and are removed; an unterminated quote runs to the end of the line.
func SplitArgs(line string) []string {
	var (
		args    []string
		cur     strings.Builder
		inQuote bool
		inWord  bool
	)
	for _, r := range line {
		switch {
		case r == '"':
			inQuote = !inQuote
			inWord = true
		case !inQuote && (r == ' ' || r == '\t' || r == '\r' || r == '\n'):
			if inWord {
				args = append(args, cur.String())
				cur.Reset()
				inWord = false
			}
		default:
			cur.WriteRune(r)
			inWord = true
		}
	}
	if inWord {
		args = append(args, cur.String())
	}
	return args
}

func cmdLookup(s *Server, sess Session, args []string) {
	s.RunLookup(sess, args)
}

func cmdHelp(s *Server, sess Session, _ []string) {
	names := make([]string, 0, len(s.Commands))
	for name := range s.Commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		cmd := s.Commands[name]
		s.Reply(sess, "help", fmt.Sprintf("%-12s %s", cmd.Name, cmd.Help))
	}
	s.Reply(sess, "help", s.Who.Usage())
}

func cmdReload(s *Server, sess Session, _ []string) {
	if sess.Caller != nil {
		s.Reply(sess, "reload", "Only the server console can reload sources.")
		return
	}
	if len(s.Sources) == 0 {
		s.Reply(sess, "reload", "Nothing to reload.")
		return
	}
	for _, src := range s.Sources {
		if err := s.ReloadSource(src); err != nil {
			s.Reply(sess, "reload", fmt.Sprintf("%s: %v", src.Name, err))
			continue
		}
		s.Reply(sess, "reload", fmt.Sprintf("%s reloaded.", src.Name))
	}
}
