// Package server hosts the lookup command outside a live game: it loads the
// roster and admin data from files, dispatches console lines to registered
// commands, and delivers replies over an event bus.
package server

import (
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/crystal-mush/bwho/pkg/events"
	"github.com/crystal-mush/bwho/pkg/roster"
	"github.com/crystal-mush/bwho/pkg/whois"
)

// Session identifies who is running a command and where replies go.
// A nil Caller is the server console.
type Session struct {
	Caller *roster.Player
	Slot   int
}

// ConsoleSession is the session of the bare server console.
func ConsoleSession() Session {
	return Session{Slot: events.ConsoleSlot}
}

// Reply emits text to the session's slot.
func (s *Server) Reply(sess Session, command, text string) {
	s.Bus.Emit(events.Event{Type: events.EvReply, Slot: sess.Slot, Command: command, Text: text})
}

// Notice emits an operator notice to the console slot.
func (s *Server) Notice(text string) {
	s.Bus.Emit(events.Event{Type: events.EvNotice, Slot: events.ConsoleSlot, Text: text})
}

// Deps are the collaborators a Server is built from.
type Deps struct {
	Roster  roster.Provider
	Admins  whois.AdminProvider
	Gate    whois.Gate // nil uses whois.AdminGate
	Bus     *events.Bus
	Metrics *Metrics // optional
	Sources []FileSource
}

// Server holds the command table and the collaborators commands run against.
type Server struct {
	Conf     *Conf
	Bus      *events.Bus
	Metrics  *Metrics
	Roster   roster.Provider
	Admins   whois.AdminProvider
	Who      *whois.Command
	Commands map[string]*Command
	Sources  []FileSource

	mu sync.Mutex // one command at a time
}

// New validates conf and builds a Server.
func New(conf *Conf, deps Deps) (*Server, error) {
	if conf == nil {
		conf = DefaultConf()
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	if deps.Roster == nil {
		return nil, fmt.Errorf("server: no roster provider")
	}
	bus := deps.Bus
	if bus == nil {
		bus = events.NewBus()
	}

	s := &Server{
		Conf:    conf,
		Bus:     bus,
		Metrics: deps.Metrics,
		Roster:  deps.Roster,
		Admins:  deps.Admins,
		Sources: deps.Sources,
		Who: &whois.Command{
			Name:       conf.CommandName,
			Mode:       conf.CommandMode(),
			Permission: conf.RequiredPermission,
			Roster:     deps.Roster,
			Admins:     deps.Admins,
			Gate:       deps.Gate,
		},
	}
	s.Commands = InitCommands(s)
	if deps.Metrics != nil {
		bus.SubscribeGlobal(deps.Metrics)
	}
	s.Metrics.Prime(conf.CommandName)
	s.Metrics.SetRosterPlayers(len(deps.Roster.ConnectedPlayers()))

	log.Printf("server: %s registered in %s mode, requires %s", conf.CommandName, s.Who.Mode, conf.RequiredPermission)
	return s, nil
}

// Execute runs one console line for sess. Blank lines are ignored.
func (s *Server) Execute(sess Session, line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	DispatchCommand(s, sess, line)
}

// Invoke runs the named command with args as given, without tokenizing.
func (s *Server) Invoke(sess Session, name string, args []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	runCommand(s, sess, name, args)
}

// RunLookup runs the lookup command and records its outcome.
func (s *Server) RunLookup(sess Session, args []string) whois.Status {
	id := uuid.NewString()
	st := s.Who.Run(sess.Caller, args, whois.ReplyFunc(func(text string) {
		s.Reply(sess, s.Who.Name, text)
	}))
	s.Metrics.Invocation(s.Who.Name, st)
	log.Printf("server: [%s] %s ran %s %q -> %s", id, callerName(sess.Caller), s.Who.Name, args, st)
	return st
}

func callerName(p *roster.Player) string {
	if p == nil {
		return "console"
	}
	return fmt.Sprintf("%s<%d>", p.DisplayName(), p.SteamID)
}
