package server

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crystal-mush/bwho/pkg/events"
	"github.com/crystal-mush/bwho/pkg/perms"
	"github.com/crystal-mush/bwho/pkg/roster"
	"github.com/crystal-mush/bwho/pkg/whois"
)

const opID = 76561197960265731

type mapAdmins map[uint64]*perms.AdminRecord

func (m mapAdmins) LookupAdmin(p roster.Player) *perms.AdminRecord { return m[p.SteamID] }

// replyRecorder collects the text of every event it receives.
type replyRecorder struct {
	mu    sync.Mutex
	lines []string
}

func (r *replyRecorder) Receive(ev events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, ev.Text)
}

func (r *replyRecorder) Closed() bool { return false }

func (r *replyRecorder) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.lines...)
}

// testEnv holds a server with an admin caller on slot 7.
type testEnv struct {
	srv     *Server
	roster  roster.Static
	admins  mapAdmins
	metrics *Metrics
	out     *replyRecorder
	sess    Session
}

func newTestEnv(t *testing.T, conf *Conf, players ...roster.Player) *testEnv {
	t.Helper()
	op := &perms.AdminRecord{Identity: "76561197960265731"}
	op.AddFlags("@css/admin")

	env := &testEnv{
		roster:  roster.Static(players),
		admins:  mapAdmins{opID: op},
		metrics: NewMetrics(time.Now()),
		out:     &replyRecorder{},
	}
	srv, err := New(conf, Deps{Roster: env.roster, Admins: env.admins, Metrics: env.metrics})
	require.NoError(t, err)
	env.srv = srv
	env.sess = Session{Caller: &roster.Player{Slot: 7, Name: "Op", SteamID: opID}, Slot: 7}
	srv.Bus.Subscribe(7, env.out)
	return env
}

func (env *testEnv) invocations(status whois.Status) float64 {
	return testutil.ToFloat64(env.metrics.invocationsTotal.WithLabelValues(env.srv.Conf.CommandName, status.String()))
}

func TestScenarioUniqueMatch(t *testing.T) {
	env := newTestEnv(t, nil, roster.Player{Slot: 1, Name: "Alice", SteamID: 111, Address: "1.2.3.4"})
	env.admins[111] = &perms.AdminRecord{Groups: []string{"vip"}}

	env.srv.Execute(env.sess, "css_bwho ali")

	assert.Equal(t, []string{"Alice | https://steamcommunity.com/profiles/111 | 1.2.3.4 | vip"}, env.out.Lines())
	assert.Equal(t, 1.0, env.invocations(whois.StatusFound))
}

func TestScenarioAmbiguous(t *testing.T) {
	env := newTestEnv(t, nil, roster.Player{Name: "Bob"}, roster.Player{Name: "Bobby"})

	env.srv.Execute(env.sess, "css_bwho bob")

	assert.Equal(t, []string{"Multiple players match 'bob': Bob, Bobby."}, env.out.Lines())
	assert.Equal(t, 1.0, env.invocations(whois.StatusAmbiguous))
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.eventsTotal.WithLabelValues("reply")))
}

func TestScenarioEmptyRoster(t *testing.T) {
	env := newTestEnv(t, nil)

	env.srv.Execute(env.sess, "css_bwho anyone")

	assert.Equal(t, []string{"No connected players were found."}, env.out.Lines())
}

func TestScenarioMissingArgument(t *testing.T) {
	env := newTestEnv(t, nil, roster.Player{Name: "Alice"})

	env.srv.Execute(env.sess, "CSS_BWHO")

	assert.Equal(t, []string{"Usage: css_bwho <player name or SteamID>"}, env.out.Lines())
	assert.Equal(t, 1.0, env.invocations(whois.StatusUsage))
}

func TestQuotedToken(t *testing.T) {
	env := newTestEnv(t, nil, roster.Player{Name: "John Smith"}, roster.Player{Name: "John Doe"})

	env.srv.Execute(env.sess, `css_bwho "john s"`)

	assert.Equal(t, []string{"John Smith | N/A | N/A | None"}, env.out.Lines())
}

func TestRosterModeFromConf(t *testing.T) {
	conf := DefaultConf()
	conf.Mode = "roster"
	conf.CommandName = "bwho"
	env := newTestEnv(t, conf, roster.Player{Name: "Alice"}, roster.Player{Name: "Bob", Address: "5.6.7.8"})

	env.srv.Execute(env.sess, "bwho whatever")

	assert.Equal(t, []string{"Alice | N/A | N/A | None", "Bob | N/A | 5.6.7.8 | None"}, env.out.Lines())
	assert.Equal(t, 1.0, env.invocations(whois.StatusListed))
}

func TestUnknownCommandAndBlankLine(t *testing.T) {
	env := newTestEnv(t, nil)

	env.srv.Execute(env.sess, "   ")
	env.srv.Execute(env.sess, "kick bob")

	assert.Equal(t, []string{"Unknown command: kick"}, env.out.Lines())
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.commandsUnknown))
}

func TestConsoleSessionIsRejected(t *testing.T) {
	env := newTestEnv(t, nil, roster.Player{Name: "Alice"})
	console := &replyRecorder{}
	env.srv.Bus.Subscribe(events.ConsoleSlot, console)

	env.srv.Execute(ConsoleSession(), "css_bwho alice")

	assert.Equal(t, []string{whois.MsgInvalidCaller}, console.Lines())
	assert.Empty(t, env.out.Lines())
	assert.Equal(t, 1.0, env.invocations(whois.StatusInvalidCaller))
}

func TestHelpListsCommands(t *testing.T) {
	env := newTestEnv(t, nil)

	env.srv.Execute(env.sess, "help")

	lines := env.out.Lines()
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "css_bwho"))
	assert.True(t, strings.HasPrefix(lines[1], "help"))
	assert.True(t, strings.HasPrefix(lines[2], "reload"))
	assert.Equal(t, "Usage: css_bwho <player name or SteamID>", lines[3])
}

func TestReloadCommand(t *testing.T) {
	env := newTestEnv(t, nil)
	env.srv.Execute(env.sess, "reload")
	assert.Equal(t, []string{"Only the server console can reload sources."}, env.out.Lines())

	console := &replyRecorder{}
	env.srv.Bus.Subscribe(events.ConsoleSlot, console)
	env.srv.Execute(ConsoleSession(), "reload")
	assert.Equal(t, []string{"Nothing to reload."}, console.Lines())

	calls := 0
	env.srv.Sources = []FileSource{{Name: SourceAdmins, Reload: func() error { calls++; return nil }, Count: func() int { return 3 }}}
	env.srv.Execute(ConsoleSession(), "reload")
	assert.Equal(t, 1, calls)
	assert.Equal(t, []string{
		"Nothing to reload.",
		"admins reloaded from disk.",
		"admins reloaded.",
	}, console.Lines())
	assert.Equal(t, 3.0, testutil.ToFloat64(env.metrics.adminRecords))
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.eventsTotal.WithLabelValues("notice")))
}

func TestNewRequiresRoster(t *testing.T) {
	_, err := New(nil, Deps{})
	assert.Error(t, err)

	conf := DefaultConf()
	conf.Mode = "bogus"
	_, err = New(conf, Deps{Roster: roster.Static{}})
	assert.ErrorIs(t, err, whois.ErrUnknownMode)
}

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"  css_bwho   bob ", []string{"css_bwho", "bob"}},
		{`css_bwho "John Smith" extra`, []string{"css_bwho", "John Smith", "extra"}},
		{`css_bwho ""`, []string{"css_bwho", ""}},
		{`css_bwho "open quote`, []string{"css_bwho", "open quote"}},
		{"a\tb", []string{"a", "b"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SplitArgs(tt.in), tt.in)
	}
}

func TestEmptyQuotedTokenIsUsage(t *testing.T) {
	env := newTestEnv(t, nil, roster.Player{Name: "Alice"})
	env.srv.Execute(env.sess, `css_bwho ""`)
	assert.Equal(t, []string{"Usage: css_bwho <player name or SteamID>"}, env.out.Lines())
}

func TestConsoleRun(t *testing.T) {
	env := newTestEnv(t, nil, roster.Player{Name: "Alice", SteamID: opID})
	caller, err := ConsoleCaller(env.roster, "STEAM_0:1:1")
	require.NoError(t, err)
	require.Equal(t, "Alice", caller.Name)

	var out bytes.Buffer
	c := &Console{Server: env.srv, Session: Session{Caller: caller, Slot: events.ConsoleSlot}, Out: &out}
	err = c.Run(context.Background(), strings.NewReader("css_bwho alice\n\nnope\n"))
	require.NoError(t, err)

	assert.Equal(t, "Alice | https://steamcommunity.com/profiles/76561197960265731 | N/A | @css/admin\nUnknown command: nope\n", out.String())
	assert.Zero(t, env.srv.Bus.SlotSubscribers(events.ConsoleSlot))
}

func TestConsoleRunCancelled(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	c := &Console{Server: env.srv, Session: ConsoleSession(), Out: &out, Prompt: "> "}
	err := c.Run(ctx, strings.NewReader("css_bwho x\n"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, out.String())
}

func TestConsoleRunCancelledWhileWaitingForInput(t *testing.T) {
	env := newTestEnv(t, nil)
	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	c := &Console{Server: env.srv, Session: ConsoleSession(), Out: io.Discard}
	errc := make(chan error, 1)
	go func() { errc <- c.Run(ctx, pr) }()

	cancel()
	select {
	case err := <-errc:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel with input still open")
	}
	assert.Zero(t, env.srv.Bus.SlotSubscribers(events.ConsoleSlot))
}

func TestInvokeKeepsArgumentsVerbatim(t *testing.T) {
	env := newTestEnv(t, nil, roster.Player{Name: `a\b	"c"`}, roster.Player{Name: "ab"})

	env.srv.Invoke(env.sess, "CSS_BWHO", []string{`a\b	"c"`})

	assert.Equal(t, []string{`a\b	"c" | N/A | N/A | None`}, env.out.Lines())
}

func TestConsoleCaller(t *testing.T) {
	r := roster.Static{{Slot: 4, Name: "Alice", SteamID: opID}}

	p, err := ConsoleCaller(r, "")
	require.NoError(t, err)
	assert.Nil(t, p)

	p, err = ConsoleCaller(r, "76561197960265732")
	require.NoError(t, err)
	assert.Equal(t, &roster.Player{Slot: 0, Name: "Console", SteamID: 76561197960265732, Identity: "STEAM_0:0:2"}, p)

	_, err = ConsoleCaller(r, "garbage")
	assert.Error(t, err)
}

func TestConsoleWriterNotice(t *testing.T) {
	var out bytes.Buffer
	cw := NewConsoleWriter(&out)
	cw.Receive(events.Event{Type: events.EvNotice, Text: "admins reloaded from disk."})
	cw.Receive(events.Event{Type: events.EvReply, Text: "hello"})
	cw.Close()
	cw.Receive(events.Event{Type: events.EvReply, Text: "dropped"})

	assert.Equal(t, "NOTICE: admins reloaded from disk.\nhello\n", out.String())
	assert.True(t, cw.Closed())
}
