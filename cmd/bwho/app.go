package main

import (
	"fmt"
	"log"
	"time"

	"github.com/crystal-mush/bwho/pkg/adminconf"
	"github.com/crystal-mush/bwho/pkg/boltstore"
	"github.com/crystal-mush/bwho/pkg/roster"
	"github.com/crystal-mush/bwho/pkg/server"
	"github.com/crystal-mush/bwho/pkg/whois"
)

// app is a Server plus the resources it was opened with.
type app struct {
	srv     *server.Server
	metrics *server.Metrics
	store   *boltstore.Store
}

// openApp wires the configured roster and admin sources into a Server.
// Admin data comes from admins_file when set, otherwise from admin_store.
func openApp(conf *server.Conf) (*app, error) {
	a := &app{metrics: server.NewMetrics(time.Now())}
	deps := server.Deps{Metrics: a.metrics}

	if conf.RosterFile != "" {
		snap, err := roster.OpenSnapshot(conf.RosterFile)
		if err != nil {
			return nil, err
		}
		deps.Roster = snap
		deps.Sources = append(deps.Sources, server.FileSource{
			Name:   server.SourceRoster,
			Paths:  []string{snap.Path()},
			Reload: snap.Reload,
		})
	} else {
		log.Printf("bwho: no roster_file configured, roster is empty")
		deps.Roster = roster.Static{}
	}

	var admins whois.AdminProvider
	count := 0
	switch {
	case conf.AdminsFile != "":
		dir, err := adminconf.Open(conf.AdminsFile, conf.GroupsFile)
		if err != nil {
			return nil, err
		}
		admins = dir
		count = len(dir.Records())
		deps.Sources = append(deps.Sources, server.FileSource{
			Name:   server.SourceAdmins,
			Paths:  dir.Paths(),
			Reload: dir.Load,
			Count:  func() int { return len(dir.Records()) },
		})
	case conf.AdminStore != "":
		store, err := boltstore.Open(conf.AdminStore)
		if err != nil {
			return nil, err
		}
		a.store = store
		admins = store
		count = store.Count()
		source, at := store.Source()
		log.Printf("bwho: using %d admins from %s (imported from %s at %s)", count, store.Path(), source, at.Format(time.RFC3339))
	default:
		log.Printf("bwho: no admin source configured, nobody can run %s", conf.CommandName)
	}
	deps.Admins = admins
	a.metrics.SetAdminRecords(count)

	srv, err := server.New(conf, deps)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("bwho: %w", err)
	}
	a.srv = srv
	return a, nil
}

// Close releases the admin store, if one is open.
func (a *app) Close() error {
	if a.store != nil {
		return a.store.Close()
	}
	return nil
}
