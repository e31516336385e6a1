package server

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// FileSource is a file-backed collaborator that can be re-read in place.
type FileSource struct {
	Name   string
	Paths  []string
	Reload func() error
	Count  func() int // optional, size after a reload
}

// ReloadSource re-reads src, records the result and tells the console.
// Callers outside a command hold s.mu.
func (s *Server) ReloadSource(src FileSource) error {
	err := src.Reload()
	s.Metrics.Reload(src.Name, err)
	if err != nil {
		log.Printf("server: reload %s failed: %v", src.Name, err)
		s.Notice(fmt.Sprintf("Reload of %s failed: %v", src.Name, err))
		return err
	}

	switch src.Name {
	case SourceRoster:
		s.Metrics.SetRosterPlayers(len(s.Roster.ConnectedPlayers()))
	case SourceAdmins:
		if src.Count != nil {
			s.Metrics.SetAdminRecords(src.Count())
		}
	}
	s.Notice(fmt.Sprintf("%s reloaded from disk.", src.Name))
	return nil
}

// Source names used for metrics and notices.
const (
	SourceRoster = "roster"
	SourceAdmins = "admins"
)

// Watch starts an fsnotify watcher on the directories holding the sources'
// files and reloads a source when one of its files is written or created.
// Directories are watched rather than files so editors that replace a file
// on save are still seen. It returns once the watcher is running; watching
// stops when ctx is done.
func (s *Server) Watch(ctx context.Context) error {
	if len(s.Sources) == 0 {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("server: start watcher: %w", err)
	}

	// Map each tracked file to its source.
	tracked := make(map[string]FileSource)
	dirs := make(map[string]bool)
	for _, src := range s.Sources {
		for _, p := range src.Paths {
			abs, err := filepath.Abs(p)
			if err != nil {
				abs = p
			}
			tracked[abs] = src
			dirs[filepath.Dir(abs)] = true
		}
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return fmt.Errorf("server: watch %s: %w", dir, err)
		}
		log.Printf("server: watching %s for changes", dir)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				abs, err := filepath.Abs(event.Name)
				if err != nil {
					abs = event.Name
				}
				src, ok := tracked[abs]
				if !ok {
					continue
				}
				log.Printf("server: %s changed on disk", event.Name)
				// Wait for any running command so it sees one snapshot.
				s.mu.Lock()
				s.ReloadSource(src)
				s.mu.Unlock()

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("server: watcher error: %v", err)
			}
		}
	}()
	return nil
}
