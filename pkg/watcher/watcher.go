// Package watcher reports changes to the input tables and config file.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/gridcase/csv2mgc/pkg/logging"
)

// ChangeType represents the type of file change detected
type ChangeType int

const (
	ChangeTypeInput ChangeType = iota
	ChangeTypeConfig
)

func (t ChangeType) String() string {
	switch t {
	case ChangeTypeInput:
		return "input"
	case ChangeTypeConfig:
		return "config"
	}
	return fmt.Sprintf("ChangeType(%d)", int(t))
}

// ChangeEvent represents a batch of file system changes
type ChangeEvent struct {
	Type      ChangeType
	Paths     []string
	Timestamp time.Time
}

// FileWatcher watches input directories and files for changes. fsnotify
// watches directories, so files are matched by path within their parent.
type FileWatcher struct {
	watcher    *fsnotify.Watcher
	dirs       map[string]bool // every .csv inside is an input
	files      map[string]bool // inputs named explicitly
	configFile string
	events     chan ChangeEvent
	stopOnce   sync.Once
}

// NewFileWatcher creates a watcher for the given input directories, input
// files and config file. Empty entries are ignored.
func NewFileWatcher(dirs, files []string, configFile string) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	fw := &FileWatcher{
		watcher: watcher,
		dirs:    make(map[string]bool),
		files:   make(map[string]bool),
		events:  make(chan ChangeEvent, 100),
	}
	for _, d := range dirs {
		if d != "" {
			fw.dirs[clean(d)] = true
		}
	}
	for _, f := range files {
		if f != "" {
			fw.files[clean(f)] = true
		}
	}
	if configFile != "" {
		fw.configFile = clean(configFile)
	}

	return fw, nil
}

func clean(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

// Start begins watching for file changes
func (fw *FileWatcher) Start(ctx context.Context) error {
	watched := make(map[string]bool)
	for dir := range fw.dirs {
		watched[dir] = true
	}
	for file := range fw.files {
		watched[filepath.Dir(file)] = true
	}
	if fw.configFile != "" {
		watched[filepath.Dir(fw.configFile)] = true
	}

	added := 0
	for dir := range watched {
		if err := fw.watcher.Add(dir); err != nil {
			logging.Warn("failed to watch directory", "path", dir, "error", err)
			continue
		}
		added++
	}
	if added == 0 {
		fw.watcher.Close()
		return fmt.Errorf("no directory could be watched")
	}

	logging.Info("watching for changes", "directories", added)

	go fw.processEvents(ctx)

	return nil
}

// classify returns the change type of path, or false when it is not watched.
func (fw *FileWatcher) classify(path string) (ChangeType, bool) {
	path = clean(path)
	switch {
	case path == fw.configFile:
		return ChangeTypeConfig, true
	case fw.files[path]:
		return ChangeTypeInput, true
	case fw.dirs[filepath.Dir(path)] && strings.EqualFold(filepath.Ext(path), ".csv"):
		return ChangeTypeInput, true
	}
	return 0, false
}

// processEvents batches file system events by type
func (fw *FileWatcher) processEvents(ctx context.Context) {
	defer close(fw.events)
	defer fw.watcher.Close()

	batch := make(map[ChangeType]map[string]bool)

	flushTimer := time.NewTimer(time.Hour)
	flushTimer.Stop()

	flush := func() {
		for _, typ := range []ChangeType{ChangeTypeConfig, ChangeTypeInput} {
			if len(batch[typ]) == 0 {
				continue
			}
			paths := make([]string, 0, len(batch[typ]))
			for p := range batch[typ] {
				paths = append(paths, p)
			}
			sort.Strings(paths)
			select {
			case fw.events <- ChangeEvent{Type: typ, Paths: paths, Timestamp: time.Now()}:
			case <-ctx.Done():
				return
			}
		}
		batch = make(map[ChangeType]map[string]bool)
	}

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			typ, ok := fw.classify(event.Name)
			if !ok {
				continue
			}
			logging.Debug("file changed", "path", event.Name, "op", event.Op.String())
			if batch[typ] == nil {
				batch[typ] = make(map[string]bool)
			}
			batch[typ][clean(event.Name)] = true
			flushTimer.Reset(100 * time.Millisecond)

		case <-flushTimer.C:
			flush()

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			logging.Error("watcher error", "error", err)
		}
	}
}

// Events returns the channel of change events. It is closed when the
// context passed to Start is done.
func (fw *FileWatcher) Events() <-chan ChangeEvent {
	return fw.events
}

// Stop closes the underlying watcher without waiting for the context.
func (fw *FileWatcher) Stop() error {
	var err error
	fw.stopOnce.Do(func() {
		err = fw.watcher.Close()
	})
	return err
}
