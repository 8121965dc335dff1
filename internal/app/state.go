// Package app provides application lifecycle management, configuration, and events.
package app

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"refboard/internal/board"
	"refboard/internal/config"
	refimage "refboard/internal/image"
	"refboard/internal/layout"

	"github.com/sirupsen/logrus"
)

// State holds the board, the configuration and the current layout file.
// The Board itself belongs to the UI goroutine; the mutex guards the
// remaining fields and the listener table.
type State struct {
	mu sync.RWMutex

	Board  *board.Board
	Config *config.Config

	// Layout
	LayoutPath string
	Modified   bool

	watcher *FileWatcher
	load    layout.Loader
	log     logrus.FieldLogger

	// Event listeners
	listeners map[EventType][]EventListener
}

// EventType identifies different application events.
type EventType int

const (
	EventImagesImported EventType = iota
	EventBoardCleared
	EventLayoutLoaded
	EventLayoutSaved
	EventLayoutChangedOnDisk
	EventToolChanged
	EventGridChanged
	EventModified
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// NewState creates the application state around a new board.
func NewState(cfg *config.Config, factory board.RenderableFactory, log logrus.FieldLogger) *State {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &State{
		Board:     board.New(cfg.BoardOptions(log.WithField("prefix", "board")), factory),
		Config:    cfg,
		load:      refimage.Load,
		log:       log,
		listeners: make(map[EventType][]EventListener),
	}
}

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// SetModified marks the board as modified and emits an event.
func (s *State) SetModified(modified bool) {
	s.mu.Lock()
	s.Modified = modified
	s.mu.Unlock()
	s.Emit(EventModified, modified)
}

// IsModified reports whether the board changed since the last save or load.
func (s *State) IsModified() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Modified
}

// CurrentLayout returns the path of the open layout, if any.
func (s *State) CurrentLayout() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.LayoutPath
}

// ImportImages decodes each file and places the successful ones on the
// board. Failures are logged and returned joined; they never stop the
// remaining imports.
func (s *State) ImportImages(paths ...string) ([]*refimage.Image, error) {
	var (
		imported []*refimage.Image
		errs     []error
	)
	for _, path := range paths {
		img, err := s.load(path)
		if err != nil {
			s.log.WithError(err).WithField("path", path).Warn("import failed")
			errs = append(errs, err)
			continue
		}
		s.Board.ImportImage(img)
		imported = append(imported, img)
		s.log.WithFields(logrus.Fields{
			"image":  img.Name,
			"width":  img.Size.Width,
			"height": img.Size.Height,
		}).Info("image imported")
	}

	if len(imported) > 0 {
		s.mu.Lock()
		s.Config.LastDirectory = filepath.Dir(imported[len(imported)-1].Path)
		s.mu.Unlock()
		s.Emit(EventImagesImported, imported)
		s.SetModified(true)
	}
	return imported, errors.Join(errs...)
}

// ClearBoard removes every image.
func (s *State) ClearBoard() {
	s.Board.Clear()
	s.Emit(EventBoardCleared, nil)
	s.SetModified(true)
}

// SetTool switches the board's tool.
func (s *State) SetTool(tool board.Tool) {
	if s.Board.Tool() == tool {
		return
	}
	s.Board.SetTool(tool)
	s.Emit(EventToolChanged, s.Board.Tool())
}

// SetGridEnabled shows or hides the grid and remembers the choice.
func (s *State) SetGridEnabled(enabled bool) {
	s.Board.SetGridEnabled(enabled)
	s.mu.Lock()
	s.Config.Grid.Enabled = enabled
	s.mu.Unlock()
	s.Emit(EventGridChanged, enabled)
}

// SetGridSize changes the grid cell size and remembers it.
func (s *State) SetGridSize(size float64) error {
	if size <= 0 {
		return fmt.Errorf("grid size must be positive, got %g", size)
	}
	s.Board.SetGridSize(size)
	s.mu.Lock()
	s.Config.Grid.Size = size
	s.mu.Unlock()
	s.Emit(EventGridChanged, s.Board.GridEnabled())
	return nil
}

// SaveLayout writes the board to path and makes it the current layout.
func (s *State) SaveLayout(path string) error {
	if filepath.Ext(path) == "" {
		path += layout.Ext
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	f := layout.FromBoard(s.Board, name, path)
	save := func() error { return f.Save(path) }
	var err error
	if w := s.watching(path); w != nil {
		err = w.Writing(save)
	} else {
		err = save()
	}
	if err != nil {
		return err
	}

	s.setLayoutPath(path)
	s.log.WithFields(logrus.Fields{"path": path, "images": len(f.Images)}).Info("layout saved")
	s.Emit(EventLayoutSaved, path)
	s.SetModified(false)
	return nil
}

// LoadLayout replaces the board with the layout at path.
func (s *State) LoadLayout(path string) error {
	f, err := layout.Load(path)
	if err != nil {
		return err
	}
	f.Apply(s.Board, path, s.load, s.log)

	s.mu.Lock()
	s.Config.Grid.Enabled = s.Board.GridEnabled()
	s.Config.Grid.Size = s.Board.GridSize()
	s.mu.Unlock()

	s.setLayoutPath(path)
	s.Emit(EventLayoutLoaded, path)
	s.SetModified(false)
	return nil
}

// setLayoutPath records path as the current layout and watches it for
// outside changes. The watcher baseline is reset so our own write is not
// reported.
func (s *State) setLayoutPath(path string) {
	s.mu.Lock()
	s.LayoutPath = path
	old := s.watcher
	s.watcher = nil
	s.mu.Unlock()

	// Stop outside the lock; the watch goroutine may be emitting.
	if old != nil {
		if abs, err := filepath.Abs(path); err == nil && abs == old.Path() {
			old.ResetBaseline()
			s.swapWatcher(old)
			return
		}
		old.Stop()
	}

	w, err := NewFileWatcher(path, func(p string) {
		s.log.WithField("path", p).Info("layout changed on disk")
		s.Emit(EventLayoutChangedOnDisk, p)
	}, s.log)
	if err != nil {
		s.log.WithError(err).Warn("layout will not be watched")
		return
	}
	s.swapWatcher(w)
}

// watching returns the watcher for path, or nil when path is not watched.
func (s *State) watching(path string) *FileWatcher {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watcher == nil || s.watcher.Path() != abs {
		return nil
	}
	return s.watcher
}

// swapWatcher installs w and returns the watcher it replaced.
func (s *State) swapWatcher(w *FileWatcher) *FileWatcher {
	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.watcher
	s.watcher = w
	return old
}

// Close stops background work and saves the configuration.
func (s *State) Close() error {
	if w := s.swapWatcher(nil); w != nil {
		w.Stop()
	}

	if s.Config.Path() == "" {
		return nil
	}
	if err := s.Config.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}
