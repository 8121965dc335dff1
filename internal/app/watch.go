package app

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// FileWatcher reports when a file is modified by someone else. Changes are
// detected by comparing the file's modification time against a baseline;
// write the file yourself through Writing so the echo is not reported.
type FileWatcher struct {
	mu       sync.Mutex
	path     string
	baseline time.Time
	writing  int
	onChange func(path string)

	watcher *fsnotify.Watcher
	done    chan struct{}
	log     logrus.FieldLogger
}

// NewFileWatcher starts watching path. onChange is called from a background
// goroutine; marshal onto the UI goroutine before touching widgets.
func NewFileWatcher(path string, onChange func(path string), log logrus.FieldLogger) (*FileWatcher, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	// Watch the directory; editors often replace files instead of writing them.
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", path, err)
	}

	fw := &FileWatcher{
		path:     abs,
		onChange: onChange,
		watcher:  w,
		done:     make(chan struct{}),
		log:      log.WithField("file", abs),
	}
	fw.ResetBaseline()
	go fw.watchLoop()
	return fw, nil
}

// Path returns the watched file.
func (fw *FileWatcher) Path() string {
	return fw.path
}

// ResetBaseline records the file's current modification time as known.
func (fw *FileWatcher) ResetBaseline() {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	fw.resetBaseline()
}

func (fw *FileWatcher) resetBaseline() {
	if info, err := os.Stat(fw.path); err == nil {
		fw.baseline = info.ModTime()
	}
}

// Writing runs write with change reports suspended, then takes the result
// as the new baseline. Events for the write that arrive afterwards see an
// unchanged modification time.
func (fw *FileWatcher) Writing(write func() error) error {
	fw.mu.Lock()
	fw.writing++
	fw.mu.Unlock()

	err := write()

	fw.mu.Lock()
	defer fw.mu.Unlock()
	fw.resetBaseline()
	fw.writing--
	return err
}

// Stop stops watching. It waits for the watch goroutine to exit.
func (fw *FileWatcher) Stop() {
	fw.watcher.Close()
	<-fw.done
}

func (fw *FileWatcher) watchLoop() {
	defer close(fw.done)
	for {
		select {
		case ev, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if ev.Name != fw.path || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			if fw.checkForUpdate() && fw.onChange != nil {
				fw.onChange(fw.path)
			}
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.log.WithError(err).Warn("file watch error")
		}
	}
}

// checkForUpdate reports whether the file changed since the baseline and
// advances the baseline if so. Nothing is reported while Writing.
func (fw *FileWatcher) checkForUpdate() bool {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	if fw.writing > 0 {
		return false
	}
	info, err := os.Stat(fw.path)
	if err != nil {
		return false
	}
	if !info.ModTime().After(fw.baseline) {
		return false
	}
	fw.baseline = info.ModTime()
	return true
}
