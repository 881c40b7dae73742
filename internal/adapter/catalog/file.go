package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"mesa-alloc/internal/core/domain"
)

const debounceInterval = 100 * time.Millisecond

type document struct {
	Measures []measure `yaml:"measures"`
}

// measure mirrors domain.Measure; a missing volume means unknown rather
// than zero.
type measure struct {
	ID              int64  `yaml:"id"`
	Name            string `yaml:"name"`
	Category        string `yaml:"category"`
	EstimatedVolume *int64 `yaml:"estimatedVolume"`
}

func (m measure) toDomain() domain.Measure {
	out := domain.Measure{ID: m.ID, Name: m.Name, Category: m.Category, EstimatedVolume: domain.UnknownVolume}
	if m.EstimatedVolume != nil {
		out.EstimatedVolume = *m.EstimatedVolume
	}
	return out
}

// File is a MeasureSource read from a YAML document:
//
//	measures:
//	  - id: 101
//	    name: sports fans
//	    category: interest
//	    estimatedVolume: 180000
//
// A document that fails to parse or validate on reload is ignored and
// the previous content stays in effect.
type File struct {
	*Memory
	path   string
	logger *slog.Logger
}

// NewFile loads path. The initial load must succeed.
func NewFile(path string, logger *slog.Logger) (*File, error) {
	f := &File{Memory: NewMemory(), path: path, logger: logger}
	if err := f.Load(); err != nil {
		return nil, err
	}
	return f, nil
}

// Load reads and validates the document and replaces the catalog.
func (f *File) Load() error {
	raw, err := os.ReadFile(f.path)
	if err != nil {
		return err
	}
	var doc document
	if err = yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("parse measure catalog %s: %w", f.path, err)
	}
	measures := make([]domain.Measure, 0, len(doc.Measures))
	for _, m := range doc.Measures {
		measures = append(measures, m.toDomain())
	}
	if err = validate(measures); err != nil {
		return fmt.Errorf("measure catalog %s: %w", f.path, err)
	}
	f.Replace(measures)
	return nil
}

func validate(measures []domain.Measure) error {
	seen := make(map[int64]struct{}, len(measures))
	var errs []error
	for i, m := range measures {
		if m.ID <= 0 {
			errs = append(errs, fmt.Errorf("measure %d: id must be positive", i))
		}
		if _, dup := seen[m.ID]; dup {
			errs = append(errs, fmt.Errorf("measure %d: duplicate id %d", i, m.ID))
		}
		seen[m.ID] = struct{}{}
		if m.EstimatedVolume < domain.UnknownVolume {
			errs = append(errs, fmt.Errorf("measure %d: estimatedVolume %d below %d", i, m.EstimatedVolume, domain.UnknownVolume))
		}
	}
	return errors.Join(errs...)
}

// Watch reloads the document whenever it changes until ctx is done. The
// parent directory is watched so editors that replace the file by rename
// are picked up too.
func (f *File) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	dir, name := filepath.Dir(f.path), filepath.Base(f.path)
	if err = watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	f.logger.Info("watching measure catalog", slog.String("path", f.path))

	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()
	for {
		var debounceC <-chan time.Time
		if debounce != nil {
			debounceC = debounce.C
		}

		select {
		case <-ctx.Done():
			return nil
		case <-debounceC:
			debounce = nil
			if err := f.Load(); err != nil {
				f.logger.Warn("measure catalog reload failed, keeping previous content", slog.Any("error", err))
				continue
			}
			f.logger.Info("measure catalog reloaded", slog.Int("measures", f.Len()))
		case event, ok := <-watcher.Events:
			if !ok {
				return errors.New("measure catalog watcher closed")
			}
			if filepath.Base(event.Name) != name || event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.NewTimer(debounceInterval)
		case err, ok := <-watcher.Errors:
			if !ok {
				return errors.New("measure catalog watcher closed")
			}
			f.logger.Warn("measure catalog watcher error", slog.Any("error", err))
		}
	}
}
