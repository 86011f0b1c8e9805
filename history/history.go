// Package history persists the last synchronized state so a listener can resume where it left off.
package history

import (
	"errors"
	"time"

	"github.com/metafates/gache"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/vrsync/vrsync/filesystem"
	"github.com/vrsync/vrsync/where"
	"golang.org/x/exp/slices"
)

var ErrEmptyLocator = errors.New("record has no locator")

type store struct {
	Last    string             `json:"last"`
	Records map[string]*Record `json:"records"`
}

var cacher = gache.New[*store](
	&gache.Options{
		Path:       where.History(),
		FileSystem: &filesystem.GacheFs{},
	},
)

func load() (*store, error) {
	cached, expired, err := cacher.Get()
	if err != nil {
		return nil, err
	}
	if expired || cached == nil {
		return &store{Records: make(map[string]*Record)}, nil
	}
	if cached.Records == nil {
		cached.Records = make(map[string]*Record)
	}
	return cached, nil
}

// Save stores record as the most recent state, stamping it if SavedAt is zero.
func Save(record Record) error {
	if record.Locator == "" {
		return ErrEmptyLocator
	}

	s, err := load()
	if err != nil {
		return err
	}

	if record.SavedAt.IsZero() {
		record.SavedAt = time.Now()
	}
	s.Records[record.Locator] = &record
	s.Last = record.Locator

	return cacher.Set(s)
}

// Get returns the most recently saved record.
func Get() (mo.Option[Record], error) {
	s, err := load()
	if err != nil {
		return mo.None[Record](), err
	}

	record, ok := s.Records[s.Last]
	if !ok {
		return mo.None[Record](), nil
	}
	return mo.Some(*record), nil
}

// Lookup returns the record saved for locator.
func Lookup(locator string) (mo.Option[Record], error) {
	s, err := load()
	if err != nil {
		return mo.None[Record](), err
	}

	record, ok := s.Records[locator]
	if !ok {
		return mo.None[Record](), nil
	}
	return mo.Some(*record), nil
}

// All returns every saved record, most recent first.
func All() ([]Record, error) {
	s, err := load()
	if err != nil {
		return nil, err
	}

	records := lo.Map(lo.Values(s.Records), func(r *Record, _ int) Record { return *r })
	slices.SortFunc(records, func(a, b Record) int {
		return b.SavedAt.Compare(a.SavedAt)
	})
	return records, nil
}

// Remove deletes the record saved for locator.
func Remove(locator string) error {
	s, err := load()
	if err != nil {
		return err
	}

	delete(s.Records, locator)
	if s.Last == locator {
		s.Last = ""
		if records := lo.Values(s.Records); len(records) > 0 {
			s.Last = lo.MaxBy(records, func(a, b *Record) bool { return a.SavedAt.After(b.SavedAt) }).Locator
		}
	}
	return cacher.Set(s)
}

// Clear removes every record.
func Clear() error {
	return cacher.Set(&store{Records: make(map[string]*Record)})
}
