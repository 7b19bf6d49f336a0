package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

type countingFetcher struct {
	calls   int
	entries []RaceEntry
	err     error
}

func (f *countingFetcher) Results(ctx context.Context, season int, kind Kind, id string) ([]RaceEntry, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.entries, nil
}

func TestStoreGetPut(t *testing.T) {
	s := newTestStore(t)
	key := Key{Season: 2024, Kind: KindDriver, ID: "norris"}

	if _, ok, err := s.Get(key); err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}
	if err := s.Put(key, `[{"season":2024}]`); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok, err := s.Get(key)
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if got != `[{"season":2024}]` {
		t.Fatalf("unexpected payload %q", got)
	}
}

func TestStoreEntriesAreImmutable(t *testing.T) {
	s := newTestStore(t)
	key := Key{Season: 2023, Kind: KindTeam, ID: "ferrari"}

	if err := s.Put(key, "first"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Put(key, "second"); err != nil {
		t.Fatalf("second Put: %v", err)
	}
	got, _, _ := s.Get(key)
	if got != "first" {
		t.Fatalf("entry was overwritten: %q", got)
	}
	if n, _ := s.Len(); n != 1 {
		t.Fatalf("expected 1 entry, got %d", n)
	}
}

func TestCacheReadsThrough(t *testing.T) {
	s := newTestStore(t)
	f := &countingFetcher{entries: []RaceEntry{{Season: 2024, Round: 1, Position: 3, Status: "Finished"}}}
	c := NewCache(s, f, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		es, err := c.Results(ctx, 2024, KindDriver, "norris")
		if err != nil {
			t.Fatalf("Results: %v", err)
		}
		if len(es) != 1 || es[0].Position != 3 {
			t.Fatalf("unexpected entries %+v", es)
		}
	}
	if f.calls != 1 {
		t.Fatalf("expected one upstream call, got %d", f.calls)
	}

	// a different season is a different key
	if _, err := c.Results(ctx, 2023, KindDriver, "norris"); err != nil {
		t.Fatalf("Results: %v", err)
	}
	if f.calls != 2 {
		t.Fatalf("expected two upstream calls, got %d", f.calls)
	}
}

func TestCacheDoesNotStoreFailures(t *testing.T) {
	s := newTestStore(t)
	f := &countingFetcher{err: errors.New("timeout")}
	c := NewCache(s, f, nil)

	if _, err := c.Results(context.Background(), 2024, KindTeam, "haas"); err == nil {
		t.Fatal("expected error")
	}
	if n, _ := s.Len(); n != 0 {
		t.Fatalf("failure was cached")
	}
}

func TestCacheStoresEmptySeasons(t *testing.T) {
	s := newTestStore(t)
	f := &countingFetcher{entries: []RaceEntry{}}
	c := NewCache(s, f, nil)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := c.Results(ctx, 2024, KindDriver, "bortoleto"); err != nil {
			t.Fatalf("Results: %v", err)
		}
	}
	if f.calls != 1 {
		t.Fatalf("expected empty season to be cached, got %d calls", f.calls)
	}
}
