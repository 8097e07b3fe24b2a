package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"chess-tracker/internal/domain"
)

type fakeStore struct {
	data   map[string]string
	getErr error
	setErr error
	sets   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: map[string]string{}}
}

func (s *fakeStore) Get(_ context.Context, key string) (string, bool, error) {
	if s.getErr != nil {
		return "", false, s.getErr
	}
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *fakeStore) Set(_ context.Context, key, value string) error {
	s.sets++
	if s.setErr != nil {
		return s.setErr
	}
	s.data[key] = value
	return nil
}

var fixedNow = time.Date(2024, time.March, 5, 15, 0, 0, 0, time.UTC)

func newTestCache(store Store) *DayCache {
	return NewDayCache(store, "rating-history:", func() time.Time { return fixedNow }, zerolog.Nop())
}

func sampleSeries() domain.HistorySeries {
	return domain.HistorySeries{{Date: "2024-03-01", Rating: 1500, Epoch: 1709290000}}
}

func entryJSON(t *testing.T, refreshKey string, history domain.HistorySeries) string {
	t.Helper()
	raw, err := json.Marshal(Entry{RefreshKey: refreshKey, History: history, SavedAt: fixedNow.Unix()})
	if err != nil {
		t.Fatalf("marshal entry: %v", err)
	}
	return string(raw)
}

func failCompute(t *testing.T) func(context.Context) (domain.HistorySeries, error) {
	return func(context.Context) (domain.HistorySeries, error) {
		t.Fatalf("compute called on cache hit")
		return nil, nil
	}
}

func TestGetOrComputeHit(t *testing.T) {
	store := newFakeStore()
	store.data["rating-history:alice"] = entryJSON(t, "2024-03-05", sampleSeries())

	got, err := newTestCache(store).GetOrCompute(context.Background(), "Alice", failCompute(t))
	if err != nil {
		t.Fatalf("GetOrCompute error = %v", err)
	}
	if len(got) != 1 || got[0].Rating != 1500 {
		t.Fatalf("GetOrCompute = %+v, want cached series", got)
	}
	if store.sets != 0 {
		t.Fatalf("cache hit must not rewrite the entry")
	}
}

func TestGetOrComputeStaleEntry(t *testing.T) {
	store := newFakeStore()
	store.data["rating-history:alice"] = entryJSON(t, "2024-03-04", sampleSeries())

	fresh := domain.HistorySeries{{Date: "2024-03-05", Rating: 1510, Epoch: 1709650000}}
	got, err := newTestCache(store).GetOrCompute(context.Background(), "alice",
		func(context.Context) (domain.HistorySeries, error) { return fresh, nil })
	if err != nil {
		t.Fatalf("GetOrCompute error = %v", err)
	}
	if got[0].Rating != 1510 {
		t.Fatalf("stale entry must trigger recompute, got %+v", got)
	}

	var entry Entry
	if err := json.Unmarshal([]byte(store.data["rating-history:alice"]), &entry); err != nil {
		t.Fatalf("persisted entry unparseable: %v", err)
	}
	if entry.RefreshKey != "2024-03-05" {
		t.Fatalf("persisted refresh key = %q, want today", entry.RefreshKey)
	}
}

func TestGetOrComputeCorruptEntry(t *testing.T) {
	cases := map[string]string{
		"not json":       "{garbage",
		"history absent": `{"refresh_key":"2024-03-05","saved_at":1}`,
	}

	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			store := newFakeStore()
			store.data["rating-history:alice"] = payload

			got, err := newTestCache(store).GetOrCompute(context.Background(), "alice",
				func(context.Context) (domain.HistorySeries, error) { return sampleSeries(), nil })
			if err != nil {
				t.Fatalf("corruption must not surface: %v", err)
			}
			if len(got) != 1 {
				t.Fatalf("recompute result not returned: %+v", got)
			}
		})
	}
}

func TestGetOrComputeStoreFaultsSwallowed(t *testing.T) {
	t.Run("read failure", func(t *testing.T) {
		store := newFakeStore()
		store.getErr = errors.New("storage unavailable")

		got, err := newTestCache(store).GetOrCompute(context.Background(), "alice",
			func(context.Context) (domain.HistorySeries, error) { return sampleSeries(), nil })
		if err != nil || len(got) != 1 {
			t.Fatalf("read failure must degrade to recompute: got %+v, err %v", got, err)
		}
	})

	t.Run("write failure", func(t *testing.T) {
		store := newFakeStore()
		store.setErr = errors.New("quota exceeded")

		got, err := newTestCache(store).GetOrCompute(context.Background(), "alice",
			func(context.Context) (domain.HistorySeries, error) { return sampleSeries(), nil })
		if err != nil {
			t.Fatalf("write failure must not surface: %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("computed result must be returned even when unpersisted: %+v", got)
		}
	})
}

func TestGetOrComputeErrorPropagates(t *testing.T) {
	store := newFakeStore()
	wantErr := fmt.Errorf("profile lookup failed")

	_, err := newTestCache(store).GetOrCompute(context.Background(), "alice",
		func(context.Context) (domain.HistorySeries, error) { return nil, wantErr })
	if !errors.Is(err, wantErr) {
		t.Fatalf("GetOrCompute error = %v, want %v", err, wantErr)
	}
	if store.sets != 0 {
		t.Fatalf("failed compute must not write the cache")
	}
}

func TestGetOrComputeEmptySeriesRoundTrips(t *testing.T) {
	store := newFakeStore()
	c := newTestCache(store)

	got, err := c.GetOrCompute(context.Background(), "alice",
		func(context.Context) (domain.HistorySeries, error) { return nil, nil })
	if err != nil || len(got) != 0 {
		t.Fatalf("empty compute: got %+v, err %v", got, err)
	}

	// second lookup must hit: an empty series is a valid cached outcome
	again, err := c.GetOrCompute(context.Background(), "alice", failCompute(t))
	if err != nil || len(again) != 0 {
		t.Fatalf("empty series did not round-trip: got %+v, err %v", again, err)
	}
}

func TestKeyNormalizesHandle(t *testing.T) {
	store := newFakeStore()
	c := newTestCache(store)

	_, err := c.GetOrCompute(context.Background(), "MagnusCarlsen",
		func(context.Context) (domain.HistorySeries, error) { return sampleSeries(), nil })
	if err != nil {
		t.Fatalf("GetOrCompute error = %v", err)
	}
	if _, ok := store.data["rating-history:magnuscarlsen"]; !ok {
		t.Fatalf("key not normalized, stored keys: %v", store.data)
	}
}
