package history

import (
	"context"
	"testing"
	"time"

	"f1weekendsim/pkg/history/historytest"
)

func newTestClient(t *testing.T) (*Client, *historytest.Server) {
	t.Helper()
	srv := historytest.NewServer()
	t.Cleanup(srv.Close)
	return NewClient(WithBaseURL(srv.URL), WithTimeout(2*time.Second)), srv
}

func TestClientParsesResults(t *testing.T) {
	c, srv := newTestClient(t)
	srv.Add(historytest.Season(2024, "norris", "mclaren",
		[]int{1, 3, 2}, []int{2, 1, 20}, []string{"", "", "Accident"})...)
	srv.Add(historytest.Season(2024, "piastri", "mclaren", []int{4}, []int{4}, nil)...)

	t.Run("driver", func(t *testing.T) {
		es, err := c.Results(context.Background(), 2024, KindDriver, "norris")
		if err != nil {
			t.Fatalf("Results: %v", err)
		}
		if len(es) != 3 {
			t.Fatalf("expected 3 entries, got %d", len(es))
		}
		if es[0].Round != 1 || es[0].Grid != 1 || es[0].Position != 2 || es[0].ConstructorID != "mclaren" {
			t.Fatalf("unexpected first entry %+v", es[0])
		}
		if es[2].Status != "Accident" || es[2].Finished() {
			t.Fatalf("unexpected last entry %+v", es[2])
		}
	})

	t.Run("constructor", func(t *testing.T) {
		es, err := c.Results(context.Background(), 2024, KindTeam, "mclaren")
		if err != nil {
			t.Fatalf("Results: %v", err)
		}
		if len(es) != 4 {
			t.Fatalf("expected 4 entries for both cars, got %d", len(es))
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		es, err := c.Results(context.Background(), 2024, KindDriver, "senna")
		if err != nil {
			t.Fatalf("Results: %v", err)
		}
		if len(es) != 0 {
			t.Fatalf("expected no entries, got %d", len(es))
		}
	})
}

func TestClientBreakerStopsCallingAfterFailures(t *testing.T) {
	c, srv := newTestClient(t)
	srv.SetFailing(true)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := c.Results(ctx, 2024, KindDriver, "norris"); err == nil {
			t.Fatalf("call %d: expected error", i)
		}
	}
	if hits := srv.TotalHits(); hits != 2 {
		t.Fatalf("expected the breaker to open after 2 failures, server saw %d requests", hits)
	}
}

func TestSourceAggregatesSeasons(t *testing.T) {
	c, srv := newTestClient(t)
	srv.Add(historytest.Season(2023, "albon", "williams", []int{10, 12}, []int{9, 11}, nil)...)
	srv.Add(historytest.Season(2024, "albon", "williams", []int{14, 15}, []int{12, 13}, nil)...)

	src := NewSource(c, nil)
	st, ok, err := src.FetchStats(context.Background(), []int{2023, 2024}, KindDriver, "albon")
	if err != nil || !ok {
		t.Fatalf("expected record, got ok=%v err=%v", ok, err)
	}
	if st.Races != 4 {
		t.Fatalf("expected 4 races across seasons, got %d", st.Races)
	}
	if _, has := st.Ratings[SkillDry]; !has {
		t.Fatal("missing skill rating")
	}
}

func TestSourceReportsErrorWhenNothingLoads(t *testing.T) {
	c, srv := newTestClient(t)
	srv.SetFailing(true)

	_, ok, err := NewSource(c, nil).FetchStats(context.Background(), []int{2024}, KindTeam, "haas")
	if err == nil || ok {
		t.Fatalf("expected error, got ok=%v err=%v", ok, err)
	}
}
