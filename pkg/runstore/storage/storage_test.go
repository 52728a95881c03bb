package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Deltares/D-EcoImpact-sub000/pkg/config"
	"github.com/Deltares/D-EcoImpact-sub000/pkg/runstore"
)

var base = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func testRecord(i int, status runstore.Status) *runstore.RunRecord {
	started := base.Add(time.Duration(i) * time.Hour)
	return &runstore.RunRecord{
		ID:         fmt.Sprintf("run-%02d", i),
		InputFile:  "model.yaml",
		Partition:  fmt.Sprint(2000 + i),
		ModelName:  "model",
		Status:     status,
		StartedAt:  started,
		FinishedAt: started.Add(2 * time.Second),
		Duration:   2 * time.Second,
		RuleCount:  2,
		WaveCount:  1,
		OutputFile: fmt.Sprintf("out_%d.json", 2000+i),
		Rules: []runstore.RuleRecord{
			{Rule: "depth", Kind: "array", Wave: 1, Duration: time.Millisecond},
			{Rule: "curve", Kind: "cell", Wave: 1, AboveMax: 4},
		},
	}
}

// backends returns every storage implementation under test.
func backends(t *testing.T) map[string]func(t *testing.T) runstore.Storage {
	t.Helper()
	sqlite := func(driver string) func(t *testing.T) runstore.Storage {
		return func(t *testing.T) runstore.Storage {
			s, err := NewSQLiteStorage(config.SQLiteConfig{
				Path:         filepath.Join(t.TempDir(), "db", "runs.db"),
				Driver:       driver,
				MaxOpenConns: 2,
				MaxIdleConns: 1,
				BusyTimeout:  time.Second,
			}, nil)
			if err != nil {
				if strings.Contains(err.Error(), "CGO_ENABLED=0") {
					t.Skipf("driver %s needs cgo", driver)
				}
				t.Fatalf("NewSQLiteStorage(%s) error = %v", driver, err)
			}
			t.Cleanup(func() { s.Close() })
			return s
		}
	}
	return map[string]func(t *testing.T) runstore.Storage{
		"memory":  func(*testing.T) runstore.Storage { return NewMemoryStorage() },
		"sqlite":  sqlite("sqlite"),
		"sqlite3": sqlite("sqlite3"),
	}
}

func seed(t *testing.T, s runstore.Storage) {
	t.Helper()
	statuses := []runstore.Status{
		runstore.StatusSuccess, runstore.StatusFailed, runstore.StatusSuccess,
		runstore.StatusCancelled, runstore.StatusSuccess,
	}
	for i, status := range statuses {
		if err := s.Store(context.Background(), testRecord(i, status)); err != nil {
			t.Fatalf("Store() error = %v", err)
		}
	}
}

func ids(records []*runstore.RunRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func TestStorage_StoreAndQueryRoundTrip(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			want := testRecord(7, runstore.StatusFailed)
			want.Error = "rule curve failed"

			if err := s.Store(context.Background(), want); err != nil {
				t.Fatalf("Store() error = %v", err)
			}

			got, err := s.Query(context.Background(), &runstore.Query{})
			if err != nil {
				t.Fatalf("Query() error = %v", err)
			}
			if len(got) != 1 {
				t.Fatalf("got %d records, want 1", len(got))
			}

			r := got[0]
			if r.ID != want.ID || r.Partition != want.Partition || r.Status != want.Status || r.Error != want.Error {
				t.Errorf("record = %+v", r)
			}
			if !r.StartedAt.Equal(want.StartedAt) || !r.FinishedAt.Equal(want.FinishedAt) || r.Duration != want.Duration {
				t.Errorf("timing = %v %v %v", r.StartedAt, r.FinishedAt, r.Duration)
			}
			if r.OutputFile != want.OutputFile || r.RuleCount != 2 || r.WaveCount != 1 {
				t.Errorf("shape = %+v", r)
			}
			if len(r.Rules) != 2 || r.Rules[1] != want.Rules[1] {
				t.Errorf("rules = %+v", r.Rules)
			}
		})
	}
}

func TestStorage_StoreReplaces(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			ctx := context.Background()

			r := testRecord(1, runstore.StatusCancelled)
			s.Store(ctx, r)
			r.Status = runstore.StatusSuccess
			if err := s.Store(ctx, r); err != nil {
				t.Fatalf("Store() error = %v", err)
			}

			n, _ := s.Count(ctx, &runstore.Query{})
			if n != 1 {
				t.Errorf("Count() = %d, want 1", n)
			}
			got, _ := s.Query(ctx, &runstore.Query{})
			if got[0].Status != runstore.StatusSuccess {
				t.Errorf("status = %s, want success", got[0].Status)
			}
		})
	}
}

func TestStorage_QueryFilters(t *testing.T) {
	from := base.Add(time.Hour)
	to := base.Add(3 * time.Hour)

	tests := []struct {
		name  string
		query runstore.Query
		want  []string
	}{
		{"newest first", runstore.Query{}, []string{"run-04", "run-03", "run-02", "run-01", "run-00"}},
		{"oldest first", runstore.Query{SortOrder: "asc", Limit: 2}, []string{"run-00", "run-01"}},
		{"offset", runstore.Query{Limit: 2, Offset: 1}, []string{"run-03", "run-02"}},
		{"offset past end", runstore.Query{Offset: 10}, []string{}},
		{"status", runstore.Query{Status: runstore.StatusSuccess}, []string{"run-04", "run-02", "run-00"}},
		{"time range", runstore.Query{StartTime: &from, EndTime: &to}, []string{"run-03", "run-02", "run-01"}},
		{"ids", runstore.Query{IDs: []string{"run-01", "run-04", "missing"}}, []string{"run-04", "run-01"}},
		{"input file", runstore.Query{InputFile: "other.yaml"}, []string{}},
	}

	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			seed(t, s)

			for _, tt := range tests {
				t.Run(tt.name, func(t *testing.T) {
					got, err := s.Query(context.Background(), &tt.query)
					if err != nil {
						t.Fatalf("Query() error = %v", err)
					}
					if fmt.Sprint(ids(got)) != fmt.Sprint(tt.want) {
						t.Errorf("Query() = %v, want %v", ids(got), tt.want)
					}
				})
			}
		})
	}
}

func TestStorage_QueryValidation(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := open(t).Query(context.Background(), &runstore.Query{SortOrder: "sideways"})
			var qErr *runstore.QueryError
			if !errors.As(err, &qErr) {
				t.Errorf("Query() error = %v, want *QueryError", err)
			}
		})
	}
}

func TestStorage_CountAndDelete(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			seed(t, s)
			ctx := context.Background()

			n, err := s.Count(ctx, &runstore.Query{Status: runstore.StatusSuccess, Limit: 1})
			if err != nil || n != 3 {
				t.Errorf("Count() = %d, %v; want 3 (pagination ignored)", n, err)
			}

			cutoff := base.Add(time.Hour)
			deleted, err := s.Delete(ctx, &runstore.Query{EndTime: &cutoff})
			if err != nil || deleted != 2 {
				t.Errorf("Delete() = %d, %v; want 2", deleted, err)
			}

			n, _ = s.Count(ctx, &runstore.Query{})
			if n != 3 {
				t.Errorf("Count() after delete = %d, want 3", n)
			}
		})
	}
}

func TestSQLiteStorage_Reopen(t *testing.T) {
	cfg := config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "runs.db"), Driver: "sqlite"}

	s, err := NewSQLiteStorage(cfg, nil)
	if err != nil {
		t.Fatalf("NewSQLiteStorage() error = %v", err)
	}
	s.Store(context.Background(), testRecord(1, runstore.StatusSuccess))
	s.Close()

	s, err = NewSQLiteStorage(cfg, nil)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer s.Close()

	n, _ := s.Count(context.Background(), &runstore.Query{})
	if n != 1 {
		t.Errorf("Count() after reopen = %d, want 1", n)
	}
}

func TestBuildDSN(t *testing.T) {
	tests := []struct {
		driver  string
		want    []string
		wantErr bool
	}{
		{driver: "sqlite3", want: []string{"file:runs.db?", "_busy_timeout=1500", "_journal_mode=WAL"}},
		{driver: "sqlite", want: []string{"file:runs.db?", "_pragma=busy_timeout%281500%29", "_pragma=journal_mode%28WAL%29"}},
		{driver: "postgres", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			dsn, err := buildDSN(config.SQLiteConfig{Path: "runs.db", Driver: tt.driver, BusyTimeout: 1500 * time.Millisecond})
			if (err != nil) != tt.wantErr {
				t.Fatalf("buildDSN() error = %v, wantErr %v", err, tt.wantErr)
			}
			for _, part := range tt.want {
				if !strings.Contains(dsn, part) {
					t.Errorf("dsn %q missing %q", dsn, part)
				}
			}
		})
	}
}

func TestOpen(t *testing.T) {
	s, err := Open(&config.RunStoreConfig{Backend: "memory"}, nil)
	if err != nil {
		t.Fatalf("Open(memory) error = %v", err)
	}
	if _, ok := s.(*MemoryStorage); !ok {
		t.Errorf("Open(memory) = %T", s)
	}

	if _, err := Open(&config.RunStoreConfig{Backend: "redis"}, nil); err == nil {
		t.Error("Open(redis) should fail")
	}
}

func TestMemoryStorage_IsolatesCopies(t *testing.T) {
	s := NewMemoryStorage()
	r := testRecord(1, runstore.StatusSuccess)
	s.Store(context.Background(), r)
	r.Rules[0].Rule = "mutated"

	got, _ := s.Query(context.Background(), &runstore.Query{})
	if got[0].Rules[0].Rule != "depth" {
		t.Error("stored record shares memory with the caller")
	}
}
