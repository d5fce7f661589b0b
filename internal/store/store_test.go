package store

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/abhisek/linguiz/internal/exercise"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "linguiz.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func mcq(id, category string, level exercise.Level) *exercise.Exercise {
	return &exercise.Exercise{
		ID:          id,
		Category:    category,
		Subcategory: "nom_genre",
		Level:       level,
		Instruction: "Choisissez l'article qui convient.",
		Sentence:    "Je vais à ___ lycée.",
		Points:      10,
		TimeLimit:   30,
		Tags:        []string{"article"},
		Body: &exercise.MCQ{
			Options:       map[string]string{"a": "la", "b": "le"},
			CorrectAnswer: "b",
			Feedback:      map[string]string{"b": "On dit le lycée."},
		},
	}
}

func TestOpenClose(t *testing.T) {
	s := openTestStore(t)
	if s.DB() == nil {
		t.Fatal("expected non-nil db")
	}
}

func TestOpen_FreshDatabaseSchema(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "fresh.db"))
	if err != nil {
		t.Fatalf("Open on a fresh file: %v", err)
	}
	defer s.Close()

	want := map[string]string{
		"exercises":              "table",
		"exercise_sequence":      "table",
		"exercises_sequence_key": "index",
	}
	for name, typ := range want {
		var got string
		err := s.DB().QueryRow(`SELECT type FROM sqlite_master WHERE name = ?`, name).Scan(&got)
		if err != nil {
			t.Errorf("schema object %s: %v", name, err)
			continue
		}
		if got != typ {
			t.Errorf("schema object %s is a %s, want %s", name, got, typ)
		}
	}
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL
	}

	for _, tt := range tests {
		var got string
		if err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got); err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "linguiz.db")
	ctx := context.Background()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.ExerciseRepo().Upsert(ctx, mcq("ex-1", "grammaire", exercise.LevelA1)); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	n, err := s.ExerciseRepo().Count(ctx)
	if err != nil || n != 1 {
		t.Errorf("Count after reopen = %d, %v; want 1", n, err)
	}
}

func TestExerciseRepo_UpsertAndGet(t *testing.T) {
	repo := openTestStore(t).ExerciseRepo()
	ctx := context.Background()

	want := mcq("test_gr_nom_genre_qcm_a1_001", "grammaire", exercise.LevelA1)
	if err := repo.Upsert(ctx, want); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	got, err := repo.Get(ctx, want.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil {
		t.Fatal("expected exercise, got nil")
	}
	if got.Sentence != want.Sentence || got.Level != want.Level || got.Subcategory != "nom_genre" {
		t.Errorf("Get = %+v", got)
	}
	body, ok := got.Body.(*exercise.MCQ)
	if !ok {
		t.Fatalf("body type = %T, want *MCQ", got.Body)
	}
	if body.CorrectAnswer != "b" || body.Feedback["b"] != "On dit le lycée." {
		t.Errorf("answer key lost: %+v", body)
	}
}

func TestExerciseRepo_GetMissing(t *testing.T) {
	repo := openTestStore(t).ExerciseRepo()
	got, err := repo.Get(context.Background(), "nope")
	if err != nil || got != nil {
		t.Errorf("Get(missing) = %v, %v; want nil, nil", got, err)
	}
}

func TestExerciseRepo_UpsertKeepsOrder(t *testing.T) {
	repo := openTestStore(t).ExerciseRepo()
	ctx := context.Background()

	for _, id := range []string{"ex-1", "ex-2", "ex-3"} {
		if err := repo.Upsert(ctx, mcq(id, "grammaire", exercise.LevelA1)); err != nil {
			t.Fatalf("Upsert %s: %v", id, err)
		}
	}

	updated := mcq("ex-1", "grammaire", exercise.LevelA1)
	updated.Points = 20
	if err := repo.Upsert(ctx, updated); err != nil {
		t.Fatalf("Upsert update: %v", err)
	}

	list, err := repo.List(ctx, exercise.Filter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	var ids []string
	for _, ex := range list {
		ids = append(ids, ex.ID)
	}
	if len(ids) != 3 || ids[0] != "ex-1" || ids[1] != "ex-2" || ids[2] != "ex-3" {
		t.Errorf("List order = %v, want [ex-1 ex-2 ex-3]", ids)
	}
	if list[0].Points != 20 {
		t.Errorf("update not applied: points = %d", list[0].Points)
	}

	n, _ := repo.Count(ctx)
	if n != 3 {
		t.Errorf("Count = %d, want 3", n)
	}
}

func TestExerciseRepo_ListFilter(t *testing.T) {
	repo := openTestStore(t).ExerciseRepo()
	ctx := context.Background()

	seed := []*exercise.Exercise{
		mcq("g-a1-1", "grammaire", exercise.LevelA1),
		mcq("g-a2-1", "grammaire", exercise.LevelA2),
		mcq("c-a1-1", "conjugaison", exercise.LevelA1),
		mcq("g-a1-2", "grammaire", exercise.LevelA1),
	}
	for _, ex := range seed {
		if err := repo.Upsert(ctx, ex); err != nil {
			t.Fatalf("Upsert: %v", err)
		}
	}

	tests := []struct {
		name   string
		filter exercise.Filter
		want   []string
	}{
		{"all", exercise.Filter{}, []string{"g-a1-1", "g-a2-1", "c-a1-1", "g-a1-2"}},
		{"category", exercise.Filter{Category: "grammaire"}, []string{"g-a1-1", "g-a2-1", "g-a1-2"}},
		{"level", exercise.Filter{Level: exercise.LevelA1}, []string{"g-a1-1", "c-a1-1", "g-a1-2"}},
		{"both", exercise.Filter{Category: "grammaire", Level: exercise.LevelA1}, []string{"g-a1-1", "g-a1-2"}},
		{"limit", exercise.Filter{Limit: 2}, []string{"g-a1-1", "g-a2-1"}},
		{"no match", exercise.Filter{Category: "vocabulaire"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := repo.List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(list) != len(tt.want) {
				t.Fatalf("List returned %d exercises, want %d", len(list), len(tt.want))
			}
			for i, ex := range list {
				if ex.ID != tt.want[i] {
					t.Errorf("List[%d] = %s, want %s", i, ex.ID, tt.want[i])
				}
			}
		})
	}
}

func TestSequenceCounter_Concurrent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	const n = 20
	seen := make(map[int64]bool)
	var mu sync.Mutex
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := s.seq.Next(ctx)
			if err != nil {
				t.Errorf("Next: %v", err)
				return
			}
			mu.Lock()
			seen[v] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(seen) != n {
		t.Errorf("got %d distinct sequence values, want %d", len(seen), n)
	}
}

// memCache is an in-memory Cache.
type memCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	gets    int
	hits    int
	failing bool
}

func newMemCache() *memCache { return &memCache{data: make(map[string][]byte)} }

func (m *memCache) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	if m.failing {
		return nil, errors.New("connection refused")
	}
	b, ok := m.data[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	m.hits++
	return b, nil
}

func (m *memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return errors.New("connection refused")
	}
	m.data[key] = value
	return nil
}

func (m *memCache) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return errors.New("connection refused")
	}
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCachedRepo_ReadThrough(t *testing.T) {
	ctx := context.Background()
	cache := newMemCache()
	repo := WithCache(openTestStore(t).ExerciseRepo(), cache, time.Minute, quietLogger())

	if err := repo.Upsert(ctx, mcq("ex-1", "grammaire", exercise.LevelA1)); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	for range 2 {
		ex, err := repo.Get(ctx, "ex-1")
		if err != nil || ex == nil {
			t.Fatalf("Get = %v, %v", ex, err)
		}
	}
	if cache.hits != 1 {
		t.Errorf("cache hits = %d, want 1", cache.hits)
	}
	if _, ok := cache.data["linguiz:exercise:ex-1"]; !ok {
		t.Error("expected exercise to be cached under linguiz:exercise:ex-1")
	}

	updated := mcq("ex-1", "grammaire", exercise.LevelA1)
	updated.Points = 99
	if err := repo.Upsert(ctx, updated); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	ex, _ := repo.Get(ctx, "ex-1")
	if ex.Points != 99 {
		t.Errorf("stale cache after upsert: points = %d", ex.Points)
	}
}

func TestCachedRepo_MissingNotCached(t *testing.T) {
	cache := newMemCache()
	repo := WithCache(openTestStore(t).ExerciseRepo(), cache, time.Minute, quietLogger())

	ex, err := repo.Get(context.Background(), "nope")
	if err != nil || ex != nil {
		t.Fatalf("Get(missing) = %v, %v", ex, err)
	}
	if len(cache.data) != 0 {
		t.Errorf("missing exercise was cached: %v", cache.data)
	}
}

func TestCachedRepo_CacheDownFallsBack(t *testing.T) {
	ctx := context.Background()
	cache := newMemCache()
	cache.failing = true
	repo := WithCache(openTestStore(t).ExerciseRepo(), cache, time.Minute, quietLogger())

	if err := repo.Upsert(ctx, mcq("ex-1", "grammaire", exercise.LevelA1)); err != nil {
		t.Fatalf("Upsert with cache down: %v", err)
	}
	ex, err := repo.Get(ctx, "ex-1")
	if err != nil || ex == nil {
		t.Fatalf("Get with cache down = %v, %v", ex, err)
	}
}

func TestWithPragmas(t *testing.T) {
	if got := withPragmas("a.db"); got[:len("a.db?_pragma=")] != "a.db?_pragma=" {
		t.Errorf("withPragmas(a.db) = %q", got)
	}
	if got := withPragmas("file::memory:?cache=shared"); got[:len("file::memory:?cache=shared&")] != "file::memory:?cache=shared&" {
		t.Errorf("withPragmas keeps existing query: %q", got)
	}
}
