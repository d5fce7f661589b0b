package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/linguiz/internal/exercise"
)

// ExerciseRepo reads and writes the exercise catalog. Stored exercises
// include their answer keys.
type ExerciseRepo interface {
	// Upsert inserts ex or replaces the stored exercise with the same ID.
	// A replaced exercise keeps its position in the listing order.
	Upsert(ctx context.Context, ex *exercise.Exercise) error

	// Get returns the exercise with the given ID, or nil if none exists.
	Get(ctx context.Context, id string) (*exercise.Exercise, error)

	// List returns the exercises matching filter in insertion order.
	// A zero filter.Limit returns every match.
	List(ctx context.Context, filter exercise.Filter) ([]*exercise.Exercise, error)

	// Count returns the number of stored exercises.
	Count(ctx context.Context) (int, error)
}

type exerciseRepo struct {
	drv *entsql.Driver
	seq *sequenceCounter
	now func() time.Time
}

func (r *exerciseRepo) builder() *entsql.DialectBuilder {
	return entsql.Dialect(dialect.SQLite)
}

func (r *exerciseRepo) clock() time.Time {
	if r.now != nil {
		return r.now()
	}
	return time.Now()
}

func (r *exerciseRepo) Upsert(ctx context.Context, ex *exercise.Exercise) error {
	doc, err := json.Marshal(ex)
	if err != nil {
		return fmt.Errorf("encode exercise %s: %w", ex.ID, err)
	}
	seq, err := r.seq.Next(ctx)
	if err != nil {
		return err
	}
	now := r.clock().UnixMilli()

	query, args := r.builder().Insert(exercisesTableName).
		Columns(colID, colSequence, colCategory, colSubcategory, colType, colLevel, colDocument, colCreatedAt, colUpdatedAt).
		Values(ex.ID, seq, ex.Category, ex.Subcategory, string(ex.Kind()), string(ex.Level), string(doc), now, now).
		OnConflict(
			entsql.ConflictColumns(colID),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				for _, c := range []string{colCategory, colSubcategory, colType, colLevel, colDocument, colUpdatedAt} {
					u.SetExcluded(c)
				}
			}),
		).
		Query()

	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("upsert exercise %s: %w", ex.ID, err)
	}
	return nil
}

func (r *exerciseRepo) Get(ctx context.Context, id string) (*exercise.Exercise, error) {
	query, args := r.builder().Select(colDocument).
		From(entsql.Table(exercisesTableName)).
		Where(entsql.EQ(colID, id)).
		Query()

	exs, err := r.query(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("get exercise %s: %w", id, err)
	}
	if len(exs) == 0 {
		return nil, nil
	}
	return exs[0], nil
}

func (r *exerciseRepo) List(ctx context.Context, filter exercise.Filter) ([]*exercise.Exercise, error) {
	sel := r.builder().Select(colDocument).
		From(entsql.Table(exercisesTableName)).
		OrderBy(entsql.Asc(colSequence))

	var preds []*entsql.Predicate
	if filter.Category != "" {
		preds = append(preds, entsql.EQ(colCategory, filter.Category))
	}
	if filter.Level != "" {
		preds = append(preds, entsql.EQ(colLevel, string(filter.Level)))
	}
	if len(preds) > 0 {
		sel.Where(entsql.And(preds...))
	}
	if filter.Limit > 0 {
		sel.Limit(filter.Limit)
	}

	query, args := sel.Query()
	exs, err := r.query(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("list exercises: %w", err)
	}
	return exs, nil
}

func (r *exerciseRepo) Count(ctx context.Context) (int, error) {
	query, args := r.builder().Select(entsql.Count("*")).
		From(entsql.Table(exercisesTableName)).
		Query()

	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return 0, fmt.Errorf("count exercises: %w", err)
	}
	defer rows.Close()

	n, err := entsql.ScanInt(&rows)
	if err != nil {
		return 0, fmt.Errorf("count exercises: %w", err)
	}
	return n, nil
}

func (r *exerciseRepo) query(ctx context.Context, query string, args []any) ([]*exercise.Exercise, error) {
	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*exercise.Exercise
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		ex := new(exercise.Exercise)
		if err := json.Unmarshal([]byte(doc), ex); err != nil {
			return nil, fmt.Errorf("decode stored exercise: %w", err)
		}
		out = append(out, ex)
	}
	return out, rows.Err()
}
