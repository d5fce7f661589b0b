// Package catalog loads exercise seed files and the built-in catalog.
package catalog

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/abhisek/linguiz/internal/exercise"
	"github.com/abhisek/linguiz/internal/store"
)

//go:embed default.yaml
var defaultCatalog []byte

// ErrDuplicateID is returned when two entries share an ID.
var ErrDuplicateID = errors.New("duplicate exercise id")

// Default returns the built-in catalog.
func Default() ([]*exercise.Exercise, error) {
	return Parse(defaultCatalog)
}

// LoadFile reads a seed file. JSON files are accepted as YAML.
func LoadFile(path string) ([]*exercise.Exercise, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	exs, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return exs, nil
}

// Parse decodes a list of exercises in the wire shape and validates each
// one including its answer key. All problems are reported together.
func Parse(data []byte) ([]*exercise.Exercise, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("line %d: catalog must be a list of exercises", root.Line)
	}

	var (
		exs  []*exercise.Exercise
		errs []error
		seen = make(map[string]int)
	)
	for _, item := range root.Content {
		ex, err := decodeItem(item)
		if err != nil {
			errs = append(errs, fmt.Errorf("line %d: %w", item.Line, err))
			continue
		}
		if first, dup := seen[ex.ID]; dup {
			errs = append(errs, fmt.Errorf("line %d: %w %q (first at line %d)", item.Line, ErrDuplicateID, ex.ID, first))
			continue
		}
		seen[ex.ID] = item.Line
		exs = append(exs, ex)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return exs, nil
}

// decodeItem goes through JSON so the exercise's own wire decoding
// applies to YAML input too.
func decodeItem(item *yaml.Node) (*exercise.Exercise, error) {
	var raw map[string]any
	if err := item.Decode(&raw); err != nil {
		return nil, err
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	ex := new(exercise.Exercise)
	if err := json.Unmarshal(b, ex); err != nil {
		return nil, err
	}
	if err := ex.ValidateKey(); err != nil {
		return nil, err
	}
	return ex, nil
}

// Seed upserts exs into repo and returns how many were written.
func Seed(ctx context.Context, repo store.ExerciseRepo, exs []*exercise.Exercise) (int, error) {
	for i, ex := range exs {
		if err := repo.Upsert(ctx, ex); err != nil {
			return i, err
		}
	}
	return len(exs), nil
}

// Bootstrap loads the seed file at path into repo. With no path, the
// built-in catalog is loaded only when repo is empty.
func Bootstrap(ctx context.Context, repo store.ExerciseRepo, path string, logger *slog.Logger) error {
	var (
		exs    []*exercise.Exercise
		source = path
		err    error
	)
	if path != "" {
		exs, err = LoadFile(path)
	} else {
		n, cerr := repo.Count(ctx)
		if cerr != nil {
			return cerr
		}
		if n > 0 {
			logger.Info("catalog already present", "exercises", n)
			return nil
		}
		source = "built-in"
		exs, err = Default()
	}
	if err != nil {
		return err
	}

	n, err := Seed(ctx, repo, exs)
	if err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}
	logger.Info("catalog seeded", "source", source, "exercises", n)
	return nil
}
