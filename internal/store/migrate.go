package store

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

const exercisesTableName = "exercises"

// Column names of the exercises table.
const (
	colID          = "id"
	colSequence    = "sequence"
	colCategory    = "category"
	colSubcategory = "subcategory"
	colType        = "type"
	colLevel       = "difficulty_level"
	colDocument    = "document"
	colCreatedAt   = "created_at"
	colUpdatedAt   = "updated_at"
)

var (
	exerciseColumns = []*schema.Column{
		{Name: colID, Type: field.TypeString},
		{Name: colSequence, Type: field.TypeInt64},
		{Name: colCategory, Type: field.TypeString},
		{Name: colSubcategory, Type: field.TypeString, Default: ""},
		{Name: colType, Type: field.TypeString},
		{Name: colLevel, Type: field.TypeString},
		{Name: colDocument, Type: field.TypeJSON},
		{Name: colCreatedAt, Type: field.TypeInt64},
		{Name: colUpdatedAt, Type: field.TypeInt64},
	}
	exercisesTable = &schema.Table{
		Name:       exercisesTableName,
		Columns:    exerciseColumns,
		PrimaryKey: []*schema.Column{exerciseColumns[0]},
		Indexes: []*schema.Index{
			{Name: "exercises_sequence_key", Unique: true, Columns: []*schema.Column{exerciseColumns[1]}},
			{Name: "exercise_category_difficulty_level", Columns: []*schema.Column{exerciseColumns[2], exerciseColumns[5]}},
		},
	}

	tables = []*schema.Table{exercisesTable}
)

// migrate brings the database schema up to date with tables.
func migrate(ctx context.Context, drv *entsql.Driver) error {
	m, err := schema.NewMigrate(drv, schema.WithDropIndex(true))
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	return m.Create(ctx, tables...)
}
