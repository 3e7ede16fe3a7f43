package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/safari/core"
	"github.com/trezcool/safari/core/catalog"
)

const uniqueViolation = "23505"

// row is the storage shape shared by every catalog table: a few indexed columns plus the JSONB document.
type row struct {
	ID        string         `db:"id"`
	Slug      sql.NullString `db:"slug"`
	Data      types.JSONText `db:"data"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

// Table does the single record reads and writes of one collection.
type Table[T any, PT catalog.EntityPtr[T]] struct {
	db    *sqlx.DB
	table string
}

func NewTable[T any, PT catalog.EntityPtr[T]](db *sqlx.DB, table string) *Table[T, PT] {
	return &Table[T, PT]{db: db, table: table}
}

func (tbl *Table[T, PT]) toRow(ent T) (row, error) {
	p := PT(&ent)
	data, err := json.Marshal(p)
	if err != nil {
		return row{}, errors.Wrap(err, "encoding record")
	}
	r := row{
		ID:        p.GetID(),
		Data:      types.JSONText(data),
		CreatedAt: p.GetBase().CreatedAt.UTC(),
		UpdatedAt: p.GetBase().UpdatedAt.UTC(),
	}
	if s, ok := any(p).(catalog.Sluggable); ok && s.GetSlug() != "" {
		r.Slug = sql.NullString{String: s.GetSlug(), Valid: true}
	}
	return r, nil
}

// FromRow decodes a stored document; the columns win over the document.
func FromRow[T any, PT catalog.EntityPtr[T]](id string, data []byte, createdAt, updatedAt time.Time) (T, error) {
	var ent T
	if err := json.Unmarshal(data, &ent); err != nil {
		return ent, errors.Wrap(err, "decoding record")
	}
	base := PT(&ent).GetBase()
	base.ID = id
	base.CreatedAt = createdAt.UTC()
	base.UpdatedAt = updatedAt.UTC()
	return ent, nil
}

func (tbl *Table[T, PT]) fromRow(r row) (T, error) {
	return FromRow[T, PT](r.ID, r.Data, r.CreatedAt, r.UpdatedAt)
}

func (tbl *Table[T, PT]) Create(ctx context.Context, ent T) (T, error) {
	var zero T
	r, err := tbl.toRow(ent)
	if err != nil {
		return zero, err
	}
	q := fmt.Sprintf(
		`INSERT INTO %s (id, slug, data, created_at, updated_at) VALUES (:id, :slug, :data, :created_at, :updated_at)`,
		tbl.table)
	if _, err = tbl.db.NamedExecContext(ctx, q, r); err != nil {
		return zero, trapUniqueErr(err, "inserting into "+tbl.table)
	}
	return tbl.fromRow(r)
}

func (tbl *Table[T, PT]) Update(ctx context.Context, ent T) (T, error) {
	var zero T
	r, err := tbl.toRow(ent)
	if err != nil {
		return zero, err
	}
	q := fmt.Sprintf(
		`UPDATE %s SET slug = :slug, data = :data, updated_at = :updated_at WHERE id = :id`,
		tbl.table)
	res, err := tbl.db.NamedExecContext(ctx, q, r)
	if err != nil {
		return zero, trapUniqueErr(err, "updating "+tbl.table)
	}
	if n, err := res.RowsAffected(); err != nil {
		return zero, errors.Wrap(err, "updating "+tbl.table)
	} else if n == 0 {
		return zero, core.ErrNotFound
	}
	return tbl.fromRow(r)
}

func (tbl *Table[T, PT]) Get(ctx context.Context, idOrSlug string) (T, error) {
	var (
		zero T
		r    row
	)
	q := fmt.Sprintf(`SELECT id, slug, data, created_at, updated_at FROM %s WHERE id = $1 OR slug = $1 LIMIT 1`, tbl.table)
	if err := tbl.db.GetContext(ctx, &r, q, idOrSlug); err != nil {
		if err == sql.ErrNoRows {
			return zero, core.ErrNotFound
		}
		return zero, errors.Wrap(err, "getting from "+tbl.table)
	}
	return tbl.fromRow(r)
}

func (tbl *Table[T, PT]) Delete(ctx context.Context, id string) error {
	res, err := tbl.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, tbl.table), id)
	if err != nil {
		return errors.Wrap(err, "deleting from "+tbl.table)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "deleting from "+tbl.table)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (tbl *Table[T, PT]) SlugExists(ctx context.Context, slug, excludedID string) (bool, error) {
	var exists bool
	q := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE slug = $1 AND id <> $2)`, tbl.table)
	if err := tbl.db.GetContext(ctx, &exists, q, slug, excludedID); err != nil {
		return false, errors.Wrap(err, "checking slug")
	}
	return exists, nil
}

// trapUniqueErr maps the unique slug violation to core.ErrSlugExists
func trapUniqueErr(err error, msg string) error {
	if pqErr, ok := errors.Cause(err).(*pq.Error); ok && pqErr.Code == uniqueViolation {
		return core.ErrSlugExists
	}
	return errors.Wrap(err, msg)
}
