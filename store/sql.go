package store

import (
	"context"
	"database/sql"
	"sort"
	"strings"

	"github.com/Masterminds/squirrel"
)

// SQL is a Gateway over a database/sql handle whose tables are named after
// the collections and keyed by an "id" column.
type SQL struct {
	db *sql.DB
	sq squirrel.StatementBuilderType
}

func NewSQL(db *sql.DB) *SQL {
	return &SQL{
		db: db,
		sq: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}
}

func (s *SQL) Select(ctx context.Context, collection string, filter Filter, order ...Order) ([]Record, error) {
	if err := checkCollection(collection); err != nil {
		return nil, wrap("select", collection, err)
	}
	where, err := toSqlizer(filter)
	if err != nil {
		return nil, wrap("select", collection, err)
	}

	q := s.sq.Select("*").From(collection)
	if where != nil {
		q = q.Where(where)
	}
	for _, o := range order {
		if err := checkIdent(o.Field); err != nil {
			return nil, wrap("select", collection, err)
		}
		if o.Desc {
			q = q.OrderBy(o.Field + " DESC")
		} else {
			q = q.OrderBy(o.Field + " ASC")
		}
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, wrap("select", collection, err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrap("select", collection, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, wrap("select", collection, err)
	}

	records := []Record{}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, wrap("select.scan", collection, err)
		}

		rec := make(Record, len(cols))
		for i, col := range cols {
			rec[col] = normalize(values[i])
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("select", collection, err)
	}
	return records, nil
}

func (s *SQL) Insert(ctx context.Context, collection string, rec Record) error {
	ins, err := s.insert(collection, rec)
	if err != nil {
		return wrap("insert", collection, err)
	}
	query, args, err := ins.ToSql()
	if err != nil {
		return wrap("insert", collection, err)
	}
	_, err = s.db.ExecContext(ctx, query, args...)
	return wrap("insert", collection, err)
}

func (s *SQL) Upsert(ctx context.Context, collection string, rec Record) (Record, error) {
	id, ok := rec["id"]
	if !ok || id == nil {
		return nil, wrap("upsert", collection, ErrMissingID)
	}

	cols, _ := columns(rec)
	set := make([]string, 0, len(cols))
	for _, col := range cols {
		if col != "id" {
			set = append(set, col+" = excluded."+col)
		}
	}
	ins, err := s.insert(collection, rec)
	if err != nil {
		return nil, wrap("upsert", collection, err)
	}
	if len(set) > 0 {
		ins = ins.Suffix("ON CONFLICT (id) DO UPDATE SET " + strings.Join(set, ", "))
	} else {
		ins = ins.Suffix("ON CONFLICT (id) DO NOTHING")
	}

	query, args, err := ins.ToSql()
	if err != nil {
		return nil, wrap("upsert", collection, err)
	}
	if _, err = s.db.ExecContext(ctx, query, args...); err != nil {
		return nil, wrap("upsert", collection, err)
	}

	stored, err := s.Select(ctx, collection, Where(Eq("id", id)))
	if err != nil {
		return nil, err
	}
	if len(stored) == 0 {
		return nil, wrap("upsert", collection, sql.ErrNoRows)
	}
	return stored[0], nil
}

func (s *SQL) Update(ctx context.Context, collection string, filter Filter, patch Record) (int64, error) {
	if len(filter) == 0 {
		return 0, wrap("update", collection, ErrNoFilter)
	}
	if err := checkCollection(collection); err != nil {
		return 0, wrap("update", collection, err)
	}
	where, err := toSqlizer(filter)
	if err != nil {
		return 0, wrap("update", collection, err)
	}

	up := s.sq.Update(collection).Where(where)
	cols, vals := columns(patch)
	for i, col := range cols {
		if err := checkIdent(col); err != nil {
			return 0, wrap("update", collection, err)
		}
		up = up.Set(col, vals[i])
	}

	query, args, err := up.ToSql()
	if err != nil {
		return 0, wrap("update", collection, err)
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, wrap("update", collection, err)
	}
	n, err := res.RowsAffected()
	return n, wrap("update", collection, err)
}

func (s *SQL) Delete(ctx context.Context, collection string, filter Filter) error {
	if len(filter) == 0 {
		return wrap("delete", collection, ErrNoFilter)
	}
	if err := checkCollection(collection); err != nil {
		return wrap("delete", collection, err)
	}
	where, err := toSqlizer(filter)
	if err != nil {
		return wrap("delete", collection, err)
	}

	query, args, err := s.sq.Delete(collection).Where(where).ToSql()
	if err != nil {
		return wrap("delete", collection, err)
	}
	_, err = s.db.ExecContext(ctx, query, args...)
	return wrap("delete", collection, err)
}

// insert builds the INSERT shared by Insert and Upsert.
func (s *SQL) insert(collection string, rec Record) (squirrel.InsertBuilder, error) {
	if err := checkCollection(collection); err != nil {
		return squirrel.InsertBuilder{}, err
	}
	cols, vals := columns(rec)
	for _, col := range cols {
		if err := checkIdent(col); err != nil {
			return squirrel.InsertBuilder{}, err
		}
	}
	return s.sq.Insert(collection).Columns(cols...).Values(vals...), nil
}

// columns returns rec's keys in a stable order with their values.
func columns(rec Record) ([]string, []any) {
	cols := make([]string, 0, len(rec))
	for col := range rec {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	vals := make([]any, len(cols))
	for i, col := range cols {
		vals[i] = rec[col]
	}
	return cols, vals
}

func toSqlizer(filter Filter) (squirrel.Sqlizer, error) {
	if len(filter) == 0 {
		return nil, nil
	}
	if err := filter.check(); err != nil {
		return nil, err
	}
	and := make(squirrel.And, 0, len(filter))
	for _, c := range filter {
		switch c.Op {
		case OpEq:
			and = append(and, squirrel.Eq{c.Field: c.Value})
		case OpIn:
			and = append(and, squirrel.Eq{c.Field: c.Values})
		case OpNotIn:
			and = append(and, squirrel.NotEq{c.Field: c.Values})
		}
	}
	return and, nil
}
