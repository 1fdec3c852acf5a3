package postgres

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"testing"
)

// step is one scripted database call. SQL must contain match.
type step struct {
	match    string
	rows     [][]any
	err      error
	affected int64
}

type call struct {
	sql  string
	args []any
}

// fakeDB replays steps in order and records every call it receives.
type fakeDB struct {
	t          *testing.T
	steps      []step
	calls      []call
	committed  bool
	rolledBack bool
}

func newFakeDB(t *testing.T, steps ...step) *fakeDB {
	t.Helper()
	return &fakeDB{t: t, steps: steps}
}

func (f *fakeDB) next(sql string, args []any) step {
	f.t.Helper()
	f.calls = append(f.calls, call{sql: sql, args: args})
	if len(f.steps) == 0 {
		f.t.Fatalf("unexpected query: %s", sql)
	}
	s := f.steps[0]
	f.steps = f.steps[1:]
	if !strings.Contains(sql, s.match) {
		f.t.Fatalf("query %q does not contain %q", sql, s.match)
	}
	return s
}

func (f *fakeDB) assertDone() {
	f.t.Helper()
	if len(f.steps) != 0 {
		f.t.Fatalf("%d scripted steps were not executed", len(f.steps))
	}
}

func (f *fakeDB) Query(_ context.Context, sql string, args ...any) (Rows, error) {
	s := f.next(sql, args)
	if s.err != nil {
		return nil, s.err
	}
	return &fakeRows{rows: s.rows}, nil
}

func (f *fakeDB) QueryRow(_ context.Context, sql string, args ...any) Row {
	s := f.next(sql, args)
	if s.err != nil {
		return fakeRow{err: s.err}
	}
	if len(s.rows) == 0 {
		return fakeRow{err: fmt.Errorf("no rows scripted")}
	}
	return fakeRow{values: s.rows[0]}
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) (CommandTag, error) {
	s := f.next(sql, args)
	if s.err != nil {
		return nil, s.err
	}
	return fakeTag(s.affected), nil
}

func (f *fakeDB) Begin(context.Context) (Tx, error) { return &fakeTx{db: f}, nil }
func (f *fakeDB) Ping(context.Context) error       { return nil }
func (f *fakeDB) Close()                           {}

type fakeTx struct {
	db *fakeDB
}

func (tx *fakeTx) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	return tx.db.Query(ctx, sql, args...)
}

func (tx *fakeTx) QueryRow(ctx context.Context, sql string, args ...any) Row {
	return tx.db.QueryRow(ctx, sql, args...)
}

func (tx *fakeTx) Exec(ctx context.Context, sql string, args ...any) (CommandTag, error) {
	return tx.db.Exec(ctx, sql, args...)
}

func (tx *fakeTx) Commit(context.Context) error {
	tx.db.committed = true
	return nil
}

func (tx *fakeTx) Rollback(context.Context) error {
	if !tx.db.committed {
		tx.db.rolledBack = true
	}
	return nil
}

type fakeTag int64

func (t fakeTag) RowsAffected() int64 { return int64(t) }

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return assign(dest, r.values)
}

type fakeRows struct {
	rows [][]any
	pos  int
}

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.rows) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Scan(dest ...any) error { return assign(dest, r.rows[r.pos-1]) }
func (r *fakeRows) Err() error             { return nil }
func (r *fakeRows) Close()                 {}

// assign copies values into scan destinations, allocating for pointer targets.
func assign(dest []any, values []any) error {
	if len(dest) != len(values) {
		return fmt.Errorf("scan: %d destinations for %d values", len(dest), len(values))
	}
	for i, v := range values {
		target := reflect.ValueOf(dest[i]).Elem()
		if v == nil {
			target.Set(reflect.Zero(target.Type()))
			continue
		}
		value := reflect.ValueOf(v)
		if target.Kind() == reflect.Ptr && value.Type() != target.Type() {
			p := reflect.New(target.Type().Elem())
			p.Elem().Set(value.Convert(target.Type().Elem()))
			target.Set(p)
			continue
		}
		target.Set(value.Convert(target.Type()))
	}
	return nil
}
