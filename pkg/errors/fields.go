package errors

import (
	stderrors "errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// LogFields describes err for a structured log line: its code, the unwrap
// chain and, when a database driver raised it, the constraint that tripped.
func LogFields(err error) map[string]any {
	if err == nil {
		return nil
	}
	fields := map[string]any{"error": err.Error()}
	if typed := As(err); typed != nil {
		fields["error_code"] = typed.code
	}

	var chain []string
	for e := err; e != nil; e = stderrors.Unwrap(e) {
		chain = append(chain, fmt.Sprintf("%T", e))
	}
	fields["error_chain"] = chain

	for k, v := range driverFields(err) {
		fields[k] = v
	}
	return fields
}

func driverFields(err error) map[string]any {
	if pgErr, ok := asType[*pgconn.PgError](err); ok {
		return map[string]any{
			"pg_code":       pgErr.Code,
			"pg_constraint": pgErr.ConstraintName,
			"pg_table":      pgErr.TableName,
			"pg_detail":     pgErr.Detail,
		}
	}
	if pqErr, ok := asType[*pq.Error](err); ok {
		return map[string]any{
			"pg_code":       string(pqErr.Code),
			"pg_constraint": pqErr.Constraint,
			"pg_table":      pqErr.Table,
			"pg_detail":     pqErr.Detail,
		}
	}
	if liteErr, ok := asType[sqlite3.Error](err); ok {
		return map[string]any{"sqlite_code": liteErr.ExtendedCode.Error()}
	}
	return nil
}

func asType[T error](err error) (T, bool) {
	var target T
	ok := stderrors.As(err, &target)
	return target, ok
}
