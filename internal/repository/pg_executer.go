package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"domain-locker/internal/domain"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// QueryExecutor runs arbitrary SQL on behalf of the front end.
type QueryExecutor interface {
	Execute(ctx context.Context, query string, params []any) ([]map[string]any, error)
}

type pgExecutor struct {
	db *sqlx.DB
}

func NewPgExecutor(db *sqlx.DB) QueryExecutor {
	return &pgExecutor{db: db}
}

var ErrEmptyQuery = domain.NewValidationError("query is required")

// Execute takes a dedicated connection, runs the query and releases the connection.
// No retry and no transaction; driver errors are returned untouched.
func (e *pgExecutor) Execute(ctx context.Context, query string, params []any) ([]map[string]any, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}

	conn, err := e.db.Connx(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	rows, err := conn.QueryxContext(ctx, query, coerceParams(params)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []map[string]any{}
	for rows.Next() {
		row := map[string]any{}
		if err := rows.MapScan(row); err != nil {
			return nil, err
		}
		for k, v := range row {
			row[k] = coerceValue(v)
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// coerceParams maps JSON-decoded parameters onto types lib/pq can bind.
func coerceParams(params []any) []any {
	out := make([]any, len(params))
	for i, p := range params {
		out[i] = coerceParam(p)
	}
	return out
}

func coerceParam(p any) any {
	switch v := p.(type) {
	case map[string]any:
		return jsonText(v)
	case []any:
		if strs, ok := allOf[string](v); ok {
			return pq.StringArray(strs)
		}
		if nums, ok := allOf[float64](v); ok {
			return pq.Float64Array(nums)
		}
		if flags, ok := allOf[bool](v); ok {
			return pq.BoolArray(flags)
		}
		return jsonText(v)
	}
	return p
}

func allOf[T any](values []any) ([]T, bool) {
	out := make([]T, 0, len(values))
	for _, v := range values {
		t, ok := v.(T)
		if !ok {
			return nil, false
		}
		out = append(out, t)
	}
	return out, true
}

func jsonText(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// coerceValue turns the []byte lib/pq returns for json, uuid and numeric columns
// into something that encodes sensibly.
func coerceValue(v any) any {
	b, ok := v.([]byte)
	if !ok {
		return v
	}
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') && json.Valid(trimmed) {
		return json.RawMessage(bytes.Clone(trimmed))
	}
	return string(b)
}
