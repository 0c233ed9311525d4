// Copyright (c) 2025 ToeiRei
// chatdb - console chat persistence layer
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"
)

// RowSet is a fully materialized query result. It holds no driver resources.
type RowSet struct {
	Columns []string
	Rows    [][]any
}

// Len returns the number of rows.
func (r *RowSet) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Rows)
}

// Empty reports whether the result has no rows.
func (r *RowSet) Empty() bool { return r.Len() == 0 }

func (r *RowSet) value(row, col int) (any, error) {
	if row < 0 || row >= r.Len() {
		return nil, fmt.Errorf("row %d out of range (%d rows)", row, r.Len())
	}
	if col < 0 || col >= len(r.Rows[row]) {
		return nil, fmt.Errorf("column %d out of range (%d columns)", col, len(r.Rows[row]))
	}
	return r.Rows[row][col], nil
}

// Int64 returns the value at (row, col) as an integer. Drivers disagree on
// integer representation (MySQL hands out text unless told otherwise), so
// byte and string values are parsed.
func (r *RowSet) Int64(row, col int) (int64, error) {
	v, err := r.value(row, col)
	if err != nil {
		return 0, err
	}
	switch x := v.(type) {
	case int64:
		return x, nil
	case int32:
		return int64(x), nil
	case int:
		return int64(x), nil
	case uint64:
		return int64(x), nil
	case float64:
		return int64(x), nil
	case []byte:
		return strconv.ParseInt(string(x), 10, 64)
	case string:
		return strconv.ParseInt(x, 10, 64)
	case nil:
		return 0, fmt.Errorf("NULL at row %d column %d", row, col)
	default:
		return 0, fmt.Errorf("unsupported integer type %T", v)
	}
}

// String returns the value at (row, col) as text.
func (r *RowSet) String(row, col int) (string, error) {
	v, err := r.value(row, col)
	if err != nil {
		return "", err
	}
	switch x := v.(type) {
	case string:
		return x, nil
	case []byte:
		return string(x), nil
	case nil:
		return "", nil
	case time.Time:
		return x.Format(time.DateTime), nil
	default:
		return fmt.Sprint(x), nil
	}
}

// collectRows drains rows into a RowSet. Byte slices are copied because
// drivers may reuse them on the next call to Next.
func collectRows(rows *sql.Rows) (*RowSet, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	rs := &RowSet{Columns: cols}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		for i, v := range vals {
			if b, ok := v.([]byte); ok {
				vals[i] = append([]byte(nil), b...)
			}
		}
		rs.Rows = append(rs.Rows, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return rs, nil
}
