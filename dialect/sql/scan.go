package sql

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/syssam/asyncdao/jsonx"
)

// textTypes are database type names whose []byte values are really text.
// Drivers such as go-sql-driver/mysql hand every column back as bytes.
var textTypes = map[string]bool{
	"CHAR": true, "VARCHAR": true, "NCHAR": true, "NVARCHAR": true, "BPCHAR": true,
	"TEXT": true, "TINYTEXT": true, "MEDIUMTEXT": true, "LONGTEXT": true, "NAME": true,
	"JSON": true, "JSONB": true, "ENUM": true, "SET": true, "UUID": true,
	"DECIMAL": true, "NUMERIC": true,
	"DATE": true, "DATETIME": true, "TIMESTAMP": true, "TIMESTAMPTZ": true, "TIME": true, "YEAR": true,
}

// ScanRows reads every row into an object keyed by column name and closes rows.
func ScanRows(rows *sql.Rows) ([]jsonx.Object, error) {
	defer rows.Close()
	var text []bool
	if types, err := rows.ColumnTypes(); err == nil {
		text = make([]bool, len(types))
		for i, ct := range types {
			name := strings.ToUpper(ct.DatabaseTypeName())
			if j := strings.IndexByte(name, '('); j >= 0 {
				name = name[:j]
			}
			text[i] = textTypes[strings.TrimSpace(name)]
		}
	}
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("dialect/sql: scan: %w", err)
	}
	var out []jsonx.Object
	for rows.Next() {
		row := make(map[string]any, len(cols))
		if err := sqlx.MapScan(rows, row); err != nil {
			return nil, fmt.Errorf("dialect/sql: scan: %w", err)
		}
		for i, c := range cols {
			if b, ok := row[c].([]byte); ok && i < len(text) && text[i] {
				row[c] = string(b)
			}
		}
		out = append(out, jsonx.Object(row))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("dialect/sql: scan: %w", err)
	}
	return out, nil
}
