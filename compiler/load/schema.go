// Package load reads the table metadata the generator works from, either
// from a YAML or JSON schema file or from a live database.
package load

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/syssam/asyncdao/dialect"
	"github.com/syssam/asyncdao/schema/field"
)

// ErrInvalidSchema is matched by every validation error.
var ErrInvalidSchema = errors.New("asyncdao: invalid schema")

// Column converters marking text columns that hold JSON documents.
const (
	ConverterJSONObject = "json_object"
	ConverterJSONArray  = "json_array"
)

// Schema describes the tables of one database schema.
type Schema struct {
	Name    string   `yaml:"name,omitempty" json:"name,omitempty"`
	Dialect string   `yaml:"dialect" json:"dialect"`
	Tables  []*Table `yaml:"tables" json:"tables"`
}

// Table describes a table and its keys.
type Table struct {
	Name       string     `yaml:"name" json:"name"`
	Comment    string     `yaml:"comment,omitempty" json:"comment,omitempty"`
	Columns    []*Column  `yaml:"columns" json:"columns"`
	PrimaryKey []string   `yaml:"primary_key,omitempty" json:"primary_key,omitempty"`
	UniqueKeys [][]string `yaml:"unique_keys,omitempty" json:"unique_keys,omitempty"`
}

// Column describes a table column.
type Column struct {
	Name string `yaml:"name" json:"name"`
	// Type is the column type as reported by the database, e.g. "varchar(45)".
	Type          string   `yaml:"type" json:"type"`
	Nullable      bool     `yaml:"nullable,omitempty" json:"nullable,omitempty"`
	AutoIncrement bool     `yaml:"auto_increment,omitempty" json:"auto_increment,omitempty"`
	Default       *string  `yaml:"default,omitempty" json:"default,omitempty"`
	Enum          []string `yaml:"enum,omitempty" json:"enum,omitempty"`
	// Converter is ConverterJSONObject or ConverterJSONArray for text
	// columns holding JSON.
	Converter string `yaml:"converter,omitempty" json:"converter,omitempty"`
	// JSONName overrides the key used in JSON documents.
	JSONName string `yaml:"json_name,omitempty" json:"json_name,omitempty"`
	Comment  string `yaml:"comment,omitempty" json:"comment,omitempty"`
}

// FieldType returns the Go-side type of the column for dialect d.
func (c *Column) FieldType(d string) field.Type {
	switch c.Converter {
	case ConverterJSONObject:
		return field.TypeJSONObject
	case ConverterJSONArray:
		return field.TypeJSONArray
	}
	if len(c.Enum) > 0 {
		return field.TypeEnum
	}
	return field.ParseSQLType(d, c.Type)
}

// EnumValues returns the declared enum values, falling back to those
// spelled in the column type.
func (c *Column) EnumValues() []string {
	if len(c.Enum) > 0 {
		return c.Enum
	}
	return field.ParseEnumValues(c.Type)
}

// Column returns the column with the given name.
func (t *Table) Column(name string) (*Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// Table returns the table with the given name.
func (s *Schema) Table(name string) (*Table, bool) {
	for _, t := range s.Tables {
		if t.Name == name {
			return t, true
		}
	}
	return nil, false
}

// Load reads a schema file. Files ending in .json are decoded as JSON,
// everything else as YAML.
func Load(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load: read schema: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		s := &Schema{}
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(s); err != nil {
			return nil, fmt.Errorf("load: decode %s: %w", path, err)
		}
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("load: %s: %w", path, err)
		}
		return s, nil
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("load: %s: %w", path, err)
	}
	return s, nil
}

// Parse decodes and validates a YAML schema. JSON is valid YAML.
func Parse(data []byte) (*Schema, error) {
	s := &Schema{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(s); err != nil {
		return nil, fmt.Errorf("decode schema: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Marshal encodes the schema as YAML.
func (s *Schema) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Validate checks the schema for errors the generator cannot recover from.
// All problems are reported together.
func (s *Schema) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: %s", ErrInvalidSchema, fmt.Sprintf(format, args...)))
	}
	switch dialect.Normalize(s.Dialect) {
	case dialect.MySQL, dialect.Postgres, dialect.SQLite:
	default:
		fail("unknown dialect %q", s.Dialect)
	}
	if len(s.Tables) == 0 {
		fail("no tables")
	}
	tables := make(map[string]struct{}, len(s.Tables))
	for _, t := range s.Tables {
		if t.Name == "" {
			fail("table without name")
			continue
		}
		if _, ok := tables[t.Name]; ok {
			fail("duplicate table %q", t.Name)
		}
		tables[t.Name] = struct{}{}
		if len(t.Columns) == 0 {
			fail("table %q has no columns", t.Name)
		}
		columns := make(map[string]struct{}, len(t.Columns))
		for _, c := range t.Columns {
			switch {
			case c.Name == "":
				fail("table %q: column without name", t.Name)
				continue
			case c.Type == "" && c.Converter == "" && len(c.Enum) == 0:
				fail("column %s.%s has no type", t.Name, c.Name)
			}
			if _, ok := columns[c.Name]; ok {
				fail("duplicate column %s.%s", t.Name, c.Name)
			}
			columns[c.Name] = struct{}{}
			switch c.Converter {
			case "", ConverterJSONObject, ConverterJSONArray:
			default:
				fail("column %s.%s: unknown converter %q", t.Name, c.Name, c.Converter)
			}
		}
		keys := append([][]string{t.PrimaryKey}, t.UniqueKeys...)
		for _, key := range keys {
			for _, name := range key {
				if _, ok := columns[name]; !ok {
					fail("table %q: key column %q does not exist", t.Name, name)
				}
			}
		}
		if slices.ContainsFunc(t.UniqueKeys, func(k []string) bool { return len(k) == 0 }) {
			fail("table %q: empty unique key", t.Name)
		}
	}
	return errors.Join(errs...)
}
