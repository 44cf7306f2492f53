package db

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// IndexFieldType is the FT schema type of a field.
type IndexFieldType int

// Supported field types.
const (
	IndexFieldNumeric IndexFieldType = iota
	IndexFieldTag
	IndexFieldText
)

func (t IndexFieldType) String() string {
	switch t {
	case IndexFieldNumeric:
		return "NUMERIC"
	case IndexFieldTag:
		return "TAG"
	case IndexFieldText:
		return "TEXT"
	}
	return ""
}

// IndexField is one attribute of the hash schema.
type IndexField struct {
	Name string
	Type IndexFieldType

	// Weight scales TEXT matches; 0 keeps the server default of 1.
	Weight float64

	TagSeparator     string
	TagCaseSensitive bool

	// Sortable allows SORTBY on the field.
	Sortable bool
}

// IndexDefinition is an FT index over hashes under Prefixes.
type IndexDefinition struct {
	Name     string
	Prefixes []string
	Fields   []IndexField
}

// Validate checks the definition before it is sent to FT.CREATE.
func (idx *IndexDefinition) Validate() error {
	switch {
	case idx.Name == "":
		return errors.New("index name is required")
	case !IsValidIdentifier(idx.Name):
		return fmt.Errorf("index name %q contains invalid characters", idx.Name)
	case len(idx.Fields) == 0:
		return errors.New("at least one field is required")
	}

	seen := make(map[string]bool, len(idx.Fields))
	for i := range idx.Fields {
		f := &idx.Fields[i]
		switch {
		case f.Name == "":
			return fmt.Errorf("field %d: name is required", i)
		case seen[f.Name]:
			return fmt.Errorf("duplicate field name: %s", f.Name)
		case f.Weight < 0:
			return fmt.Errorf("negative weight for field %s", f.Name)
		case f.Type.String() == "":
			return fmt.Errorf("field %s: unknown type", f.Name)
		}
		seen[f.Name] = true
	}
	return nil
}

// Args renders the FT.CREATE arguments following the command name.
func (idx *IndexDefinition) Args() ([]string, error) {
	if err := idx.Validate(); err != nil {
		return nil, err
	}

	args := []string{idx.Name, "ON", "HASH"}
	if len(idx.Prefixes) > 0 {
		args = append(args, "PREFIX", strconv.Itoa(len(idx.Prefixes)))
		args = append(args, idx.Prefixes...)
	}
	args = append(args, "SCHEMA")
	for i := range idx.Fields {
		args = append(args, idx.Fields[i].args()...)
	}
	return args, nil
}

// String renders the FT.CREATE command for logs.
func (idx *IndexDefinition) String() string {
	args, err := idx.Args()
	if err != nil {
		return "FT.CREATE " + idx.Name + " (invalid: " + err.Error() + ")"
	}
	return "FT.CREATE " + strings.Join(args, " ")
}

func (f *IndexField) args() []string {
	args := []string{f.Name, f.Type.String()}
	switch f.Type {
	case IndexFieldText:
		if f.Weight > 0 {
			args = append(args, "WEIGHT", strconv.FormatFloat(f.Weight, 'g', -1, 64))
		}
	case IndexFieldTag:
		if f.TagSeparator != "" {
			args = append(args, "SEPARATOR", f.TagSeparator)
		}
		if f.TagCaseSensitive {
			args = append(args, "CASESENSITIVE")
		}
	}
	if f.Sortable {
		args = append(args, "SORTABLE")
	}
	return args
}

// IsValidIdentifier reports whether s matches [a-zA-Z0-9_:-]+.
func IsValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '_', r == ':', r == '-':
		default:
			return false
		}
	}
	return true
}
