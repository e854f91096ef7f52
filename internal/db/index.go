package db

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// DistanceMetric is the DISTANCE_METRIC of a vector field.
type DistanceMetric string

// Supported distance metrics.
const (
	DistanceL2     DistanceMetric = "L2"
	DistanceIP     DistanceMetric = "IP"
	DistanceCosine DistanceMetric = "COSINE"
)

// VectorAlgorithm is the indexing algorithm of a vector field.
type VectorAlgorithm string

// Supported vector algorithms.
const (
	VectorHNSW VectorAlgorithm = "HNSW"
	VectorFlat VectorAlgorithm = "FLAT"
)

// FieldKind is the schema keyword of a field, as written in FT.CREATE.
type FieldKind string

// Field kinds.
const (
	FieldText    FieldKind = "TEXT"
	FieldNumeric FieldKind = "NUMERIC"
	FieldTag     FieldKind = "TAG"
	FieldVector  FieldKind = "VECTOR"
)

// VectorSpec holds the attributes of a VECTOR field. Vectors are always FLOAT32.
type VectorSpec struct {
	Algorithm VectorAlgorithm // FLAT when empty
	Dim       int
	Distance  DistanceMetric // COSINE when empty

	M              int // HNSW
	EFConstruction int // HNSW
	BlockSize      int // FLAT
}

// IndexField is one entry of an index SCHEMA.
type IndexField struct {
	Name     string
	Alias    string
	Kind     FieldKind
	Sortable bool

	// TAG only.
	Separator     string
	CaseSensitive bool

	// VECTOR only.
	Vector *VectorSpec
}

// Ref is the name queries use for the field: the alias when set.
func (f *IndexField) Ref() string {
	if f.Alias != "" {
		return f.Alias
	}
	return f.Name
}

func (f *IndexField) validate() error {
	if f.Name == "" {
		return errors.New("field name is required")
	}
	switch f.Kind {
	case FieldText, FieldNumeric, FieldTag:
		return nil
	case FieldVector:
		if f.Vector == nil || f.Vector.Dim <= 0 {
			return fmt.Errorf("vector field %s requires positive DIM", f.Ref())
		}
		if f.Sortable {
			return fmt.Errorf("vector field %s cannot be SORTABLE", f.Ref())
		}
		return nil
	default:
		return fmt.Errorf("field %s: unknown kind %q", f.Ref(), f.Kind)
	}
}

func (f *IndexField) args() []string {
	args := []string{f.Name}
	if f.Alias != "" {
		args = append(args, "AS", f.Alias)
	}
	args = append(args, string(f.Kind))

	switch f.Kind {
	case FieldTag:
		if f.Separator != "" {
			args = append(args, "SEPARATOR", f.Separator)
		}
		if f.CaseSensitive {
			args = append(args, "CASESENSITIVE")
		}
	case FieldVector:
		args = append(args, f.Vector.args()...)
	}

	if f.Sortable {
		args = append(args, "SORTABLE")
	}
	return args
}

// args renders "<algo> <nargs> TYPE FLOAT32 DIM ..." with defaults applied.
func (v *VectorSpec) args() []string {
	algo := v.Algorithm
	if algo == "" {
		algo = VectorFlat
	}
	distance := v.Distance
	if distance == "" {
		distance = DistanceCosine
	}

	attrs := []string{
		"TYPE", "FLOAT32",
		"DIM", strconv.Itoa(v.Dim),
		"DISTANCE_METRIC", string(distance),
	}
	switch algo {
	case VectorHNSW:
		if v.M > 0 {
			attrs = append(attrs, "M", strconv.Itoa(v.M))
		}
		if v.EFConstruction > 0 {
			attrs = append(attrs, "EF_CONSTRUCTION", strconv.Itoa(v.EFConstruction))
		}
	case VectorFlat:
		if v.BlockSize > 0 {
			attrs = append(attrs, "BLOCK_SIZE", strconv.Itoa(v.BlockSize))
		}
	}

	return append([]string{string(algo), strconv.Itoa(len(attrs))}, attrs...)
}

// IndexDefinition describes a hash-backed search index.
// Version is bumped whenever the schema changes so that startup can tell
// a stale index from a current one.
type IndexDefinition struct {
	Name     string
	Version  int
	Prefixes []string
	Fields   []IndexField
}

// Validate checks that the index definition is well-formed.
func (idx *IndexDefinition) Validate() error {
	if idx.Name == "" {
		return errors.New("index name is required")
	}
	if !IsValidIdentifier(idx.Name) {
		return errors.New("index name contains invalid characters")
	}
	if len(idx.Fields) == 0 {
		return errors.New("at least one field is required")
	}

	seen := make(map[string]struct{}, len(idx.Fields))
	for i := range idx.Fields {
		f := &idx.Fields[i]
		if err := f.validate(); err != nil {
			return fmt.Errorf("field %d: %w", i, err)
		}
		if _, dup := seen[f.Ref()]; dup {
			return errors.New("duplicate field name: " + f.Ref())
		}
		seen[f.Ref()] = struct{}{}
	}
	return nil
}

// CreateArgs returns the FT.CREATE arguments after the command name.
func (idx *IndexDefinition) CreateArgs() ([]string, error) {
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

// String renders the full FT.CREATE command, or the validation error for a broken definition.
func (idx *IndexDefinition) String() string {
	args, err := idx.CreateArgs()
	if err != nil {
		return "invalid index " + idx.Name + ": " + err.Error()
	}
	return "FT.CREATE " + strings.Join(args, " ")
}

// IsValidIdentifier returns true if s matches [a-zA-Z0-9_:-]+.
func IsValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		isAlpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		isSpecial := r == '_' || r == ':' || r == '-'
		if !isAlpha && !isDigit && !isSpecial {
			return false
		}
	}
	return true
}
