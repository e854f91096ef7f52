package db

// IndexBuilder assembles an IndexDefinition field by field.
type IndexBuilder struct {
	def IndexDefinition
}

// NewIndex starts an index definition at schema version 1.
func NewIndex(name string) *IndexBuilder {
	return &IndexBuilder{def: IndexDefinition{Name: name, Version: 1}}
}

// Version sets the schema version recorded alongside the index.
func (b *IndexBuilder) Version(v int) *IndexBuilder {
	b.def.Version = v
	return b
}

// Prefix adds key prefixes to the index.
func (b *IndexBuilder) Prefix(prefixes ...string) *IndexBuilder {
	b.def.Prefixes = append(b.def.Prefixes, prefixes...)
	return b
}

// Field appends an arbitrary field.
func (b *IndexBuilder) Field(f IndexField) *IndexBuilder {
	b.def.Fields = append(b.def.Fields, f)
	return b
}

// Text adds a TEXT field.
func (b *IndexBuilder) Text(name string) *IndexBuilder {
	return b.Field(IndexField{Name: name, Kind: FieldText})
}

// TextSortable adds a SORTABLE TEXT field.
func (b *IndexBuilder) TextSortable(name string) *IndexBuilder {
	return b.Field(IndexField{Name: name, Kind: FieldText, Sortable: true})
}

// Numeric adds a NUMERIC field.
func (b *IndexBuilder) Numeric(name string) *IndexBuilder {
	return b.Field(IndexField{Name: name, Kind: FieldNumeric})
}

// NumericSortable adds a SORTABLE NUMERIC field.
func (b *IndexBuilder) NumericSortable(name string) *IndexBuilder {
	return b.Field(IndexField{Name: name, Kind: FieldNumeric, Sortable: true})
}

// Tag adds a TAG field with the server's default separator.
func (b *IndexBuilder) Tag(name string) *IndexBuilder {
	return b.Field(IndexField{Name: name, Kind: FieldTag})
}

// TagSeparated adds a TAG field split on separator.
func (b *IndexBuilder) TagSeparated(name, separator string) *IndexBuilder {
	return b.Field(IndexField{Name: name, Kind: FieldTag, Separator: separator})
}

// Vector adds a FLOAT32 VECTOR field.
func (b *IndexBuilder) Vector(name string, spec VectorSpec) *IndexBuilder {
	return b.Field(IndexField{Name: name, Kind: FieldVector, Vector: &spec})
}

// VectorFlat adds a brute-force VECTOR field of dim components.
func (b *IndexBuilder) VectorFlat(name string, dim int, distance DistanceMetric) *IndexBuilder {
	return b.Vector(name, VectorSpec{Algorithm: VectorFlat, Dim: dim, Distance: distance})
}

// Build validates and returns a copy of the definition; the builder stays reusable.
func (b *IndexBuilder) Build() (*IndexDefinition, error) {
	if err := b.def.Validate(); err != nil {
		return nil, err
	}
	def := b.def
	def.Prefixes = append([]string(nil), b.def.Prefixes...)
	def.Fields = append([]IndexField(nil), b.def.Fields...)
	return &def, nil
}

// MustBuild calls Build and panics on error. Use it for static schemas.
func (b *IndexBuilder) MustBuild() *IndexDefinition {
	def, err := b.Build()
	if err != nil {
		panic(err)
	}
	return def
}
