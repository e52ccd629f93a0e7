// Package schema defines the output schemas the hello table function can declare
// at bind time and maps them to Arrow data types.
package schema

import (
	"errors"
	"fmt"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
)

// LogicalType is the host column type tag.
type LogicalType int

// Supported logical types
const (
	Varchar LogicalType = iota
	Integer
	UBigInt
	Float
)

func (t LogicalType) String() string {
	switch t {
	case Varchar:
		return "VARCHAR"
	case Integer:
		return "INTEGER"
	case UBigInt:
		return "UBIGINT"
	case Float:
		return "FLOAT"
	default:
		return fmt.Sprintf("LogicalType(%d)", int(t))
	}
}

// Column is a declared output column.
type Column struct {
	Name string
	Type LogicalType
}

// Revision selects one of the known output schemas.
type Revision string

// Known revisions
const (
	Greeting Revision = "greeting" // single VARCHAR column0, one greeting row
	Catalog  Revision = "catalog"  // five columns with INTEGER pe_id, ten rows
	Product  Revision = "product"  // five columns with UBIGINT pe_id, one row

	// Sequence backs the bigtable2() function only and isn't selectable by name.
	Sequence Revision = "sequence" // single INTEGER col1, rows 1 and 2
)

// Default is used when neither configuration nor the call picks a revision.
const Default = Product

// ErrUnknownRevision is returned by ParseRevision for names it doesn't know.
var ErrUnknownRevision = errors.New("unknown schema revision")

// Revisions lists all known revisions in declaration order.
func Revisions() []Revision {
	return []Revision{Greeting, Catalog, Product}
}

// ParseRevision converts a case-insensitive name into a Revision.
func ParseRevision(name string) (Revision, error) {
	r := Revision(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Revisions() {
		if r == known {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w %q, expected one of %s", ErrUnknownRevision, name, revisionList())
}

func revisionList() string {
	names := make([]string, 0, len(Revisions()))
	for _, r := range Revisions() {
		names = append(names, string(r))
	}
	return strings.Join(names, ", ")
}

// Columns returns the output columns for the revision. Column order is the
// vector index order used when filling output chunks.
func (r Revision) Columns() []Column {
	switch r {
	case Greeting:
		return []Column{{Name: "column0", Type: Varchar}}
	case Catalog:
		return priced(Integer)
	case Product:
		return priced(UBigInt)
	case Sequence:
		return []Column{{Name: "col1", Type: Integer}}
	default:
		return nil
	}
}

func priced(idType LogicalType) []Column {
	return []Column{
		{Name: "pe_id", Type: idType},
		{Name: "title", Type: Varchar},
		{Name: "price", Type: Float},
		{Name: "unit_price", Type: Float},
		{Name: "base_price", Type: Float},
	}
}

// ArrowType returns the Arrow data type used to stage values of t.
func ArrowType(t LogicalType) (arrow.DataType, error) {
	switch t {
	case Varchar:
		return arrow.BinaryTypes.String, nil
	case Integer:
		return arrow.PrimitiveTypes.Int32, nil
	case UBigInt:
		return arrow.PrimitiveTypes.Uint64, nil
	case Float:
		return arrow.PrimitiveTypes.Float32, nil
	default:
		return nil, fmt.Errorf("no arrow type for %s", t)
	}
}

// FromArrow maps an Arrow data type back to the logical type declared for it.
func FromArrow(dt arrow.DataType) (LogicalType, error) {
	switch dt.ID() {
	case arrow.STRING, arrow.LARGE_STRING:
		return Varchar, nil
	case arrow.INT32:
		return Integer, nil
	case arrow.UINT64:
		return UBigInt, nil
	case arrow.FLOAT32:
		return Float, nil
	default:
		return 0, fmt.Errorf("unsupported arrow type %s", dt)
	}
}

// ArrowSchema builds the Arrow schema for a column list.
func ArrowSchema(cols []Column) (*arrow.Schema, error) {
	fields := make([]arrow.Field, len(cols))
	for i, c := range cols {
		dt, err := ArrowType(c.Type)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", c.Name, err)
		}
		fields[i] = arrow.Field{Name: c.Name, Type: dt}
	}
	return arrow.NewSchema(fields, nil), nil
}
