// Package source produces the rows returned by the hello table function.
// The rows are placeholders staged as an Arrow record; no external data is read.
package source

import (
	"fmt"
	"strconv"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"bigtable2/internal/schema"
)

// Placeholder values shared by the priced revisions.
const (
	PeID      = 123
	Price     = float32(1.3)
	UnitPrice = float32(1.7)
	BasePrice = float32(1.5)

	// CatalogRows is the fixed row count of the catalog revision.
	CatalogRows = 10

	// MaxRows is the largest row count any revision stages.
	MaxRows = CatalogRows
)

// SequenceValues are the rows of the sequence revision, in order.
var SequenceValues = []int32{1, 2}

// Args are the call-time arguments captured at bind.
type Args struct {
	Arg   string // positional argument
	Title string // named title argument, used when HasTitle is set
	// HasTitle is true when the call passed title => ...
	HasTitle bool
}

// Build stages all rows for the revision into a new record. Caller owns the
// returned record and must Release it.
func Build(mem memory.Allocator, rev schema.Revision, args Args) (arrow.Record, error) {
	sc, err := schema.ArrowSchema(rev.Columns())
	if err != nil {
		return nil, err
	}
	if sc.NumFields() == 0 {
		return nil, fmt.Errorf("build %q: %w", rev, schema.ErrUnknownRevision)
	}

	b := array.NewRecordBuilder(mem, sc)
	defer b.Release()

	switch rev {
	case schema.Greeting:
		b.Field(0).(*array.StringBuilder).Append("Hello " + args.Arg)
	case schema.Catalog:
		for i := 0; i < CatalogRows; i++ {
			b.Field(0).(*array.Int32Builder).Append(PeID)
			b.Field(1).(*array.StringBuilder).Append("title " + strconv.Itoa(i))
			appendPrices(b)
		}
	case schema.Product:
		title := "title " + args.Arg
		if args.HasTitle {
			title = args.Title
		}
		b.Field(0).(*array.Uint64Builder).Append(PeID)
		b.Field(1).(*array.StringBuilder).Append(title)
		appendPrices(b)
	case schema.Sequence:
		b.Field(0).(*array.Int32Builder).AppendValues(SequenceValues, nil)
	}

	return b.NewRecord(), nil
}

func appendPrices(b *array.RecordBuilder) {
	b.Field(2).(*array.Float32Builder).Append(Price)
	b.Field(3).(*array.Float32Builder).Append(UnitPrice)
	b.Field(4).(*array.Float32Builder).Append(BasePrice)
}
