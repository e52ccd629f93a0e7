package hello

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"bigtable2/internal/schema"
	"bigtable2/internal/source"
)

// InitData is the per-scan cursor. done moves from false to true once, when the
// staged rows are drained.
type InitData struct {
	mem    memory.Allocator
	rec    arrow.Record
	offset int64
	done   bool
}

// Done reports whether the scan has produced all of its rows.
func (s *InitData) Done() bool { return s.done }

// Release frees staged rows. It is safe on a partially drained cursor.
func (s *InitData) Release() {
	if s.rec != nil {
		s.rec.Release()
		s.rec = nil
	}
}

func (s *InitData) stage(bind *BindData) error {
	if bind == nil || bind.args == nil {
		return ErrReleased
	}
	rec, err := source.Build(s.mem, bind.Revision, *bind.args)
	if err != nil {
		return fmt.Errorf("stage rows: %w", err)
	}
	if int(rec.NumCols()) != len(bind.Columns) {
		n := rec.NumCols()
		rec.Release()
		return fmt.Errorf("stage rows: %d columns staged, %d declared", n, len(bind.Columns))
	}
	s.rec = rec
	s.offset = 0
	return nil
}

// drain copies up to limit rows into out and advances the cursor.
func (s *InitData) drain(cols []schema.Column, out Chunk, limit int) (int, error) {
	count := int(s.rec.NumRows() - s.offset)
	if count > limit {
		count = limit
	}

	for i, c := range cols {
		if err := copyColumn(s.rec.Column(i), c, out.Vector(i), int(s.offset), count); err != nil {
			return 0, err
		}
	}

	s.offset += int64(count)
	if s.offset >= s.rec.NumRows() {
		s.done = true
		s.Release()
	}
	return count, nil
}

// copyColumn writes count values of col starting at offset into vec rows 0..count.
// The staged Arrow type must map to the declared logical type.
func copyColumn(col arrow.Array, decl schema.Column, vec Vector, offset, count int) error {
	lt, err := schema.FromArrow(col.DataType())
	if err != nil {
		return fmt.Errorf("column %q: %w", decl.Name, err)
	}
	if lt != decl.Type {
		return fmt.Errorf("column %q: staged %s, declared %s", decl.Name, lt, decl.Type)
	}

	for i := 0; i < count; i++ {
		src := offset + i
		if col.IsNull(src) {
			vec.SetNull(i)
			continue
		}
		switch a := col.(type) {
		case *array.String:
			vec.SetString(i, a.Value(src))
		case *array.LargeString:
			vec.SetString(i, a.Value(src))
		case *array.Int32:
			vec.SetInt32(i, a.Value(src))
		case *array.Uint64:
			vec.SetUint64(i, a.Value(src))
		case *array.Float32:
			vec.SetFloat32(i, a.Value(src))
		default:
			return fmt.Errorf("column %q: unsupported array %T", decl.Name, col)
		}
	}
	return nil
}
