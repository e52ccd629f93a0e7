package hello

import (
	"testing"

	"github.com/stretchr/testify/require"

	"bigtable2/internal/schema"
)

type fakeBindInfo struct {
	params []*string
	named  map[string]string
	cols   []schema.Column
}

func bindInfo(params ...*string) *fakeBindInfo {
	return &fakeBindInfo{params: params, named: map[string]string{}}
}

func (f *fakeBindInfo) with(name, value string) *fakeBindInfo {
	f.named[name] = value
	return f
}

func (f *fakeBindInfo) AddResultColumn(name string, t schema.LogicalType) {
	f.cols = append(f.cols, schema.Column{Name: name, Type: t})
}

func (f *fakeBindInfo) Parameter(index int) (string, bool) {
	if index >= len(f.params) || f.params[index] == nil {
		return "", false
	}
	return *f.params[index], true
}

func (f *fakeBindInfo) NamedParameter(name string) (string, bool) {
	v, ok := f.named[name]
	return v, ok
}

func str(s string) *string { return &s }

type null struct{}

type fakeVector struct {
	values []any
}

func (v *fakeVector) SetString(row int, s string)   { v.values[row] = s }
func (v *fakeVector) SetInt32(row int, i int32)     { v.values[row] = i }
func (v *fakeVector) SetUint64(row int, u uint64)   { v.values[row] = u }
func (v *fakeVector) SetFloat32(row int, f float32) { v.values[row] = f }
func (v *fakeVector) SetNull(row int)               { v.values[row] = null{} }

type fakeChunk struct {
	capacity int
	vectors  []*fakeVector
	size     int
	sized    bool
}

func newChunk(cols, capacity int) *fakeChunk {
	c := &fakeChunk{capacity: capacity, size: -1}
	for i := 0; i < cols; i++ {
		c.vectors = append(c.vectors, &fakeVector{values: make([]any, capacity)})
	}
	return c
}

func (c *fakeChunk) Capacity() int         { return c.capacity }
func (c *fakeChunk) Vector(col int) Vector { return c.vectors[col] }
func (c *fakeChunk) SetSize(n int)         { c.size, c.sized = n, true }

// rows returns the populated rows of the chunk.
func (c *fakeChunk) rows() [][]any {
	res := make([][]any, c.size)
	for r := 0; r < c.size; r++ {
		for _, v := range c.vectors {
			res[r] = append(res[r], v.values[r])
		}
	}
	return res
}

// scan runs Execute calls times with fresh chunks and returns the sizes and all rows.
func scan(t *testing.T, f *Function, bind *BindData, init *InitData, capacity, calls int) (sizes []int, rows [][]any) {
	t.Helper()
	for i := 0; i < calls; i++ {
		chunk := newChunk(len(bind.Columns), capacity)
		require.NoError(t, f.Execute(bind, init, chunk))
		require.True(t, chunk.sized, "execute must always set the chunk size")
		sizes = append(sizes, chunk.size)
		rows = append(rows, chunk.rows()...)
	}
	return sizes, rows
}
