// Package hello implements the bind, init and execute phases of the hello table
// function against host-agnostic interfaces. The cgo layer in package main adapts
// the DuckDB C API to these interfaces.
//
// Phase contract, per SQL call:
//
//	Bind     once, declares columns and captures arguments into BindData
//	Init     once per scan, allocates InitData (cursor and done flag)
//	Execute  repeatedly, fills at most one chunk per call, an empty chunk ends the scan
//	Release  host drops BindData and InitData, exactly once each
//
// Calls for one (BindData, InitData) pair are serialized by the host, so nothing
// here synchronizes.
package hello

import (
	"errors"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/go-pkgz/lgr"

	"bigtable2/internal/schema"
	"bigtable2/internal/source"
	"bigtable2/internal/validation"
)

// Name is the SQL name of the table function.
const Name = "hello"

// SequenceName is the SQL name of the fixed two-row table function.
const SequenceName = "bigtable2"

// Named parameters accepted by the function.
const (
	ParamTitle  = "title"
	ParamSchema = "schema"
)

// VectorSize is the host's default chunk capacity.
const VectorSize = 2048

var (
	// ErrNullArgument is returned by Bind when the positional argument is NULL or missing.
	ErrNullArgument = errors.New("positional argument must not be NULL")
	// ErrReleased is returned when state is used or released after its release hook ran.
	ErrReleased = errors.New("state already released")
)

// NamedParameter is a named argument the function recognizes.
type NamedParameter struct {
	Name string
	Type schema.LogicalType
}

// Descriptor is the immutable registration data for a table function.
type Descriptor struct {
	Name       string
	Parameters []schema.LogicalType
	Named      []NamedParameter
}

// Describe returns the descriptor of hello registered with the host.
func Describe() Descriptor {
	return Descriptor{
		Name:       Name,
		Parameters: []schema.LogicalType{schema.Varchar},
		Named: []NamedParameter{
			{Name: ParamTitle, Type: schema.Varchar},
			{Name: ParamSchema, Type: schema.Varchar},
		},
	}
}

// DescribeSequence returns the descriptor of bigtable2. Its argument is captured
// but doesn't change the rows.
func DescribeSequence() Descriptor {
	return Descriptor{Name: SequenceName, Parameters: []schema.LogicalType{schema.Varchar}}
}

// accepts reports whether the descriptor declares the named parameter.
func (d Descriptor) accepts(name string) bool {
	for _, p := range d.Named {
		if p.Name == name {
			return true
		}
	}
	return false
}

// BindInfo is the host bind context. It is valid only during the Bind call.
type BindInfo interface {
	AddResultColumn(name string, t schema.LogicalType)
	// Parameter returns the positional argument as text, ok is false for NULL or missing.
	Parameter(index int) (value string, ok bool)
	// NamedParameter returns a named argument as text, ok is false when it wasn't passed.
	NamedParameter(name string) (value string, ok bool)
}

// Chunk is one output batch of columnar vectors.
type Chunk interface {
	Capacity() int
	Vector(col int) Vector
	SetSize(n int)
}

// Vector is one column of a Chunk, written by row index.
type Vector interface {
	SetString(row int, v string)
	SetInt32(row int, v int32)
	SetUint64(row int, v uint64)
	SetFloat32(row int, v float32)
	SetNull(row int)
}

// Function carries the dependencies shared by every call of the table function.
type Function struct {
	// Descriptor is what the function registers as, zero value means hello.
	Descriptor Descriptor
	Mem        memory.Allocator
	Log        lgr.L
	// ChunkSize caps rows per output chunk below the chunk capacity, zero means no cap.
	ChunkSize int
	// Revision returns the schema revision used when the call doesn't name one.
	Revision func() schema.Revision
}

// New makes a Function with the Go allocator and the given default revision source.
func New(log lgr.L, revision func() schema.Revision) *Function {
	if log == nil {
		log = lgr.NoOp
	}
	if revision == nil {
		revision = func() schema.Revision { return schema.Default }
	}
	return &Function{Descriptor: Describe(), Mem: memory.NewGoAllocator(), Log: log, Revision: revision}
}

// NewSequence makes the bigtable2 function, which always stages the sequence revision.
func NewSequence(log lgr.L) *Function {
	f := New(log, func() schema.Revision { return schema.Sequence })
	f.Descriptor = DescribeSequence()
	return f
}

func (f *Function) descriptor() Descriptor {
	if f.Descriptor.Name == "" {
		return Describe()
	}
	return f.Descriptor
}

// Bind declares the output columns and captures the call arguments. On error
// nothing is returned for the host to release.
func (f *Function) Bind(info BindInfo) (*BindData, error) {
	desc := f.descriptor()
	rev := f.Revision()
	if name, ok := info.NamedParameter(ParamSchema); ok && desc.accepts(ParamSchema) {
		r, err := schema.ParseRevision(name)
		if err != nil {
			return nil, err
		}
		rev = r
	}

	cols := rev.Columns()
	for _, c := range cols {
		info.AddResultColumn(c.Name, c.Type)
	}

	arg, ok := info.Parameter(0)
	if !ok {
		return nil, ErrNullArgument
	}
	if err := validation.ValidateArgument(arg); err != nil {
		return nil, err
	}

	args := &source.Args{Arg: arg}
	if title, ok := info.NamedParameter(ParamTitle); ok && desc.accepts(ParamTitle) {
		if err := validation.ValidateTitle(title); err != nil {
			return nil, err
		}
		args.Title, args.HasTitle = title, true
	}

	f.Log.Logf("[DEBUG] %s bind, schema=%s, columns=%d, arg=%q", desc.Name, rev, len(cols), arg)
	return &BindData{Revision: rev, Columns: cols, name: desc.Name, args: args}, nil
}

// Init allocates the per-scan state. Rows are staged lazily on the first Execute.
func (f *Function) Init(bind *BindData) (*InitData, error) {
	if bind == nil || bind.args == nil {
		return nil, ErrReleased
	}
	return &InitData{mem: f.Mem}, nil
}

// Execute fills out with the next slice of rows. Once the rows are drained every
// call sets a size of zero, which ends the scan.
func (f *Function) Execute(bind *BindData, init *InitData, out Chunk) error {
	if bind == nil || init == nil {
		return ErrReleased
	}
	if init.done {
		out.SetSize(0)
		return nil
	}

	if init.rec == nil {
		if err := init.stage(bind); err != nil {
			return err
		}
	}

	first := init.offset == 0
	n, err := init.drain(bind.Columns, out, f.limit(out))
	if err != nil {
		return err
	}
	out.SetSize(n)
	if first && !init.done {
		f.Log.Logf("[WARN] %s scan split across chunks, %d rows per chunk", bind, n)
	}
	if init.done {
		f.Log.Logf("[DEBUG] %s scan finished, rows=%d", bind, init.offset)
	}
	return nil
}

// limit returns the number of rows Execute may write into out.
func (f *Function) limit(out Chunk) int {
	n := out.Capacity()
	if n <= 0 || n > VectorSize {
		n = VectorSize
	}
	if f.ChunkSize > 0 && f.ChunkSize < n {
		n = f.ChunkSize
	}
	return n
}

// BindData is the per-query state created by Bind.
type BindData struct {
	Revision schema.Revision
	Columns  []schema.Column

	name string
	args *source.Args // nil after Release
}

// Arg returns the captured positional argument.
func (b *BindData) Arg() (string, error) {
	if b.args == nil {
		return "", ErrReleased
	}
	return b.args.Arg, nil
}

// Release drops the captured arguments. The host calls it exactly once; later
// calls report ErrReleased and change nothing.
func (b *BindData) Release() error {
	if b.args == nil {
		return ErrReleased
	}
	b.args = nil
	return nil
}

func (b *BindData) String() string {
	name := b.name
	if name == "" {
		name = Name
	}
	return fmt.Sprintf("%s(%s)", name, b.Revision)
}
