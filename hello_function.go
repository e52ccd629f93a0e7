package main

/*
#include <stdlib.h>

void hello_bind(void *);
void hello_init(void *);
void hello_function(void *, void *);
void hello_delete(void *);

typedef void (*hello_bind_t)(void *);
typedef void (*hello_init_t)(void *);
typedef void (*hello_function_t)(void *, void *);
typedef void (*hello_delete_t)(void *);
*/
import "C"
import (
	"runtime"
	"runtime/cgo"
	"sync/atomic"
	"unsafe"

	bindings "github.com/duckdb/duckdb-go-bindings"
	"github.com/go-pkgz/lgr"

	"bigtable2/internal/hello"
	"bigtable2/internal/schema"
	"bigtable2/internal/vector"
)

// liveSlots counts state slots handed to DuckDB and not yet released.
var liveSlots atomic.Int64

// functionFrom returns the table function stored as extra info at registration.
func functionFrom(slot unsafe.Pointer) *hello.Function {
	if f, ok := slotValue(slot).(*hello.Function); ok && f != nil {
		return f
	}
	return hello.New(nil, nil)
}

// hello_bind declares the result columns and stores BindData in a state slot
// owned by DuckDB.
//
// Thread safety: Uses runtime.LockOSThread() as required for CGO callbacks.
//
//export hello_bind
func hello_bind(infoPtr unsafe.Pointer) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	info := bindings.BindInfo{Ptr: infoPtr}
	fn := functionFrom(bindings.BindGetExtraInfo(info))
	bind, err := fn.Bind(&bindInfo{info: info})
	if err != nil {
		bindings.BindSetError(info, fn.Descriptor.Name+": "+err.Error())
		return
	}
	bindings.BindSetBindData(info, newSlot(bind), unsafe.Pointer(C.hello_delete_t(C.hello_delete)))
}

// hello_init allocates the scan cursor.
//
//export hello_init
func hello_init(infoPtr unsafe.Pointer) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	info := bindings.InitInfo{Ptr: infoPtr}
	fn := functionFrom(bindings.InitGetExtraInfo(info))
	bind, _ := slotValue(bindings.InitGetBindData(info)).(*hello.BindData)
	init, err := fn.Init(bind)
	if err != nil {
		bindings.InitSetError(info, fn.Descriptor.Name+": "+err.Error())
		return
	}
	bindings.InitSetInitData(info, newSlot(init), unsafe.Pointer(C.hello_delete_t(C.hello_delete)))
}

// hello_function fills one output chunk per call. A chunk of size 0 ends the scan.
//
//export hello_function
func hello_function(infoPtr unsafe.Pointer, outputPtr unsafe.Pointer) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	info := bindings.FunctionInfo{Ptr: infoPtr}
	fn := functionFrom(bindings.FunctionGetExtraInfo(info))
	bind, _ := slotValue(bindings.FunctionGetBindData(info)).(*hello.BindData)
	init, _ := slotValue(bindings.FunctionGetInitData(info)).(*hello.InitData)

	out := &dataChunk{chunk: bindings.DataChunk{Ptr: outputPtr}, size: int(bindings.VectorSize())}
	if err := fn.Execute(bind, init, out); err != nil {
		bindings.FunctionSetError(info, fn.Descriptor.Name+": "+err.Error())
	}
}

// hello_delete is the release hook DuckDB calls exactly once per state slot, for
// BindData, InitData and the function's extra info.
//
//export hello_delete
func hello_delete(slot unsafe.Pointer) {
	if slot == nil {
		return
	}
	h := *(*cgo.Handle)(slot)
	switch v := h.Value().(type) {
	case *hello.BindData:
		if err := v.Release(); err != nil {
			lgr.Printf("[WARN] release of %s, %v", v, err)
		}
	case *hello.InitData:
		v.Release()
	}
	h.Delete()
	C.free(slot)
	liveSlots.Add(-1)
}

// newSlot stores v behind a cgo.Handle in C memory. Go pointers can't be retained
// by C, so DuckDB keeps the slot and hands it back to the callbacks.
func newSlot(v any) unsafe.Pointer {
	slot := C.malloc(C.size_t(unsafe.Sizeof(cgo.Handle(0))))
	*(*cgo.Handle)(slot) = cgo.NewHandle(v)
	liveSlots.Add(1)
	return slot
}

// slotValue returns the value stored by newSlot, or nil for an empty slot.
func slotValue(slot unsafe.Pointer) any {
	if slot == nil {
		return nil
	}
	return (*(*cgo.Handle)(slot)).Value()
}

// RegisterTableFunction registers fn under its descriptor. fn travels with the
// function as extra info, so one set of callbacks serves hello and bigtable2.
//
// Usage in SQL:
//
//	SELECT * FROM hello('world');
//	SELECT * FROM hello('world', title => 'custom title');
//	SELECT * FROM hello('world', schema => 'catalog');
//	SELECT * FROM bigtable2('any');
//
// Returns:
//   - bindings.StateSuccess on success, bindings.StateError on failure
func RegisterTableFunction(conn bindings.Connection, fn *hello.Function) bindings.State {
	d := fn.Descriptor
	tableFunc := bindings.CreateTableFunction()
	defer bindings.DestroyTableFunction(&tableFunc)

	bindings.TableFunctionSetName(tableFunc, d.Name)
	bindings.TableFunctionSetExtraInfo(tableFunc, newSlot(fn), unsafe.Pointer(C.hello_delete_t(C.hello_delete)))

	for _, p := range d.Parameters {
		lt := bindings.CreateLogicalType(hostType(p))
		bindings.TableFunctionAddParameter(tableFunc, lt)
		bindings.DestroyLogicalType(&lt)
	}
	for _, p := range d.Named {
		lt := bindings.CreateLogicalType(hostType(p.Type))
		bindings.TableFunctionAddNamedParameter(tableFunc, p.Name, lt)
		bindings.DestroyLogicalType(&lt)
	}

	bindings.TableFunctionSetBind(tableFunc, unsafe.Pointer(C.hello_bind_t(C.hello_bind)))
	bindings.TableFunctionSetInit(tableFunc, unsafe.Pointer(C.hello_init_t(C.hello_init)))
	bindings.TableFunctionSetFunction(tableFunc, unsafe.Pointer(C.hello_function_t(C.hello_function)))

	return bindings.RegisterTableFunction(conn, tableFunc)
}

// hostType maps a column type to the DuckDB type id.
func hostType(t schema.LogicalType) bindings.Type {
	switch t {
	case schema.Integer:
		return bindings.TypeInteger
	case schema.UBigInt:
		return bindings.TypeUBigInt
	case schema.Float:
		return bindings.TypeFloat
	default:
		return bindings.TypeVarchar
	}
}

// bindInfo adapts duckdb_bind_info to hello.BindInfo.
type bindInfo struct {
	info bindings.BindInfo
}

func (b *bindInfo) AddResultColumn(name string, t schema.LogicalType) {
	lt := bindings.CreateLogicalType(hostType(t))
	bindings.BindAddResultColumn(b.info, name, lt)
	bindings.DestroyLogicalType(&lt)
}

func (b *bindInfo) Parameter(index int) (string, bool) {
	return varchar(bindings.BindGetParameter(b.info, bindings.IdxT(index)))
}

func (b *bindInfo) NamedParameter(name string) (string, bool) {
	return varchar(bindings.BindGetNamedParameter(b.info, name))
}

// varchar copies a VARCHAR value into Go memory and destroys it. The C API hands
// text over nul-terminated, so anything after an embedded nul byte is not seen.
func varchar(v bindings.Value) (string, bool) {
	if v.Ptr == nil {
		return "", false
	}
	defer bindings.DestroyValue(&v)
	if bindings.IsNullValue(v) {
		return "", false
	}
	return bindings.GetVarchar(v), true
}

// dataChunk adapts an output duckdb_data_chunk to hello.Chunk. size is the host
// vector size, it bounds both the chunk capacity and every vector's typed view.
type dataChunk struct {
	chunk bindings.DataChunk
	size  int
}

func (c *dataChunk) Capacity() int { return c.size }

func (c *dataChunk) Vector(col int) hello.Vector {
	return &hostVector{vec: bindings.DataChunkGetVector(c.chunk, bindings.IdxT(col)), size: c.size}
}

func (c *dataChunk) SetSize(n int) { bindings.DataChunkSetSize(c.chunk, bindings.IdxT(n)) }

// hostVector writes rows straight into a duckdb_vector. Numeric values go through a
// typed slice over the data buffer, in native byte order.
type hostVector struct {
	vec  bindings.Vector
	size int
	data unsafe.Pointer
}

func (v *hostVector) ptr() unsafe.Pointer {
	if v.data == nil {
		v.data = bindings.VectorGetData(v.vec)
	}
	return v.data
}

func (v *hostVector) SetString(row int, s string) {
	bindings.VectorAssignStringElement(v.vec, bindings.IdxT(row), s)
}

func (v *hostVector) SetInt32(row int, x int32) {
	unsafe.Slice((*int32)(v.ptr()), v.size)[row] = x
}

func (v *hostVector) SetUint64(row int, x uint64) {
	unsafe.Slice((*uint64)(v.ptr()), v.size)[row] = x
}

func (v *hostVector) SetFloat32(row int, x float32) {
	unsafe.Slice((*float32)(v.ptr()), v.size)[row] = x
}

func (v *hostVector) SetNull(row int) {
	bindings.VectorEnsureValidityWritable(v.vec)
	vector.SetRowInvalid(unsafe.Pointer(bindings.VectorGetValidity(v.vec)), row, v.size)
}
