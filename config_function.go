package main

/*
void hello_configure_callback(void *, void *, void *);

typedef void (*hello_configure_callback_t)(void *, void *, void *);
*/
import "C"
import (
	"fmt"
	"runtime"
	"unsafe"

	bindings "github.com/duckdb/duckdb-go-bindings"
	"github.com/go-pkgz/lgr"

	"bigtable2/internal/config"
	"bigtable2/internal/schema"
	"bigtable2/internal/vector"
)

const configureName = "hello_configure"

// hello_configure_callback is the scalar function callback for hello_configure(schema).
// It switches the schema revision used by hello() calls that don't pass schema => ...
//
// Parameters:
//   - info: Function execution context for error reporting
//   - input: Data chunk with one VARCHAR column, the revision name
//   - output: Output vector for the confirmation message
//
// NULL input rows produce NULL output rows. The setting is stored via config.SetRevision()
// and applies to binds that start after the call.
//
//export hello_configure_callback
func hello_configure_callback(infoPtr, inputPtr, outputPtr unsafe.Pointer) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	info := bindings.FunctionInfo{Ptr: infoPtr}
	input := bindings.DataChunk{Ptr: inputPtr}
	output := bindings.Vector{Ptr: outputPtr}

	inputSize := int(bindings.DataChunkGetSize(input))
	if inputSize == 0 {
		return
	}

	// Bounds check: DuckDB chunks should never exceed MaxChunkSize
	if inputSize > vector.MaxChunkSize {
		setScalarError(info, "input chunk size exceeds maximum")
		return
	}

	schemaVec := bindings.DataChunkGetVector(input, 0)
	data := bindings.VectorGetData(schemaVec)
	if data == nil {
		setScalarError(info, "failed to get input data")
		return
	}
	validity := unsafe.Pointer(bindings.VectorGetValidity(schemaVec))

	for i := 0; i < inputSize; i++ {
		if !vector.RowIsValid(validity, i, inputSize) {
			bindings.VectorEnsureValidityWritable(output)
			vector.SetRowInvalid(unsafe.Pointer(bindings.VectorGetValidity(output)), i, inputSize)
			continue
		}

		msg, err := configure(vector.StringAt(data, i))
		if err != nil {
			setScalarError(info, err.Error())
			return
		}
		bindings.VectorAssignStringElement(output, bindings.IdxT(i), msg)
	}
}

// configure parses name and makes it the default revision.
func configure(name string) (string, error) {
	rev, err := schema.ParseRevision(name)
	if err != nil {
		return "", err
	}
	config.SetRevision(rev)
	lgr.Printf("[INFO] %s default schema set to %s", configureName, rev)
	return fmt.Sprintf("hello schema set to %s", rev), nil
}

// setScalarError is a helper to set an error on a scalar function with consistent formatting.
// All error messages are prefixed with "hello_configure: " for clarity.
func setScalarError(info bindings.FunctionInfo, msg string) {
	bindings.ScalarFunctionSetError(info, configureName+": "+msg)
}

// RegisterHelloConfigureFunction registers the hello_configure(schema) scalar function.
//
// Usage in SQL:
//
//	SELECT hello_configure('catalog');
//
// Returns:
//   - bindings.StateSuccess on success, bindings.StateError on failure
func RegisterHelloConfigureFunction(conn bindings.Connection) bindings.State {
	scalarFunc := bindings.CreateScalarFunction()
	defer bindings.DestroyScalarFunction(&scalarFunc)

	bindings.ScalarFunctionSetName(scalarFunc, configureName)
	// changes process state, never fold or cache it
	bindings.ScalarFunctionSetVolatile(scalarFunc)

	varcharType := bindings.CreateLogicalType(bindings.TypeVarchar)
	defer bindings.DestroyLogicalType(&varcharType)
	bindings.ScalarFunctionAddParameter(scalarFunc, varcharType)
	bindings.ScalarFunctionSetReturnType(scalarFunc, varcharType)

	bindings.ScalarFunctionSetFunction(scalarFunc,
		unsafe.Pointer(C.hello_configure_callback_t(C.hello_configure_callback)))

	return bindings.RegisterScalarFunction(conn, scalarFunc)
}
