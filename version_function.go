package main

/*
void bigtable2_version_callback(void *, void *, void *);

typedef void (*bigtable2_version_callback_t)(void *, void *, void *);
*/
import "C"
import (
	"runtime"
	"unsafe"

	bindings "github.com/duckdb/duckdb-go-bindings"
)

const versionName = "bigtable2_version"

// Version is set at build time via -ldflags
var Version = "dev"

// bigtable2_version_callback is the scalar function callback for bigtable2_version().
// It returns the extension version string.
//
//export bigtable2_version_callback
func bigtable2_version_callback(infoPtr, inputPtr, outputPtr unsafe.Pointer) {
	_ = infoPtr // unused but required by callback signature
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	// Get input size (typically 1 for scalar functions with no args)
	inputSize := int(bindings.DataChunkGetSize(bindings.DataChunk{Ptr: inputPtr}))
	output := bindings.Vector{Ptr: outputPtr}
	for i := range inputSize {
		bindings.VectorAssignStringElement(output, bindings.IdxT(i), Version)
	}
}

// RegisterVersionFunction registers the bigtable2_version() scalar function.
//
// Usage in SQL:
//
//	SELECT bigtable2_version();
//
// Returns:
//   - bindings.StateSuccess on success, bindings.StateError on failure
func RegisterVersionFunction(conn bindings.Connection) bindings.State {
	scalarFunc := bindings.CreateScalarFunction()
	defer bindings.DestroyScalarFunction(&scalarFunc)

	bindings.ScalarFunctionSetName(scalarFunc, versionName)

	// No parameters needed

	varcharRetType := bindings.CreateLogicalType(bindings.TypeVarchar)
	bindings.ScalarFunctionSetReturnType(scalarFunc, varcharRetType)
	bindings.DestroyLogicalType(&varcharRetType)

	bindings.ScalarFunctionSetFunction(scalarFunc,
		unsafe.Pointer(C.bigtable2_version_callback_t(C.bigtable2_version_callback)))

	return bindings.RegisterScalarFunction(conn, scalarFunc)
}
