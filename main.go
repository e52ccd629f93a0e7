// Package main implements the bigtable2 DuckDB extension, a c-shared library that
// registers the hello and bigtable2 table functions.
//
// CGO Callback Pattern:
// This extension uses Go's //export directive to create C-callable functions.
// cgo generates the C stubs in _cgo_export.h that DuckDB calls, so there are no
// hand-written C wrapper files. Every callback takes raw void* handles and wraps them
// into duckdb-go-bindings types before calling into the internal packages.
//
// Key exports in this extension:
//   - bigtable2_rust_init: extension entry point, registers all functions
//   - hello_bind: table function bind phase
//   - hello_init: table function init phase
//   - hello_function: table function execute phase (returns data)
//   - hello_delete: release hook for bind, init and function state
//   - hello_configure_callback: scalar function switching the default schema
//   - bigtable2_version_callback: scalar function returning extension version
package main

import "C"
import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"unsafe"

	bindings "github.com/duckdb/duckdb-go-bindings"
	"github.com/go-pkgz/lgr"

	"bigtable2/internal/config"
	"bigtable2/internal/hello"
	"bigtable2/internal/source"
)

// bigtable2_rust_init is called by DuckDB once per LOAD with the opened database.
// Failures here have no recovery path, the process terminates.
//
//export bigtable2_rust_init
func bigtable2_rust_init(db unsafe.Pointer) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	opts, err := config.Load(nil)
	if err != nil {
		lgr.Fatalf("[ERROR] bigtable2: can't load options, %v", err)
	}
	setupLog(opts.Debug)
	config.SetRevision(opts.Revision())

	if err := register(bindings.Database{Ptr: db}, opts); err != nil {
		lgr.Fatalf("[ERROR] bigtable2: %v", err)
	}
	lgr.Printf("[INFO] bigtable2 extension %s loaded, schema=%s, chunk size=%d", Version, opts.Revision(), opts.ChunkSize)
}

// register opens a connection on db and registers every function of the extension.
func register(db bindings.Database, opts *config.Options) error {
	if db.Ptr == nil {
		return errors.New("nil database handle")
	}

	var conn bindings.Connection
	if state := bindings.Connect(db, &conn); state == bindings.StateError {
		return errors.New("can't connect to database")
	}
	defer bindings.Disconnect(&conn)

	if msg, ok := chunkWarning(opts.ChunkSize); ok {
		lgr.Printf("[WARN] %s", msg)
	}

	for _, fn := range []*hello.Function{hello.New(lgr.Std, config.Revision), hello.NewSequence(lgr.Std)} {
		fn.ChunkSize = opts.ChunkSize
		if state := RegisterTableFunction(conn, fn); state == bindings.StateError {
			return fmt.Errorf("failed to register %s table function", fn.Descriptor.Name)
		}
	}
	if state := RegisterHelloConfigureFunction(conn); state == bindings.StateError {
		return fmt.Errorf("failed to register %s function", configureName)
	}
	if state := RegisterVersionFunction(conn); state == bindings.StateError {
		return fmt.Errorf("failed to register %s function", versionName)
	}
	return nil
}

// chunkWarning reports a chunk size too small to return every revision in one chunk.
func chunkWarning(chunkSize int) (string, bool) {
	if chunkSize >= source.MaxRows {
		return "", false
	}
	return fmt.Sprintf("chunk size %d is below %d rows, larger scans are split across chunks",
		chunkSize, source.MaxRows), true
}

// setupLog routes both lgr and the standard logger to stderr, so the host's query
// output stays clean.
func setupLog(dbg bool) {
	logOpts := []lgr.Option{lgr.Msec, lgr.LevelBraces, lgr.Out(os.Stderr), lgr.Err(os.Stderr)}
	if dbg {
		logOpts = []lgr.Option{lgr.Debug, lgr.CallerFunc, lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError,
			lgr.Out(os.Stderr), lgr.Err(os.Stderr)}
	}
	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
}

func main() {
	// Required for CGO compiler to compile as C shared library
}
