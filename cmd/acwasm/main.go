//go:build wasip1

// Command acwasm builds the matcher as a WebAssembly module that exports the
// boundary operations directly:
//
//	GOOS=wasip1 GOARCH=wasm go build -buildmode=c-shared -o acbridge.wasm ./cmd/acwasm
//
// Exports, with negative results carrying boundary.Status codes:
//
//	construct(ptr, len i32) -> i64
//	scan(handle, hay_ptr, hay_len, cap, out_ptr i32) -> i64
//	reserve(size i32) -> i64
//	release(ptr, size i32) -> i32
//
// Every pointer passed in must lie inside a region obtained from reserve.
// Rejected calls are logged to stderr.
package main

import (
	"log/slog"
	"os"

	"github.com/coregx/acbridge/boundary"
)

var engine = newEngine()

func newEngine() *boundary.Engine {
	heap := newPinnedHeap()
	config := boundary.DefaultConfig()
	config.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	e, err := boundary.NewEngine(heap, heap, boundary.NewRegistry(config), config)
	if err != nil {
		panic(err)
	}
	return e
}

func main() {}

//go:wasmexport construct
func construct(ptr, n uint32) int64 {
	h, err := engine.Construct(ptr, n)
	if err != nil {
		return int64(boundary.StatusOf(err))
	}
	return int64(h)
}

//go:wasmexport scan
func scan(handle, ptr, n, capacity, out uint32) int64 {
	res, err := engine.Scan(handle, ptr, n, capacity, out)
	if err != nil {
		return int64(boundary.StatusOf(err))
	}
	return boundary.PackScan(res)
}

//go:wasmexport reserve
func reserve(size uint32) int64 {
	ptr, err := engine.Reserve(size)
	if err != nil {
		return int64(boundary.StatusOf(err))
	}
	return int64(ptr)
}

//go:wasmexport release
func release(ptr, size uint32) int32 {
	return int32(boundary.StatusOf(engine.Release(ptr, size)))
}
