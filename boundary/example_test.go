package boundary_test

import (
	"fmt"

	"github.com/coregx/acbridge/boundary"
	"github.com/coregx/acbridge/memory"
)

func ExampleEngine_Scan() {
	mem := memory.NewLinear(1, 4)
	heap, _ := memory.NewHeap(mem, memory.DefaultHeapConfig())
	config := boundary.DefaultConfig()
	e, _ := boundary.NewEngine(mem, heap, boundary.NewRegistry(config), config)

	pats, _ := memory.WriteRegion(mem, heap, []byte("he she hers"))
	handle, _ := e.Construct(pats.Ptr, pats.Len)
	_ = pats.Release(heap)

	hay, _ := memory.WriteRegion(mem, heap, []byte("ushers HE said"))
	out, _ := memory.ReserveRegion(heap, 4*memory.PairSize)
	res, _ := e.Scan(handle, hay.Ptr, hay.Len, 4, out.Ptr)

	for i := uint32(0); i < res.Count; i++ {
		start, _ := mem.ReadUint32Le(out.Ptr + i*8)
		end, _ := mem.ReadUint32Le(out.Ptr + i*8 + 4)
		fmt.Println(start, end)
	}
	fmt.Println("packed:", boundary.PackScan(res))
	// Output:
	// 1 4
	// 7 9
	// packed: 2
}

func ExampleStatusOf() {
	mem := memory.NewLinear(1, 1)
	heap, _ := memory.NewHeap(mem, memory.DefaultHeapConfig())
	config := boundary.DefaultConfig()
	e, _ := boundary.NewEngine(mem, heap, boundary.NewRegistry(config), config)

	_, err := e.Scan(7, 0, 0, 0, 0)
	status := boundary.StatusOf(err)
	fmt.Println(int32(status), status)
	// Output: -1 InvalidHandle
}
