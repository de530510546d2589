package parse

import "github.com/ritzau/pd-parser/pkg/model"

// IDAllocator hands out global ids for patches and arrays. Each Parse call
// owns its allocator so ids are reproducible and files can be parsed
// concurrently.
type IDAllocator struct {
	nextPatch model.GlobalID
	nextArray model.GlobalID
}

// NewIDAllocator creates an allocator starting at 0 for both kinds
func NewIDAllocator() *IDAllocator {
	return &IDAllocator{}
}

// NextPatchID returns a fresh patch id
func (a *IDAllocator) NextPatchID() model.GlobalID {
	id := a.nextPatch
	a.nextPatch++
	return id
}

// NextArrayID returns a fresh array id
func (a *IDAllocator) NextArrayID() model.GlobalID {
	id := a.nextArray
	a.nextArray++
	return id
}
