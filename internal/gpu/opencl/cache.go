package opencl

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// programCacheSize bounds how many compiled (device, variant) programs
// stay resident; a handful of devices times two variants easily fits,
// this just guards against unbounded growth if a caller opens many
// short-lived devices in a long-running process.
const programCacheSize = 32

// builtProgram holds a compiled program's kernel, ready to be re-used by
// every query dispatched against the same device and variant.
type builtProgram struct {
	program uintptr
	kernel  uintptr
}

type cacheKey struct {
	device  DeviceID
	variant Variant
}

// programCache memoizes "build or reuse" (spec.md §4.J host sequence step
// 1) across repeated queries against the same device.
type programCache struct {
	entries *lru.Cache[cacheKey, builtProgram]
}

func newProgramCache() *programCache {
	c, _ := lru.New[cacheKey, builtProgram](programCacheSize)
	return &programCache{entries: c}
}

func (c *programCache) get(device DeviceID, variant Variant) (builtProgram, bool) {
	return c.entries.Get(cacheKey{device: device, variant: variant})
}

func (c *programCache) put(device DeviceID, variant Variant, p builtProgram) {
	c.entries.Add(cacheKey{device: device, variant: variant}, p)
}
