package gles

import (
	"bytes"
	"encoding/binary"
	"math"
)

// UniformCache remembers the last bytes written to each uniform location of
// one program so redundant uploads can be skipped.
type UniformCache struct {
	values map[int32][]byte
}

func NewUniformCache() *UniformCache {
	return &UniformCache{values: make(map[int32][]byte)}
}

// UpdateUniform records data for location and reports whether it differs
// from the previous value. Only a changed value needs to reach the driver.
func (c *UniformCache) UpdateUniform(location int32, data []byte) bool {
	old, ok := c.values[location]
	if ok && bytes.Equal(old, data) {
		return false
	}
	c.values[location] = append(old[:0], data...)
	return true
}

// Clear forgets every location, forcing the next update of each to upload.
func (c *UniformCache) Clear() {
	clear(c.values)
}

func (c *UniformCache) Len() int {
	return len(c.values)
}

func appendFloats(dst []byte, values []float32) []byte {
	for _, v := range values {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v))
	}
	return dst
}

func appendInts(dst []byte, values []int32) []byte {
	for _, v := range values {
		dst = binary.LittleEndian.AppendUint32(dst, uint32(v))
	}
	return dst
}
