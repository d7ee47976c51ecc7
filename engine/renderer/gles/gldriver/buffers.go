package gldriver

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/spaghettifunk/anima-pipeline/engine/renderer/gles"
	"github.com/spaghettifunk/anima-pipeline/engine/renderer/metadata"
)

/**
 * @brief A GL uniform buffer bound to its own indexed binding point.
 */
type UniformBuffer struct {
	Name    string
	handle  uint32
	binding uint32
	size    int
}

func (b *UniformBuffer) Binding() uint32 {
	return b.binding
}

func (b *UniformBuffer) SizeInBytes() int {
	return b.size
}

func (b *UniformBuffer) WriteData(offset int, data []float32) {
	n := len(data) * 4
	if n == 0 || offset+n > b.size {
		return
	}
	gl.BindBuffer(gl.UNIFORM_BUFFER, b.handle)
	gl.BufferSubData(gl.UNIFORM_BUFFER, offset, n, gl.Ptr(data))
	gl.BindBuffer(gl.UNIFORM_BUFFER, 0)
}

// UniformBufferManager hands out one binding point per buffer, in order.
type UniformBufferManager struct {
	buffers     []*UniformBuffer
	maxBindings uint32
}

func NewUniformBufferManager() *UniformBufferManager {
	var maxBindings int32
	gl.GetIntegerv(gl.MAX_UNIFORM_BUFFER_BINDINGS, &maxBindings)
	return &UniformBufferManager{maxBindings: uint32(maxBindings)}
}

// CreateUniformBuffer allocates the block rounded up to std140 alignment and
// binds it to the next free binding point.
func (m *UniformBufferManager) CreateUniformBuffer(name string, sizeInBytes int) (gles.HardwareUniformBuffer, error) {
	sizeInBytes = metadata.GetAligned(sizeInBytes, metadata.Std140Alignment)
	binding := uint32(len(m.buffers))
	if binding >= m.maxBindings {
		return nil, fmt.Errorf("uniform buffer '%s': all %d binding points in use", name, m.maxBindings)
	}
	b := &UniformBuffer{Name: name, binding: binding, size: sizeInBytes}
	gl.GenBuffers(1, &b.handle)
	gl.BindBuffer(gl.UNIFORM_BUFFER, b.handle)
	gl.BufferData(gl.UNIFORM_BUFFER, sizeInBytes, nil, gl.DYNAMIC_DRAW)
	gl.BindBuffer(gl.UNIFORM_BUFFER, 0)
	gl.BindBufferBase(gl.UNIFORM_BUFFER, binding, b.handle)
	m.buffers = append(m.buffers, b)
	return b, nil
}

func (m *UniformBufferManager) Destroy() {
	for _, b := range m.buffers {
		gl.DeleteBuffers(1, &b.handle)
	}
	m.buffers = nil
}
