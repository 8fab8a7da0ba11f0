package pow

import (
	"hash"
	"sync/atomic"
)

// constHash 输出固定字节的哈希桩；panicking 置位时 Write 直接 panic
type constHash struct {
	fill      byte
	panicking *atomic.Bool
}

func newConstHasher(fill byte, panicking *atomic.Bool) HasherFactory {
	return func() hash.Hash { return &constHash{fill: fill, panicking: panicking} }
}

func (h *constHash) Write(p []byte) (int, error) {
	if h.panicking != nil && h.panicking.Load() {
		panic("injected hasher failure")
	}
	return len(p), nil
}

func (h *constHash) Sum(b []byte) []byte {
	for i := 0; i < 32; i++ {
		b = append(b, h.fill)
	}
	return b
}

func (h *constHash) Reset() {}
func (h *constHash) Size() int { return 32 }
func (h *constHash) BlockSize() int { return 136 }
