package store

// MemoryBackend keeps the snapshot in memory. Intended for tests.
type MemoryBackend struct {
	data []byte
}

// NewMemoryBackend constructs an empty MemoryBackend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

func (b *MemoryBackend) Read() ([]byte, error) {
	return b.data, nil
}

func (b *MemoryBackend) Write(data []byte) error {
	b.data = append([]byte(nil), data...)
	return nil
}
