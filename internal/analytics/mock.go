package analytics

import (
	"context"
	"sync"

	"github.com/patrickwarner/onboardingcta/internal/pixel"
)

var _ PixelRecorder = (*MockRecorder)(nil)

// MockRecorder keeps recorded pixels in memory for tests. Err, when set, is
// returned from every Record call.
type MockRecorder struct {
	mu     sync.Mutex
	pixels []pixel.Pixel
	Err    error
}

// NewMockRecorder creates an empty MockRecorder.
func NewMockRecorder() *MockRecorder {
	return &MockRecorder{}
}

func (m *MockRecorder) Record(ctx context.Context, p *pixel.Pixel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if p != nil {
		m.pixels = append(m.pixels, *p)
	}
	return nil
}

// Pixels returns a copy of the recorded pixels in order.
func (m *MockRecorder) Pixels() []pixel.Pixel {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]pixel.Pixel(nil), m.pixels...)
}
