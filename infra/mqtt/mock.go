package mqtt

import "sync"

// MockSender records sent bitmasks, for tests.
type MockSender struct {
	mu     sync.Mutex
	Sent   []uint8
	Fail   error
	closed bool
}

// SendLoadStates records the mask or returns the configured error.
func (m *MockSender) SendLoadStates(mask uint8) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return m.Fail
	}
	m.Sent = append(m.Sent, mask)
	return nil
}

// Close marks the sender closed.
func (m *MockSender) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

// Count returns the number of masks sent so far.
func (m *MockSender) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Sent)
}

// Last returns the most recently sent mask.
func (m *MockSender) Last() (uint8, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Sent) == 0 {
		return 0, false
	}
	return m.Sent[len(m.Sent)-1], true
}
