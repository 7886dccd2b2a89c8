package chunk

import (
	"errors"
	"sync"
)

// Sequence-number wrap bounds (Section 3). The last 1024 values of the
// u32 space are skipped so wrap-around never collides with the "near
// max" window a receiver's replay-detection bitmap is watching.
const (
	sequenceMin uint32 = 1
	sequenceMax uint32 = 4294966271 // 2^32 - 1 - 1024
)

// ErrRequestIDExhausted is returned when the 64-bit request-id counter
// would wrap. Practically unreachable.
var ErrRequestIDExhausted = errors.New("chunk: request id counter exhausted")

// SequenceCounter is a monotonic 32-bit sequence number with the
// OPC-UA wrap rule: after emitting sequenceMax, the next value is 1.
// Safe for concurrent use, though the encoder's contract is that calls
// for a given channel are already serialized (Section 5).
type SequenceCounter struct {
	mu    sync.Mutex
	value uint32
}

// NewSequenceCounter creates a counter starting at the spec's initial value (1).
func NewSequenceCounter() *SequenceCounter {
	return &SequenceCounter{value: sequenceMin}
}

// NewSequenceCounterWithValue creates a counter with a specific initial value.
// Used for testing wrap behavior and for restoring a counter across reconnects.
func NewSequenceCounterWithValue(initial uint32) *SequenceCounter {
	return &SequenceCounter{value: initial}
}

// Next returns the current value and advances the counter, wrapping per Section 3.
func (c *SequenceCounter) Next() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()

	current := c.value
	if c.value == sequenceMax {
		c.value = sequenceMin
	} else {
		c.value++
	}
	return current
}

// Current returns the counter's current value without advancing it.
func (c *SequenceCounter) Current() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// RequestIDCounter is a 64-bit monotonic counter for outbound request ids.
// Starts at 1; wrap is an error (practically unreachable at 2^64).
type RequestIDCounter struct {
	mu        sync.Mutex
	value     uint64
	exhausted bool
}

// NewRequestIDCounter creates a counter starting at 1.
func NewRequestIDCounter() *RequestIDCounter {
	return &RequestIDCounter{value: 1}
}

// Next returns the next request id and advances the counter.
func (c *RequestIDCounter) Next() (uint32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.exhausted {
		return 0, ErrRequestIDExhausted
	}

	current := c.value
	c.value++
	if c.value == 0 {
		c.exhausted = true
	}

	return uint32(current), nil
}
