package core

// Frame is one encoded wire message.
type Frame []byte

// SignalConnection abstracts the outbound side of a client transport.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	// TrySend enqueues without blocking. It fails with domain.ErrBackpressure
	// when the outbound buffer is full and domain.ErrConnectionClosed after Close.
	TrySend(Frame) error
	Close()
}
