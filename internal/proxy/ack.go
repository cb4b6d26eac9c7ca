package proxy

import "sync/atomic"

// ackAllocator hands out correlation tokens for outbound requests. Tokens are
// strictly increasing and unique for the lifetime of the owning connection;
// zero is never allocated, so wire payloads can treat 0 as "no ack".
type ackAllocator struct {
	last atomic.Int64
}

func (a *ackAllocator) Next() int64 {
	return a.last.Add(1)
}
