package runner

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// SignalManager turns SIGINT and SIGTERM into context cancellation so an
// interrupted fill can still snapshot its progress.
type SignalManager struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// NewSignalManager starts listening for signals until Stop is called.
func NewSignalManager(parent context.Context) *SignalManager {
	ctx, cancel := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	return &SignalManager{ctx: ctx, cancel: cancel}
}

// Context is cancelled on the first signal.
func (sm *SignalManager) Context() context.Context {
	return sm.ctx
}

// Stop releases the signal listener.
func (sm *SignalManager) Stop() {
	sm.cancel()
}
