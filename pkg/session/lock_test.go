package session

import (
	"context"
	"fmt"
	"testing"

	"github.com/aretw0/formstate/pkg/adapters/memory"
	"github.com/aretw0/formstate/pkg/domain"
)

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager(memory.NewDiscard())
	ctx := context.Background()
	count := 10000

	for i := 0; i < count; i++ {
		key := fmt.Sprintf("form-%d", i)
		_ = mgr.Save(ctx, key, domain.NewSnapshot(key, domain.NewFormState()))
		_ = mgr.Delete(ctx, key)
	}

	if lockCount := len(mgr.locks); lockCount != 0 {
		t.Errorf("Memory Leak Detected: %d locks remaining in memory after Delete", lockCount)
	}
}
