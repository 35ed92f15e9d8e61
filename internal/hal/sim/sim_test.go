package sim

import (
	"context"
	"testing"
	"time"

	"github.com/intuitionamiga/minikernel/internal/hal"
)

func TestRaiseRestoreIPL(t *testing.T) {
	s := New()
	old := s.RaiseIPL(hal.IPLCrit)
	if old != hal.IPLLow {
		t.Fatalf("initial RaiseIPL returned %d, want %d", old, hal.IPLLow)
	}
	old2 := s.RaiseIPL(hal.IPLCrit)
	if old2 != hal.IPLCrit {
		t.Fatalf("nested RaiseIPL returned %d, want %d", old2, hal.IPLCrit)
	}
	s.RestoreIPL(old2)
	s.RestoreIPL(old)
}

func TestCreateImageAlwaysSucceeds(t *testing.T) {
	s := New()
	img, err := s.CreateImage("anything")
	if err != nil {
		t.Fatalf("CreateImage returned error: %v", err)
	}
	if img == nil {
		t.Fatalf("CreateImage returned nil image")
	}
	s.FreeImage(img)
}

func TestContextSwitchHandsOffToEntry(t *testing.T) {
	s := New()
	ran := make(chan struct{})
	ctx := s.InitialContext(nil, nil, func() { close(ran) })

	var save hal.Context
	s.ContextSwitch(&save, ctx)

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatalf("entry function never ran")
	}
}

func TestHaltRespectsContextCancellation(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	done := make(chan struct{})
	go func() {
		s.Halt(ctx)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Halt did not return on cancelled context")
	}
}
