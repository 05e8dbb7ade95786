package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

var errUpstream = errors.New("upstream failure")

func TestCircuitBreaker_ClosedState_Success(t *testing.T) {
	cb := New(DefaultConfig())

	ctx := context.Background()
	err := cb.Execute(ctx, func() error {
		return nil
	})

	if err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}
	if cb.GetState() != StateClosed {
		t.Errorf("Expected state Closed, got: %v", cb.GetState())
	}
}

func TestCircuitBreaker_ClosedState_Failure(t *testing.T) {
	cb := New(DefaultConfig())

	ctx := context.Background()
	err := cb.Execute(ctx, func() error {
		return errUpstream
	})

	if err == nil {
		t.Error("Expected error, got nil")
	}
	if !errors.Is(err, errUpstream) {
		t.Errorf("Expected wrapped upstream error, got: %v", err)
	}
	if cb.GetState() != StateClosed {
		t.Errorf("Expected state Closed, got: %v", cb.GetState())
	}

	stats := cb.GetStats()
	if stats.FailureCount != 1 {
		t.Errorf("Expected failure count 1, got: %d", stats.FailureCount)
	}
}

func TestCircuitBreaker_OpenState_RejectsRequests(t *testing.T) {
	cfg := Config{
		FailureThreshold:    2,
		SuccessThreshold:    2,
		Timeout:             100 * time.Millisecond,
		MaxRequestsHalfOpen: 3,
	}
	cb := New(cfg)

	ctx := context.Background()

	// Cause failures to open circuit
	for i := 0; i < 2; i++ {
		_ = cb.Execute(ctx, func() error {
			return errUpstream
		})
	}

	if cb.GetState() != StateOpen {
		t.Errorf("Expected state Open, got: %v", cb.GetState())
	}

	// Requests are rejected without running fn.
	ran := false
	err := cb.Execute(ctx, func() error {
		ran = true
		return nil
	})

	if !errors.Is(err, ErrOpen) {
		t.Errorf("Expected ErrOpen, got: %v", err)
	}
	if ran {
		t.Error("Expected fn not to run while circuit open")
	}
}

func TestCircuitBreaker_HalfOpenState_TransitionToClosed(t *testing.T) {
	cfg := Config{
		FailureThreshold:    2,
		SuccessThreshold:    2,
		Timeout:             50 * time.Millisecond,
		MaxRequestsHalfOpen: 3,
	}
	cb := New(cfg)

	ctx := context.Background()

	// Open the circuit
	for i := 0; i < 2; i++ {
		_ = cb.Execute(ctx, func() error {
			return errUpstream
		})
	}

	if cb.GetState() != StateOpen {
		t.Fatalf("Expected state Open, got: %v", cb.GetState())
	}

	// Wait for timeout to transition to half-open
	time.Sleep(60 * time.Millisecond)

	// Two successes should close the circuit.
	for i := 0; i < 2; i++ {
		if err := cb.Execute(ctx, func() error { return nil }); err != nil {
			t.Errorf("Expected no error, got: %v", err)
		}
	}

	if cb.GetState() != StateClosed {
		t.Errorf("Expected state Closed, got: %v", cb.GetState())
	}
}

func TestCircuitBreaker_HalfOpenState_FailureReopens(t *testing.T) {
	cfg := Config{
		FailureThreshold:    2,
		SuccessThreshold:    2,
		Timeout:             50 * time.Millisecond,
		MaxRequestsHalfOpen: 3,
	}
	cb := New(cfg)

	ctx := context.Background()

	// Open the circuit
	for i := 0; i < 2; i++ {
		_ = cb.Execute(ctx, func() error {
			return errUpstream
		})
	}

	time.Sleep(60 * time.Millisecond)

	// Failure in half-open should reopen circuit
	err := cb.Execute(ctx, func() error {
		return errUpstream
	})

	if err == nil {
		t.Error("Expected error, got nil")
	}
	if cb.GetState() != StateOpen {
		t.Errorf("Expected state Open, got: %v", cb.GetState())
	}
}

func TestCircuitBreaker_HalfOpenState_MaxRequestsLimit(t *testing.T) {
	cfg := Config{
		FailureThreshold:    2,
		SuccessThreshold:    5,
		Timeout:             50 * time.Millisecond,
		MaxRequestsHalfOpen: 2,
	}
	cb := New(cfg)

	ctx := context.Background()

	// Open the circuit
	for i := 0; i < 2; i++ {
		_ = cb.Execute(ctx, func() error {
			return errUpstream
		})
	}

	time.Sleep(60 * time.Millisecond)

	// First two probes are allowed; the success threshold is high enough
	// that the circuit stays half-open.
	for i := 0; i < 2; i++ {
		if err := cb.Execute(ctx, func() error { return nil }); err != nil {
			t.Errorf("Request %d should be allowed, got error: %v", i+1, err)
		}
	}

	if cb.GetState() != StateHalfOpen {
		t.Fatalf("Expected state HalfOpen, got: %v", cb.GetState())
	}

	err := cb.Execute(ctx, func() error { return nil })
	if !errors.Is(err, ErrOpen) {
		t.Errorf("Expected ErrOpen once probe budget is spent, got: %v", err)
	}
}

func TestCircuitBreaker_ExecuteWithResult_Success(t *testing.T) {
	cb := New(DefaultConfig())

	ctx := context.Background()
	result, err := cb.ExecuteWithResult(ctx, func() (interface{}, error) {
		return "success", nil
	})

	if err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}
	if result != "success" {
		t.Errorf("Expected 'success', got: %v", result)
	}
}

func TestCircuitBreaker_ExecuteWithResult_Failure(t *testing.T) {
	cb := New(DefaultConfig())

	ctx := context.Background()
	result, err := cb.ExecuteWithResult(ctx, func() (interface{}, error) {
		return nil, errUpstream
	})

	if err == nil {
		t.Error("Expected error, got nil")
	}
	if result != nil {
		t.Errorf("Expected nil result, got: %v", result)
	}
}

func TestCircuitBreaker_OnStateChange_Callback(t *testing.T) {
	cfg := Config{
		FailureThreshold:    2,
		SuccessThreshold:    2,
		Timeout:             50 * time.Millisecond,
		MaxRequestsHalfOpen: 3,
	}
	cb := New(cfg)

	type stateChange struct {
		from, to State
	}

	var mu sync.Mutex
	var changes []stateChange
	cb.OnStateChange(func(from, to State) {
		mu.Lock()
		defer mu.Unlock()
		changes = append(changes, stateChange{from: from, to: to})
	})

	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_ = cb.Execute(ctx, func() error {
			return errUpstream
		})
	}

	time.Sleep(60 * time.Millisecond)

	for i := 0; i < 2; i++ {
		_ = cb.Execute(ctx, func() error { return nil })
	}

	// Callbacks fire on separate goroutines.
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()

	foundOpen := false
	foundClosed := false
	for _, change := range changes {
		if change.to == StateOpen {
			foundOpen = true
		}
		if change.to == StateClosed {
			foundClosed = true
		}
	}

	if !foundOpen {
		t.Error("Expected a transition to Open")
	}
	if !foundClosed {
		t.Error("Expected a transition back to Closed")
	}
}

func TestCircuitBreaker_GetStats(t *testing.T) {
	cb := New(DefaultConfig())

	ctx := context.Background()

	_ = cb.Execute(ctx, func() error { return nil })
	_ = cb.Execute(ctx, func() error { return errUpstream })

	stats := cb.GetStats()

	if stats.State != StateClosed {
		t.Errorf("Expected state Closed, got: %v", stats.State)
	}
	if stats.FailureCount != 1 {
		t.Errorf("Expected failure count 1, got: %d", stats.FailureCount)
	}
	if stats.SuccessCount != 0 {
		t.Errorf("Expected success count reset to 0 after failure, got: %d", stats.SuccessCount)
	}
	if stats.LastFailureTime.IsZero() {
		t.Error("Expected last failure time to be recorded")
	}
}

func TestCircuitBreaker_Reset(t *testing.T) {
	cfg := Config{
		FailureThreshold:    2,
		SuccessThreshold:    2,
		Timeout:             100 * time.Millisecond,
		MaxRequestsHalfOpen: 3,
	}
	cb := New(cfg)

	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_ = cb.Execute(ctx, func() error {
			return errUpstream
		})
	}

	if cb.GetState() != StateOpen {
		t.Fatalf("Expected state Open, got: %v", cb.GetState())
	}

	cb.Reset()

	if cb.GetState() != StateClosed {
		t.Errorf("Expected state Closed after reset, got: %v", cb.GetState())
	}

	stats := cb.GetStats()
	if stats.FailureCount != 0 {
		t.Errorf("Expected failure count 0 after reset, got: %d", stats.FailureCount)
	}
}

func TestCircuitBreaker_ConcurrentAccess(t *testing.T) {
	cb := New(DefaultConfig())

	ctx := context.Background()
	var wg sync.WaitGroup
	numGoroutines := 10
	operationsPerGoroutine := 10

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < operationsPerGoroutine; j++ {
				_ = cb.Execute(ctx, func() error {
					return nil
				})
			}
		}()
	}

	wg.Wait()

	if cb.GetState() != StateClosed {
		t.Errorf("Expected state Closed after concurrent access, got: %v", cb.GetState())
	}

	stats := cb.GetStats()
	expectedOperations := numGoroutines * operationsPerGoroutine
	if stats.SuccessCount != expectedOperations {
		t.Errorf("Expected %d successful operations, got: %d", expectedOperations, stats.SuccessCount)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.FailureThreshold != 5 {
		t.Errorf("Expected FailureThreshold 5, got: %d", cfg.FailureThreshold)
	}
	if cfg.SuccessThreshold != 2 {
		t.Errorf("Expected SuccessThreshold 2, got: %d", cfg.SuccessThreshold)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Expected Timeout 30s, got: %v", cfg.Timeout)
	}
	if cfg.MaxRequestsHalfOpen != 3 {
		t.Errorf("Expected MaxRequestsHalfOpen 3, got: %d", cfg.MaxRequestsHalfOpen)
	}
}

func TestState_String(t *testing.T) {
	tests := []struct {
		state    State
		expected string
	}{
		{StateClosed, "closed"},
		{StateOpen, "open"},
		{StateHalfOpen, "half-open"},
		{State(99), "unknown"},
	}

	for _, tt := range tests {
		if tt.state.String() != tt.expected {
			t.Errorf("Expected %s, got: %s", tt.expected, tt.state.String())
		}
	}
}
