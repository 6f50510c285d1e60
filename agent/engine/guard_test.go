package engine

import (
	"errors"
	"testing"
	"time"

	contractx "github.com/tanpawarit/Leasebot-Tour-Booking-Dialogue/agent/contract"
	statex "github.com/tanpawarit/Leasebot-Tour-Booking-Dialogue/agent/state"
	toolx "github.com/tanpawarit/Leasebot-Tour-Booking-Dialogue/agent/tool"
)

var guardNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func collectedState(t *testing.T) *statex.SessionState {
	t.Helper()
	st := statex.NewSessionState("s1", guardNow)
	st.SetName("Jane Doe", guardNow)
	if err := st.SetValidated(statex.FieldEmail, "jane@example.com", true, guardNow); err != nil {
		t.Fatal(err)
	}
	if err := st.SetValidated(statex.FieldPhone, "555-123-4567", true, guardNow); err != nil {
		t.Fatal(err)
	}
	if err := st.SetValidated(statex.FieldMoveInDate, "2099-01-01", true, guardNow); err != nil {
		t.Fatal(err)
	}
	st.SetBeds(2, true, guardNow)
	return st
}

func storedState(t *testing.T) *statex.SessionState {
	t.Helper()
	st := collectedState(t)
	st.MarkStored(7, guardNow)
	return st
}

func checkedState(t *testing.T) *statex.SessionState {
	t.Helper()
	st := storedState(t)
	st.MarkAvailabilityChecked(42, true, guardNow)
	return st
}

func storeArgs() map[string]any {
	return map[string]any{"name": "Jane Doe", "email": "jane@example.com", "phone": "555-123-4567"}
}

func TestGuardAllowsValidatorsAnytime(t *testing.T) {
	t.Parallel()

	st := statex.NewSessionState("s1", guardNow)
	for _, tool := range []string{
		toolx.ToolValidateEmail, toolx.ToolValidatePhone,
		toolx.ToolValidateMoveInDate, toolx.ToolValidateBeds,
	} {
		if err := guardToolCall(st, contractx.ToolRequest{Tool: tool}); err != nil {
			t.Errorf("%s should always pass the guard: %v", tool, err)
		}
	}
}

func TestGuardStoreProspect(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		state func(*testing.T) *statex.SessionState
		args  map[string]any
		ok    bool
	}{
		{"all fields validated", collectedState, storeArgs(), true},
		{
			"email never validated",
			func(t *testing.T) *statex.SessionState {
				st := collectedState(t)
				if err := st.SetValidated(statex.FieldEmail, "broken", false, guardNow); err != nil {
					t.Fatal(err)
				}
				return st
			},
			storeArgs(), false,
		},
		{
			"fresh session",
			func(t *testing.T) *statex.SessionState { return statex.NewSessionState("s1", guardNow) },
			storeArgs(), false,
		},
		{
			"email argument differs from validated value",
			collectedState,
			map[string]any{"name": "Jane Doe", "email": "other@example.com", "phone": "555-123-4567"},
			false,
		},
		{
			"phone argument differs from validated value",
			collectedState,
			map[string]any{"name": "Jane Doe", "email": "jane@example.com", "phone": "555-999-9999"},
			false,
		},
		{
			"missing name argument",
			collectedState,
			map[string]any{"email": "jane@example.com", "phone": "555-123-4567"},
			false,
		},
		{
			"already booked",
			func(t *testing.T) *statex.SessionState {
				st := checkedState(t)
				st.MarkBooked(99, guardNow)
				return st
			},
			storeArgs(), false,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := guardToolCall(tc.state(t), contractx.ToolRequest{Tool: toolx.ToolStoreProspectInfo, Args: tc.args})
			if tc.ok && err != nil {
				t.Fatalf("unexpected rejection: %v", err)
			}
			if !tc.ok {
				if err == nil {
					t.Fatal("call must be rejected")
				}
				if !errors.Is(err, contractx.ErrToolOrder) {
					t.Fatalf("rejection must wrap ErrToolOrder, got %v", err)
				}
			}
		})
	}
}

func TestGuardCheckAvailability(t *testing.T) {
	t.Parallel()

	st := storedState(t)
	if err := guardToolCall(st, contractx.ToolRequest{
		Tool: toolx.ToolCheckAvailability,
		Args: map[string]any{"beds": float64(2)},
	}); err != nil {
		t.Fatalf("stored session with matching beds must pass: %v", err)
	}

	if err := guardToolCall(st, contractx.ToolRequest{
		Tool: toolx.ToolCheckAvailability,
		Args: map[string]any{"beds": float64(3)},
	}); !errors.Is(err, contractx.ErrToolOrder) {
		t.Fatalf("mismatched bed count must be rejected, got %v", err)
	}

	fresh := collectedState(t)
	if err := guardToolCall(fresh, contractx.ToolRequest{
		Tool: toolx.ToolCheckAvailability,
		Args: map[string]any{"beds": float64(2)},
	}); !errors.Is(err, contractx.ErrToolOrder) {
		t.Fatalf("availability before store must be rejected, got %v", err)
	}
}

func TestGuardBookTour(t *testing.T) {
	t.Parallel()

	valid := map[string]any{
		"unit": float64(42), "user_id": float64(7),
		"user_name": "Jane Doe", "user_email": "jane@example.com",
	}

	st := checkedState(t)
	if err := guardToolCall(st, contractx.ToolRequest{Tool: toolx.ToolBookTour, Args: valid}); err != nil {
		t.Fatalf("booking after a positive check must pass: %v", err)
	}

	// the model may not invent a property id
	wrongUnit := map[string]any{
		"unit": float64(41), "user_id": float64(7),
		"user_name": "Jane Doe", "user_email": "jane@example.com",
	}
	if err := guardToolCall(st, contractx.ToolRequest{Tool: toolx.ToolBookTour, Args: wrongUnit}); !errors.Is(err, contractx.ErrToolOrder) {
		t.Fatalf("foreign unit id must be rejected, got %v", err)
	}

	wrongUser := map[string]any{
		"unit": float64(42), "user_id": float64(8),
		"user_name": "Jane Doe", "user_email": "jane@example.com",
	}
	if err := guardToolCall(st, contractx.ToolRequest{Tool: toolx.ToolBookTour, Args: wrongUser}); !errors.Is(err, contractx.ErrToolOrder) {
		t.Fatalf("foreign prospect id must be rejected, got %v", err)
	}

	// contact details must be the ones this session validated
	wrongName := map[string]any{
		"unit": float64(42), "user_id": float64(7),
		"user_name": "Someone Else", "user_email": "jane@example.com",
	}
	if err := guardToolCall(st, contractx.ToolRequest{Tool: toolx.ToolBookTour, Args: wrongName}); !errors.Is(err, contractx.ErrToolOrder) {
		t.Fatalf("foreign prospect name must be rejected, got %v", err)
	}

	wrongEmail := map[string]any{
		"unit": float64(42), "user_id": float64(7),
		"user_name": "Jane Doe", "user_email": "attacker@example.com",
	}
	if err := guardToolCall(st, contractx.ToolRequest{Tool: toolx.ToolBookTour, Args: wrongEmail}); !errors.Is(err, contractx.ErrToolOrder) {
		t.Fatalf("unvalidated email must be rejected, got %v", err)
	}

	if err := guardToolCall(storedState(t), contractx.ToolRequest{Tool: toolx.ToolBookTour, Args: valid}); !errors.Is(err, contractx.ErrToolOrder) {
		t.Fatalf("booking before the availability check must be rejected, got %v", err)
	}

	noMatch := storedState(t)
	noMatch.MarkAvailabilityChecked(0, false, guardNow)
	if err := guardToolCall(noMatch, contractx.ToolRequest{Tool: toolx.ToolBookTour, Args: valid}); !errors.Is(err, contractx.ErrToolOrder) {
		t.Fatalf("booking after a negative check must be rejected, got %v", err)
	}
}
