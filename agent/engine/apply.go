package engine

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/Leasebot-Tour-Booking-Dialogue/agent/contract"
	statex "github.com/tanpawarit/Leasebot-Tour-Booking-Dialogue/agent/state"
	validatex "github.com/tanpawarit/Leasebot-Tour-Booking-Dialogue/agent/validate"
)

// applyToolResult moves the structured session record forward from a tool
// outcome. Every transition happens here, deterministically; the model's
// prose never drives state.
func applyToolResult(
	st *statex.SessionState,
	req contractx.ToolRequest,
	res contractx.ToolResult,
	now time.Time,
) error {
	if res.Error != "" {
		// tool-level argument problems do not move state
		return nil
	}

	switch out := res.Result.(type) {
	case contractx.ValidationOutput:
		return applyValidation(st, out, now)

	case contractx.StoreProspectOutput:
		st.SetName(argString(req.Args, "name"), now)
		st.MarkStored(out.ProspectID, now)
		return nil

	case contractx.AvailabilityOutput:
		st.MarkAvailabilityChecked(out.PropertyID, out.Found, now)
		return nil

	case contractx.BookTourOutput:
		switch out.Outcome {
		case contractx.OutcomeConfirmed, contractx.OutcomeConfirmedEmailPending:
			st.MarkBooked(out.BookingID, now)
		default:
			st.MarkDone(now)
		}
		return nil

	default:
		return fmt.Errorf("%w: unexpected result type %T for tool %s", contractx.ErrSchemaViolation, res.Result, res.Tool)
	}
}

func applyValidation(st *statex.SessionState, out contractx.ValidationOutput, now time.Time) error {
	switch statex.Field(out.Field) {
	case statex.FieldEmail, statex.FieldPhone, statex.FieldMoveInDate:
		return st.SetValidated(statex.Field(out.Field), out.Value, out.Valid, now)
	case statex.FieldBeds:
		beds, _ := validatex.BedCount(out.Value)
		st.SetBeds(beds, out.Valid, now)
		return nil
	default:
		return fmt.Errorf("%w: unknown validated field %q", contractx.ErrSchemaViolation, out.Field)
	}
}

func argString(args map[string]any, key string) string {
	if args == nil {
		return ""
	}
	if s, ok := args[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}
