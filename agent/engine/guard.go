package engine

import (
	"fmt"

	contractx "github.com/tanpawarit/Leasebot-Tour-Booking-Dialogue/agent/contract"
	statex "github.com/tanpawarit/Leasebot-Tour-Booking-Dialogue/agent/state"
	toolx "github.com/tanpawarit/Leasebot-Tour-Booking-Dialogue/agent/tool"
)

// guardToolCall is the deterministic ordering check in front of every tool
// invocation. The model proposes; the guard disposes. A rejected call is
// never executed; the refusal is fed back to the model as a tool result.
//
// Rules:
//   - validators are always allowed
//   - store_prospect_info requires every field validated, with arguments
//     matching the validated values
//   - check_availability requires a stored prospect and the validated bed count
//   - book_tour requires a positive availability result and may only carry
//     the property id, prospect id, name, and email this session produced
func guardToolCall(st *statex.SessionState, req contractx.ToolRequest) error {
	switch req.Tool {
	case toolx.ToolValidateEmail, toolx.ToolValidatePhone,
		toolx.ToolValidateMoveInDate, toolx.ToolValidateBeds:
		return nil

	case toolx.ToolStoreProspectInfo:
		return guardStoreProspect(st, req)

	case toolx.ToolCheckAvailability:
		return guardCheckAvailability(st, req)

	case toolx.ToolBookTour:
		return guardBookTour(st, req)

	default:
		return fmt.Errorf("%w: unknown tool %q", contractx.ErrToolOrder, req.Tool)
	}
}

func guardStoreProspect(st *statex.SessionState, req contractx.ToolRequest) error {
	if st.Stage == statex.StageBooked {
		return fmt.Errorf("%w: a tour is already booked in this session", contractx.ErrToolOrder)
	}
	if missing := st.Missing(); len(missing) > 0 {
		// name is captured from the store call itself, so only the
		// validator-backed fields block here
		for _, f := range missing {
			if f != statex.FieldName {
				return fmt.Errorf("%w: field %s has not passed validation", contractx.ErrToolOrder, f)
			}
		}
	}
	if name := argString(req.Args, "name"); name == "" {
		return fmt.Errorf("%w: prospect name is required", contractx.ErrToolOrder)
	}
	if email := argString(req.Args, "email"); email != st.Email {
		return fmt.Errorf("%w: email %q does not match the validated value", contractx.ErrToolOrder, email)
	}
	if phone := argString(req.Args, "phone"); phone != st.Phone {
		return fmt.Errorf("%w: phone %q does not match the validated value", contractx.ErrToolOrder, phone)
	}
	return nil
}

func guardCheckAvailability(st *statex.SessionState, req contractx.ToolRequest) error {
	if st.Stage != statex.StageStored {
		return fmt.Errorf("%w: store_prospect_info must succeed before checking availability", contractx.ErrToolOrder)
	}
	if beds, ok := contractx.IntArg(req.Args, "beds"); !ok || beds != int64(st.Beds) {
		return fmt.Errorf("%w: beds must equal the validated value %d", contractx.ErrToolOrder, st.Beds)
	}
	return nil
}

func guardBookTour(st *statex.SessionState, req contractx.ToolRequest) error {
	if st.Stage != statex.StageAvailabilityChecked {
		return fmt.Errorf("%w: check_availability must return a property before booking", contractx.ErrToolOrder)
	}
	if unit, ok := contractx.IntArg(req.Args, "unit"); !ok || unit != st.PropertyID {
		return fmt.Errorf("%w: unit must be the property id %d returned by check_availability", contractx.ErrToolOrder, st.PropertyID)
	}
	if userID, ok := contractx.IntArg(req.Args, "user_id"); !ok || userID != st.ProspectID {
		return fmt.Errorf("%w: user_id must be the prospect id %d returned by store_prospect_info", contractx.ErrToolOrder, st.ProspectID)
	}
	if name := argString(req.Args, "user_name"); name != st.Name {
		return fmt.Errorf("%w: user_name %q does not match the stored prospect", contractx.ErrToolOrder, name)
	}
	if email := argString(req.Args, "user_email"); email != st.Email {
		return fmt.Errorf("%w: user_email %q does not match the validated value", contractx.ErrToolOrder, email)
	}
	return nil
}
