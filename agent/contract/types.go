package contract

import "time"

// Outcome tags the terminal result of a side-effecting leasing tool so that
// callers can tell a legitimate business-negative apart from a failure.
type Outcome string

const (
	OutcomeConfirmed             Outcome = "confirmed"
	OutcomeConfirmedEmailPending Outcome = "confirmed_email_pending"
	OutcomeNoMatchingProperty    Outcome = "no_matching_property"
	OutcomeNoAvailableSlot       Outcome = "no_available_slot"
	OutcomePropertyNotFound      Outcome = "property_not_found"
)

type ToolRequest struct {
	Tool string         `json:"tool"`
	Args map[string]any `json:"args,omitempty"`
}

type ToolResult struct {
	Tool   string `json:"tool"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// ValidationOutput is the result payload of the four field validators.
type ValidationOutput struct {
	Field string `json:"field"`
	Value string `json:"value"`
	Valid bool   `json:"valid"`
}

type StoreProspectOutput struct {
	ProspectID int64 `json:"prospect_id"`
}

// AvailabilityOutput carries OutcomeNoMatchingProperty when no unit fits;
// a hit has Found set and no outcome, since the flow is not terminal yet.
type AvailabilityOutput struct {
	Found      bool    `json:"found"`
	PropertyID int64   `json:"property_id,omitempty"`
	Outcome    Outcome `json:"outcome,omitempty"`
}

type BookTourOutput struct {
	Outcome    Outcome   `json:"outcome"`
	BookingID  int64     `json:"booking_id,omitempty"`
	PropertyID int64     `json:"property_id,omitempty"`
	SlotID     int64     `json:"slot_id,omitempty"`
	SlotStart  time.Time `json:"slot_start,omitempty"`
	Message    string    `json:"message"`
}

// Confirmation is everything the notifier needs to compose the tour
// confirmation message.
type Confirmation struct {
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	PropertyID      int64     `json:"property_id"`
	PropertyAddress string    `json:"property_address"`
	SlotStart       time.Time `json:"slot_start"`
}
