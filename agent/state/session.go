package state

import (
	"errors"
	"fmt"
	"time"
)

// Stage is the deterministic progress marker for one booking attempt.
// Transitions are driven by tool outcomes, never by the model's prose.
type Stage string

const (
	StageCollecting          Stage = "collecting"
	StageStored              Stage = "stored"
	StageAvailabilityChecked Stage = "availability_checked"
	StageBooked              Stage = "booked"
	StageDone                Stage = "done"
)

type Field string

const (
	FieldName       Field = "name"
	FieldEmail      Field = "email"
	FieldPhone      Field = "phone"
	FieldMoveInDate Field = "move_in_date"
	FieldBeds       Field = "beds"
)

var (
	ErrInvalidSession = errors.New("session id is empty")
	ErrUnknownField   = errors.New("unknown prospect field")
)

// SessionState is the source of truth for where a conversation stands. It is
// kept separate from the transcript so correctness never depends on the model
// re-reading its own history.
type SessionState struct {
	SessionID string `json:"session_id"`
	Stage     Stage  `json:"stage"`

	Name       string `json:"name,omitempty"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	MoveInDate string `json:"move_in_date,omitempty"`
	Beds       int    `json:"beds,omitempty"`

	EmailValid      bool `json:"email_valid"`
	PhoneValid      bool `json:"phone_valid"`
	MoveInDateValid bool `json:"move_in_date_valid"`
	BedsValid       bool `json:"beds_valid"`

	ProspectID int64 `json:"prospect_id,omitempty"`
	// PropertyID is the property most recently returned by the availability
	// check. book_tour is only ever allowed against this id.
	PropertyID int64 `json:"property_id,omitempty"`
	BookingID  int64 `json:"booking_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewSessionState(sessionID string, now time.Time) *SessionState {
	return &SessionState{
		SessionID: sessionID,
		Stage:     StageCollecting,
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}
}

func (s *SessionState) Touch(now time.Time) {
	s.UpdatedAt = now.UTC()
}

// SetName records the prospect's name. A changed name restarts the attempt.
func (s *SessionState) SetName(name string, now time.Time) {
	if name == s.Name {
		return
	}
	s.Name = name
	s.restartAttempt(now)
}

// SetValidated records a field value together with its validator verdict.
// Supplying a field always restarts the booking attempt: anything already
// stored or checked referred to the old values.
func (s *SessionState) SetValidated(field Field, value string, valid bool, now time.Time) error {
	switch field {
	case FieldEmail:
		s.Email = value
		s.EmailValid = valid
	case FieldPhone:
		s.Phone = value
		s.PhoneValid = valid
	case FieldMoveInDate:
		s.MoveInDate = value
		s.MoveInDateValid = valid
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	s.restartAttempt(now)
	return nil
}

func (s *SessionState) SetBeds(value int, valid bool, now time.Time) {
	s.Beds = value
	s.BedsValid = valid
	s.restartAttempt(now)
}

func (s *SessionState) restartAttempt(now time.Time) {
	if s.Stage == StageBooked {
		// a completed booking stands; new data starts nothing
		s.Touch(now)
		return
	}
	s.Stage = StageCollecting
	s.ProspectID = 0
	s.PropertyID = 0
	s.Touch(now)
}

// ReadyToStore reports whether every required field has been supplied and
// has passed validation.
func (s *SessionState) ReadyToStore() bool {
	return s.Name != "" && s.EmailValid && s.PhoneValid && s.MoveInDateValid && s.BedsValid
}

// Missing lists the fields still needed before the prospect can be stored.
func (s *SessionState) Missing() []Field {
	var missing []Field
	if s.Name == "" {
		missing = append(missing, FieldName)
	}
	if !s.EmailValid {
		missing = append(missing, FieldEmail)
	}
	if !s.PhoneValid {
		missing = append(missing, FieldPhone)
	}
	if !s.MoveInDateValid {
		missing = append(missing, FieldMoveInDate)
	}
	if !s.BedsValid {
		missing = append(missing, FieldBeds)
	}
	return missing
}

func (s *SessionState) MarkStored(prospectID int64, now time.Time) {
	s.ProspectID = prospectID
	s.Stage = StageStored
	s.Touch(now)
}

func (s *SessionState) MarkAvailabilityChecked(propertyID int64, found bool, now time.Time) {
	if !found {
		s.PropertyID = 0
		s.Stage = StageDone
		s.Touch(now)
		return
	}
	s.PropertyID = propertyID
	s.Stage = StageAvailabilityChecked
	s.Touch(now)
}

func (s *SessionState) MarkBooked(bookingID int64, now time.Time) {
	s.BookingID = bookingID
	s.Stage = StageBooked
	s.Touch(now)
}

// MarkDone ends the current attempt without a booking (no slots, stale
// property, storage trouble). The session stays open.
func (s *SessionState) MarkDone(now time.Time) {
	s.PropertyID = 0
	s.Stage = StageDone
	s.Touch(now)
}

func (s *SessionState) Validate() error {
	if s.SessionID == "" {
		return ErrInvalidSession
	}
	switch s.Stage {
	case StageCollecting, StageDone:
	case StageStored:
		if s.ProspectID <= 0 {
			return fmt.Errorf("stage %s requires a prospect id", s.Stage)
		}
	case StageAvailabilityChecked:
		if s.ProspectID <= 0 || s.PropertyID <= 0 {
			return fmt.Errorf("stage %s requires prospect and property ids", s.Stage)
		}
	case StageBooked:
		if s.ProspectID <= 0 || s.BookingID <= 0 {
			return fmt.Errorf("stage %s requires prospect and booking ids", s.Stage)
		}
	default:
		return fmt.Errorf("unknown stage %q", s.Stage)
	}
	return nil
}
