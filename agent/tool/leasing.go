package tool

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/Leasebot-Tour-Booking-Dialogue/agent/contract"
	leasingx "github.com/tanpawarit/Leasebot-Tour-Booking-Dialogue/agent/leasing"
	notifyx "github.com/tanpawarit/Leasebot-Tour-Booking-Dialogue/agent/notify"
	validatex "github.com/tanpawarit/Leasebot-Tour-Booking-Dialogue/agent/validate"
)

// maxSlotRetries bounds how many times book_tour chases the next slot after
// losing an insert race.
const maxSlotRetries = 5

// Gateway executes the leasing tools. Validation verdicts and business
// negatives travel inside ToolResult; a Go error means storage let us down
// and the turn cannot complete.
type Gateway struct {
	repo       leasingx.Repo
	dispatcher *notifyx.Dispatcher

	now  func() time.Time
	pick func(n int) int
}

var _ contractx.ToolGateway = (*Gateway)(nil)

type GatewayOption func(*Gateway)

func WithClock(now func() time.Time) GatewayOption {
	return func(g *Gateway) {
		if now != nil {
			g.now = now
		}
	}
}

// WithPicker overrides the uniform random property selection, for tests.
func WithPicker(pick func(n int) int) GatewayOption {
	return func(g *Gateway) {
		if pick != nil {
			g.pick = pick
		}
	}
}

func NewGateway(repo leasingx.Repo, dispatcher *notifyx.Dispatcher, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		repo:       repo,
		dispatcher: dispatcher,
		now:        time.Now,
		pick:       rand.Intn,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

func (g *Gateway) Execute(ctx context.Context, req contractx.ToolRequest) (contractx.ToolResult, error) {
	switch req.Tool {
	case ToolValidateEmail:
		value := stringArg(req.Args, "email")
		return validationResult(req.Tool, "email", value, validatex.Email(value)), nil
	case ToolValidatePhone:
		value := stringArg(req.Args, "phone")
		return validationResult(req.Tool, "phone", value, validatex.Phone(value)), nil
	case ToolValidateMoveInDate:
		value := stringArg(req.Args, "date")
		return validationResult(req.Tool, "move_in_date", value, validatex.MoveInDateAt(value, g.now())), nil
	case ToolValidateBeds:
		value := stringArg(req.Args, "beds")
		_, ok := validatex.BedCount(value)
		return validationResult(req.Tool, "beds", value, ok), nil
	case ToolStoreProspectInfo:
		return g.storeProspect(ctx, req)
	case ToolCheckAvailability:
		return g.checkAvailability(ctx, req)
	case ToolBookTour:
		return g.bookTour(ctx, req)
	default:
		return contractx.ToolResult{
			Tool:  req.Tool,
			Error: fmt.Sprintf("unknown tool %q", req.Tool),
		}, nil
	}
}

func (g *Gateway) storeProspect(ctx context.Context, req contractx.ToolRequest) (contractx.ToolResult, error) {
	name := stringArg(req.Args, "name")
	email := stringArg(req.Args, "email")
	phone := stringArg(req.Args, "phone")
	if name == "" || email == "" || phone == "" {
		return contractx.ToolResult{
			Tool:  req.Tool,
			Error: "name, email, and phone are required",
		}, nil
	}

	// Idempotent by email: re-submission returns the existing prospect.
	id, err := g.repo.FindUserByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, contractx.ErrNotFound) {
			return contractx.ToolResult{}, err
		}
		id, err = g.repo.InsertUser(ctx, name, email, phone)
		if err != nil {
			return contractx.ToolResult{}, err
		}
	}

	return contractx.ToolResult{
		Tool:   req.Tool,
		Result: contractx.StoreProspectOutput{ProspectID: id},
	}, nil
}

func (g *Gateway) checkAvailability(ctx context.Context, req contractx.ToolRequest) (contractx.ToolResult, error) {
	beds, ok := intArg(req.Args, "beds")
	if !ok || beds <= 0 {
		return contractx.ToolResult{
			Tool:  req.Tool,
			Error: "beds must be a positive integer",
		}, nil
	}

	props, err := g.repo.ListAvailableProperties(ctx, beds)
	if err != nil {
		return contractx.ToolResult{}, err
	}
	if len(props) == 0 {
		return contractx.ToolResult{
			Tool:   req.Tool,
			Result: contractx.AvailabilityOutput{Found: false, Outcome: contractx.OutcomeNoMatchingProperty},
		}, nil
	}

	// Uniform random pick spreads tours across matching units.
	chosen := props[g.pick(len(props))]
	return contractx.ToolResult{
		Tool:   req.Tool,
		Result: contractx.AvailabilityOutput{Found: true, PropertyID: chosen.ID},
	}, nil
}

func (g *Gateway) bookTour(ctx context.Context, req contractx.ToolRequest) (contractx.ToolResult, error) {
	propertyID, okUnit := contractx.IntArg(req.Args, "unit")
	userID, okUser := contractx.IntArg(req.Args, "user_id")
	userName := stringArg(req.Args, "user_name")
	userEmail := stringArg(req.Args, "user_email")
	if !okUnit || !okUser || userName == "" || userEmail == "" {
		return contractx.ToolResult{
			Tool:  req.Tool,
			Error: "unit, user_id, user_name, and user_email are required",
		}, nil
	}

	var (
		bookingID int64
		slot      *leasingx.Slot
	)
	for attempt := 0; ; attempt++ {
		if attempt >= maxSlotRetries {
			return bookOutcome(req.Tool, contractx.BookTourOutput{
				Outcome: contractx.OutcomeNoAvailableSlot,
				Message: "No available slots for this property",
			}), nil
		}

		var err error
		slot, err = g.repo.NextUnbookedSlot(ctx, propertyID)
		if err != nil {
			if errors.Is(err, contractx.ErrNotFound) {
				return bookOutcome(req.Tool, contractx.BookTourOutput{
					Outcome: contractx.OutcomeNoAvailableSlot,
					Message: "No available slots for this property",
				}), nil
			}
			return contractx.ToolResult{}, err
		}

		bookingID, err = g.repo.InsertBooking(ctx, userID, propertyID, slot.ID)
		if err != nil {
			if errors.Is(err, contractx.ErrSlotTaken) {
				// lost the race for this slot, try the next one
				continue
			}
			return contractx.ToolResult{}, err
		}
		break
	}

	prop, err := g.repo.GetProperty(ctx, propertyID)
	if err != nil {
		if errors.Is(err, contractx.ErrNotFound) {
			// The booking row exists but references a property we can no
			// longer read. This should not happen with pre-seeded inventory.
			log.Error().Int64("property_id", propertyID).Int64("booking_id", bookingID).
				Msg("booked property vanished before confirmation")
			return bookOutcome(req.Tool, contractx.BookTourOutput{
				Outcome: contractx.OutcomePropertyNotFound,
				Message: "Property not found.",
			}), nil
		}
		return contractx.ToolResult{}, err
	}

	sent := g.dispatcher.Dispatch(ctx, contractx.Confirmation{
		Name:            userName,
		Email:           userEmail,
		PropertyID:      prop.ID,
		PropertyAddress: prop.Address,
		SlotStart:       slot.StartTime,
	})

	out := contractx.BookTourOutput{
		Outcome:    contractx.OutcomeConfirmed,
		BookingID:  bookingID,
		PropertyID: prop.ID,
		SlotID:     slot.ID,
		SlotStart:  slot.StartTime,
		Message:    "Confirmation email sent",
	}
	if !sent {
		out.Outcome = contractx.OutcomeConfirmedEmailPending
		out.Message = "Tour booked; the confirmation email will follow shortly"
	}
	return bookOutcome(req.Tool, out), nil
}

func bookOutcome(tool string, out contractx.BookTourOutput) contractx.ToolResult {
	return contractx.ToolResult{Tool: tool, Result: out}
}

func validationResult(tool, field, value string, valid bool) contractx.ToolResult {
	return contractx.ToolResult{
		Tool: tool,
		Result: contractx.ValidationOutput{
			Field: field,
			Value: value,
			Valid: valid,
		},
	}
}

func stringArg(args map[string]any, key string) string {
	if args == nil {
		return ""
	}
	v, ok := args[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return strings.TrimSpace(fmt.Sprint(v))
	}
	return strings.TrimSpace(s)
}

func intArg(args map[string]any, key string) (int, bool) {
	v, ok := contractx.IntArg(args, key)
	return int(v), ok
}
