package contract

import "errors"

var (
	ErrModelInvoke     = errors.New("model invoke failed")
	ErrSchemaViolation = errors.New("model response violates schema")
	ErrValidation      = errors.New("validation failed")
	ErrStorage         = errors.New("storage unavailable")
	ErrNotFound        = errors.New("record not found")
	ErrSlotTaken       = errors.New("slot already booked")
	ErrToolOrder       = errors.New("tool call out of order")
)
