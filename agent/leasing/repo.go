package leasing

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"

	contractx "github.com/tanpawarit/Leasebot-Tour-Booking-Dialogue/agent/contract"
)

// Repo is the data-access contract consumed by the leasing tools.
type Repo interface {
	InsertUser(ctx context.Context, name, email, phone string) (int64, error)
	FindUserByEmail(ctx context.Context, email string) (int64, error)
	ListAvailableProperties(ctx context.Context, beds int) ([]Property, error)
	NextUnbookedSlot(ctx context.Context, propertyID int64) (*Slot, error)
	InsertBooking(ctx context.Context, userID, propertyID, slotID int64) (int64, error)
	GetProperty(ctx context.Context, propertyID int64) (*Property, error)
}

type bunRepo struct {
	db *bun.DB
}

var _ Repo = (*bunRepo)(nil)

func NewRepo(db *bun.DB) Repo {
	return &bunRepo{db: db}
}

func (r *bunRepo) InsertUser(ctx context.Context, name, email, phone string) (int64, error) {
	u := &User{
		Name:  strings.TrimSpace(name),
		Email: strings.TrimSpace(email),
		Phone: strings.TrimSpace(phone),
	}
	if _, err := r.db.NewInsert().Model(u).Returning("id").Exec(ctx); err != nil {
		return 0, storageErr("insert user", err)
	}
	return u.ID, nil
}

func (r *bunRepo) FindUserByEmail(ctx context.Context, email string) (int64, error) {
	u := new(User)
	err := r.db.NewSelect().Model(u).
		Column("id").
		Where("u.email = ?", strings.TrimSpace(email)).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, contractx.ErrNotFound
		}
		return 0, storageErr("find user by email", err)
	}
	return u.ID, nil
}

func (r *bunRepo) ListAvailableProperties(ctx context.Context, beds int) ([]Property, error) {
	var props []Property
	err := r.db.NewSelect().Model(&props).
		Where("p.beds = ?", beds).
		Where("p.available = TRUE").
		Scan(ctx)
	if err != nil {
		return nil, storageErr("list available properties", err)
	}
	return props, nil
}

// NextUnbookedSlot returns the earliest slot for the property that no booking
// references yet.
func (r *bunRepo) NextUnbookedSlot(ctx context.Context, propertyID int64) (*Slot, error) {
	slot := new(Slot)
	err := r.db.NewSelect().Model(slot).
		Where("slot.property_id = ?", propertyID).
		Where("NOT EXISTS (SELECT 1 FROM bookings b WHERE b.slot_id = slot.id)").
		OrderExpr("slot.start_time ASC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, contractx.ErrNotFound
		}
		return nil, storageErr("next unbooked slot", err)
	}
	return slot, nil
}

// InsertBooking relies on the unique index on bookings.slot_id: losing a race
// for the same slot surfaces as ErrSlotTaken, not a second booking.
func (r *bunRepo) InsertBooking(ctx context.Context, userID, propertyID, slotID int64) (int64, error) {
	bk := &Booking{
		UserID:     userID,
		PropertyID: propertyID,
		SlotID:     slotID,
	}
	if _, err := r.db.NewInsert().Model(bk).Returning("id").Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return 0, contractx.ErrSlotTaken
		}
		return 0, storageErr("insert booking", err)
	}
	return bk.ID, nil
}

func (r *bunRepo) GetProperty(ctx context.Context, propertyID int64) (*Property, error) {
	p := new(Property)
	err := r.db.NewSelect().Model(p).
		Where("p.id = ?", propertyID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, contractx.ErrNotFound
		}
		return nil, storageErr("get property", err)
	}
	return p, nil
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", contractx.ErrStorage, op, err)
}

func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.Field('C') == "23505"
	}
	return false
}
