package leasing

import (
	"time"

	"github.com/uptrace/bun"
)

type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	Name      string    `bun:"name,notnull" json:"name"`
	Email     string    `bun:"email,notnull,unique" json:"email"`
	Phone     string    `bun:"phone,notnull" json:"phone"`
}

type Property struct {
	bun.BaseModel `bun:"table:properties,alias:p"`

	ID        int64  `bun:"id,pk,autoincrement" json:"id"`
	Address   string `bun:"address,notnull" json:"address"`
	Beds      int    `bun:"beds,notnull" json:"beds"`
	Available bool   `bun:"available,notnull,default:true" json:"available"`
}

// Slot is one bookable tour window. A slot is consumed implicitly: once a
// booking references it, the availability query stops returning it.
type Slot struct {
	bun.BaseModel `bun:"table:availability,alias:slot"`

	ID         int64     `bun:"id,pk,autoincrement" json:"id"`
	PropertyID int64     `bun:"property_id,notnull" json:"property_id"`
	StartTime  time.Time `bun:"start_time,notnull" json:"start_time"`
	EndTime    time.Time `bun:"end_time,notnull" json:"end_time"`
}

type Booking struct {
	bun.BaseModel `bun:"table:bookings,alias:b"`

	ID         int64 `bun:"id,pk,autoincrement" json:"id"`
	UserID     int64 `bun:"user_id,notnull" json:"user_id"`
	PropertyID int64 `bun:"property_id,notnull" json:"property_id"`
	// slot_id carries a unique index so two bookings can never reference the
	// same slot, no matter how requests interleave.
	SlotID int64 `bun:"slot_id,notnull,unique" json:"slot_id"`
}
