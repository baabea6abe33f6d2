package model

import "time"

// Facility represents a capacity-constrained parking lot.  A
// facility owns a history of prices and the tickets issued
// against it.  This struct corresponds to a row in the
// `facilities` table.
//
// Fields:
//  ID          – primary key identifier.
//  Name        – human readable name of the lot.
//  TotalSpaces – number of physical parking spaces (>= 0).
//  CreatedAt   – timestamp when the facility was created.
//  UpdatedAt   – timestamp of last update.
type Facility struct {
	ID          uint64    // facilities.id
	Name        string    // facilities.name
	TotalSpaces uint32    // facilities.total_spaces
	CreatedAt   time.Time // facilities.created_at
	UpdatedAt   time.Time // facilities.updated_at
}
