// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrFacilityFull signals that an admission was rejected
// because every space is occupied, while ErrNotPaid signals that a
// ticket cannot be returned before it is paid.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrFacilityFull is returned when a ticket cannot be issued because
// the facility has no free spaces.  This is an expected business
// outcome, not a defect; handlers translate it into HTTP 503 so that
// clients may retry later.
var ErrFacilityFull = errors.New("facility is full")

// ErrNotPaid is returned when a ticket cannot be returned because it
// is not paid at the moment of the check.  A payment older than the
// grace window no longer satisfies the check.  Handlers translate
// this into HTTP 422.
var ErrNotPaid = errors.New("ticket cannot be returned, must be paid first")

// ErrInvalidStatus is returned when a status update requests any
// transition other than active -> returned.  Handlers translate this
// into HTTP 422.
var ErrInvalidStatus = errors.New("invalid status, only 'returned' is allowed")

// isDuplicateKey reports whether err is a MySQL duplicate-entry error
// (1062).  The unique index on tickets.barcode is the final backstop
// against the barcode collision race; inserts that trip it are
// retried by the caller rather than surfaced to clients.
func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}
