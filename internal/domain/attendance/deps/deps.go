package deps

import (
	"context"

	"github.com/HoceineEl/madrasa-messaging/internal/domain/attendance/entities"
)

// AttendanceReader answers whether a member is already recorded present on a
// date. The surrounding application owns attendance storage; this service
// only consumes the read model.
type AttendanceReader interface {
	IsPresent(ctx context.Context, memberID uint, date string) (bool, error)
}

// AttendanceService reconciles a roster against observed chat senders
type AttendanceService interface {
	Reconcile(ctx context.Context, roster []entities.RosterMember, date string, senderPhones []string, reader AttendanceReader) (*entities.Result, error)
}
