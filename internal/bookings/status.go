package bookings

// Status enumerates the booking lifecycle.
//
// The happy path runs CREATED -> PAID -> PENDING_CONFIRMATION -> CONFIRMED ->
// CHECKED_IN -> CHECKED_OUT -> COMPLETED. Manual payment methods skip
// PENDING_CONFIRMATION. CANCELLED is reachable from every pre-stay state and
// always releases inventory.
type Status string

const (
	StatusCreated             Status = "CREATED"
	StatusPaid                Status = "PAID"
	StatusPendingConfirmation Status = "PENDING_CONFIRMATION"
	StatusConfirmed           Status = "CONFIRMED"
	StatusCheckedIn           Status = "CHECKED_IN"
	StatusCheckedOut          Status = "CHECKED_OUT"
	StatusCompleted           Status = "COMPLETED"
	StatusCancelled           Status = "CANCELLED"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusCreated, StatusPaid, StatusPendingConfirmation, StatusConfirmed,
		StatusCheckedIn, StatusCheckedOut, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// allowedTransitions is the explicit table for operator-driven status moves.
// Payment-driven moves (CREATED -> PAID, PAID -> PENDING_CONFIRMATION/CONFIRMED)
// go through the payment flow, which enforces its own guards.
var allowedTransitions = map[Status][]Status{
	StatusCreated:             {StatusPendingConfirmation, StatusConfirmed, StatusCancelled},
	StatusPaid:                {StatusPendingConfirmation, StatusConfirmed, StatusCancelled},
	StatusPendingConfirmation: {StatusConfirmed, StatusCancelled},
	StatusConfirmed:           {StatusCheckedIn, StatusCancelled},
	StatusCheckedIn:           {StatusCheckedOut, StatusCompleted},
	StatusCheckedOut:          {StatusCompleted},
	StatusCompleted:           {},
	StatusCancelled:           {},
}

// CanTransitionTo reports whether an operator may move a booking from s to
// target in a single step.
func (s Status) CanTransitionTo(target Status) bool {
	for _, next := range allowedTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// cancellableStatuses are the states a cancellation (user, payment failure,
// refund, expiry sweep, no-show sweep) may start from. Once a guest has
// checked in the booking can only run forward to COMPLETED.
var cancellableStatuses = []Status{
	StatusCreated,
	StatusPaid,
	StatusPendingConfirmation,
	StatusConfirmed,
}

func (s Status) IsCancellable() bool {
	for _, st := range cancellableStatuses {
		if st == s {
			return true
		}
	}
	return false
}
