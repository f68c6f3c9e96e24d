package errors

import "errors"

// Authentication
var ErrUnauthenticated = errors.New("no authenticated actor")
var ErrForbidden = errors.New("operation is forbidden for actor")

// Lookup
var ErrNotFound = errors.New("referenced entity does not exist")

// Input validation. Wrap with fmt.Errorf("%w: detail", ErrValidation) so the
// caller still matches with errors.Is.
var ErrValidation = errors.New("invalid input")

// Business rules
var ErrEmailTaken = errors.New("email is already registered")
var ErrOrganisationTaken = errors.New("organisation is already registered")
var ErrScheduleClash = errors.New("performance clashes with an existing schedule")
var ErrInsufficientTickets = errors.New("not enough tickets remaining")
var ErrPerformanceEnded = errors.New("performance has already ended")
var ErrEventStarted = errors.New("a performance of the event has already started")
var ErrCancellationWindow = errors.New("performance starts within the cancellation window")
var ErrEventNotActive = errors.New("event is not active")
var ErrBookingNotActive = errors.New("booking is not active")
var ErrRequestDecided = errors.New("sponsorship request is already decided")

// Collaborators
var ErrPaymentDeclined = errors.New("payment was declined by the ledger")
var ErrRefundDeclined = errors.New("refund was declined by the ledger")
