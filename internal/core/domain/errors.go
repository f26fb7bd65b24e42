package domain

import "errors"

var (
	ErrNotAuthenticated    = errors.New("not authenticated")
	ErrForbidden           = errors.New("forbidden")
	ErrNotFound            = errors.New("not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrSeatUnavailable     = errors.New("seat not available")
	ErrCategoryExhausted   = errors.New("category exhausted")
	ErrCapacityExceeded    = errors.New("capacity exceeded")
	ErrInvalidTransition   = errors.New("invalid transition")
	ErrPublishPrecondition = errors.New("event not ready to publish")
	ErrPaymentDeclined     = errors.New("payment declined")
	ErrPaymentProcessor    = errors.New("payment processor error")
	ErrStorageUnavailable  = errors.New("storage unavailable")
)

// UserMessage resolves an error to the text shown to the person using the app.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotAuthenticated):
		return "You need to sign in to continue."
	case errors.Is(err, ErrForbidden):
		return "You are not allowed to do that."
	case errors.Is(err, ErrNotFound):
		return "We could not find what you were looking for."
	case errors.Is(err, ErrSeatUnavailable):
		return "That seat was just taken. Please pick another one."
	case errors.Is(err, ErrCategoryExhausted):
		return "There are no seats left to assign in this category."
	case errors.Is(err, ErrCapacityExceeded):
		return "The venue only has 25 seats. Lower one of the category counts."
	case errors.Is(err, ErrInvalidTransition):
		return "This change is no longer allowed."
	case errors.Is(err, ErrPublishPrecondition):
		return "Assign every seat, match the category counts and set all prices before publishing."
	case errors.Is(err, ErrPaymentDeclined):
		return "Your card was declined. No charge was made."
	case errors.Is(err, ErrPaymentProcessor):
		return "The payment could not be processed. Please try again."
	case errors.Is(err, ErrStorageUnavailable):
		return "The service is temporarily unavailable. Please retry."
	case errors.Is(err, ErrInvalidInput):
		return "Some of the information provided is not valid."
	default:
		return "Something went wrong."
	}
}
