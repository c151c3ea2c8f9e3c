package core

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyPayload  = errors.New("upstream returned an empty payload")
	ErrNotImage      = errors.New("upstream payload is not an image")
	ErrTooLarge      = errors.New("upstream payload exceeds the size limit")
	ErrRunInProgress = errors.New("a run is already in progress for this chat")
	ErrTooManyRuns   = errors.New("too many runs in progress")
)

// UpstreamFetchError is returned when one image could not be fetched.
type UpstreamFetchError struct {
	// Attempt is the 1-based index of the image within the run, zero outside a run.
	Attempt int
	// Status is the HTTP status code, zero when no response was received.
	Status int
	Err    error
}

func (e *UpstreamFetchError) Error() string {
	msg := "upstream fetch"
	if e.Attempt > 0 {
		msg = fmt.Sprintf("%s of image %d", msg, e.Attempt)
	}
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *UpstreamFetchError) Unwrap() error {
	return e.Err
}

// DeliveryError is returned when the transport rejects a grouped send.
type DeliveryError struct {
	Batch int
	Size  int
	Err   error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivering batch %d of %d images: %v", e.Batch, e.Size, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// InvalidQuantityError is returned for custom quantities outside Min..Max or not a number.
type InvalidQuantityError struct {
	Input string
	Min   int
	Max   int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("invalid quantity %q: expected a number from %d to %d", e.Input, e.Min, e.Max)
}
