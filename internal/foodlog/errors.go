package foodlog

import (
	"errors"
	"fmt"
)

var (
	// ErrDeleteInFlight is returned when a delete for the same id has not finished yet.
	ErrDeleteInFlight = errors.New("delete already in flight")
	// ErrSuperseded is returned by Refresh when a newer refresh started before this one finished.
	ErrSuperseded = errors.New("refresh superseded by a newer request")
)

// statusError is implemented by transport errors that carry the HTTP status and the
// server-supplied message.
type statusError interface {
	error
	HTTPStatus() int
	ServerDetail() string
}

// FetchError reports a failed history retrieval. The store is empty after it.
type FetchError struct {
	Message string
	Err     error
}

func (e *FetchError) Error() string {
	return "fetch food-log history: " + e.Message
}

func (e *FetchError) Unwrap() error { return e.Err }

func newFetchError(err error) *FetchError {
	return &FetchError{Message: serverMessage(err, "failed to fetch food history"), Err: err}
}

// DeletionError reports a delete the backend did not confirm. The store is unchanged.
type DeletionError struct {
	ID      int64
	Message string
	Err     error
}

func (e *DeletionError) Error() string {
	return fmt.Sprintf("delete food log %d: %s", e.ID, e.Message)
}

func (e *DeletionError) Unwrap() error { return e.Err }

func newDeletionError(id int64, err error) *DeletionError {
	return &DeletionError{ID: id, Message: serverMessage(err, "failed to delete food"), Err: err}
}

// MalformedTimestampError marks an entry left out of the daily view because its
// logged_at value is not a valid ISO-8601 timestamp.
type MalformedTimestampError struct {
	EntryID int64
	Value   string
	Err     error
}

func (e *MalformedTimestampError) Error() string {
	return fmt.Sprintf("entry %d has malformed timestamp %q", e.EntryID, e.Value)
}

func (e *MalformedTimestampError) Unwrap() error { return e.Err }

func serverMessage(err error, prefix string) string {
	var se statusError
	if errors.As(err, &se) {
		if detail := se.ServerDetail(); detail != "" {
			return detail
		}
		return fmt.Sprintf("%s: HTTP status %d", prefix, se.HTTPStatus())
	}
	return err.Error()
}
