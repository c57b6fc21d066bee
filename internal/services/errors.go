// Package services implements the business logic for jios, orders, and
// favourite items, plus the multi-surface sync engine. This file centralizes
// common service-level error values so that they can be consistently returned
// by service methods and checked by callers.
//
// These errors are internal signals; translation into user-facing surface
// answers is performed at the dispatch layer.
package services

import "errors"

// Jio-related errors.
var (
	// ErrJioNotFound indicates that the referenced jio does not exist.
	ErrJioNotFound = errors.New("jio not found")

	// ErrRestaurantTooLong is returned when a restaurant name exceeds the
	// maximum length at jio creation.
	ErrRestaurantTooLong = errors.New("restaurant name too long")

	// ErrAlreadyClosed signals that a close request found the jio already
	// closed. No storage write happened; the caller surfaces a notice.
	ErrAlreadyClosed = errors.New("jio already closed")

	// ErrAlreadyOpen signals that a reopen request found the jio already
	// open. No storage write happened; the caller surfaces a notice.
	ErrAlreadyOpen = errors.New("jio already open")

	// ErrJioClosed is returned when an order mutation targets a closed jio.
	ErrJioClosed = errors.New("jio is closed")
)

// Order-related errors.
var (
	// ErrOrderNotFound indicates that the referenced order does not exist.
	ErrOrderNotFound = errors.New("order not found")

	// ErrOutOfRange is returned when an item removal names a position at or
	// beyond the end of the item list. The list is left unchanged.
	ErrOutOfRange = errors.New("item position out of range")
)

// Favourite-related errors.
var (
	// ErrFavouriteNotFound indicates that the referenced favourite does not
	// exist or does not belong to the requesting user.
	ErrFavouriteNotFound = errors.New("favourite not found")
)
