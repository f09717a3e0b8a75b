package models

import "errors"

var ErrNotFound = errors.New("requested resource not found")
var ErrForbidden = errors.New("user does not have permission to access this resource")
var ErrUnauthorized = errors.New("missing or invalid credentials")
var ErrValidation = errors.New("invalid input")
var ErrInvalidState = errors.New("operation not allowed in the current order status")

// ErrConflict signals a lost claim race: the conditional update found the
// order already taken. Expected and frequent, never an internal error.
var ErrConflict = errors.New("order is no longer available")

// ErrAlreadyRated signals a duplicate (order, rater) rating submission.
// The original stars are left untouched.
var ErrAlreadyRated = errors.New("rating already submitted for this order")
