// Package repository defines error values reused across repositories.
// These sentinels let handlers distinguish failure scenarios without
// inspecting SQL errors directly: a not-found sentinel becomes an HTTP
// 404, ErrEmailExists becomes a 409, and anything else is treated as a
// server fault.
package repository

import "errors"

// ErrHallNotFound is returned when a theatre hall lookup fails.
var ErrHallNotFound = errors.New("theatre hall not found")

// ErrGenreNotFound is returned when a genre lookup fails.
var ErrGenreNotFound = errors.New("genre not found")

// ErrActorNotFound is returned when an actor lookup fails.
var ErrActorNotFound = errors.New("actor not found")

// ErrPlayNotFound is returned when a play lookup fails.
var ErrPlayNotFound = errors.New("play not found")

// ErrPerformanceNotFound is returned when a performance lookup fails.
var ErrPerformanceNotFound = errors.New("performance not found")

// ErrEmailExists is returned when registering a user with an email
// that is already taken.
var ErrEmailExists = errors.New("email already exists")
