// Package repository implements the data access layer over MySQL and Redis.
// This file defines sentinel errors reused across repositories so that
// handlers can distinguish failure scenarios without string matching.
package repository

import "errors"

// ErrNotFound is returned when the requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrUsernameExists is returned by UserRepo.Create when the username is
// already taken.
var ErrUsernameExists = errors.New("username already exists")

// ErrCodeMismatch is returned by CodeStore.Verify when the supplied
// verification code does not match the cached one or the cache entry has
// expired.
var ErrCodeMismatch = errors.New("verification code invalid or expired")
