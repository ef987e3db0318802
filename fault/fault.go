// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Ternarybit Ltd.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

// error base
type GenericError string

// to allow for different classes of errors
type ExistsError GenericError
type InvalidError GenericError
type LengthError GenericError
type NotFoundError GenericError
type ProcessError GenericError

// common errors - keep in alphabetic order
var (
	ErrAlreadyInitialised      = ExistsError("already initialised")
	ErrBackendFailed           = ProcessError("backend failed")
	ErrBufferSizeMismatch      = LengthError("buffer size mismatch")
	ErrInvalidDifficulty       = InvalidError("difficulty out of range")
	ErrInvalidGridHeight       = InvalidError("grid height is invalid")
	ErrInvalidLength           = LengthError("invalid length")
	ErrInvalidStateLength      = LengthError("state length is invalid")
	ErrInvalidStructPointer    = InvalidError("invalid struct pointer")
	ErrInvalidTritValue        = InvalidError("trit value is invalid")
	ErrInvalidTryteCharacter   = InvalidError("tryte character is invalid")
	ErrKernelAlreadyRegistered = ExistsError("kernel already registered")
	ErrKernelNotFound          = NotFoundError("kernel not found")
	ErrNoLanePassed            = ProcessError("no lane passed the check")
	ErrNotInitialised          = NotFoundError("not initialised")
	ErrReadOutOfRange          = InvalidError("read region out of range")
	ErrUniformCountMismatch    = LengthError("uniform count mismatch")
)

// the error interface base method
func (e GenericError) Error() string { return string(e) }

// the error interface methods
func (e ExistsError) Error() string   { return string(e) }
func (e InvalidError) Error() string  { return string(e) }
func (e LengthError) Error() string   { return string(e) }
func (e NotFoundError) Error() string { return string(e) }
func (e ProcessError) Error() string  { return string(e) }

// determine the class of an error
func IsErrExists(e error) bool   { _, ok := e.(ExistsError); return ok }
func IsErrInvalid(e error) bool  { _, ok := e.(InvalidError); return ok }
func IsErrLength(e error) bool   { _, ok := e.(LengthError); return ok }
func IsErrNotFound(e error) bool { _, ok := e.(NotFoundError); return ok }
func IsErrProcess(e error) bool  { _, ok := e.(ProcessError); return ok }
