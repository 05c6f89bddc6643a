// SitePulse - Lightweight Behavioral Telemetry Collection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitepulse

package database

import (
	"errors"
	"fmt"
	"io"

	"github.com/tomtom215/sitepulse/internal/logging"
)

// Storage error codes. Only the code is exposed to HTTP clients
// ("Database error: SP002"); Err stays in server logs.
const (
	CodeConnection = "SP001"
	CodeWrite      = "SP002"
	CodeRead       = "SP003"
	CodeEncode     = "SP004"
	CodeInvalid    = "SP005"
)

// StoreError is returned by every Store implementation for storage-layer
// failures.
type StoreError struct {
	Op   string
	Code string
	Err  error
}

func (e *StoreError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: storage error %s", e.Op, e.Code)
	}
	return fmt.Sprintf("%s: storage error %s: %v", e.Op, e.Code, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// ErrorCode returns the SPxxx code.
func (e *StoreError) ErrorCode() string {
	return e.Code
}

// NewStoreError wraps err. Exported so the Badger backend in kvstore can
// produce the same error type.
func NewStoreError(op, code string, err error) *StoreError {
	return &StoreError{Op: op, Code: code, Err: err}
}

// ErrVariantLeak is wrapped in a CodeInvalid StoreError when a record has
// fields set that do not belong to its type.
var ErrVariantLeak = errors.New("record has fields outside its event type")

func closeWithLog(closer io.Closer, resource string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.Warn().Str("type", resource).Err(err).Msg("failed to close resource")
	}
}

func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}
