package boundary

import (
	"errors"
	"fmt"

	"github.com/coregx/acbridge/automaton"
	"github.com/coregx/acbridge/memory"
	"github.com/coregx/acbridge/registry"
)

// Errors returned by Engine operations. They alias the sentinels of the
// packages that detect them, so errors.Is works with either name.
var (
	ErrInvalidHandle    = registry.ErrInvalidHandle
	ErrRegistryFull     = registry.ErrFull
	ErrInvalidEncoding  = memory.ErrInvalidEncoding
	ErrSizeMismatch     = memory.ErrSizeMismatch
	ErrUnknownRegion    = memory.ErrUnknownRegion
	ErrOutOfBounds      = memory.ErrOutOfBounds
	ErrOutOfMemory      = memory.ErrOutOfMemory
	ErrCapacityExceeded = errors.New("match capacity exceeded")
)

// Status is the signed code that carries an error across the wire. Results
// that are not errors are non-negative.
type Status int32

// Wire status codes.
const (
	StatusOK              Status = 0
	StatusInvalidHandle   Status = -1
	StatusInvalidEncoding Status = -2
	StatusSizeMismatch    Status = -3
	StatusOutOfBounds     Status = -4
	StatusUnknownRegion   Status = -5
	StatusOutOfMemory     Status = -6
	StatusRegistryFull    Status = -7
	StatusTooLarge        Status = -8
	StatusInternal        Status = -9
)

var statusErrors = []struct {
	status Status
	err    error
}{
	{StatusInvalidHandle, ErrInvalidHandle},
	{StatusInvalidEncoding, ErrInvalidEncoding},
	{StatusSizeMismatch, ErrSizeMismatch},
	{StatusOutOfBounds, ErrOutOfBounds},
	{StatusUnknownRegion, ErrUnknownRegion},
	{StatusOutOfMemory, ErrOutOfMemory},
	{StatusRegistryFull, ErrRegistryFull},
	{StatusTooLarge, automaton.ErrTooManyPatterns},
	{StatusTooLarge, automaton.ErrTooManyStates},
}

// StatusOf maps err to its wire status. Unrecognized errors map to
// StatusInternal.
func StatusOf(err error) Status {
	if err == nil {
		return StatusOK
	}
	for _, se := range statusErrors {
		if errors.Is(err, se.err) {
			return se.status
		}
	}
	return StatusInternal
}

// Err returns the sentinel error for s, or nil for StatusOK and
// non-negative values.
func (s Status) Err() error {
	if s >= 0 {
		return nil
	}
	for _, se := range statusErrors {
		if se.status == s {
			return se.err
		}
	}
	return fmt.Errorf("boundary: %v", s)
}

// String returns the name of the status.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusInvalidHandle:
		return "InvalidHandle"
	case StatusInvalidEncoding:
		return "InvalidEncoding"
	case StatusSizeMismatch:
		return "SizeMismatch"
	case StatusOutOfBounds:
		return "OutOfBounds"
	case StatusUnknownRegion:
		return "UnknownRegion"
	case StatusOutOfMemory:
		return "OutOfMemory"
	case StatusRegistryFull:
		return "RegistryFull"
	case StatusTooLarge:
		return "TooLarge"
	case StatusInternal:
		return "Internal"
	default:
		return fmt.Sprintf("Status(%d)", int32(s))
	}
}

// ScanResult is the outcome of a successful Scan.
type ScanResult struct {
	// Count is the number of pairs written.
	Count uint32
	// Truncated is set when more matches existed than the capacity allowed.
	Truncated bool
}

// Err returns ErrCapacityExceeded if the result was truncated. The written
// pairs are valid either way.
func (r ScanResult) Err() error {
	if r.Truncated {
		return ErrCapacityExceeded
	}
	return nil
}

const truncatedBit = int64(1) << 32

// PackScan encodes r as a non-negative i64: the count in the low 32 bits
// and the truncation flag in bit 32.
func PackScan(r ScanResult) int64 {
	v := int64(r.Count)
	if r.Truncated {
		v |= truncatedBit
	}
	return v
}

// UnpackScan decodes a value produced by PackScan or a negative status.
func UnpackScan(v int64) (ScanResult, Status) {
	if v < 0 {
		return ScanResult{}, Status(v) //nolint:gosec // G115: statuses are small negatives
	}
	return ScanResult{
		Count:     uint32(v), //nolint:gosec // G115: low 32 bits
		Truncated: v&truncatedBit != 0,
	}, StatusOK
}
