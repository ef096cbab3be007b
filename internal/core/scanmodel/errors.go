// Package scanmodel defines the data the scan core produces and mutates:
// Device, ServiceInfo, ScanResults, and the process-wide JobStats
// singleton, plus the structured error kinds from spec §7.
package scanmodel

import "fmt"

// ErrorRecord is a recovered, non-fatal error attached to a Device or to
// Results. It is never a Go error value by itself — it's the materialized
// form spec §7 requires for errors that must not abort the scan.
type ErrorRecord struct {
	Source    string `json:"source"`
	Message   string `json:"message"`
	Traceback string `json:"traceback,omitempty"`
}

func NewErrorRecord(source string, err error) ErrorRecord {
	return ErrorRecord{Source: source, Message: err.Error()}
}

// InputError is a caller-facing validation failure: malformed subnet,
// unknown port list, bad config field. It is returned directly, never
// recorded on a Device/Results — no scan is ever started.
type InputError struct {
	Field   string
	Message string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("input error (%s): %s", e.Field, e.Message)
}

// SubnetTooLargeError is the InputError raised when parsing would exceed
// IPParser's address cap.
type SubnetTooLargeError struct {
	Expr string
	Cap  int
}

func (e *SubnetTooLargeError) Error() string {
	return fmt.Sprintf("subnet expression %q exceeds the maximum of %d addresses", e.Expr, e.Cap)
}

// TerminationFailure surfaces when Scanner.Terminate's grace window
// expires with jobs still running (spec §4.6, §7).
type TerminationFailure struct {
	Residual map[string]int
}

func (e *TerminationFailure) Error() string {
	return fmt.Sprintf("scan termination timed out with %d job kinds still running", len(e.Residual))
}
