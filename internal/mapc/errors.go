package mapc

import (
	"errors"
	"fmt"
)

var (
	ErrMapNotFound     = errors.New("map not found")
	ErrToolFailed      = errors.New("external tool failed")
	ErrArtifactMissing = errors.New("compiled artifact missing")
	ErrIO              = errors.New("i/o failure")
)

// Error describes a failure compiling one map.
//
// For ErrToolFailed, Tool and ExitCode identify the step; ExitCode is -1 when
// the tool could not be started. Stderr holds the tail of the tool's error
// output.
type Error struct {
	Kind     error
	Map      string
	Tool     string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := fmt.Sprintf("%s: map %s", e.Kind.Error(), e.Map)
	if e.Tool != "" {
		if e.ExitCode >= 0 || e.Err == nil {
			msg = fmt.Sprintf("%s: %s exited with status %d", msg, e.Tool, e.ExitCode)
		} else {
			msg = fmt.Sprintf("%s: %s could not be started", msg, e.Tool)
		}
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Stderr != "" {
		msg = fmt.Sprintf("%s\n%s", msg, e.Stderr)
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
