package domain

import (
	"strconv"
	"strings"
)

// Failure records one failed member of a parallel run or one failed file of a batch pass.
type Failure struct {
	// Subject is the task name or file path that failed.
	Subject string
	Err     error
}

// AggregateError collects every failure of a run that does not stop at the first error.
// It unwraps to Kind and to each individual failure.
type AggregateError struct {
	Kind     error
	Failures []Failure
}

// Error implements the error interface.
func (e *AggregateError) Error() string {
	var b strings.Builder
	if e.Kind != nil {
		b.WriteString(e.Kind.Error())
		b.WriteString(": ")
	}
	b.WriteString(strconv.Itoa(len(e.Failures)))
	b.WriteString(" failure(s)")
	for _, f := range e.Failures {
		b.WriteString("\n")
		b.WriteString(f.Subject)
		b.WriteString(": ")
		b.WriteString(f.Err.Error())
	}
	return b.String()
}

// Unwrap exposes the kind and each failure to errors.Is and errors.As.
func (e *AggregateError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures)+1)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	for _, f := range e.Failures {
		errs = append(errs, f.Err)
	}
	return errs
}

// Subjects returns the names of the failed members in recorded order.
func (e *AggregateError) Subjects() []string {
	out := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		out[i] = f.Subject
	}
	return out
}

// TaskError reports the failure of a single named transform.
// It matches ErrTransformFailed with errors.Is and unwraps to the cause.
type TaskError struct {
	Task string
	Err  error
}

// Error implements the error interface.
func (e *TaskError) Error() string {
	return e.Message() + ": " + e.Err.Error()
}

// Message returns the failure line without the cause.
func (e *TaskError) Message() string {
	return "task " + strconv.Quote(e.Task) + " failed"
}

// Unwrap returns the cause.
func (e *TaskError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrTransformFailed.
func (e *TaskError) Is(target error) bool {
	return target == ErrTransformFailed
}
