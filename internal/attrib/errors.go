package attrib

import "errors"

// Kind classifies the outcome of a tool run for reporting purposes.
type Kind int

const (
	KindOK Kind = iota
	KindInvalidArguments
	KindResourceExhaustion
	KindCancelled
	KindUnclassified
)

var (
	// ErrInvalidArguments means the tool was run without a usable input
	// path. No I/O has happened when it is returned.
	ErrInvalidArguments = errors.New("tool run with no input parameter")

	// ErrResourceExhaustion marks failures caused by memory pressure.
	ErrResourceExhaustion = errors.New("memory requirements exceeded available resources")

	// ErrCancelled means the user asked to stop mid-run. Not a failure;
	// the attribute store may be left unsealed.
	ErrCancelled = errors.New("operation cancelled by user")
)

// Classify maps err onto the reporting taxonomy. Resource exhaustion is
// checked before the generic bucket so an out-of-memory failure is never
// reported as a plain error.
func Classify(err error) Kind {
	switch {
	case err == nil:
		return KindOK
	case errors.Is(err, ErrInvalidArguments):
		return KindInvalidArguments
	case errors.Is(err, ErrResourceExhaustion):
		return KindResourceExhaustion
	case errors.Is(err, ErrCancelled):
		return KindCancelled
	default:
		return KindUnclassified
	}
}
