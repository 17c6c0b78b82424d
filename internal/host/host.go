// Package host defines the capability surface tools use to talk back to
// whatever is driving them: a terminal session, a GUI plugin shell, or a
// test harness. Tools receive a Host explicitly instead of reaching for
// global state, so each invocation is self-contained.
package host

// Host is consumed by long-running tools for feedback and cooperative
// cancellation.
type Host interface {
	// ReportProgress is fire-and-forget; percent is 0-100. Reporting 0
	// after work has started means the progress display should clear.
	ReportProgress(label string, percent int)
	// CancelRequested reports whether the user asked to stop. Tools poll
	// this at progress boundaries; cancellation is cooperative, never
	// preemptive.
	CancelRequested() bool
	// ShowMessage delivers user-facing feedback.
	ShowMessage(text string)
	// LogError records full failure detail in the diagnostic log, keyed
	// by the tool that failed.
	LogError(tool string, err error)
}
