package processor

import "fmt"

// Outcome is the terminal result of one run. Exactly one is produced per
// invocation: Success, Failure, SpawnError or Cancelled.
type Outcome interface {
	// Err returns nil for Success and the outcome itself for every other kind
	Err() error
	outcome()
}

// Success is a run that exited with status 0
type Success struct {
	Stdout string
	Stderr string
}

// Failure is a run that started and exited with a non-zero status. A
// process killed by a signal from outside reports ExitCode -1.
type Failure struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// SpawnErrorKind separates the remediation paths for a tool that never ran
type SpawnErrorKind string

const (
	// SpawnNotFound means the binary is missing, bundled or on PATH
	SpawnNotFound SpawnErrorKind = "not-found"
	// SpawnPermission means the binary exists but could not be executed
	SpawnPermission SpawnErrorKind = "permission"
	SpawnOther      SpawnErrorKind = "other"
)

// SpawnError is a run whose process never started
type SpawnError struct {
	Kind          SpawnErrorKind
	Reason        string
	AttemptedPath string
}

// Cancelled is a run stopped by its context. The process received a
// termination signal; output captured until then is kept.
type Cancelled struct {
	Stdout string
	Stderr string
}

func (Success) outcome()    {}
func (Failure) outcome()    {}
func (SpawnError) outcome() {}
func (Cancelled) outcome()  {}

func (Success) Err() error      { return nil }
func (o Failure) Err() error    { return o }
func (o SpawnError) Err() error { return o }
func (o Cancelled) Err() error  { return o }

func (o Failure) Error() string {
	return fmt.Sprintf("tool exited with code %d", o.ExitCode)
}

func (o SpawnError) Error() string {
	switch o.Kind {
	case SpawnNotFound:
		return fmt.Sprintf("tool not found at %s: %s", o.AttemptedPath, o.Reason)
	case SpawnPermission:
		return fmt.Sprintf("tool at %s is not executable: %s", o.AttemptedPath, o.Reason)
	default:
		return fmt.Sprintf("failed to start %s: %s", o.AttemptedPath, o.Reason)
	}
}

func (Cancelled) Error() string {
	return "run cancelled"
}

// Output returns whatever the run captured. A SpawnError captured nothing.
func Output(o Outcome) (stdout, stderr string) {
	switch o := o.(type) {
	case Success:
		return o.Stdout, o.Stderr
	case Failure:
		return o.Stdout, o.Stderr
	case Cancelled:
		return o.Stdout, o.Stderr
	}
	return "", ""
}
