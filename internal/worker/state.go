package worker

// State is the lifecycle state of a worker.
//
// The only legal path is Starting -> Ready -> Busy -> Ready ... -> Exiting
// -> Terminated. A worker moves from Busy straight to Terminated only on an
// unrecoverable channel error, which is surfaced to the pool as a failure
// for the in-flight task.
type State int32

const (
	// StateStarting: the execution context is being launched.
	StateStarting State = iota

	// StateReady: the worker can accept a task.
	StateReady

	// StateBusy: the worker is processing a task. No new task may be
	// sent until it signals completion.
	StateBusy

	// StateExiting: the shutdown message has been sent.
	StateExiting

	// StateTerminated: the execution context has fully exited.
	StateTerminated
)

// String returns a readable state name for logs.
func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateReady:
		return "ready"
	case StateBusy:
		return "busy"
	case StateExiting:
		return "exiting"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}
