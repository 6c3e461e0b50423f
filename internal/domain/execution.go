package domain

// ExecutionRequest is a request to run a snippet of source code in one of
// the supported languages. Transient, never persisted.
type ExecutionRequest struct {
	Code     string `json:"code"`
	Language string `json:"language"`
}

// ExecutionResult carries the captured output of an execution. Error is set
// only on failure; every failure mode (validation, build, runtime, timeout,
// infrastructure) is expressed here rather than as a transport fault.
type ExecutionResult struct {
	Output string `json:"output"`
	Error  string `json:"error,omitempty"`
}

// Failed reports whether the execution produced an error.
func (r ExecutionResult) Failed() bool {
	return r.Error != ""
}
