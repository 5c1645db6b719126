package worker

// Request is one message on a worker's input channel. Exactly one of the
// two shapes is used: a task request carrying input and output paths, or a
// shutdown request with Exit set.
type Request struct {
	InputPath  string `json:"inputPath,omitempty"`
	OutputPath string `json:"outputPath,omitempty"`
	Exit       bool   `json:"exit,omitempty"`
}

// Response is one message on a worker's output channel: the outcome of a
// task request, or the acknowledgement of a shutdown request.
type Response struct {
	// OK marks a completed task. OutputPath and Bytes describe what was
	// written.
	OK         bool   `json:"ok"`
	OutputPath string `json:"outputPath,omitempty"`
	Bytes      int64  `json:"bytes,omitempty"`

	// Code and Error describe a failed task. Code is one of the
	// task.Code* constants.
	Code  string `json:"code,omitempty"`
	Error string `json:"error,omitempty"`

	// Exited acknowledges a shutdown request. The worker terminates
	// right after sending it.
	Exited bool `json:"exited,omitempty"`
}

// exitRequest is the shutdown message sent on the worker channel.
func exitRequest() Request {
	return Request{Exit: true}
}

// taskRequest builds the task message for the given paths.
func taskRequest(inputPath, outputPath string) Request {
	return Request{InputPath: inputPath, OutputPath: outputPath}
}
