// Package ipc is the local control plane: a unix socket over which a running
// session answers status queries and accepts the explicit end signal.
package ipc

// Request is one control command. Supported commands: "status", "stop",
// "leave".
type Request struct {
	Command string `json:"command"`
}

// Response reports the running session's view of the command.
type Response struct {
	OK        bool     `json:"ok"`
	Milestone string   `json:"milestone,omitempty"`
	History   []string `json:"history,omitempty"`
	Message   string   `json:"message,omitempty"`
	Error     string   `json:"error,omitempty"`
}
