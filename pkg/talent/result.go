package talent

import "fmt"

// Action records a side effect a talent performed.
type Action struct {
	Action string `json:"action"`
	Text   string `json:"text,omitempty"`
	Target string `json:"target,omitempty"`
	Count  int    `json:"count,omitempty"`
}

// Result is the uniform outcome of Execute.
type Result struct {
	Success  bool     `json:"success"`
	Response string   `json:"response"`
	Actions  []Action `json:"actions_taken"`
	Spoken   bool     `json:"spoken"`
}

// OK builds a successful result with the given actions.
func OK(response string, actions ...Action) Result {
	if actions == nil {
		actions = []Action{}
	}
	return Result{Success: true, Response: response, Actions: actions}
}

// Fail builds a failed result. Failures never carry actions.
func Fail(response string) Result {
	return Result{Success: false, Response: response, Actions: []Action{}}
}

// Failf is Fail with formatting.
func Failf(format string, args ...any) Result {
	return Fail(fmt.Sprintf(format, args...))
}

// FailErr converts err into a failed result with a human readable response.
func FailErr(err error) Result {
	return Fail(Describe(err))
}
