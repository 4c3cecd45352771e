package chart

import "fmt"

// RenderError reports a chart whose input was empty or malformed, or whose
// artifact could not be written.
type RenderError struct {
	Chart  string
	Reason string
	Err    error
}

func (e *RenderError) Error() string {
	switch {
	case e.Err != nil && e.Reason != "":
		return fmt.Sprintf("render %s: %s: %v", e.Chart, e.Reason, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("render %s: %v", e.Chart, e.Err)
	default:
		return fmt.Sprintf("render %s: %s", e.Chart, e.Reason)
	}
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

func emptyInput(chart, what string) error {
	return &RenderError{Chart: chart, Reason: "no " + what + " to plot"}
}

func failed(chart string, err error) error {
	return &RenderError{Chart: chart, Err: err}
}
