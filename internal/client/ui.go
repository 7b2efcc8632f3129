package client

import "github.com/fatih/color"

var (
	success = color.New(color.FgGreen)
	failure = color.New(color.FgRed)
	warning = color.New(color.FgYellow)
	muted   = color.New(color.Faint)
)

func okMark(ok bool) string {
	if ok {
		return success.Sprint("✓")
	}
	return failure.Sprint("✗")
}
