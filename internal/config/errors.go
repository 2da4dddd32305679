package config

import "fmt"

// Error reports malformed or missing configuration. Runs must not start with one.
type Error struct {
	Field string
	Msg   string
	Err   error
}

func (e *Error) Error() string {
	s := "config"
	if e.Field != "" {
		s += " " + e.Field
	}
	s += ": " + e.Msg
	if e.Err != nil {
		s = fmt.Sprintf("%s: %v", s, e.Err)
	}
	return s
}

func (e *Error) Unwrap() error { return e.Err }
