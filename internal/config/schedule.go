package config

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

var cronParser = cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ParseSchedule parses a cron spec such as "@every 1h" or "0 0 * * * *".
// Specs that can never fire (e.g. Feb 30) are rejected.
func ParseSchedule(field, spec string) (cron.Schedule, error) {
	sched, err := cronParser.Parse(spec)
	if err != nil {
		return nil, &Error{Field: field, Msg: fmt.Sprintf("invalid cron spec %q", spec), Err: err}
	}
	if sched.Next(time.Now()).IsZero() {
		return nil, &Error{Field: field, Msg: fmt.Sprintf("cron spec %q never fires", spec)}
	}
	return sched, nil
}
