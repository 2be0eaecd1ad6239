package model

import (
	"fmt"
	"time"
)

// Uptime is an elapsed duration broken down for display
type Uptime struct {
	Days    int
	Hours   int
	Minutes int
	Seconds int
}

// NewUptime splits d into days, hours, minutes and seconds
func NewUptime(d time.Duration) Uptime {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	return Uptime{
		Days:    total / 86400,
		Hours:   (total % 86400) / 3600,
		Minutes: (total % 3600) / 60,
		Seconds: total % 60,
	}
}

// Duration converts the breakdown back to a time.Duration
func (u Uptime) Duration() time.Duration {
	return time.Duration(u.Days)*24*time.Hour +
		time.Duration(u.Hours)*time.Hour +
		time.Duration(u.Minutes)*time.Minute +
		time.Duration(u.Seconds)*time.Second
}

func (u Uptime) String() string {
	if u.Days > 0 {
		return fmt.Sprintf("%dd %02d:%02d:%02d", u.Days, u.Hours, u.Minutes, u.Seconds)
	}
	return fmt.Sprintf("%02d:%02d:%02d", u.Hours, u.Minutes, u.Seconds)
}
