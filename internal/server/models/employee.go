// Package models holds the persistence-layer records shared by repositories
// and services.
package models

import "time"

// StatusResigned is the employment-status marker written by the upstream HR
// export for employees who have left. Any other status counts as active.
const StatusResigned = "ลาออก"

// Employee is a row of the employee directory. The directory is maintained
// by HR tooling; this service only reads it.
type Employee struct {
	EmpID  string
	Status string
	// DOB is used once, as the enrollment secret during registration.
	// Nil when the directory has no recorded date.
	DOB *time.Time
}

// Active reports whether the employee may authenticate.
func (e *Employee) Active() bool {
	return e.Status != StatusResigned
}

// DOBString renders the recorded date of birth as YYYY-MM-DD, or "" when
// absent. Registration compares this against the caller-supplied value.
func (e *Employee) DOBString() string {
	if e.DOB == nil {
		return ""
	}
	return e.DOB.Format("2006-01-02")
}
