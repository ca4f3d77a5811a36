package models

import "time"

// Session is an audit record of an issued token. Rows are written best-effort
// when session auditing is enabled; the token itself is stored only as a
// peppered digest.
type Session struct {
	EmpID      string
	DeviceHash string
	TokenHash  string
	ExpiresAt  time.Time
}
