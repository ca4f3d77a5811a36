package models

// SeedRecord is one administrative provisioning entry: a PIN (and optionally
// a pre-bound device) for an employee. DeviceID may be empty, leaving the
// credential unbound until the first successful login.
type SeedRecord struct {
	EmpID    string `json:"emp_id"`
	PIN      string `json:"pin"`
	DeviceID string `json:"device_id,omitempty"`
}

// SeedError reports why one record of a seed batch was rejected.
type SeedError struct {
	EmpID string `json:"emp_id,omitempty"`
	Error string `json:"error"`
}

// SeedSummary is the outcome of a seed batch: successes, failures, and the
// per-record reasons.
type SeedSummary struct {
	OK     int         `json:"ok"`
	Failed int         `json:"failed"`
	Errors []SeedError `json:"errors"`
}
