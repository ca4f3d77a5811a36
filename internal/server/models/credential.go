package models

// Credential is the login record owned by this service: one row per employee,
// created on registration and mutated only by login-time hash migration or
// first-device binding.
type Credential struct {
	EmpID   string
	PINHash string
	// DeviceHash is empty until a device has been bound. Login only ever
	// compares it; rebinding requires an administrative re-seed.
	DeviceHash string
}

// DeviceBound reports whether a device has been bound to this credential.
func (c *Credential) DeviceBound() bool { return c.DeviceHash != "" }
