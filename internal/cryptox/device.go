package cryptox

// DeviceBinding computes the deterministic one-way value that pins an
// employee's credential to a single client device. The pepper keeps the
// digest unguessable without the service secret.
func DeviceBinding(empID, deviceID, pepper string) string {
	return sha256Hex(pepper + "|" + empID + "|" + deviceID)
}

// TokenDigest hashes a session token for audit storage, so the audit table
// never holds a usable bearer token.
func TokenDigest(token, pepper string) string {
	return sha256Hex(pepper + "|" + token)
}
