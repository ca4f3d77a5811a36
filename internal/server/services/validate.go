package services

import (
	"regexp"
	"strings"
)

var (
	empIDPattern  = regexp.MustCompile(`^[A-Z0-9_-]{4,32}$`)
	pinPattern    = regexp.MustCompile(`^\d{6}$`)
	nonDigitChars = regexp.MustCompile(`\D`)
)

// NormalizeEmpID trims and uppercases an employee id.
func NormalizeEmpID(v string) string {
	return strings.ToUpper(strings.TrimSpace(v))
}

// NormalizePIN strips everything but digits, so PINs typed with separators
// or sent as numbers still validate.
func NormalizePIN(v string) string {
	return nonDigitChars.ReplaceAllString(v, "")
}

// NormalizeDeviceID trims a device identifier.
func NormalizeDeviceID(v string) string {
	return strings.TrimSpace(v)
}

// ValidEmpID reports whether a normalized employee id matches the directory
// id shape.
func ValidEmpID(empID string) bool {
	return empIDPattern.MatchString(empID)
}

// ValidPIN reports whether a normalized PIN is exactly 6 digits.
func ValidPIN(pin string) bool {
	return pinPattern.MatchString(pin)
}

// ValidDeviceID enforces the device-identifier length policy.
func ValidDeviceID(deviceID string) bool {
	return len(deviceID) >= 8 && len(deviceID) <= 256
}
