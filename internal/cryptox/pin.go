// Package cryptox implements the credential primitives of the auth service:
// PIN hashing with iterated key derivation, legacy hash verification, and the
// one-way device-binding digest.
package cryptox

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/iammonth1997/tdlao-hr-web/internal/common"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// PINIterations is embedded into every new hash, so raising it later
	// leaves previously stored hashes verifiable at their original count.
	PINIterations = 100000

	pinKeyBytes  = 32
	pinSaltBytes = 16

	pbkdf2Prefix = "pbkdf2$sha256$"
)

// HashVariant identifies the format of a stored PIN hash. Legacy variants
// exist only for data seeded before the PBKDF2 scheme and are upgraded on
// the first successful login.
type HashVariant int

const (
	VariantUnknown HashVariant = iota
	// VariantPBKDF2 is the current scheme: pbkdf2$sha256$<iter>$<salt>$<key>.
	VariantPBKDF2
	// VariantLegacySHA256 is a bare hex sha256(pin).
	VariantLegacySHA256
	// VariantLegacyPeppered is a hex sha256(pin + ":" + pepper).
	VariantLegacyPeppered
)

// IsCurrent reports whether the variant is the current PBKDF2 scheme.
func (v HashVariant) IsCurrent() bool { return v == VariantPBKDF2 }

// HashPIN derives a salted PBKDF2-SHA256 hash of the PIN mixed with the
// service pepper and returns the self-describing encoded form. The salt is
// fresh on every call, so two hashes of the same PIN never match.
func HashPIN(pin, pepper string) string {
	salt := common.GenerateRandByteArray(pinSaltBytes)
	key := deriveKey(pin, pepper, salt, PINIterations, pinKeyBytes)
	return fmt.Sprintf("%s%d$%s$%s",
		pbkdf2Prefix,
		PINIterations,
		base64.RawURLEncoding.EncodeToString(salt),
		base64.RawURLEncoding.EncodeToString(key),
	)
}

// VerifyPIN checks the PIN against a stored hash in any supported format and
// reports which variant matched the encoding. All comparisons are constant
// time.
func VerifyPIN(pin, encoded, pepper string) (bool, HashVariant) {
	variant := Classify(encoded)

	switch variant {
	case VariantPBKDF2:
		return verifyPBKDF2(pin, encoded, pepper), variant
	case VariantLegacySHA256, VariantLegacyPeppered:
		return verifyLegacy(pin, encoded, pepper), variant
	default:
		return false, variant
	}
}

// Classify parses the stored hash encoding into its variant tag without
// touching the PIN. Unknown encodings never verify.
func Classify(encoded string) HashVariant {
	if strings.HasPrefix(encoded, pbkdf2Prefix) {
		return VariantPBKDF2
	}
	legacy := strings.ToLower(strings.TrimSpace(encoded))
	if len(legacy) != sha256.Size*2 {
		return VariantUnknown
	}
	if _, err := hex.DecodeString(legacy); err != nil {
		return VariantUnknown
	}
	// Bare and peppered legacy digests are indistinguishable from the
	// encoding alone; verifyLegacy tries both.
	return VariantLegacySHA256
}

func verifyPBKDF2(pin, encoded, pepper string) bool {
	parts := strings.Split(encoded, "$")
	if len(parts) != 5 {
		return false
	}

	iterations, err := strconv.Atoi(parts[2])
	if err != nil || iterations <= 0 {
		return false
	}
	salt, err := base64.RawURLEncoding.DecodeString(parts[3])
	if err != nil || len(salt) == 0 {
		return false
	}
	expected, err := base64.RawURLEncoding.DecodeString(parts[4])
	if err != nil || len(expected) == 0 {
		return false
	}

	actual := deriveKey(pin, pepper, salt, iterations, len(expected))
	return subtle.ConstantTimeCompare(actual, expected) == 1
}

func verifyLegacy(pin, encoded, pepper string) bool {
	stored := []byte(strings.ToLower(strings.TrimSpace(encoded)))
	plain := []byte(sha256Hex(pin))
	peppered := []byte(sha256Hex(pin + ":" + pepper))

	plainOK := subtle.ConstantTimeCompare(stored, plain) == 1
	pepperedOK := subtle.ConstantTimeCompare(stored, peppered) == 1
	return plainOK || pepperedOK
}

func deriveKey(pin, pepper string, salt []byte, iterations, keyLen int) []byte {
	secret := pin + ":" + pepper
	return pbkdf2.Key([]byte(secret), salt, iterations, keyLen, sha256.New)
}

func sha256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
