package guard

import (
	"errors"
	"fmt"
	"strings"
)

// ErrImmutableRecord matches every Violation via errors.Is.
var ErrImmutableRecord = errors.New("immutable record")

// ViolationCode categorizes a rejected mutation.
type ViolationCode string

const (
	// CodeDeleteOfImmutableRecord: delete or deleteMany on an append-only kind.
	CodeDeleteOfImmutableRecord ViolationCode = "DELETE_OF_IMMUTABLE_RECORD"

	// CodeUpdateOfImmutableRecord: update or updateMany on an append-only
	// kind that has no partial-mutability rule.
	CodeUpdateOfImmutableRecord ViolationCode = "UPDATE_OF_IMMUTABLE_RECORD"

	// CodeFingerprintFieldMutation: update touching fields frozen at creation.
	CodeFingerprintFieldMutation ViolationCode = "FINGERPRINT_FIELD_MUTATION"
)

// Violation is the error carried by a rejected Decision.
//
// Violations are policy errors, not transient faults. Retrying the same
// mutation always yields the same Violation.
type Violation struct {
	Code      ViolationCode
	Kind      RecordKind
	Operation Operation

	// Fields holds the offending field names for CodeFingerprintFieldMutation.
	Fields FieldSet
}

// Error implements the error interface.
func (v *Violation) Error() string {
	switch v.Code {
	case CodeDeleteOfImmutableRecord:
		return fmt.Sprintf("%s: cannot %s %s: records are append-only (create a new record instead)",
			v.Code, v.Operation, v.Kind)
	case CodeUpdateOfImmutableRecord:
		return fmt.Sprintf("%s: cannot %s %s: records are append-only (create a new record or profile version instead)",
			v.Code, v.Operation, v.Kind)
	case CodeFingerprintFieldMutation:
		return fmt.Sprintf("%s: cannot change %s fields %s: archive data is immutable (create a new %s instead)",
			v.Code, v.Kind, strings.Join(v.Fields, ", "), v.Kind)
	}
	return fmt.Sprintf("%s: %s %s rejected", v.Code, v.Operation, v.Kind)
}

// Is makes errors.Is(err, ErrImmutableRecord) true for any Violation.
func (v *Violation) Is(target error) bool {
	return target == ErrImmutableRecord
}

// AsViolation extracts a Violation from err.
// Uses errors.As to handle wrapped errors.
func AsViolation(err error) (*Violation, bool) {
	var v *Violation
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}

// IsDeleteViolation reports whether err is a rejected delete.
func IsDeleteViolation(err error) bool {
	v, ok := AsViolation(err)
	return ok && v.Code == CodeDeleteOfImmutableRecord
}

// IsUpdateViolation reports whether err is a rejected update, including
// fingerprint mutations.
func IsUpdateViolation(err error) bool {
	v, ok := AsViolation(err)
	return ok && (v.Code == CodeUpdateOfImmutableRecord || v.Code == CodeFingerprintFieldMutation)
}
