package guard

// Decision is the verdict for one MutationRequest.
// The zero value allows the mutation.
type Decision struct {
	violation *Violation
}

// Allow returns an allowing Decision.
func Allow() Decision {
	return Decision{}
}

// Reject returns a Decision carrying v.
func Reject(v *Violation) Decision {
	return Decision{violation: v}
}

// Allowed reports whether the mutation may reach the datastore.
func (d Decision) Allowed() bool {
	return d.violation == nil
}

// Violation returns the reason for a rejection, or nil.
func (d Decision) Violation() *Violation {
	return d.violation
}

// Err returns the Violation as an error, or nil when allowed.
func (d Decision) Err() error {
	if d.violation == nil {
		return nil
	}
	return d.violation
}

// String renders the decision for logs and CLI output.
func (d Decision) String() string {
	if d.violation == nil {
		return "ALLOW"
	}
	if d.violation.Code == CodeFingerprintFieldMutation {
		return "REJECT " + string(d.violation.Code) + " " + d.violation.Fields.String()
	}
	return "REJECT " + string(d.violation.Code)
}
