package guard

// SourceFingerprint lists the Source fields that identify an archived copy.
// They are frozen once the Source is created.
var SourceFingerprint = NewFieldSet("originUrl", "archivedUrl", "archivedAt", "archiveMethod")

// MutationRequest describes an attempted write.
type MutationRequest struct {
	Kind      RecordKind
	Operation Operation

	// Fields is the complete set of field names in the change payload.
	// Ignored for create and delete variants.
	Fields FieldSet
}

// KindRule makes an immutable kind partially mutable: updates are allowed
// as long as they leave every Fingerprint field alone.
type KindRule struct {
	Kind        RecordKind
	Fingerprint FieldSet
}

// Evaluator is implemented by anything that can judge a MutationRequest.
type Evaluator interface {
	Evaluate(req MutationRequest) Decision
}

// Policy is the immutability table. Build it with NewPolicy or Default and
// treat it as read-only afterwards.
type Policy struct {
	immutable map[RecordKind]bool
	rules     map[RecordKind]FieldSet
}

// NewPolicy builds a Policy protecting kinds. Rules for kinds that are not
// in kinds are ignored.
func NewPolicy(kinds []RecordKind, rules ...KindRule) *Policy {
	p := &Policy{
		immutable: make(map[RecordKind]bool, len(kinds)),
		rules:     make(map[RecordKind]FieldSet, len(rules)),
	}
	for _, k := range kinds {
		p.immutable[k] = true
	}
	for _, r := range rules {
		if !p.immutable[r.Kind] {
			continue
		}
		p.rules[r.Kind] = NewFieldSet(r.Fingerprint...)
	}
	return p
}

// Default returns the Daleel policy: every ImmutableKinds member is
// append-only, and Source accepts metadata updates outside SourceFingerprint.
func Default() *Policy {
	return NewPolicy(ImmutableKinds, KindRule{Kind: KindSource, Fingerprint: SourceFingerprint})
}

// IsImmutable reports whether kind is protected by the policy.
func (p *Policy) IsImmutable(kind RecordKind) bool {
	return p.immutable[kind]
}

// Fingerprint returns the frozen fields of a partially mutable kind.
// ok is false when the kind accepts no updates at all, or is not protected.
func (p *Policy) Fingerprint(kind RecordKind) (fields FieldSet, ok bool) {
	fields, ok = p.rules[kind]
	return fields, ok
}

// Evaluate returns the verdict for req. It reads nothing but req and the
// policy table, so identical requests always get identical decisions.
func (p *Policy) Evaluate(req MutationRequest) Decision {
	if req.Operation == OpCreate {
		return Allow()
	}
	if !p.immutable[req.Kind] {
		return Allow()
	}

	if req.Operation.IsDelete() {
		return Reject(&Violation{
			Code:      CodeDeleteOfImmutableRecord,
			Kind:      req.Kind,
			Operation: req.Operation,
		})
	}

	fingerprint, partial := p.rules[req.Kind]
	if !req.Operation.IsUpdate() || !partial {
		// Unknown operations on protected kinds fail closed.
		return Reject(&Violation{
			Code:      CodeUpdateOfImmutableRecord,
			Kind:      req.Kind,
			Operation: req.Operation,
		})
	}

	fields := req.Fields
	if !isSorted(fields) {
		fields = NewFieldSet(fields...)
	}
	if offending := fields.Intersect(fingerprint); !offending.Empty() {
		return Reject(&Violation{
			Code:      CodeFingerprintFieldMutation,
			Kind:      req.Kind,
			Operation: req.Operation,
			Fields:    offending,
		})
	}
	return Allow()
}

// isSorted reports whether s is strictly increasing, i.e. a valid FieldSet.
func isSorted(s FieldSet) bool {
	for i := 1; i < len(s); i++ {
		if s[i-1] >= s[i] {
			return false
		}
	}
	return true
}
