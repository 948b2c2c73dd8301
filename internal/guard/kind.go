package guard

import "fmt"

// RecordKind identifies a class of record in the datastore.
type RecordKind string

// Append-only kinds.
const (
	KindSource         RecordKind = "Source"
	KindStatement      RecordKind = "Statement"
	KindAffiliation    RecordKind = "Affiliation"
	KindAuditLog       RecordKind = "AuditLog"
	KindProfileVersion RecordKind = "ProfileVersion"
)

// Mutable kinds.
const (
	KindElectionCycle   RecordKind = "ElectionCycle"
	KindDistrict        RecordKind = "District"
	KindElectoralList   RecordKind = "ElectoralList"
	KindCandidate       RecordKind = "Candidate"
	KindElectoralCenter RecordKind = "ElectoralCenter"
	KindTopic           RecordKind = "Topic"
	KindUser            RecordKind = "User"
)

// ImmutableKinds lists the append-only kinds in a stable order.
var ImmutableKinds = []RecordKind{
	KindSource,
	KindStatement,
	KindAffiliation,
	KindAuditLog,
	KindProfileVersion,
}

// AllKinds lists every kind known to the data-access layer.
var AllKinds = []RecordKind{
	KindSource,
	KindStatement,
	KindAffiliation,
	KindAuditLog,
	KindProfileVersion,
	KindElectionCycle,
	KindDistrict,
	KindElectoralList,
	KindCandidate,
	KindElectoralCenter,
	KindTopic,
	KindUser,
}

// ParseKind converts a kind name to a RecordKind.
func ParseKind(s string) (RecordKind, error) {
	for _, k := range AllKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown record kind %q", s)
}

// Operation is the write intent of a mutation.
type Operation string

const (
	OpCreate     Operation = "create"
	OpUpdate     Operation = "update"
	OpUpdateMany Operation = "updateMany"
	OpDelete     Operation = "delete"
	OpDeleteMany Operation = "deleteMany"
)

// Operations lists every operation in a stable order.
var Operations = []Operation{OpCreate, OpUpdate, OpUpdateMany, OpDelete, OpDeleteMany}

// ParseOperation converts an operation name to an Operation.
func ParseOperation(s string) (Operation, error) {
	for _, op := range Operations {
		if string(op) == s {
			return op, nil
		}
	}
	return "", fmt.Errorf("unknown operation %q", s)
}

// IsDelete reports whether op removes records.
func (op Operation) IsDelete() bool {
	return op == OpDelete || op == OpDeleteMany
}

// IsUpdate reports whether op changes existing records.
func (op Operation) IsUpdate() bool {
	return op == OpUpdate || op == OpUpdateMany
}
