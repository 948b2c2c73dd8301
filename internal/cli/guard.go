package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/daleel/internal/guard"
)

// GuardCheckResult is the output of guard check.
type GuardCheckResult struct {
	Kind      guard.RecordKind    `json:"kind"`
	Operation guard.Operation     `json:"operation"`
	Fields    guard.FieldSet      `json:"fields"`
	Allowed   bool                `json:"allowed"`
	Code      guard.ViolationCode `json:"code,omitempty"`
	Offending guard.FieldSet      `json:"offendingFields,omitempty"`
	Message   string              `json:"message,omitempty"`
}

func (r GuardCheckResult) String() string {
	if r.Allowed {
		return fmt.Sprintf("ALLOW %s %s %s", r.Operation, r.Kind, r.Fields)
	}
	return fmt.Sprintf("REJECT %s", r.Message)
}

// PolicyEntry describes how the policy treats one kind.
type PolicyEntry struct {
	Kind        guard.RecordKind `json:"kind"`
	Immutable   bool             `json:"immutable"`
	Fingerprint guard.FieldSet   `json:"fingerprint,omitempty"`
}

// PolicyTable is the output of guard policy.
type PolicyTable []PolicyEntry

func (t PolicyTable) String() string {
	var b strings.Builder
	for _, e := range t {
		switch {
		case !e.Immutable:
			fmt.Fprintf(&b, "%-16s mutable\n", e.Kind)
		case e.Fingerprint != nil:
			fmt.Fprintf(&b, "%-16s append-only, metadata updates allowed; frozen %s\n", e.Kind, e.Fingerprint)
		default:
			fmt.Fprintf(&b, "%-16s append-only\n", e.Kind)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// NewGuardCommand creates the guard command group.
func NewGuardCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "guard",
		Short: "Inspect the immutability policy",
	}
	cmd.AddCommand(newGuardCheckCommand(rootOpts))
	cmd.AddCommand(newGuardPolicyCommand(rootOpts))
	return cmd
}

func newGuardCheckCommand(rootOpts *RootOptions) *cobra.Command {
	var kind, op string
	var fields []string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Evaluate a mutation against the policy",
		Long: `Evaluate a mutation against the immutability policy without touching a
database. Exits 0 when the mutation is allowed and 1 when it is rejected.

Example:
  daleel guard check --kind Source --op update --field title
  daleel guard check --kind Source --op update --field archivedUrl --format json
  daleel guard check --kind Statement --op deleteMany`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)

			k, err := guard.ParseKind(kind)
			if err != nil {
				return f.Fail(ExitCommandError, ErrCodeArgument, "invalid --kind", err)
			}
			o, err := guard.ParseOperation(op)
			if err != nil {
				return f.Fail(ExitCommandError, ErrCodeArgument, "invalid --op", err)
			}

			req := guard.MutationRequest{Kind: k, Operation: o, Fields: guard.NewFieldSet(fields...)}
			res := evaluate(guard.Default(), req)
			if err := f.Success(res); err != nil {
				return err
			}
			if !res.Allowed {
				return NewExitError(ExitFailure, res.Message)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "record kind, e.g. Source")
	cmd.Flags().StringVar(&op, "op", "", "operation: create, update, updateMany, delete, deleteMany")
	cmd.Flags().StringSliceVar(&fields, "field", nil, "changed field (repeatable)")
	_ = cmd.MarkFlagRequired("kind")
	_ = cmd.MarkFlagRequired("op")

	return cmd
}

func evaluate(e guard.Evaluator, req guard.MutationRequest) GuardCheckResult {
	res := GuardCheckResult{Kind: req.Kind, Operation: req.Operation, Fields: req.Fields, Allowed: true}
	if res.Fields == nil {
		res.Fields = guard.FieldSet{}
	}
	if v := e.Evaluate(req).Violation(); v != nil {
		res.Allowed = false
		res.Code = v.Code
		res.Offending = v.Fields
		res.Message = v.Error()
	}
	return res
}

func newGuardPolicyCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "policy",
		Short:         "Print how each record kind is protected",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.formatter(cmd).Success(policyTable(guard.Default()))
		},
	}
}

func policyTable(p *guard.Policy) PolicyTable {
	table := make(PolicyTable, 0, len(guard.AllKinds))
	for _, k := range guard.AllKinds {
		e := PolicyEntry{Kind: k, Immutable: p.IsImmutable(k)}
		if fp, ok := p.Fingerprint(k); ok {
			e.Fingerprint = fp
		}
		table = append(table, e)
	}
	return table
}
