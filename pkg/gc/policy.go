// ABOUTME: Garbage collection policy types specifying which data to retain and which to compact away
// ABOUTME: Policies render to a canonical text form and compile into streaming retention determiners

// Package gc implements policy-driven garbage collection over sorted
// key-timestamp streams.
//
// The same policy text is evaluated in two places: the process rewriting
// data applies it, and a separate verifier re-derives the retained set
// before old inputs are unlinked. Specifying the policy twice is what lets
// the two sides skew across releases safely:
//
//   - When updating to a policy that retains more data, update the writer
//     first. The verifier will allow the extra rows to be retained.
//   - When updating to a policy that deletes more data, update the verifier
//     first. The writer will retain excess data, which the verifier allows.
//   - Policy updates must follow such an incremental path, or both sides
//     must be updated together.
package gc

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidPolicy indicates a policy with out-of-range parameters
var ErrInvalidPolicy = errors.New("invalid garbage collection policy")

// Policy specifies which data to retain and which data to compact away.
// Policies are immutable values; Parse and String round-trip the canonical
// text form.
type Policy interface {
	fmt.Stringer

	// Validate checks the policy's parameters
	Validate() error

	// Determiner compiles the policy into a streaming retention decision
	// relative to the given current time in microseconds
	Determiner(nowMicros uint64) Determiner
}

// Versions retains at least Count versions of each key.
//
// Versions are defined as follows:
//
//   - A non-tombstone value.
//   - The oldest tombstone (lowest timestamp) in a run of tombstones,
//     together with the value it covers. Such a pair counts as two
//     versions.
//
// A sequence of [TOMBSTONE@3, TOMBSTONE@2, TOMBSTONE@1, VALUE@0] with
// Count == 2 becomes [TOMBSTONE@1, VALUE@0].
//
// A sequence of [VALUE@3, TOMBSTONE@2, TOMBSTONE@1, TOMBSTONE@0] with
// Count == 2 becomes [VALUE@3] and the tombstones are dropped.
type Versions struct {
	// Count is the minimum number of versions to retain. After this many
	// versions are retained, data may be thrown away.
	Count uint64
}

func (v Versions) String() string {
	return fmt.Sprintf("versions = %d", v.Count)
}

// Validate checks the policy's parameters
func (v Versions) Validate() error {
	if v.Count == 0 {
		return fmt.Errorf("%w: versions count must be non-zero", ErrInvalidPolicy)
	}
	return nil
}

// Determiner compiles the policy into a streaming retention decision
func (v Versions) Determiner(nowMicros uint64) Determiner {
	return &versionsDeterminer{limit: v.Count}
}

// Expires retains data fresher than an age threshold.
//
// A sequence of [VALUE@3, TOMBSTONE@2, TOMBSTONE@1, TOMBSTONE@0] with
// now - MaxAgeMicros = 1 becomes [VALUE@3] and the tombstones are dropped.
//
// A sequence of [TOMBSTONE@3, TOMBSTONE@2, TOMBSTONE@1, VALUE@0] with
// now - MaxAgeMicros = 1 retains nothing.
type Expires struct {
	// MaxAgeMicros is the number of microseconds in the past that
	// specifies the threshold for data retention.
	MaxAgeMicros uint64
}

func (e Expires) String() string {
	return fmt.Sprintf("ttl_micros = %d", e.MaxAgeMicros)
}

// Validate checks the policy's parameters
func (e Expires) Validate() error {
	if e.MaxAgeMicros == 0 {
		return fmt.Errorf("%w: ttl_micros must be non-zero", ErrInvalidPolicy)
	}
	return nil
}

// Determiner compiles the policy into a streaming retention decision
func (e Expires) Determiner(nowMicros uint64) Determiner {
	threshold := uint64(0)
	if nowMicros > e.MaxAgeMicros {
		threshold = nowMicros - e.MaxAgeMicros
	}
	return &expiresDeterminer{threshold: threshold}
}

// Any retains data when any of its member policies would retain it.
type Any struct {
	// Policies is the list of member policies
	Policies []Policy
}

func (a Any) String() string {
	return "any(" + joinPolicies(a.Policies) + ")"
}

// Validate checks every member policy
func (a Any) Validate() error {
	for _, p := range a.Policies {
		if err := p.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Determiner compiles the policy into a streaming retention decision
func (a Any) Determiner(nowMicros uint64) Determiner {
	members := make([]Determiner, len(a.Policies))
	for i, p := range a.Policies {
		members[i] = p.Determiner(nowMicros)
	}
	return &anyDeterminer{members: members}
}

// All retains data only when all of its member policies would retain it.
type All struct {
	// Policies is the list of member policies
	Policies []Policy
}

func (a All) String() string {
	return "all(" + joinPolicies(a.Policies) + ")"
}

// Validate checks every member policy
func (a All) Validate() error {
	for _, p := range a.Policies {
		if err := p.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Determiner compiles the policy into a streaming retention decision
func (a All) Determiner(nowMicros uint64) Determiner {
	members := make([]Determiner, len(a.Policies))
	for i, p := range a.Policies {
		members[i] = p.Determiner(nowMicros)
	}
	return &allDeterminer{members: members}
}

func joinPolicies(policies []Policy) string {
	parts := make([]string, len(policies))
	for i, p := range policies {
		parts[i] = p.String()
	}
	return strings.Join(parts, ", ")
}
