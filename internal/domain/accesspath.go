package domain

// PathStep is one hop of an access path: the entity the path passes through,
// tagged with its kind and optional free-form context.
type PathStep struct {
	Kind    StepKind `json:"kind"`
	ID      string   `json:"id,omitempty"`
	Name    string   `json:"name"`
	Context *string  `json:"context,omitempty"`
}

// AccessPath is an ordered hop-by-hop justification of reachability, from the
// identity at step 0 down to the credential or policy that unlocks the target.
type AccessPath struct {
	Type  AccessType `json:"access_type"`
	Steps []PathStep `json:"steps"`
}

// Last returns the final step of the path. Relationship-only paths end at the
// deepest entity the identity reaches (role, vault, or credential).
func (p *AccessPath) Last() *PathStep {
	if len(p.Steps) == 0 {
		return nil
	}
	return &p.Steps[len(p.Steps)-1]
}

// TargetAccess is one reachable target with every path that reaches it. A
// target reached by multiple paths accumulates them here rather than
// producing duplicate target rows.
type TargetAccess struct {
	Kind           TargetKind   `json:"kind"`
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	MatchedAddress *string      `json:"matched_address,omitempty"`
	VPCID          *string      `json:"vpc_id,omitempty"`
	Status         string       `json:"status,omitempty"`
	InstanceType   *string      `json:"instance_type,omitempty"`
	Engine         *string      `json:"engine,omitempty"`
	Paths          []AccessPath `json:"paths"`
}

// IdentityMapping is the per-identity resolution result: every reachable
// target with its accumulated paths, plus the relationship-only paths that
// never resolved to a target.
type IdentityMapping struct {
	Identity string         `json:"identity"`
	Targets  []TargetAccess `json:"targets"`
	// Unmatched holds standing relationship fan-out that reached no target:
	// credentials with unresolved or absent addresses, empty vaults, and
	// roles that lead to no vault.
	Unmatched []AccessPath `json:"unmatched_paths,omitempty"`
}

// HasAccess reports whether the identity resolved to anything at all.
// Identities with no targets and no relationship-only paths are skipped in
// the whole-graph view.
func (m *IdentityMapping) HasAccess() bool {
	return len(m.Targets) > 0 || len(m.Unmatched) > 0
}

// Summary holds whole-graph aggregate counts. Path counts are per path, not
// per target: one target reached two ways counts twice.
type Summary struct {
	IdentityCount     int `json:"identity_count"`
	TargetCount       int `json:"target_count"`
	StandingPathCount int `json:"standing_path_count"`
	JITPathCount      int `json:"jit_path_count"`
}

// GraphMapping is the whole-graph resolution result.
type GraphMapping struct {
	Identities []IdentityMapping `json:"identities"`
	Summary    Summary           `json:"summary"`
	// Partial is set when the resolution context was cancelled before every
	// identity was processed; the mapping covers identities completed so far.
	Partial bool `json:"partial,omitempty"`
}
