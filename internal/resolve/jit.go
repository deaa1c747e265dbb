package resolve

import (
	"accessmap/internal/domain"
	"accessmap/internal/match"
	"accessmap/internal/snapshot"
)

// JIT walks Identity -> [Role] -> Policy -> matched targets. Inactive and
// deleted policies are excluded before matching; a policy matching zero
// targets contributes nothing, since the policy-to-target relationship has
// no meaning without a concrete target.
func JIT(snap *snapshot.Snapshot, identity string) []TargetHit {
	var hits []TargetHit

	type policyGrant struct {
		policy *domain.Policy
		role   string
	}
	var grants []policyGrant
	seen := make(map[string]bool)

	// Direct principal assignment takes precedence over role-derived.
	for _, policy := range snap.ActivePolicies([]string{identity}, domain.MemberKindIdentity) {
		if seen[policy.ID] {
			continue
		}
		seen[policy.ID] = true
		grants = append(grants, policyGrant{policy: policy})
	}
	for _, role := range snap.RolesOf(identity) {
		for _, policy := range snap.ActivePolicies([]string{role}, domain.MemberKindRole) {
			if seen[policy.ID] {
				continue
			}
			seen[policy.ID] = true
			grants = append(grants, policyGrant{policy: policy, role: role})
		}
	}

	targets := snap.AllTargets()
	for _, grant := range grants {
		steps := []domain.PathStep{identityStep(identity)}
		if grant.role != "" {
			steps = append(steps, roleStep(grant.role))
		}
		steps = append(steps, policyStep(grant.policy))

		for i := range targets {
			target := &targets[i]
			if !match.Matches(target, &grant.policy.Criteria) {
				continue
			}
			hits = append(hits, TargetHit{
				Target: target,
				Path:   domain.AccessPath{Type: domain.AccessTypeJIT, Steps: steps},
			})
		}
	}

	return hits
}
