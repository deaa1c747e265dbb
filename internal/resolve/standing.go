package resolve

import (
	"accessmap/internal/domain"
	"accessmap/internal/logging"
	"accessmap/internal/snapshot"
)

// Standing walks Identity -> [Role] -> Vault -> Credential -> Target and
// returns the resolved (target, path) hits plus the relationship-only paths
// that never reached a target. Every hop of the identity's fan-out stays
// observable: credentials with unresolved or absent addresses, vaults with
// zero credentials, and roles that lead to no vault each emit a
// relationship-only path.
func Standing(snap *snapshot.Snapshot, identity string) ([]TargetHit, []domain.AccessPath) {
	var hits []TargetHit
	var unmatched []domain.AccessPath

	roles := snap.RolesOf(identity)

	// Direct membership takes precedence: a vault reached both directly and
	// via a role produces only the direct path.
	directVaults := snap.VaultsOf(identity, domain.MemberKindIdentity)
	direct := make(map[string]bool, len(directVaults))
	for _, vault := range directVaults {
		direct[vault] = true
	}

	type roleVault struct {
		vault string
		role  string
	}
	var roleVaults []roleVault
	claimed := make(map[string]bool)
	rolesWithVaults := make(map[string]bool)
	for _, role := range roles {
		for _, vault := range snap.VaultsOf(role, domain.MemberKindRole) {
			rolesWithVaults[role] = true
			if direct[vault] || claimed[vault] {
				continue
			}
			claimed[vault] = true
			roleVaults = append(roleVaults, roleVault{vault: vault, role: role})
		}
	}

	resolveVault := func(vault string, viaRole string) {
		prefix := []domain.PathStep{identityStep(identity)}
		if viaRole != "" {
			prefix = append(prefix, roleStep(viaRole))
		}
		prefix = append(prefix, vaultStep(vault))

		credentials := snap.CredentialsOf(vault)
		if len(credentials) == 0 {
			unmatched = append(unmatched, domain.AccessPath{
				Type:  domain.AccessTypeStanding,
				Steps: prefix,
			})
			return
		}

		for i := range credentials {
			cred := &credentials[i]
			var target *domain.Target
			var matchedField string
			if cred.Address != nil && *cred.Address != "" {
				target, matchedField, _ = snap.ResolveAddress(*cred.Address)
			}

			steps := make([]domain.PathStep, len(prefix), len(prefix)+1)
			copy(steps, prefix)
			steps = append(steps, credentialStep(cred, matchedField))
			path := domain.AccessPath{Type: domain.AccessTypeStanding, Steps: steps}

			if target == nil {
				if cred.Address != nil && *cred.Address != "" {
					logging.GetMetrics().RecordSkip("unresolved_credential_address")
				}
				unmatched = append(unmatched, path)
				continue
			}
			hits = append(hits, TargetHit{
				Target:         target,
				Path:           path,
				MatchedAddress: cred.Address,
			})
		}
	}

	for _, vault := range directVaults {
		resolveVault(vault, "")
	}
	for _, rv := range roleVaults {
		resolveVault(rv.vault, rv.role)
	}

	// Roles that lead to no vault at all still show up in the fan-out.
	for _, role := range roles {
		if rolesWithVaults[role] {
			continue
		}
		unmatched = append(unmatched, domain.AccessPath{
			Type:  domain.AccessTypeStanding,
			Steps: []domain.PathStep{identityStep(identity), roleStep(role)},
		})
	}

	return hits, unmatched
}
