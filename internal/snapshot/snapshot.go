package snapshot

import (
	"sort"
	"strings"

	"accessmap/internal/domain"
	"accessmap/internal/logging"
)

// Data holds the raw relationship and inventory records a snapshot is built
// from. Collectors produce these on each inventory refresh; the engine treats
// them as immutable for the duration of one resolution batch.
type Data struct {
	Roles            []domain.Role
	RoleMemberships  []domain.RoleMembership
	Vaults           []domain.Vault
	VaultMemberships []domain.VaultMembership
	Credentials      []domain.Credential
	Policies         []domain.Policy
	Principals       []domain.PolicyPrincipal
	Targets          []domain.Target
}

type memberKey struct {
	name string
	kind domain.MemberKind
}

type addressHit struct {
	target *domain.Target
	field  string
}

// Snapshot is a point-in-time, read-only view of the relationship and
// inventory stores, indexed for resolution. Build one per resolution batch
// with New and share it across identities; all methods are safe for
// concurrent use because the snapshot is never mutated after construction.
type Snapshot struct {
	roleNamesByID       map[string]string
	roleNamesByIdentity map[string][]string
	vaultNames          map[string]bool
	membersByVault      map[string][]domain.VaultMembership
	vaultsByMember      map[memberKey][]string
	credentialsByVault  map[string][]domain.Credential
	principalsByPolicy  map[string][]domain.PolicyPrincipal
	policiesByPrincipal map[memberKey][]*domain.Policy
	targets             []domain.Target
	addressIndex        map[string]addressHit
	identities          []string
}

// New builds an indexed snapshot from raw records. Data-quality gaps
// (credentials referencing a missing vault, duplicate role display names) are
// tolerated and logged at debug level, never fatal.
func New(data Data) *Snapshot {
	s := &Snapshot{
		roleNamesByID:       make(map[string]string),
		roleNamesByIdentity: make(map[string][]string),
		vaultNames:          make(map[string]bool),
		membersByVault:      make(map[string][]domain.VaultMembership),
		vaultsByMember:      make(map[memberKey][]string),
		credentialsByVault:  make(map[string][]domain.Credential),
		principalsByPolicy:  make(map[string][]domain.PolicyPrincipal),
		policiesByPrincipal: make(map[memberKey][]*domain.Policy),
		addressIndex:        make(map[string]addressHit),
	}

	seenRoleNames := make(map[string]bool)
	for _, role := range data.Roles {
		if seenRoleNames[role.Name] {
			logging.LogDebug("Duplicate role display name; membership matching will alias these roles", map[string]interface{}{
				"role_name": role.Name,
			})
		}
		seenRoleNames[role.Name] = true
		s.roleNamesByID[role.ID] = role.Name
	}

	identitySet := make(map[string]bool)
	for _, rm := range data.RoleMemberships {
		identitySet[rm.IdentityName] = true
		roleName, ok := s.roleNamesByID[rm.RoleID]
		if !ok {
			continue
		}
		s.roleNamesByIdentity[rm.IdentityName] = appendUnique(s.roleNamesByIdentity[rm.IdentityName], roleName)
	}

	for _, vault := range data.Vaults {
		s.vaultNames[vault.Name] = true
	}
	for _, vm := range data.VaultMemberships {
		if vm.MemberKind == domain.MemberKindIdentity {
			identitySet[vm.MemberName] = true
		}
		s.membersByVault[vm.VaultName] = append(s.membersByVault[vm.VaultName], vm)
		key := memberKey{name: vm.MemberName, kind: vm.MemberKind}
		s.vaultsByMember[key] = appendUnique(s.vaultsByMember[key], vm.VaultName)
	}

	for _, cred := range data.Credentials {
		// Unresolvable vault references are excluded from traversal
		if !s.vaultNames[cred.VaultName] {
			logging.LogDebug("Credential references unknown vault; excluded from traversal", map[string]interface{}{
				"credential_id": cred.ID,
				"vault_name":    cred.VaultName,
			})
			continue
		}
		s.credentialsByVault[cred.VaultName] = append(s.credentialsByVault[cred.VaultName], cred)
	}

	activeByID := make(map[string]*domain.Policy)
	for i := range data.Policies {
		policy := &data.Policies[i]
		if !policy.Active || policy.Deleted {
			continue
		}
		activeByID[policy.ID] = policy
	}
	for _, pp := range data.Principals {
		if pp.PrincipalKind == domain.MemberKindIdentity {
			identitySet[pp.PrincipalName] = true
		}
		s.principalsByPolicy[pp.PolicyID] = append(s.principalsByPolicy[pp.PolicyID], pp)
		policy, ok := activeByID[pp.PolicyID]
		if !ok {
			continue
		}
		key := memberKey{name: pp.PrincipalName, kind: pp.PrincipalKind}
		s.policiesByPrincipal[key] = append(s.policiesByPrincipal[key], policy)
	}

	for _, target := range data.Targets {
		if target.Deleted {
			continue
		}
		s.targets = append(s.targets, target)
	}
	s.indexAddresses()

	s.identities = make([]string, 0, len(identitySet))
	for name := range identitySet {
		s.identities = append(s.identities, name)
	}
	sort.Strings(s.identities)

	return s
}

// indexAddresses builds the credential-address lookup. Fields are indexed in
// resolution priority order (compute private IP, private DNS, public IP,
// public DNS, then database endpoint); the first field to claim an address
// wins, matching first-match-wins resolution semantics.
func (s *Snapshot) indexAddresses() {
	index := func(addr *string, target *domain.Target, field string) {
		if addr == nil || *addr == "" {
			return
		}
		key := strings.ToLower(*addr)
		if _, taken := s.addressIndex[key]; taken {
			return
		}
		s.addressIndex[key] = addressHit{target: target, field: field}
	}

	computeFields := []struct {
		name string
		get  func(*domain.Target) *string
	}{
		{"private_ip", func(t *domain.Target) *string { return t.PrivateIP }},
		{"private_dns", func(t *domain.Target) *string { return t.PrivateDNS }},
		{"public_ip", func(t *domain.Target) *string { return t.PublicIP }},
		{"public_dns", func(t *domain.Target) *string { return t.PublicDNS }},
	}
	for _, field := range computeFields {
		for i := range s.targets {
			target := &s.targets[i]
			if target.Kind != domain.TargetKindCompute {
				continue
			}
			index(field.get(target), target, field.name)
		}
	}
	for i := range s.targets {
		target := &s.targets[i]
		if target.Kind != domain.TargetKindDatabase {
			continue
		}
		index(target.Endpoint, target, "endpoint")
	}
}

// Identities returns every identity name known to the snapshot: the union of
// identities appearing in role memberships, vault memberships, and policy
// principals. There is no separately maintained identity catalog.
func (s *Snapshot) Identities() []string {
	return s.identities
}

// RolesOf returns the display names of every role the identity belongs to.
// Single membership level; absence is an empty result.
func (s *Snapshot) RolesOf(identity string) []string {
	return s.roleNamesByIdentity[identity]
}

// VaultMembers returns the membership records of a vault.
func (s *Snapshot) VaultMembers(vaultName string) []domain.VaultMembership {
	return s.membersByVault[vaultName]
}

// VaultsOf returns the names of vaults where (name, kind) appears as a
// member. Matching is case-sensitive.
func (s *Snapshot) VaultsOf(name string, kind domain.MemberKind) []string {
	return s.vaultsByMember[memberKey{name: name, kind: kind}]
}

// PolicyPrincipals returns the principal assignments of a policy, including
// those of inactive policies.
func (s *Snapshot) PolicyPrincipals(policyID string) []domain.PolicyPrincipal {
	return s.principalsByPolicy[policyID]
}

// CredentialsOf returns the credentials stored in a vault. Credentials whose
// vault reference did not resolve at snapshot build are never returned.
func (s *Snapshot) CredentialsOf(vaultName string) []domain.Credential {
	return s.credentialsByVault[vaultName]
}

// ActivePolicies returns the active, non-deleted policies where any of the
// given principal names appears with the given kind. Inactive and deleted
// policies are excluded at snapshot build and are never evaluated.
func (s *Snapshot) ActivePolicies(principalNames []string, kind domain.MemberKind) []*domain.Policy {
	var policies []*domain.Policy
	seen := make(map[string]bool)
	for _, name := range principalNames {
		for _, policy := range s.policiesByPrincipal[memberKey{name: name, kind: kind}] {
			if seen[policy.ID] {
				continue
			}
			seen[policy.ID] = true
			policies = append(policies, policy)
		}
	}
	return policies
}

// AllTargets returns every non-deleted target in the snapshot, compute and
// database.
func (s *Snapshot) AllTargets() []domain.Target {
	return s.targets
}

// ResolveAddress resolves a credential address to a target by exact string
// equality after lower-casing, checking compute private IP, private DNS,
// public IP, public DNS, then database endpoint; first match wins. No match
// is the common case for non-infrastructure credentials, not an error.
func (s *Snapshot) ResolveAddress(address string) (*domain.Target, string, bool) {
	hit, ok := s.addressIndex[strings.ToLower(address)]
	if !ok {
		return nil, "", false
	}
	return hit.target, hit.field, true
}

func appendUnique(list []string, value string) []string {
	for _, existing := range list {
		if existing == value {
			return list
		}
	}
	return append(list, value)
}
