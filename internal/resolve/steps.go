package resolve

import (
	"fmt"
	"strings"

	"accessmap/internal/domain"
)

// TargetHit is one (target, path) pair emitted by a resolver before
// aggregation merges hits per target.
type TargetHit struct {
	Target         *domain.Target
	Path           domain.AccessPath
	MatchedAddress *string
}

func identityStep(name string) domain.PathStep {
	return domain.PathStep{Kind: domain.StepKindIdentity, Name: name}
}

func roleStep(name string) domain.PathStep {
	return domain.PathStep{Kind: domain.StepKindRole, Name: name}
}

func vaultStep(name string) domain.PathStep {
	return domain.PathStep{Kind: domain.StepKindVault, Name: name}
}

func policyStep(policy *domain.Policy) domain.PathStep {
	return domain.PathStep{Kind: domain.StepKindPolicy, ID: policy.ID, Name: policy.Name}
}

// credentialStep builds the credential hop, carrying descriptive context.
// For addresses that resolved to no target the context records the address as
// unresolved, so the two no-target cases (no address at all vs. an address
// nobody answers to) stay distinguishable downstream; for resolved addresses
// it records which target field matched.
func credentialStep(cred *domain.Credential, matchedField string) domain.PathStep {
	var parts []string
	if cred.PlatformID != nil {
		parts = append(parts, "platform="+*cred.PlatformID)
	}
	if cred.LoginName != nil {
		parts = append(parts, "login="+*cred.LoginName)
	}
	if cred.SecretKind != nil {
		parts = append(parts, "secret="+*cred.SecretKind)
	}
	if cred.Address != nil && *cred.Address != "" {
		if matchedField == "" {
			parts = append(parts, fmt.Sprintf("address=%s (unresolved)", *cred.Address))
		} else {
			parts = append(parts, fmt.Sprintf("address=%s via %s", *cred.Address, matchedField))
		}
	}

	step := domain.PathStep{Kind: domain.StepKindCredential, ID: cred.ID, Name: cred.Name}
	if len(parts) > 0 {
		context := strings.Join(parts, " ")
		step.Context = &context
	}
	return step
}
