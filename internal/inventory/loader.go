package inventory

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"accessmap/internal/domain"
	"accessmap/internal/match"
	"accessmap/internal/snapshot"
)

// PolicyRecord is the stored form of a policy. The relationship store keeps
// match criteria as an opaque JSON blob; snapshot files may instead carry the
// structured form directly. ConnectionProfiles, when present, derive the
// platform restriction the same way policy ingestion does.
type PolicyRecord struct {
	ID                 string                     `json:"id" yaml:"id"`
	Name               string                     `json:"name" yaml:"name"`
	Active             bool                       `json:"active" yaml:"active"`
	Deleted            bool                       `json:"deleted,omitempty" yaml:"deleted"`
	Criteria           *domain.MatchCriteria      `json:"criteria,omitempty" yaml:"criteria"`
	CriteriaJSON       string                     `json:"criteria_json,omitempty" yaml:"criteria_json"`
	ConnectionProfiles *domain.ConnectionProfiles `json:"connection_profiles,omitempty" yaml:"connection_profiles"`
}

// Document is a point-in-time snapshot file: the already-normalized output of
// the relationship and inventory collectors, serialized as JSON or YAML.
type Document struct {
	Roles            []domain.Role            `json:"roles,omitempty" yaml:"roles"`
	RoleMemberships  []domain.RoleMembership  `json:"role_memberships,omitempty" yaml:"role_memberships"`
	Vaults           []domain.Vault           `json:"vaults,omitempty" yaml:"vaults"`
	VaultMemberships []domain.VaultMembership `json:"vault_memberships,omitempty" yaml:"vault_memberships"`
	Credentials      []domain.Credential      `json:"credentials,omitempty" yaml:"credentials"`
	Policies         []PolicyRecord           `json:"policies,omitempty" yaml:"policies"`
	PolicyPrincipals []domain.PolicyPrincipal `json:"policy_principals,omitempty" yaml:"policy_principals"`
	Targets          []domain.Target          `json:"targets,omitempty" yaml:"targets"`
}

// LoadSnapshotFile reads a snapshot document (JSON or YAML by extension) and
// converts it to snapshot data. A file that cannot be read or decoded is a
// snapshot-unavailable failure, surfaced to the caller as a retryable error;
// per-policy criteria problems inside a readable file are data-quality gaps
// and degrade to empty criteria instead.
func LoadSnapshotFile(path string) (snapshot.Data, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return snapshot.Data{}, fmt.Errorf("failed to read snapshot file: %w", err)
	}

	var doc Document
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &doc)
	default:
		err = json.Unmarshal(raw, &doc)
	}
	if err != nil {
		return snapshot.Data{}, fmt.Errorf("failed to decode snapshot file %s: %w", path, err)
	}

	return doc.ToData(), nil
}

// ToData converts a decoded document into engine snapshot data, ingesting
// each policy's criteria.
func (doc *Document) ToData() snapshot.Data {
	data := snapshot.Data{
		Roles:            doc.Roles,
		RoleMemberships:  doc.RoleMemberships,
		Vaults:           doc.Vaults,
		VaultMemberships: doc.VaultMemberships,
		Credentials:      doc.Credentials,
		Principals:       doc.PolicyPrincipals,
		Targets:          doc.Targets,
	}
	for _, record := range doc.Policies {
		data.Policies = append(data.Policies, ingestPolicy(record))
	}
	return data
}

func ingestPolicy(record PolicyRecord) domain.Policy {
	policy := domain.Policy{
		ID:      record.ID,
		Name:    record.Name,
		Active:  record.Active,
		Deleted: record.Deleted,
	}

	if record.Criteria != nil {
		policy.Criteria = *record.Criteria
		match.NormalizeCriteria(&policy.Criteria)
	} else if record.CriteriaJSON != "" {
		policy.Criteria = match.DecodeCriteria([]byte(record.CriteriaJSON))
	}

	if len(policy.Criteria.AllowedPlatforms) == 0 && record.ConnectionProfiles != nil {
		policy.Criteria.AllowedPlatforms = match.DerivePlatforms(*record.ConnectionProfiles)
	}

	return policy
}
