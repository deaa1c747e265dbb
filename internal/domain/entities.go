package domain

import "encoding/json"

// Role represents a directory role or group. External systems (vault
// memberships, policy principals) reference roles by display name, not by id.
type Role struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// RoleMembership is an (identity, role) edge. Membership is a single level:
// the engine does not resolve role-of-role chains.
type RoleMembership struct {
	RoleID       string `json:"role_id" yaml:"role_id"`
	IdentityName string `json:"identity_name" yaml:"identity_name"`
}

// Vault is a named container of stored credentials with its own membership
// list (source term: safe).
type Vault struct {
	Name string `json:"name" yaml:"name"`
}

// VaultMembership grants an identity or role access to a vault's credentials.
// Role members are matched case-sensitively against a Role's display name.
type VaultMembership struct {
	VaultName  string     `json:"vault_name" yaml:"vault_name"`
	MemberName string     `json:"member_name" yaml:"member_name"`
	MemberKind MemberKind `json:"member_kind" yaml:"member_kind"`
}

// Credential is a stored secret bound to one vault and, optionally, one
// infrastructure address (source term: account).
type Credential struct {
	ID         string  `json:"id" yaml:"id"`
	Name       string  `json:"name" yaml:"name"`
	VaultName  string  `json:"vault_name" yaml:"vault_name"`
	Address    *string `json:"address,omitempty" yaml:"address"`
	PlatformID *string `json:"platform_id,omitempty" yaml:"platform_id"`
	LoginName  *string `json:"login_name,omitempty" yaml:"login_name"`
	SecretKind *string `json:"secret_kind,omitempty" yaml:"secret_kind"`
}

// Policy is an attribute-based access policy granting time-boxed (JIT)
// reachability to the targets its criteria match.
type Policy struct {
	ID       string        `json:"id" yaml:"id"`
	Name     string        `json:"name" yaml:"name"`
	Active   bool          `json:"active" yaml:"active"`
	Deleted  bool          `json:"deleted,omitempty" yaml:"deleted"`
	Criteria MatchCriteria `json:"criteria" yaml:"criteria"`
}

// PolicyPrincipal assigns a policy to an identity or role. Role principals
// are matched case-sensitively against a Role's display name.
type PolicyPrincipal struct {
	PolicyID      string     `json:"policy_id" yaml:"policy_id"`
	PrincipalName string     `json:"principal_name" yaml:"principal_name"`
	PrincipalKind MemberKind `json:"principal_kind" yaml:"principal_kind"`
}

// Target is an infrastructure resource (compute or database instance) that
// access paths terminate at.
type Target struct {
	Kind      TargetKind        `json:"kind" yaml:"kind"`
	ID        string            `json:"id" yaml:"id"`
	Name      string            `json:"name" yaml:"name"`
	VPCID     *string           `json:"vpc_id,omitempty" yaml:"vpc_id"`
	SubnetID  *string           `json:"subnet_id,omitempty" yaml:"subnet_id"`
	Region    *string           `json:"region,omitempty" yaml:"region"`
	AccountID *string           `json:"account_id,omitempty" yaml:"account_id"`
	Tags      map[string]string `json:"tags,omitempty" yaml:"tags"`

	// Address fields. Compute targets carry the IP/DNS fields, database
	// targets carry Endpoint.
	PrivateIP  *string `json:"private_ip,omitempty" yaml:"private_ip"`
	PrivateDNS *string `json:"private_dns,omitempty" yaml:"private_dns"`
	PublicIP   *string `json:"public_ip,omitempty" yaml:"public_ip"`
	PublicDNS  *string `json:"public_dns,omitempty" yaml:"public_dns"`
	Endpoint   *string `json:"endpoint,omitempty" yaml:"endpoint"`

	// Platform is the OS family (compute only, e.g. "linux", "windows").
	Platform *string `json:"platform,omitempty" yaml:"platform"`

	// Kind-specific descriptors
	InstanceType *string `json:"instance_type,omitempty" yaml:"instance_type"`
	Engine       *string `json:"engine,omitempty" yaml:"engine"`

	Status  string `json:"status,omitempty" yaml:"status"`
	Deleted bool   `json:"deleted,omitempty" yaml:"deleted"`
}

// Key returns the (kind, id) key used to merge reachability from multiple
// paths without double-counting a target.
func (t *Target) Key() TargetKey {
	return TargetKey{Kind: t.Kind, ID: t.ID}
}

// TargetKey uniquely identifies a target across kinds.
type TargetKey struct {
	Kind TargetKind
	ID   string
}

// MatchCriteria is the attribute-filter structure attached to a policy. All
// fields default to empty; an empty field imposes no constraint on its
// category. A criteria with every filter category empty and MatchAll false
// matches nothing.
type MatchCriteria struct {
	VPCIDs       []string            `json:"vpc_ids,omitempty" yaml:"vpc_ids"`
	SubnetIDs    []string            `json:"subnet_ids,omitempty" yaml:"subnet_ids"`
	Tags         map[string][]string `json:"tags,omitempty" yaml:"tags"`
	FQDNPatterns []string            `json:"fqdn_patterns,omitempty" yaml:"fqdn_patterns"`
	IPRanges     []string            `json:"ip_ranges,omitempty" yaml:"ip_ranges"`
	Regions      []string            `json:"regions,omitempty" yaml:"regions"`
	AccountIDs   []string            `json:"account_ids,omitempty" yaml:"account_ids"`

	// AllowedPlatforms restricts matches to compute targets running one of
	// the listed OS families. Empty means unrestricted. Applied even when
	// MatchAll is set.
	AllowedPlatforms []string `json:"allowed_platforms,omitempty" yaml:"allowed_platforms"`

	MatchAll bool `json:"match_all,omitempty" yaml:"match_all"`
}

// Empty reports whether every filter category is unpopulated. The platform
// restriction is not a filter category: a criteria carrying only
// AllowedPlatforms still matches nothing unless MatchAll is set.
func (c *MatchCriteria) Empty() bool {
	return len(c.VPCIDs) == 0 &&
		len(c.SubnetIDs) == 0 &&
		len(c.Tags) == 0 &&
		len(c.FQDNPatterns) == 0 &&
		len(c.IPRanges) == 0 &&
		len(c.Regions) == 0 &&
		len(c.AccountIDs) == 0
}

// ConnectionProfile describes one protocol-specific connection configuration
// on a policy (SSH-style or RDP-style). A profile counts as present only if
// at least one sub-field is non-null.
type ConnectionProfile struct {
	LocalUser      *string          `json:"local_user,omitempty" yaml:"local_user"`
	Port           *int             `json:"port,omitempty" yaml:"port"`
	CertValidation *bool            `json:"cert_validation,omitempty" yaml:"cert_validation"`
	Extra          *json.RawMessage `json:"extra,omitempty" yaml:"-"`
}

// Present reports whether the profile carries any non-null sub-field. An
// object whose only content is null-valued nested fields counts as absent.
func (p *ConnectionProfile) Present() bool {
	if p == nil {
		return false
	}
	if p.Extra != nil && string(*p.Extra) != "null" && string(*p.Extra) != "{}" {
		return true
	}
	return p.LocalUser != nil || p.Port != nil || p.CertValidation != nil
}

// ConnectionProfiles holds the per-protocol connection configurations used to
// derive a policy's platform restriction.
type ConnectionProfiles struct {
	SSH *ConnectionProfile `json:"ssh,omitempty" yaml:"ssh"`
	RDP *ConnectionProfile `json:"rdp,omitempty" yaml:"rdp"`
}
