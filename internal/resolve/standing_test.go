package resolve

import (
	"testing"

	"accessmap/internal/domain"
	"accessmap/internal/snapshot"
)

func strPtr(s string) *string {
	return &s
}

func pathNames(path domain.AccessPath) []string {
	names := make([]string, 0, len(path.Steps))
	for _, step := range path.Steps {
		names = append(names, step.Name)
	}
	return names
}

func equalNames(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

// Identity alice, role admins (alice is member), vault prod-creds (member:
// admins as role), credential cred-1 with address 10.0.1.5, EC2 target i-1
// with private IP 10.0.1.5. Resolving alice yields one target i-1 with the
// standing path [alice, admins, prod-creds, cred-1].
func TestStanding_RoleDerivedVaultPath(t *testing.T) {
	snap := snapshot.New(snapshot.Data{
		Roles:           []domain.Role{{ID: "r1", Name: "admins"}},
		RoleMemberships: []domain.RoleMembership{{RoleID: "r1", IdentityName: "alice"}},
		Vaults:          []domain.Vault{{Name: "prod-creds"}},
		VaultMemberships: []domain.VaultMembership{
			{VaultName: "prod-creds", MemberName: "admins", MemberKind: domain.MemberKindRole},
		},
		Credentials: []domain.Credential{
			{ID: "cred-1", Name: "cred-1", VaultName: "prod-creds", Address: strPtr("10.0.1.5")},
		},
		Targets: []domain.Target{
			{Kind: domain.TargetKindCompute, ID: "i-1", Name: "web-1", PrivateIP: strPtr("10.0.1.5")},
		},
	})

	hits, unmatched := Standing(snap, "alice")
	if len(hits) != 1 {
		t.Fatalf("Standing(alice) returned %d hits, want 1", len(hits))
	}
	if len(unmatched) != 0 {
		t.Fatalf("Standing(alice) returned %d unmatched paths, want 0", len(unmatched))
	}

	hit := hits[0]
	if hit.Target.ID != "i-1" {
		t.Errorf("hit target = %s, want i-1", hit.Target.ID)
	}
	want := []string{"alice", "admins", "prod-creds", "cred-1"}
	if got := pathNames(hit.Path); !equalNames(got, want) {
		t.Errorf("path = %v, want %v", got, want)
	}
	if hit.Path.Type != domain.AccessTypeStanding {
		t.Errorf("path type = %s, want standing", hit.Path.Type)
	}
}

// Direct vault membership suppresses the duplicate role-derived membership to
// the same vault: one path, without a role hop.
func TestStanding_DirectMembershipSuppressesRoleDerived(t *testing.T) {
	snap := snapshot.New(snapshot.Data{
		Roles:           []domain.Role{{ID: "r1", Name: "admins"}},
		RoleMemberships: []domain.RoleMembership{{RoleID: "r1", IdentityName: "alice"}},
		Vaults:          []domain.Vault{{Name: "prod-creds"}},
		VaultMemberships: []domain.VaultMembership{
			{VaultName: "prod-creds", MemberName: "alice", MemberKind: domain.MemberKindIdentity},
			{VaultName: "prod-creds", MemberName: "admins", MemberKind: domain.MemberKindRole},
		},
		Credentials: []domain.Credential{
			{ID: "cred-1", Name: "cred-1", VaultName: "prod-creds", Address: strPtr("10.0.1.5")},
		},
		Targets: []domain.Target{
			{Kind: domain.TargetKindCompute, ID: "i-1", Name: "web-1", PrivateIP: strPtr("10.0.1.5")},
		},
	})

	hits, _ := Standing(snap, "alice")
	if len(hits) != 1 {
		t.Fatalf("Standing(alice) returned %d hits, want 1 (direct membership must not duplicate)", len(hits))
	}
	want := []string{"alice", "prod-creds", "cred-1"}
	if got := pathNames(hits[0].Path); !equalNames(got, want) {
		t.Errorf("path = %v, want direct path %v without a role hop", got, want)
	}
}

func TestStanding_RelationshipOnlyFallbacks(t *testing.T) {
	snap := snapshot.New(snapshot.Data{
		Roles: []domain.Role{
			{ID: "r1", Name: "admins"},
			{ID: "r2", Name: "floaters"},
		},
		RoleMemberships: []domain.RoleMembership{
			{RoleID: "r1", IdentityName: "alice"},
			{RoleID: "r2", IdentityName: "alice"},
		},
		Vaults: []domain.Vault{
			{Name: "prod-creds"},
			{Name: "empty-vault"},
		},
		VaultMemberships: []domain.VaultMembership{
			{VaultName: "prod-creds", MemberName: "admins", MemberKind: domain.MemberKindRole},
			{VaultName: "empty-vault", MemberName: "alice", MemberKind: domain.MemberKindIdentity},
		},
		Credentials: []domain.Credential{
			// address that resolves to nothing
			{ID: "cred-stale", Name: "cred-stale", VaultName: "prod-creds", Address: strPtr("10.9.9.9")},
			// no address at all
			{ID: "cred-noaddr", Name: "cred-noaddr", VaultName: "prod-creds"},
		},
		Targets: []domain.Target{
			{Kind: domain.TargetKindCompute, ID: "i-1", Name: "web-1", PrivateIP: strPtr("10.0.1.5")},
		},
	})

	hits, unmatched := Standing(snap, "alice")
	if len(hits) != 0 {
		t.Fatalf("Standing(alice) returned %d hits, want 0", len(hits))
	}

	// Expected fan-out: empty vault path, two credential paths, and the
	// role that leads to no vault
	wantPaths := [][]string{
		{"alice", "empty-vault"},
		{"alice", "admins", "prod-creds", "cred-stale"},
		{"alice", "admins", "prod-creds", "cred-noaddr"},
		{"alice", "floaters"},
	}
	if len(unmatched) != len(wantPaths) {
		t.Fatalf("Standing(alice) returned %d unmatched paths, want %d: %v", len(unmatched), len(wantPaths), unmatched)
	}
	for _, want := range wantPaths {
		found := false
		for _, path := range unmatched {
			if equalNames(pathNames(path), want) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("missing relationship-only path %v", want)
		}
	}

	// The unresolved-address credential and the no-address credential stay
	// distinguishable via the credential step context
	for _, path := range unmatched {
		last := path.Last()
		switch last.Name {
		case "cred-stale":
			if last.Context == nil || *last.Context != "address=10.9.9.9 (unresolved)" {
				t.Errorf("cred-stale context = %v, want unresolved address note", last.Context)
			}
		case "cred-noaddr":
			if last.Context != nil {
				t.Errorf("cred-noaddr context = %q, want none", *last.Context)
			}
		}
	}
}

func TestStanding_ResolvedCredentialContext(t *testing.T) {
	snap := snapshot.New(snapshot.Data{
		Vaults: []domain.Vault{{Name: "v"}},
		VaultMemberships: []domain.VaultMembership{
			{VaultName: "v", MemberName: "alice", MemberKind: domain.MemberKindIdentity},
		},
		Credentials: []domain.Credential{
			{
				ID: "c1", Name: "c1", VaultName: "v",
				Address:    strPtr("db.internal:5432"),
				PlatformID: strPtr("PostgreSQL"),
				LoginName:  strPtr("app"),
			},
		},
		Targets: []domain.Target{
			{Kind: domain.TargetKindDatabase, ID: "db-1", Name: "db-1", Endpoint: strPtr("db.internal:5432")},
		},
	})

	hits, _ := Standing(snap, "alice")
	if len(hits) != 1 {
		t.Fatalf("got %d hits, want 1", len(hits))
	}
	last := hits[0].Path.Last()
	want := "platform=PostgreSQL login=app address=db.internal:5432 via endpoint"
	if last.Context == nil || *last.Context != want {
		t.Errorf("credential context = %v, want %q", last.Context, want)
	}
	if hits[0].MatchedAddress == nil || *hits[0].MatchedAddress != "db.internal:5432" {
		t.Errorf("matched address = %v", hits[0].MatchedAddress)
	}
}
