package match

import (
	"testing"

	"accessmap/internal/domain"
)

func strPtr(s string) *string {
	return &s
}

func computeTarget() *domain.Target {
	return &domain.Target{
		Kind:       domain.TargetKindCompute,
		ID:         "i-1",
		Name:       "web-1",
		VPCID:      strPtr("vpc-1"),
		SubnetID:   strPtr("subnet-1"),
		Region:     strPtr("us-east-1"),
		AccountID:  strPtr("111122223333"),
		Platform:   strPtr("linux"),
		PrivateIP:  strPtr("10.0.1.5"),
		PrivateDNS: strPtr("ip-10-0-1-5.ec2.internal"),
		PublicIP:   strPtr("54.1.2.3"),
		PublicDNS:  strPtr("ec2-54-1-2-3.compute-1.amazonaws.com"),
		Tags:       map[string]string{"env": "PROD", "team": "Platform"},
	}
}

func databaseTarget() *domain.Target {
	return &domain.Target{
		Kind:     domain.TargetKindDatabase,
		ID:       "db-1",
		Name:     "orders-db",
		VPCID:    strPtr("vpc-2"),
		Region:   strPtr("us-east-1"),
		Endpoint: strPtr("orders.cluster-abc.us-east-1.rds.amazonaws.com:5432"),
	}
}

func TestMatches_EmptyCriteriaMatchesNothing(t *testing.T) {
	criteria := &domain.MatchCriteria{}
	for _, target := range []*domain.Target{computeTarget(), databaseTarget()} {
		if Matches(target, criteria) {
			t.Errorf("empty criteria matched target %s; an accidentally-empty policy must resolve to zero targets", target.ID)
		}
	}
}

func TestMatches_MatchAll(t *testing.T) {
	tests := []struct {
		name     string
		criteria domain.MatchCriteria
		target   *domain.Target
		want     bool
	}{
		{
			name:     "match_all with no platform restriction matches compute",
			criteria: domain.MatchCriteria{MatchAll: true},
			target:   computeTarget(),
			want:     true,
		},
		{
			name:     "match_all with no platform restriction matches database",
			criteria: domain.MatchCriteria{MatchAll: true},
			target:   databaseTarget(),
			want:     true,
		},
		{
			name:     "match_all still applies platform restriction",
			criteria: domain.MatchCriteria{MatchAll: true, AllowedPlatforms: []string{"windows"}},
			target:   computeTarget(),
			want:     false,
		},
		{
			name:     "match_all with matching platform",
			criteria: domain.MatchCriteria{MatchAll: true, AllowedPlatforms: []string{"linux"}},
			target:   computeTarget(),
			want:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Matches(tt.target, &tt.criteria); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatches_SetCategories(t *testing.T) {
	tests := []struct {
		name     string
		criteria domain.MatchCriteria
		target   *domain.Target
		want     bool
	}{
		{
			name:     "vpc in set",
			criteria: domain.MatchCriteria{VPCIDs: []string{"vpc-1", "vpc-9"}},
			target:   computeTarget(),
			want:     true,
		},
		{
			name:     "vpc not in set",
			criteria: domain.MatchCriteria{VPCIDs: []string{"vpc-9"}},
			target:   computeTarget(),
			want:     false,
		},
		{
			name:     "populated set against nil target attribute is a non-match",
			criteria: domain.MatchCriteria{SubnetIDs: []string{"subnet-1"}},
			target:   databaseTarget(),
			want:     false,
		},
		{
			name:     "region and account both satisfied",
			criteria: domain.MatchCriteria{Regions: []string{"us-east-1"}, AccountIDs: []string{"111122223333"}},
			target:   computeTarget(),
			want:     true,
		},
		{
			name:     "account mismatch fails despite region match",
			criteria: domain.MatchCriteria{Regions: []string{"us-east-1"}, AccountIDs: []string{"999999999999"}},
			target:   computeTarget(),
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Matches(tt.target, &tt.criteria); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

// Tag keys compare exactly, tag values case-insensitively. This asymmetry is
// deliberate and locked in here.
func TestMatchTags_KeyCaseExactValueCaseLoose(t *testing.T) {
	target := computeTarget() // tags: env=PROD, team=Platform

	tests := []struct {
		name     string
		criteria map[string][]string
		want     bool
	}{
		{
			name:     "value case-insensitive",
			criteria: map[string][]string{"env": {"prod"}},
			want:     true,
		},
		{
			name:     "value case-insensitive other direction",
			criteria: map[string][]string{"team": {"PLATFORM"}},
			want:     true,
		},
		{
			name:     "key case mismatch does not match",
			criteria: map[string][]string{"Env": {"prod"}},
			want:     false,
		},
		{
			name:     "OR within a key",
			criteria: map[string][]string{"env": {"staging", "prod"}},
			want:     true,
		},
		{
			name:     "AND across keys, one failing",
			criteria: map[string][]string{"env": {"prod"}, "team": {"data"}},
			want:     false,
		},
		{
			name:     "AND across keys, both passing",
			criteria: map[string][]string{"env": {"prod"}, "team": {"platform"}},
			want:     true,
		},
		{
			name:     "criteria key absent from target",
			criteria: map[string][]string{"owner": {"alice"}},
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			criteria := &domain.MatchCriteria{Tags: tt.criteria}
			if got := Matches(target, criteria); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatchTags_TargetWithoutTags(t *testing.T) {
	target := databaseTarget()
	criteria := &domain.MatchCriteria{Tags: map[string][]string{"env": {"prod"}}}
	if Matches(target, criteria) {
		t.Error("target with no tags matched a tag criteria")
	}
}

func TestMatches_ANDAcrossCategories(t *testing.T) {
	target := computeTarget()

	// VPC matches but tags fail
	criteria := &domain.MatchCriteria{
		VPCIDs: []string{"vpc-1"},
		Tags:   map[string][]string{"env": {"staging"}},
	}
	if Matches(target, criteria) {
		t.Error("target matching VPC but failing tags must not match")
	}

	// Both categories match
	criteria.Tags = map[string][]string{"env": {"prod"}}
	if !Matches(target, criteria) {
		t.Error("target matching VPC and tags must match")
	}
}

func TestMatchFQDN(t *testing.T) {
	tests := []struct {
		name     string
		patterns []string
		target   *domain.Target
		want     bool
	}{
		{
			name:     "regex matches private dns",
			patterns: []string{`^ip-10-0-.*\.ec2\.internal$`},
			target:   computeTarget(),
			want:     true,
		},
		{
			name:     "regex is case-insensitive",
			patterns: []string{`IP-10-0-1-5\.EC2\.INTERNAL`},
			target:   computeTarget(),
			want:     true,
		},
		{
			name:     "regex matches database endpoint host",
			patterns: []string{`.*\.rds\.amazonaws\.com$`},
			target:   databaseTarget(),
			want:     true,
		},
		{
			name:     "invalid regex falls back to suffix match",
			patterns: []string{`[unclosed.EC2.internal`},
			target:   computeTarget(),
			want:     false,
		},
		{
			name:     "invalid regex suffix fallback hits",
			patterns: []string{`prod[a.example.com`},
			target: func() *domain.Target {
				t := computeTarget()
				t.PrivateDNS = strPtr("db.PROD[a.example.com")
				return t
			}(),
			want: true,
		},
		{
			name:     "no pattern matches",
			patterns: []string{`\.example\.org$`},
			target:   computeTarget(),
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			criteria := &domain.MatchCriteria{FQDNPatterns: tt.patterns}
			if got := Matches(tt.target, criteria); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatchIPRanges(t *testing.T) {
	tests := []struct {
		name   string
		ranges []string
		target *domain.Target
		want   bool
	}{
		{
			name:   "private ip inside cidr",
			ranges: []string{"10.0.0.0/16"},
			target: computeTarget(),
			want:   true,
		},
		{
			name:   "public ip inside second cidr",
			ranges: []string{"192.168.0.0/16", "54.0.0.0/8"},
			target: computeTarget(),
			want:   true,
		},
		{
			name:   "no cidr contains either ip",
			ranges: []string{"192.168.0.0/16"},
			target: computeTarget(),
			want:   false,
		},
		{
			name:   "invalid cidr blocks are skipped, not fatal",
			ranges: []string{"not-a-cidr", "10.0.0.0/16"},
			target: computeTarget(),
			want:   true,
		},
		{
			name:   "target with no ip fields fails populated ranges",
			ranges: []string{"10.0.0.0/8"},
			target: databaseTarget(),
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			criteria := &domain.MatchCriteria{IPRanges: tt.ranges}
			if got := Matches(tt.target, criteria); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatchIPRanges_InvalidTargetAddress(t *testing.T) {
	target := computeTarget()
	target.PrivateIP = strPtr("not-an-address")
	target.PublicIP = nil

	criteria := &domain.MatchCriteria{IPRanges: []string{"10.0.0.0/8"}}
	if Matches(target, criteria) {
		t.Error("unparseable target address must be skipped silently, yielding no match")
	}
}

func TestMatchPlatform(t *testing.T) {
	linux := computeTarget()
	windows := computeTarget()
	windows.Platform = strPtr("windows")
	noPlatform := computeTarget()
	noPlatform.Platform = nil

	tests := []struct {
		name    string
		allowed []string
		target  *domain.Target
		want    bool
	}{
		{"linux allowed accepts linux", []string{"linux"}, linux, true},
		{"linux allowed rejects windows", []string{"linux"}, windows, false},
		{"empty set accepts linux", nil, linux, true},
		{"empty set accepts windows", nil, windows, true},
		{"restriction rejects compute without platform", []string{"linux"}, noPlatform, false},
		{"restriction rejects database targets", []string{"linux"}, databaseTarget(), false},
		{"platform compare is case-insensitive", []string{"linux"}, func() *domain.Target {
			t := computeTarget()
			t.Platform = strPtr("Linux")
			return t
		}(), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			criteria := &domain.MatchCriteria{VPCIDs: []string{"vpc-1", "vpc-2"}, AllowedPlatforms: tt.allowed}
			if got := Matches(tt.target, criteria); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}
