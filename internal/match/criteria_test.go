package match

import (
	"testing"

	"accessmap/internal/domain"
)

func TestDecodeCriteria(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want func(c domain.MatchCriteria) bool
	}{
		{
			name: "well-formed criteria",
			raw:  `{"vpc_ids":["vpc-1"],"tags":{"env":["prod"]},"match_all":false}`,
			want: func(c domain.MatchCriteria) bool {
				return len(c.VPCIDs) == 1 && c.VPCIDs[0] == "vpc-1" && len(c.Tags["env"]) == 1
			},
		},
		{
			name: "malformed JSON degrades to empty criteria",
			raw:  `{"vpc_ids":["vpc-1"`,
			want: func(c domain.MatchCriteria) bool {
				return c.Empty() && !c.MatchAll
			},
		},
		{
			name: "empty blob is empty criteria",
			raw:  "",
			want: func(c domain.MatchCriteria) bool {
				return c.Empty() && !c.MatchAll
			},
		},
		{
			name: "platform values normalized to lowercase",
			raw:  `{"allowed_platforms":["Linux","WINDOWS"],"match_all":true}`,
			want: func(c domain.MatchCriteria) bool {
				return len(c.AllowedPlatforms) == 2 && c.AllowedPlatforms[0] == "linux" && c.AllowedPlatforms[1] == "windows"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecodeCriteria([]byte(tt.raw))
			if !tt.want(got) {
				t.Errorf("DecodeCriteria(%q) = %+v", tt.raw, got)
			}
		})
	}
}

// A malformed criteria blob must never match anything: per the empty-criteria
// invariant it resolves to zero targets instead of erroring or matching all.
func TestDecodeCriteria_MalformedMatchesNothing(t *testing.T) {
	criteria := DecodeCriteria([]byte(`not json at all`))
	if Matches(computeTarget(), &criteria) {
		t.Error("malformed criteria matched a target")
	}
}
