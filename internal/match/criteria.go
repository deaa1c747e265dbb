package match

import (
	"encoding/json"
	"strings"

	"accessmap/internal/domain"
	"accessmap/internal/logging"
)

// DecodeCriteria parses a stored match-criteria JSON blob into a typed
// criteria struct. Malformed JSON is treated as an empty criteria object,
// which matches nothing unless match_all is set; a live inventory lags
// reality and a broken policy blob must never abort a whole-graph scan.
func DecodeCriteria(raw []byte) domain.MatchCriteria {
	var criteria domain.MatchCriteria
	if len(raw) == 0 {
		return criteria
	}
	if err := json.Unmarshal(raw, &criteria); err != nil {
		logging.LogWarn("Malformed match criteria; treating as empty", map[string]interface{}{
			"error": err.Error(),
		})
		logging.GetMetrics().RecordSkip("malformed_criteria")
		return domain.MatchCriteria{}
	}
	NormalizeCriteria(&criteria)
	return criteria
}

// NormalizeCriteria lowercases platform values so the matcher can compare
// without re-normalizing per target.
func NormalizeCriteria(criteria *domain.MatchCriteria) {
	for i, platform := range criteria.AllowedPlatforms {
		criteria.AllowedPlatforms[i] = strings.ToLower(platform)
	}
}
