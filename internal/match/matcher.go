package match

import (
	"net/netip"
	"regexp"
	"strings"

	"accessmap/internal/domain"
)

/*
Target Matcher - Evaluates one policy's match criteria against one target

PURPOSE:
  Given an infrastructure target and a policy's match criteria, determine
  whether the policy dynamically grants access to the target. Pure function:
  the result depends only on the two inputs, no I/O, no logging.

CATEGORIES CHECKED (AND across categories, OR within a category):

  MC-001: VPC_SET
    Target's VPC id must be present in the criteria's vpc_ids set.

  MC-002: SUBNET_SET
    Target's subnet id must be present in the criteria's subnet_ids set.

  MC-003: TAGS
    AND across criteria tag keys (exact key compare); for each key, the
    target's value must case-insensitively equal one of the allowed values.

  MC-004: FQDN_PATTERNS
    A target DNS/FQDN field must match at least one pattern as a
    case-insensitive regex; invalid patterns fall back to a
    case-insensitive suffix match.

  MC-005: IP_RANGES
    A target IP must fall within at least one CIDR block; invalid
    addresses and blocks are silently skipped.

  MC-006: REGION_SET / MC-007: ACCOUNT_SET
    Set membership like MC-001.

  MC-008: PLATFORM
    Applied last, even under match_all: a non-empty allowed_platforms set
    requires a compute target whose platform is in the set. Database
    targets and targets with no platform fail any platform restriction.

  An empty category imposes no constraint. A criteria with every category
  empty and match_all false matches nothing.
*/

// Matches evaluates a policy's match criteria against one target.
func Matches(target *domain.Target, criteria *domain.MatchCriteria) bool {
	if target == nil || criteria == nil {
		return false
	}

	if !criteria.MatchAll {
		// An accidentally-empty criteria must resolve to zero targets
		if criteria.Empty() {
			return false
		}
		if !matchSet(target.VPCID, criteria.VPCIDs) {
			return false
		}
		if !matchSet(target.SubnetID, criteria.SubnetIDs) {
			return false
		}
		if !matchTags(target.Tags, criteria.Tags) {
			return false
		}
		if !matchFQDN(target, criteria.FQDNPatterns) {
			return false
		}
		if !matchIPRanges(target, criteria.IPRanges) {
			return false
		}
		if !matchSet(target.Region, criteria.Regions) {
			return false
		}
		if !matchSet(target.AccountID, criteria.AccountIDs) {
			return false
		}
	}

	return matchPlatform(target, criteria.AllowedPlatforms)
}

// matchSet checks set-membership categories (vpc, subnet, region, account).
// An empty criteria set imposes no constraint; a populated set against a nil
// target attribute is a non-match.
func matchSet(attr *string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	if attr == nil {
		return false
	}
	for _, v := range allowed {
		if *attr == v {
			return true
		}
	}
	return false
}

// matchTags is AND across criteria keys and OR within a key's values. Keys
// compare exactly, values case-insensitively. Extra tags on the target are
// irrelevant; a target with no tags fails any tag criteria.
func matchTags(tags map[string]string, criteria map[string][]string) bool {
	if len(criteria) == 0 {
		return true
	}
	if len(tags) == 0 {
		return false
	}
	for key, allowed := range criteria {
		value, ok := tags[key]
		if !ok {
			return false
		}
		found := false
		for _, v := range allowed {
			if strings.EqualFold(value, v) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// matchFQDN checks the target's DNS fields (compute private/public DNS,
// database endpoint host) against the patterns. Each pattern is tried as a
// case-insensitive regex; a pattern that does not compile degrades to a
// case-insensitive suffix match.
func matchFQDN(target *domain.Target, patterns []string) bool {
	if len(patterns) == 0 {
		return true
	}
	fqdns := targetFQDNs(target)
	if len(fqdns) == 0 {
		return false
	}
	for _, pattern := range patterns {
		re, err := regexp.Compile("(?i)" + pattern)
		for _, fqdn := range fqdns {
			if err == nil {
				if re.MatchString(fqdn) {
					return true
				}
			} else if strings.HasSuffix(strings.ToLower(fqdn), strings.ToLower(pattern)) {
				return true
			}
		}
	}
	return false
}

func targetFQDNs(target *domain.Target) []string {
	var fqdns []string
	for _, field := range []*string{target.PrivateDNS, target.PublicDNS} {
		if field != nil && *field != "" {
			fqdns = append(fqdns, *field)
		}
	}
	if target.Endpoint != nil && *target.Endpoint != "" {
		host := *target.Endpoint
		if idx := strings.LastIndex(host, ":"); idx > 0 {
			host = host[:idx]
		}
		fqdns = append(fqdns, host)
	}
	return fqdns
}

// matchIPRanges checks the target's IP fields against the CIDR blocks.
// Unparseable addresses and blocks are skipped, never fatal.
func matchIPRanges(target *domain.Target, ranges []string) bool {
	if len(ranges) == 0 {
		return true
	}
	var addrs []netip.Addr
	for _, field := range []*string{target.PrivateIP, target.PublicIP} {
		if field == nil || *field == "" {
			continue
		}
		addr, err := netip.ParseAddr(*field)
		if err != nil {
			continue
		}
		addrs = append(addrs, addr)
	}
	if len(addrs) == 0 {
		return false
	}
	for _, block := range ranges {
		prefix, err := netip.ParsePrefix(block)
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			if prefix.Contains(addr) {
				return true
			}
		}
	}
	return false
}

// matchPlatform applies the platform restriction. Platform values are
// compared case-insensitively; AllowedPlatforms is normalized to lowercase
// at decode time.
func matchPlatform(target *domain.Target, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	if target.Kind != domain.TargetKindCompute || target.Platform == nil {
		return false
	}
	platform := strings.ToLower(*target.Platform)
	for _, v := range allowed {
		if platform == strings.ToLower(v) {
			return true
		}
	}
	return false
}
