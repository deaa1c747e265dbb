package outputter

import (
	"encoding/json"
	"fmt"
	"strings"

	"accessmap/internal/domain"
)

// GetStepIcon returns the icon for a path step kind
func GetStepIcon(kind domain.StepKind) string {
	switch kind {
	case domain.StepKindIdentity:
		return "👤"
	case domain.StepKindRole:
		return "🔐"
	case domain.StepKindVault:
		return "🗄️"
	case domain.StepKindCredential:
		return "🔑"
	case domain.StepKindPolicy:
		return "📋"
	default:
		return "❓"
	}
}

// GetTargetIcon returns the icon for a target kind
func GetTargetIcon(kind domain.TargetKind) string {
	if kind == domain.TargetKindDatabase {
		return "🛢️"
	}
	return "💻"
}

// FormatPathFlow creates a compact arrow representation of one access path
func FormatPathFlow(path domain.AccessPath) string {
	var sb strings.Builder

	for i, step := range path.Steps {
		if i > 0 {
			sb.WriteString(" → ")
		}
		label := step.Name
		if step.Kind != domain.StepKindIdentity {
			label = fmt.Sprintf("%s (%s)", stepKindLabel(step.Kind), step.Name)
		}
		sb.WriteString(fmt.Sprintf("%s %s", GetStepIcon(step.Kind), label))
	}

	if path.Type == domain.AccessTypeJIT {
		sb.WriteString("  [JIT]")
	}
	return sb.String()
}

func stepKindLabel(kind domain.StepKind) string {
	switch kind {
	case domain.StepKindRole:
		return "Role"
	case domain.StepKindVault:
		return "Vault"
	case domain.StepKindCredential:
		return "Credential"
	case domain.StepKindPolicy:
		return "Policy"
	default:
		return string(kind)
	}
}

// FormatTargetAccess formats one reachable target with its accumulated paths
func FormatTargetAccess(target domain.TargetAccess) string {
	var sb strings.Builder

	descriptor := ""
	if target.InstanceType != nil {
		descriptor = " " + *target.InstanceType
	} else if target.Engine != nil {
		descriptor = " " + *target.Engine
	}
	sb.WriteString(fmt.Sprintf("  %s %s (%s%s)", GetTargetIcon(target.Kind), target.Name, target.Kind, descriptor))
	if target.MatchedAddress != nil {
		sb.WriteString(fmt.Sprintf(" @ %s", *target.MatchedAddress))
	}
	if target.Status != "" {
		sb.WriteString(fmt.Sprintf(" [%s]", target.Status))
	}
	sb.WriteString("\n")

	for _, path := range target.Paths {
		sb.WriteString(fmt.Sprintf("      └─ %s\n", FormatPathFlow(path)))
	}
	return sb.String()
}

// FormatIdentityMapping formats one identity's full mapping: reachable
// targets first, then the relationship fan-out that reached no target
func FormatIdentityMapping(mapping domain.IdentityMapping) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("\n👤 %s — %d target(s)\n", mapping.Identity, len(mapping.Targets)))
	for _, target := range mapping.Targets {
		sb.WriteString(FormatTargetAccess(target))
	}

	if len(mapping.Unmatched) > 0 {
		sb.WriteString(fmt.Sprintf("  ── %d relationship(s) without a matched target\n", len(mapping.Unmatched)))
		for _, path := range mapping.Unmatched {
			sb.WriteString(fmt.Sprintf("      └─ %s\n", FormatPathFlow(path)))
		}
	}
	return sb.String()
}

// FormatSummary formats the whole-graph summary block
func FormatSummary(summary domain.Summary) string {
	var sb strings.Builder

	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("═", 79))
	sb.WriteString("\nACCESS MAPPING SUMMARY\n")
	sb.WriteString(strings.Repeat("═", 79))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Identities with reachability: %d\n", summary.IdentityCount))
	sb.WriteString(fmt.Sprintf("Distinct targets reached:     %d\n", summary.TargetCount))
	sb.WriteString(fmt.Sprintf("Standing paths:               %d\n", summary.StandingPathCount))
	sb.WriteString(fmt.Sprintf("JIT paths:                    %d\n", summary.JITPathCount))
	return sb.String()
}

// FormatGraphMapping formats the whole-graph view
func FormatGraphMapping(graph domain.GraphMapping) string {
	var sb strings.Builder

	if graph.Partial {
		sb.WriteString("⚠️  Resolution cancelled before completion; partial results follow\n")
	}
	for _, mapping := range graph.Identities {
		sb.WriteString(FormatIdentityMapping(mapping))
	}
	sb.WriteString(FormatSummary(graph.Summary))
	return sb.String()
}

// FormatJSON renders any mapping result as indented JSON
func FormatJSON(v interface{}) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal output: %w", err)
	}
	return string(data), nil
}
