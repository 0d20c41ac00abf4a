package presetid

import "strings"

// Normalize canonicalizes preset names and reference aliases.
func Normalize(name string) string {
	normalized := strings.TrimSpace(strings.ToLower(name))
	normalized = strings.ReplaceAll(normalized, "_", "-")
	normalized = strings.ReplaceAll(normalized, " ", "-")
	normalized = strings.Trim(normalized, "-")
	if normalized == "" {
		return ""
	}
	if canonical, ok := normalizeKnownAlias(normalized); ok {
		return canonical
	}
	return normalized
}

func normalizeKnownAlias(normalized string) (string, bool) {
	for _, candidate := range aliasCandidates(normalized) {
		if canonical, ok := canonicalPresetName(candidate); ok {
			return canonical, true
		}
	}
	return "", false
}

func aliasCandidates(normalized string) []string {
	candidate := strings.TrimPrefix(normalized, "preset-")
	if candidate == normalized {
		candidate = strings.TrimPrefix(candidate, "preset")
	}
	candidate = strings.Trim(candidate, "-")

	candidates := []string{normalized}
	if candidate != "" && candidate != normalized {
		candidates = append(candidates, candidate)
	}

	trimmedCandidate := trimColonySuffix(candidate)
	if trimmedCandidate != "" && trimmedCandidate != candidate {
		candidates = append(candidates, trimmedCandidate)
	}

	trimmedNormalized := trimColonySuffix(normalized)
	if trimmedNormalized != "" &&
		trimmedNormalized != normalized &&
		trimmedNormalized != candidate &&
		trimmedNormalized != trimmedCandidate {
		candidates = append(candidates, trimmedNormalized)
	}
	return candidates
}

func trimColonySuffix(value string) string {
	switch {
	case strings.HasSuffix(value, "-colony"):
		return strings.TrimSuffix(value, "-colony")
	case strings.HasSuffix(value, "colony") && !strings.Contains(value, "-"):
		return strings.TrimSuffix(value, "colony")
	default:
		return value
	}
}

func canonicalPresetName(alias string) (string, bool) {
	switch alias {
	case "classic":
		return "classic", true
	case "minimal":
		return "minimal", true
	case "gauntlet":
		return "gauntlet", true
	}

	compact := strings.ReplaceAll(alias, "-", "")
	switch compact {
	case "classic", "default", "standard":
		return "classic", true
	case "minimal", "mini", "tiny", "smoke":
		return "minimal", true
	case "gauntlet", "stress", "crowded":
		return "gauntlet", true
	default:
		return "", false
	}
}
