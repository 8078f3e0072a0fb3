package matching

import (
	"slices"
	"strings"
)

const (
	// FallbackReason is shown when no individual criterion matched.
	FallbackReason = "General recommendation"

	// ReasonSeparator joins reason phrases.
	ReasonSeparator = " • "

	maxReasons = 3
)

// Explain builds a short human-readable summary of why coach suits prefs.
// It reports at most three phrases in priority order: specialty, budget,
// format, certification, language, experience.
func Explain(coach CoachProfile, prefs ClientPreferences) string {
	reasons := make([]string, 0, maxReasons)

	if prefs.Specialty != "" && slices.Contains(coach.Specialties, prefs.Specialty) {
		reasons = append(reasons, "Specializes in "+string(prefs.Specialty))
	}
	if coach.HasRate() && coach.Rate() <= prefs.MaxBudget() {
		reasons = append(reasons, "Fits your budget")
	}
	if format, ok := firstShared(prefs.Formats, coach.AvailableFormats); ok {
		reasons = append(reasons, "Available "+strings.ToLower(string(format)))
	}
	if cert, ok := firstShared(prefs.Certifications, coach.Certifications); ok {
		reasons = append(reasons, cert+" certified")
	}
	if lang, ok := firstShared(prefs.Languages, coach.Languages); ok {
		reasons = append(reasons, "Speaks "+lang)
	}
	if !prefs.ExperienceTier.IsAny() && TierForHours(coach.Hours()) == prefs.ExperienceTier {
		reasons = append(reasons, capitalize(string(prefs.ExperienceTier))+" level experience")
	}

	if len(reasons) == 0 {
		return FallbackReason
	}
	if len(reasons) > maxReasons {
		reasons = reasons[:maxReasons]
	}
	return strings.Join(reasons, ReasonSeparator)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
