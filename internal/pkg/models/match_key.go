package models

import (
	"strings"
)

// NormalizeTeamName lowercases a team name and collapses whitespace so that
// "Arsenal", " arsenal " and "ARSENAL" compare equal.
func NormalizeTeamName(name string) string {
	return normalizeKeyPart(name)
}

// PairKey builds a stable key for a home/away pairing.
// Format: home|away
func PairKey(homeTeam, awayTeam string) string {
	return normalizeKeyPart(homeTeam) + "|" + normalizeKeyPart(awayTeam)
}

func normalizeKeyPart(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	// Keep it key-friendly (Redis keys use ':' as a separator).
	s = strings.ReplaceAll(s, "/", " ")
	s = strings.ReplaceAll(s, "\\", " ")
	s = strings.ReplaceAll(s, "|", " ")
	s = strings.ReplaceAll(s, ":", " ")
	s = strings.Join(strings.Fields(s), " ")
	return s
}
