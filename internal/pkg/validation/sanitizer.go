package validation

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/Vodeneev/matchpredict/internal/pkg/models"
)

const (
	maxTeamNameLen    = 100
	maxCompetitionLen = 200
)

var (
	controlChars = regexp.MustCompile(`[\x00-\x1F\x7F]`)
	spaces       = regexp.MustCompile(`\s+`)
)

// Sanitizer cleans text coming from upstream APIs and query strings
type Sanitizer struct{}

// NewSanitizer creates a new sanitizer
func NewSanitizer() *Sanitizer {
	return &Sanitizer{}
}

// SanitizeMatch cleans team names, crest URLs and the competition name in place.
func (s *Sanitizer) SanitizeMatch(match *models.Match) {
	if match == nil {
		return
	}
	s.sanitizeTeam(&match.HomeTeam)
	s.sanitizeTeam(&match.AwayTeam)
	match.Competition = s.sanitizeString(match.Competition, maxCompetitionLen)
}

func (s *Sanitizer) sanitizeTeam(team *models.Team) {
	team.Name = s.SanitizeTeamName(team.Name)
	team.Crest = s.sanitizeCrest(team.Crest)
}

// SanitizeTeamName trims, drops control characters and collapses whitespace.
func (s *Sanitizer) SanitizeTeamName(name string) string {
	sanitized := controlChars.ReplaceAllString(name, " ")
	sanitized = strings.TrimSpace(spaces.ReplaceAllString(sanitized, " "))
	return truncateRunes(sanitized, maxTeamNameLen)
}

func (s *Sanitizer) sanitizeString(str string, limit int) string {
	sanitized := strings.TrimSpace(controlChars.ReplaceAllString(str, ""))
	return truncateRunes(sanitized, limit)
}

// sanitizeCrest keeps only absolute http(s) URLs
func (s *Sanitizer) sanitizeCrest(crest string) string {
	crest = strings.TrimSpace(crest)
	if crest == "" {
		return ""
	}
	u, err := url.Parse(crest)
	if err != nil || u.Host == "" {
		return ""
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return u.String()
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}
