package web

import (
	"strconv"
	"strings"
	"time"

	"github.com/Vodeneev/matchpredict/internal/pkg/models"
)

// DateLayout is how kickoff times are shown on match cards.
const DateLayout = "Jan 2, 15:04"

// Bar is one probability bar: a CSS width and its label.
type Bar struct {
	Width string
	Label string
}

// Bars holds the three outcome bars of the detail panel.
type Bars struct {
	Home Bar
	Draw Bar
	Away Bar
}

// RenderBars maps probabilities to bar widths and labels.
// All zero renders the even 33/34/33 split with "-" labels. Otherwise each
// width is the raw value in percent; values are not normalized.
func RenderBars(home, draw, away float64) Bars {
	if home+draw+away == 0 {
		return Bars{
			Home: Bar{Width: "33%", Label: "-"},
			Draw: Bar{Width: "34%", Label: "-"},
			Away: Bar{Width: "33%", Label: "-"},
		}
	}
	return Bars{
		Home: percentBar(home),
		Draw: percentBar(draw),
		Away: percentBar(away),
	}
}

func percentBar(v float64) Bar {
	s := strconv.FormatFloat(v, 'f', -1, 64) + "%"
	return Bar{Width: s, Label: s}
}

// Card is one entry of the match list.
type Card struct {
	ID        int64
	Date      string
	HomeName  string
	AwayName  string
	HomeCrest string
	AwayCrest string
}

// ListPanel is the match list. Placeholder is set instead of cards when the
// list is empty or could not be fetched.
type ListPanel struct {
	Cards       []Card
	Placeholder string
}

// DetailPanel is the prediction view of one match.
type DetailPanel struct {
	MatchID   int64
	HomeName  string
	AwayName  string
	HomeCrest string
	AwayCrest string
	Bars      Bars
	Analysis  string
	Pending   bool
}

func renderCard(m models.Match, loc *time.Location) Card {
	return Card{
		ID:        m.ID,
		Date:      formatKickoff(m.UTCDate, loc),
		HomeName:  m.HomeTeam.Name,
		AwayName:  m.AwayTeam.Name,
		HomeCrest: m.HomeTeam.Crest,
		AwayCrest: m.AwayTeam.Crest,
	}
}

func renderList(matches []models.Match, loc *time.Location, msgs Messages) ListPanel {
	if len(matches) == 0 {
		return ListPanel{Placeholder: msgs.NoMatches}
	}
	cards := make([]Card, 0, len(matches))
	for _, m := range matches {
		cards = append(cards, renderCard(m, loc))
	}
	return ListPanel{Cards: cards}
}

func formatKickoff(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format(DateLayout)
}

// Backgrounds picks the page background for a match from a team name mapping.
type Backgrounds struct {
	prefix   string
	byTeam   map[string]string
	fallback string
}

// NewBackgrounds builds the lookup. Image names without a scheme or leading
// slash are served under prefix.
func NewBackgrounds(prefix string, byTeam map[string]string, fallback string) Backgrounds {
	b := Backgrounds{
		prefix:   prefix,
		byTeam:   make(map[string]string, len(byTeam)),
		fallback: fallback,
	}
	for team, image := range byTeam {
		b.byTeam[teamKey(team)] = image
	}
	return b
}

// For returns the background URL for m: the home team's image, else the away
// team's, else the default.
func (b Backgrounds) For(m models.Match) string {
	if image, ok := b.byTeam[teamKey(m.HomeTeam.Name)]; ok {
		return b.url(image)
	}
	if image, ok := b.byTeam[teamKey(m.AwayTeam.Name)]; ok {
		return b.url(image)
	}
	return b.url(b.fallback)
}

func (b Backgrounds) url(image string) string {
	if image == "" {
		return ""
	}
	if strings.HasPrefix(image, "/") || strings.Contains(image, "://") {
		return image
	}
	return b.prefix + image
}

func teamKey(name string) string {
	return models.NormalizeTeamName(name)
}
