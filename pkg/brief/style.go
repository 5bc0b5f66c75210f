package brief

import (
	"strings"

	brieferrors "github.com/ask-andrew/360brief-sub007/pkg/errors"
)

// Style is a brief presentation profile. Every style shares the same
// insights computation and differs only in structure and labeling.
type Style string

// Supported styles.
const (
	StyleMissionBrief         Style = "mission_brief"
	StyleStartupVelocity      Style = "startup_velocity"
	StyleManagementConsulting Style = "management_consulting"
	StyleNewsletter           Style = "newspaper_newsletter"
)

// AllStyles lists every style in display order.
var AllStyles = []Style{
	StyleMissionBrief,
	StyleStartupVelocity,
	StyleManagementConsulting,
	StyleNewsletter,
}

var styleDescriptions = map[Style]string{
	StyleMissionBrief:         "Situation report: insights, immediate actions and active threats",
	StyleStartupVelocity:      "Momentum view: what shipped, what is blocked and the top priorities",
	StyleManagementConsulting: "Executive summary with findings, recommendations and a risk matrix",
	StyleNewsletter:           "Headline, lead story and themed sections",
}

// Valid reports whether s is a known style.
func (s Style) Valid() bool {
	_, ok := styleDescriptions[s]
	return ok
}

// Description returns a one-line summary of the style.
func (s Style) Description() string {
	return styleDescriptions[s]
}

// ParseStyle converts a user-supplied tag into a Style. Case and dashes are
// normalized, so "Mission-Brief" parses as mission_brief.
func ParseStyle(tag string) (Style, error) {
	s := Style(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(tag)), "-", "_"))
	if !s.Valid() {
		return "", brieferrors.NewUnsupportedStyleError(tag, StyleNames(AllStyles))
	}
	return s, nil
}

// ParseStyles parses a list of tags, such as the enabled styles from config.
func ParseStyles(tags []string) ([]Style, error) {
	styles := make([]Style, 0, len(tags))
	for _, tag := range tags {
		s, err := ParseStyle(tag)
		if err != nil {
			return nil, err
		}
		styles = append(styles, s)
	}
	return styles, nil
}

// StyleNames returns the string form of styles.
func StyleNames(styles []Style) []string {
	names := make([]string, len(styles))
	for i, s := range styles {
		names[i] = string(s)
	}
	return names
}
