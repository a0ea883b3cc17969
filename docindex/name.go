package docindex

import "strings"

const maxDocumentNameLength = 50

// DocumentName produces the stable display name for a project's daily
// document from (project, operator identity, date key). It is a pure
// function: two independent processes derive the same name for the same
// day, which makes the name itself the cross-process correlation key.
// Names contain only [a-z0-9-] and are capped at 50 characters.
func DocumentName(project, operator, date string) string {
	name := sanitize(project + " " + operatorLocalPart(operator) + " " + date)
	if len(name) > maxDocumentNameLength {
		name = strings.TrimRight(name[:maxDocumentNameLength], "-")
	}
	return name
}

// operatorLocalPart reduces an email-shaped identity to its local part.
func operatorLocalPart(operator string) string {
	if at := strings.IndexByte(operator, '@'); at >= 0 {
		return operator[:at]
	}
	return operator
}

// sanitize lower-cases, turns whitespace runs into single hyphens,
// drops every character outside [a-z0-9-], and trims edge hyphens.
func sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lastHyphen := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		case r == '-', r == ' ', r == '\t', r == '\n':
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}
