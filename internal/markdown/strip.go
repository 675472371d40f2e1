// Package markdown derives the plain-text projection of note content.
package markdown

import (
	"regexp"
	"strings"
)

var (
	headingRe    = regexp.MustCompile(`#{1,6}\s`)
	boldRe       = regexp.MustCompile(`\*\*(.+?)\*\*`)
	italicRe     = regexp.MustCompile(`\*(.+?)\*`)
	listMarkerRe = regexp.MustCompile(`(?m)^[ \t]*(?:[-*+][ \t])+`)
	blankLinesRe = regexp.MustCompile(`\n{2,}`)
)

// Strip removes markdown markup from s. Bold must run before italic since
// the italic pattern also matches bold markers.
func Strip(s string) string {
	s = headingRe.ReplaceAllString(s, "")
	s = boldRe.ReplaceAllString(s, "$1")
	s = italicRe.ReplaceAllString(s, "$1")
	s = listMarkerRe.ReplaceAllString(s, "")
	s = blankLinesRe.ReplaceAllString(s, "\n")
	return strings.TrimSpace(s)
}
