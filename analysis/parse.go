// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package analysis

import (
	"regexp"
	"strings"

	"github.com/danielhkuo/persona-assess/models"
)

const (
	markerSummary        = "SUMMARY:"
	markerStrengths      = "STRENGTHS:"
	markerConcerns       = "CONCERNS:"
	markerRecommendation = "RECOMMENDATION:"
)

// A marker only counts at the start of a line, optionally behind markdown
// emphasis or heading characters.
var markerRE = regexp.MustCompile(`(?im)^[ \t*_#>]*(summary|strengths|concerns|recommendation)[ \t*_]*:`)

// Checked in order: "Not Recommended" and "Highly Recommended" both contain
// "Recommended".
var recommendationLabels = []string{
	models.RecommendationHighly,
	models.RecommendationNot,
	models.RecommendationReservations,
	models.RecommendationRecommended,
	models.RecommendationManualReview,
}

type section struct {
	marker string
	start  int // index of the line holding the marker
	body   int // index just past the colon
}

// ParseReply splits a model reply on the four section markers, matched
// case-insensitively at the start of a line. Strengths and concerns keep
// only lines starting with "-"; other lines in those sections are dropped.
// A missing section leaves its field empty. A reply with none of the
// markers is ErrMalformedReply.
func ParseReply(reply string) (models.Analysis, error) {
	var found []section
	seen := make(map[string]bool, 4)
	for _, m := range markerRE.FindAllStringSubmatchIndex(reply, -1) {
		name := strings.ToUpper(reply[m[2]:m[3]]) + ":"
		if seen[name] {
			continue
		}
		seen[name] = true
		found = append(found, section{marker: name, start: m[0], body: m[1]})
	}
	if len(found) == 0 {
		return models.Analysis{}, ErrMalformedReply
	}

	bodies := make(map[string]string, len(found))
	for i, s := range found {
		end := len(reply)
		if i+1 < len(found) {
			end = found[i+1].start
		}
		bodies[s.marker] = reply[s.body:end]
	}

	return models.Analysis{
		Summary:        cleanText(bodies[markerSummary]),
		Strengths:      bulletLines(bodies[markerStrengths]),
		Concerns:       bulletLines(bodies[markerConcerns]),
		Recommendation: recommendation(bodies[markerRecommendation]),
	}, nil
}

// cleanText trims whitespace and markdown emphasis left around a marker.
func cleanText(s string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(s), "*_"))
}

func bulletLines(s string) []string {
	out := []string{}
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "-") {
			continue
		}
		if item := strings.TrimSpace(strings.TrimPrefix(line, "-")); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// recommendation takes the first non-empty line and maps it onto the known
// labels when one appears in it; otherwise the line is kept as written.
func recommendation(s string) string {
	var first string
	for _, line := range strings.Split(s, "\n") {
		if line = cleanText(line); line != "" {
			first = line
			break
		}
	}

	lower := strings.ToLower(first)
	for _, label := range recommendationLabels {
		if strings.Contains(lower, strings.ToLower(label)) {
			return label
		}
	}
	return first
}
