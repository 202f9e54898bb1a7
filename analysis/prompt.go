// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package analysis

import (
	"fmt"
	"strings"

	"github.com/danielhkuo/persona-assess/models"
)

// BuildPrompt pairs every question with its answer (or models.NoResponse)
// and asks for the four-section reply ParseReply understands.
func BuildPrompt(persona string, questions, answers []string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are an experienced hiring manager evaluating a candidate for the role of %s.\n", persona)
	b.WriteString("Review the candidate's answers to the screening questions below and give a concise, fair assessment.\n\n")

	for i, q := range questions {
		answer := models.NoResponse
		if i < len(answers) && strings.TrimSpace(answers[i]) != "" {
			answer = strings.TrimSpace(answers[i])
		}
		fmt.Fprintf(&b, "Question %d: %s\nAnswer: %s\n\n", i+1, q, answer)
	}

	b.WriteString("Respond using exactly this format:\n\n")
	b.WriteString(markerSummary + " <two or three sentences on the overall fit>\n")
	b.WriteString(markerStrengths + "\n- <strength>\n- <strength>\n")
	b.WriteString(markerConcerns + "\n- <concern>\n")
	fmt.Fprintf(&b, "%s <one of: %s, %s, %s, %s>\n",
		markerRecommendation,
		models.RecommendationHighly,
		models.RecommendationRecommended,
		models.RecommendationReservations,
		models.RecommendationNot,
	)

	return b.String()
}
