// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package pipeline runs one respondent's submission from details to results.

A Session moves through these states:

	collecting-info → selecting-persona → answering-questions → saving → showing-results
	                                    ↘ no-questions
	any step → error

Sessions started from an assessment share slug with a fixed persona skip
selecting-persona. Every answer must be non-blank. Previous revokes the
last answer and offers it back as the draft. The final Next runs the
analysis and persists the response; an unavailable analysis is stored as
the fallback rather than failing the submission.

Manager keeps sessions in memory keyed by ID and drops those idle longer
than the configured TTL.
*/
package pipeline
