// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package analysis turns a persona and its answers into a hiring assessment.

BuildPrompt renders the fixed prompt, a Generator (Gemini or an
OpenAI-compatible endpoint) returns the model text, and ParseReply pulls
out the SUMMARY, STRENGTHS, CONCERNS and RECOMMENDATION sections. Service
ties them together and never returns an error: a missing key, timeout,
provider failure or malformed reply yields Fallback() tagged as
unavailable.
*/
package analysis
