// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package sharelink

import (
	"crypto/hmac"
	"crypto/sha256"
	"strings"
)

// PathPrefix is the public route respondents open for a shared assessment.
const PathPrefix = "/a/"

// GenerateShareSlug creates a short, deterministic URL slug for an assessment
// Uses HMAC for determinism and base62 encoding for URL-friendliness
func GenerateShareSlug(assessmentID, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(assessmentID))
	sum := h.Sum(nil)

	// Take first 8 bytes for a shorter slug
	return base62Encode(sum[:8])
}

// URL joins the public base URL and a slug into the link handed to respondents.
func URL(baseURL, slug string) string {
	return strings.TrimRight(baseURL, "/") + PathPrefix + slug
}

// base62Encode converts bytes to base62 (0-9, a-z, A-Z)
func base62Encode(data []byte) string {
	const base62Chars = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

	var num uint64
	for i := 0; i < len(data) && i < 8; i++ {
		num = num<<8 | uint64(data[i])
	}

	if num == 0 {
		return "0"
	}

	result := make([]byte, 0, 11) // max length for uint64
	for num > 0 {
		result = append(result, base62Chars[num%62])
		num /= 62
	}

	// Reverse the string
	for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
		result[i], result[j] = result[j], result[i]
	}

	return string(result)
}
