// Copyright (c) 2025 chatdb
// Licensed under the MIT License. See LICENSE file in the project root for details.

package nlq

import (
	"strings"
)

// sqlVerbs are the statement keywords a candidate must start with to be
// accepted as SQL.
var sqlVerbs = []string{
	"SELECT", "INSERT", "UPDATE", "DELETE", "CREATE", "DROP", "ALTER",
	"SHOW", "DESCRIBE", "EXPLAIN", "USE", "WITH",
}

// extractState enumerates where the line scanner is relative to a fenced
// code block in the model response.
type extractState int

const (
	// beforeFence: no fence seen yet; prose lines are skipped until one
	// appears (or the whole response is used when none ever does).
	beforeFence extractState = iota
	// insideFence: between the opening and closing fence markers.
	insideFence
	// afterFence: first fenced block closed; the rest is ignored.
	afterFence
)

// Extract pulls a single SQL statement out of free-form model output.
// If a fenced code block is present the first block's inner text wins,
// with the fence markers and optional language tag discarded; otherwise
// the whole response is the candidate. Surrounding whitespace and one
// trailing statement terminator are trimmed. Returns ErrEmptyResponse for
// blank input and ErrNoSQL when the candidate has no recognizable SQL verb.
func Extract(response string) (string, error) {
	if strings.TrimSpace(response) == "" {
		return "", ErrEmptyResponse
	}

	candidate := firstFencedBlock(response)
	if candidate == "" {
		candidate = response
	}

	candidate = strings.TrimSpace(candidate)
	candidate = strings.TrimSuffix(candidate, ";")
	candidate = strings.TrimSpace(candidate)

	if candidate == "" {
		return "", ErrNoSQL
	}
	if !hasSQLVerb(candidate) {
		return "", ErrNoSQL
	}
	return candidate, nil
}

// firstFencedBlock returns the inner text of the first ``` block, or ""
// when the response contains no fence.
func firstFencedBlock(response string) string {
	state := beforeFence
	var inner []string
	for _, line := range strings.Split(response, "\n") {
		trimmed := strings.TrimSpace(line)
		switch state {
		case beforeFence:
			if strings.HasPrefix(trimmed, "```") {
				// Opening marker; any language tag sits on this line.
				state = insideFence
			}
		case insideFence:
			if strings.HasPrefix(trimmed, "```") {
				state = afterFence
				continue
			}
			inner = append(inner, line)
		case afterFence:
			// Trailing prose ignored.
		}
	}
	if state == beforeFence {
		return ""
	}
	return strings.Join(inner, "\n")
}

func hasSQLVerb(candidate string) bool {
	fields := strings.Fields(candidate)
	if len(fields) == 0 {
		return false
	}
	head := strings.ToUpper(fields[0])
	for _, v := range sqlVerbs {
		if head == v {
			return true
		}
	}
	return false
}
