package util

import "strings"

// SubjectMatches reports whether a subject matches a pattern that can include
// NATS wildcards * (one token) and > (greedy remainder).
func SubjectMatches(pattern, subj string) bool {
	if pattern == subj {
		return true
	}
	pTok := strings.Split(pattern, ".")
	sTok := strings.Split(subj, ".")
	for i, pt := range pTok {
		switch pt {
		case ">":
			return i < len(sTok) // > needs at least one token
		case "*":
			if i >= len(sTok) {
				return false
			}
			continue
		}
		if i >= len(sTok) {
			return false
		}
		if pt != sTok[i] {
			return false
		}
	}
	return len(sTok) == len(pTok)
}

// SubjectToken returns the token of subj that sits where pattern has its
// n-th (zero-based) * wildcard, or "" when subj does not match pattern.
//
//	SubjectToken("event.terminal.session.*.line", "event.terminal.session.ab12.line", 0) == "ab12"
func SubjectToken(pattern, subj string, n int) string {
	if !SubjectMatches(pattern, subj) {
		return ""
	}
	sTok := strings.Split(subj, ".")
	for i, pt := range strings.Split(pattern, ".") {
		if pt != "*" {
			continue
		}
		if n == 0 {
			return sTok[i]
		}
		n--
	}
	return ""
}
