// Package fingerprint canonicalizes raw error signals into a stable
// identity used to deduplicate issues. Two reports of the same underlying
// error must produce the same fingerprint even when their messages differ
// in paths, ports, addresses or numeric IDs.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

var (
	suffixError     = regexp.MustCompile(`(?i)(error|exception)$`)
	pathPattern     = regexp.MustCompile(`/[\w\-/.]+`)
	portPattern     = regexp.MustCompile(`:\d{2,5}`)
	uuidPattern     = regexp.MustCompile(`(?i)[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`)
	ipPattern       = regexp.MustCompile(`\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}`)
	longIDPattern   = regexp.MustCompile(`\b\d{6,}\b`)
	spacePattern    = regexp.MustCompile(`\s+`)
)

// Generate returns the 64-character hex fingerprint for an error signal.
// Any of the three inputs may be empty. The function is pure and
// deterministic; callers treat the result as an opaque stable key.
func Generate(errorType, errorMessage, runtime string) string {
	input := NormalizeType(errorType) + "|" + NormalizeMessage(errorMessage) + "|" + NormalizeRuntime(runtime)
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}

// NormalizeType strips a trailing "Error" or "Exception" suffix and
// lowercases, so "ConnectionRefusedError" and "connectionrefused" collide.
func NormalizeType(errorType string) string {
	if errorType == "" {
		return ""
	}
	// Trim first so a trailing space cannot defeat the end-anchored
	// suffix pattern.
	return strings.ToLower(suffixError.ReplaceAllString(strings.TrimSpace(errorType), ""))
}

// NormalizeMessage replaces volatile substrings (paths, ports, UUIDs, IPs,
// long numeric IDs) with placeholders and collapses whitespace. Replacement
// order matters: paths are rewritten before ports so path-embedded digits
// never masquerade as ports, and ports before IPs so "127.0.0.1:5432"
// becomes "<ip>:<port>".
func NormalizeMessage(message string) string {
	if message == "" {
		return ""
	}
	m := pathPattern.ReplaceAllString(message, "<path>")
	m = portPattern.ReplaceAllString(m, ":<port>")
	m = uuidPattern.ReplaceAllString(m, "<uuid>")
	m = ipPattern.ReplaceAllString(m, "<ip>")
	m = longIDPattern.ReplaceAllString(m, "<id>")
	m = spacePattern.ReplaceAllString(m, " ")
	return strings.ToLower(strings.TrimSpace(m))
}

// NormalizeRuntime reduces a runtime descriptor to "name@major", dropping
// minor and patch components: "node@20.11.1" -> "node@20".
func NormalizeRuntime(runtime string) string {
	if runtime == "" {
		return ""
	}
	name, version, _ := strings.Cut(runtime, "@")
	major, _, _ := strings.Cut(version, ".")
	return strings.ToLower(name + "@" + major)
}
