package matching

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/clearstone/tradebreak/internal/domain"
)

// AbsentValue is the textual rendering of an absent actual value inside the
// fingerprint input. The previous matcher rendered Python's None this way;
// keeping the literal keeps fingerprints stable across the migration so open
// breaks keep deduplicating against historical runs.
const AbsentValue = "None"

// Fingerprint derives the content-addressed identifier of a break. Identical
// inputs always hash to the same digest, and a change to any single field
// changes it; downstream dedup relies on both.
func Fingerprint(tradeID string, kind domain.BreakKind, expected, actual, reason string) string {
	raw := strings.Join([]string{tradeID, string(kind), expected, actual, reason}, "|")
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
