package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/clearstone/tradebreak/internal/domain"
)

func TestFingerprintDeterministic(t *testing.T) {
	a := Fingerprint("T1", domain.BreakCash, "10000.00", "10000.02", "Cash mismatch")
	b := Fingerprint("T1", domain.BreakCash, "10000.00", "10000.02", "Cash mismatch")
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
	assert.Regexp(t, "^[0-9a-f]{64}$", a)
}

func TestFingerprintSensitiveToEveryField(t *testing.T) {
	base := Fingerprint("T1", domain.BreakCash, "10000.00", "10000.02", "Cash mismatch")

	variants := []string{
		Fingerprint("T2", domain.BreakCash, "10000.00", "10000.02", "Cash mismatch"),
		Fingerprint("T1", domain.BreakStock, "10000.00", "10000.02", "Cash mismatch"),
		Fingerprint("T1", domain.BreakCash, "10000.01", "10000.02", "Cash mismatch"),
		Fingerprint("T1", domain.BreakCash, "10000.00", "10000.03", "Cash mismatch"),
		Fingerprint("T1", domain.BreakCash, "10000.00", "10000.02", "Quantity mismatch"),
	}

	for i, v := range variants {
		assert.NotEqual(t, base, v, "variant %d should differ", i)
	}
}

func TestFingerprintScaleMatters(t *testing.T) {
	// "100" and "100.00" are equal quantities but distinct renderings; the
	// fingerprint hashes the rendering, so they differ. Callers must render
	// consistently, which Amount.String guarantees.
	a := Fingerprint("T1", domain.BreakStock, "100", AbsentValue, "Missing settlement")
	b := Fingerprint("T1", domain.BreakStock, "100.00", AbsentValue, "Missing settlement")
	assert.NotEqual(t, a, b)
}
