package plan

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Digest fingerprints the plan content. Structurally identical plans always
// share a digest; the variant name is part of the content.
func Digest(p BuildPlan) string {
	// The payload holds only strings and string slices, so Marshal cannot fail.
	raw, err := json.Marshal(planPayloadFromPlan(p))
	if err != nil {
		panic(&AssertionError{Invariant: "plan payload not encodable: " + err.Error()})
	}

	sum := sha256.Sum256(raw)

	return hex.EncodeToString(sum[:])
}
