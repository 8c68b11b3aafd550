// utils/proof.go
package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
)

// HashProof returns the hex-encoded sha256 of the proof payload, the format
// submissions carry as their proof hash.
func HashProof(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashProofReader streams r through sha256 and returns the hex digest.
func HashProofReader(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
