// Package blockhash computes block digests used to link a chain.
package blockhash

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/goodnatureofminers/carbonledger-backend/internal/carbon/canonical"
	"github.com/goodnatureofminers/carbonledger-backend/internal/carbon/model"
)

// Hash returns the hex SHA-256 digest of the block's canonical encoding.
func Hash(b model.Block) string {
	sum := sha256.Sum256(canonical.EncodeBlock(b))
	return hex.EncodeToString(sum[:])
}
