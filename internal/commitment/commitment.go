// Package commitment produces and verifies the cryptographic commitment
// binding a bid amount to a secret salt. A commitment is the hex-encoded
// SHA-256 digest of a fixed-width encoding of (amount, salt), so commitments
// generated by any client are verifiable by this engine.
package commitment

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/shopspring/decimal"

	"lead-exchange/internal/auctionerrors"
)

// EncodedLength is the length of a hex-encoded commitment.
const EncodedLength = sha256.Size * 2

// Commit computes the commitment for an amount and a secret salt.
// The pre-image is the amount scaled to cents as an 8-byte big-endian
// unsigned integer, followed by the raw salt bytes. The fixed-width amount
// prefix leaves no padding ambiguity between clients.
func Commit(amount decimal.Decimal, salt string) (string, error) {
	preimage, err := encode(amount, salt)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(preimage)
	return hex.EncodeToString(sum[:]), nil
}

// Verify recomputes the commitment for (amount, salt) and compares it to
// the stored commitment for exact equality. Any encoding failure, including
// a malformed salt or amount, fails closed.
func Verify(commitment string, amount decimal.Decimal, salt string) bool {
	want, err := Commit(amount, salt)
	if err != nil {
		return false
	}
	return want == commitment
}

// encode builds the fixed-width pre-image: 8 bytes of amount-in-cents,
// big-endian, then the salt.
func encode(amount decimal.Decimal, salt string) ([]byte, error) {
	if salt == "" {
		return nil, fmt.Errorf("commitment: %w - empty salt", auctionerrors.ErrValidation)
	}
	if amount.IsNegative() {
		return nil, fmt.Errorf("commitment: %w - negative amount", auctionerrors.ErrValidation)
	}

	cents := amount.Shift(2)
	if !cents.IsInteger() {
		return nil, fmt.Errorf("commitment: %w - amount has more than 2 decimal places", auctionerrors.ErrValidation)
	}
	units := cents.BigInt()
	if !units.IsUint64() {
		return nil, fmt.Errorf("commitment: %w - amount out of range", auctionerrors.ErrValidation)
	}

	preimage := make([]byte, 8, 8+len(salt))
	binary.BigEndian.PutUint64(preimage, units.Uint64())
	return append(preimage, salt...), nil
}
