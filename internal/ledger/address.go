package ledger

import (
	"crypto/sha256"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
)

// Well-known program ids of the token runtime. Overridable via config for
// non-mainnet deployments.
const (
	TokenProgramID           = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
	AssociatedTokenProgramID = "ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL"
)

// pdaMarker is appended to the seed hash so program-derived addresses can
// never collide with hashes computed elsewhere.
const pdaMarker = "ProgramDerivedAddress"

// Derivation carries the fixed token identifiers a deposit address is
// derived against.
type Derivation struct {
	Mint                     string
	TokenProgramID           string
	AssociatedTokenProgramID string
}

// AssociatedTokenAddress computes the deterministic token-account address
// owned by owner for the given mint. The result is a pure function of
// (owner, mint, program ids): the highest bump seed whose candidate hash
// does not decode to a curve point wins.
func AssociatedTokenAddress(owner string, d Derivation) (string, error) {
	ownerKey, err := decodeKey("owner", owner)
	if err != nil {
		return "", err
	}
	mintKey, err := decodeKey("mint", d.Mint)
	if err != nil {
		return "", err
	}
	tokenProgram, err := decodeKey("token program", d.TokenProgramID)
	if err != nil {
		return "", err
	}
	ataProgram, err := decodeKey("associated token program", d.AssociatedTokenProgramID)
	if err != nil {
		return "", err
	}

	for bump := 255; bump >= 0; bump-- {
		h := sha256.New()
		h.Write(ownerKey)
		h.Write(tokenProgram)
		h.Write(mintKey)
		h.Write([]byte{byte(bump)})
		h.Write(ataProgram)
		h.Write([]byte(pdaMarker))

		candidate := h.Sum(nil)
		if !isOnCurve(candidate) {
			return base58.Encode(candidate), nil
		}
	}

	return "", errors.New("no viable bump seed for associated token address")
}

func decodeKey(name, s string) ([]byte, error) {
	b, err := base58.Decode(s)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode %s key", name)
	}
	if len(b) != 32 {
		return nil, errors.Errorf("%s key must be 32 bytes, got %d", name, len(b))
	}

	return b, nil
}

// isOnCurve reports whether b decodes to a valid edwards25519 point. Derived
// addresses must be off curve so no private key can ever control them.
func isOnCurve(b []byte) bool {
	_, err := new(edwards25519.Point).SetBytes(b)
	return err == nil
}
