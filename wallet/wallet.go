// Package wallet assembles and signs transactions spending a
// multisig redeem script nested as P2SH-P2WSH.
package wallet

import (
	"github.com/btccom/nestedmultisig/keys"
	"github.com/btcsuite/btcd/btcec"
)

// SignatureProvider is a contract whereby implementations hold one
// key of the multisig policy and sign signature hashes with it.
type SignatureProvider interface {
	// PubKey is the key the signatures verify against. It must
	// appear in the redeem script.
	PubKey() *keys.PublicKey

	// Sign returns a signature over a 32 byte digest.
	Sign(digest []byte) (*btcec.Signature, error)
}
