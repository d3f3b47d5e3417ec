package script

import (
	"github.com/btccom/nestedmultisig/keys"
	"github.com/btcsuite/btcd/txscript"
	"github.com/pkg/errors"
)

// Multisig is a parsed m-of-n CHECKMULTISIG script. PubKeys keep
// the order they appear in the script, which is the order
// signatures must follow on the stack.
type Multisig struct {
	Required int
	PubKeys  []*keys.PublicKey
	Script   []byte
}

// ParseMultisig interprets redeemScript as OP_m <pubkey>... OP_n
// OP_CHECKMULTISIG.
func ParseMultisig(redeemScript []byte) (*Multisig, error) {
	if txscript.GetScriptClass(redeemScript) != txscript.MultiSigTy {
		return nil, errors.Wrap(ErrMalformedRedeemScript, "not a multisig script")
	}

	nPubKeys, nSigs, err := txscript.CalcMultiSigStats(redeemScript)
	if err != nil {
		return nil, errors.Wrap(ErrMalformedRedeemScript, err.Error())
	}
	if nSigs < 1 || nSigs > nPubKeys {
		return nil, errors.Wrapf(ErrMalformedRedeemScript, "%d-of-%d policy", nSigs, nPubKeys)
	}

	pushes, err := txscript.PushedData(redeemScript)
	if err != nil {
		return nil, errors.Wrap(ErrMalformedRedeemScript, err.Error())
	}
	if len(pushes) != nPubKeys {
		return nil, errors.Wrapf(ErrMalformedRedeemScript, "found %d keys, script declares %d", len(pushes), nPubKeys)
	}

	pubKeys := make([]*keys.PublicKey, nPubKeys)
	for i, push := range pushes {
		pub, err := keys.ParsePublicKey(push)
		if err != nil {
			return nil, errors.Wrapf(ErrMalformedRedeemScript, "key %d: %s", i, err)
		}
		pubKeys[i] = pub
	}

	return &Multisig{
		Required: nSigs,
		PubKeys:  pubKeys,
		Script:   redeemScript,
	}, nil
}

// KeyIndex returns the position of pub in the script, or -1.
func (m *Multisig) KeyIndex(pub *keys.PublicKey) int {
	for i, key := range m.PubKeys {
		if key.Equal(pub) {
			return i
		}
	}
	return -1
}
