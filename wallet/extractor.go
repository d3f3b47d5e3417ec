package wallet

import (
	"bytes"

	"github.com/btccom/nestedmultisig/script"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/fastsha256"
	"github.com/pkg/errors"
)

// SpendProof is the decoded scriptSig and witness of an input
// spending a nested P2WSH multisig output.
type SpendProof struct {
	WitnessProgram []byte
	RedeemScript   []byte
	Multisig       *script.Multisig

	// Signatures in stack order, bottom first.
	Signatures [][]byte
}

// ExtractSpendProof checks every commitment between the spent
// output script, the scriptSig and the witness, and splits the
// witness into its signatures and redeem script.
func ExtractSpendProof(pkScript []byte, scriptSig []byte, witness wire.TxWitness) (*SpendProof, error) {
	if !txscript.IsPushOnlyScript(scriptSig) {
		return nil, errors.New("scriptSig must be push only")
	}

	pushes, err := txscript.PushedData(scriptSig)
	if err != nil {
		return nil, errors.Wrap(err, "invalid scriptSig")
	}
	if len(pushes) != 1 {
		return nil, errors.Errorf("scriptSig must push only the witness program, found %d pushes", len(pushes))
	}

	wp := pushes[0]
	expectedSpk, err := script.P2SHScript(wp)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(expectedSpk, pkScript) {
		return nil, errors.New("witness program doesn't satisfy pay-to-script-hash")
	}
	if len(wp) != 2+script.WitnessV0ScriptHashSize || wp[0] != script.WitnessV0 || wp[1] != script.WitnessV0ScriptHashSize {
		return nil, errors.New("redeem script is not a version 0 witness script hash program")
	}

	// dummy, at least one signature, witness script
	if len(witness) < 3 {
		return nil, errors.Errorf("witness has %d items, too few for a multisig spend", len(witness))
	}

	ws := witness[len(witness)-1]
	witnessScriptHash := fastsha256.Sum256(ws)
	if !bytes.Equal(witnessScriptHash[:], wp[2:]) {
		return nil, errors.New("witness script doesn't match the witness program")
	}

	if !bytes.Equal(witness[0], MultisigDummy) {
		return nil, errors.New("first witness item must be the empty multisig dummy")
	}

	ms, err := script.ParseMultisig(ws)
	if err != nil {
		return nil, err
	}

	sigs := [][]byte(witness[1 : len(witness)-1])
	if len(sigs) != ms.Required {
		return nil, errors.Errorf("witness carries %d signatures, script requires %d", len(sigs), ms.Required)
	}

	return &SpendProof{
		WitnessProgram: wp,
		RedeemScript:   ws,
		Multisig:       ms,
		Signatures:     sigs,
	}, nil
}

// PairSignatures validates signatures in the order followed by
// CHECKMULTISIG: starting from the top of the stack and the last
// key, a key that fails to validate the current signature is
// skipped and never revisited. The result maps key index to the
// signature it validated. Signatures placed out of key order are
// left unpaired even when each one is individually valid.
func PairSignatures(c *checker, proof *SpendProof) map[int]*validSignature {
	pubKeys := proof.Multisig.PubKeys
	sigs := proof.Signatures

	ikey := 0
	isig := 0
	result := make(map[int]*validSignature, len(pubKeys))

	for isig < len(sigs) && ikey < len(pubKeys) {
		sig := sigs[len(sigs)-1-isig]
		keyIdx := len(pubKeys) - 1 - ikey

		valid, err := c.CheckSig(proof.RedeemScript, pubKeys[keyIdx].Serialize(), sig)
		if err == nil {
			result[keyIdx] = valid
			isig++
		}

		ikey++
	}

	return result
}
