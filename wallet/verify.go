package wallet

import (
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/pkg/errors"
)

// ErrScriptValidation is returned when a signed input does not
// satisfy the output it spends.
var ErrScriptValidation = errors.New("script validation failed")

// VerifyInput checks input idx of msg against the P2SH output
// script it spends. The signatures are first paired with the
// redeem script's keys in CHECKMULTISIG order, then the input is
// executed by the script engine under flags.
func VerifyInput(msg *wire.MsgTx, idx int, pkScript []byte, amount int64, flags txscript.ScriptFlags) error {
	c, err := newChecker(msg, idx, amount)
	if err != nil {
		return errors.Wrap(ErrScriptValidation, err.Error())
	}

	in := msg.TxIn[idx]
	proof, err := ExtractSpendProof(pkScript, in.SignatureScript, in.Witness)
	if err != nil {
		return errors.Wrap(ErrScriptValidation, err.Error())
	}

	paired := PairSignatures(c, proof)
	if len(paired) != proof.Multisig.Required {
		return errors.Wrapf(ErrScriptValidation, "%d of %d signatures match the script's keys in order",
			len(paired), proof.Multisig.Required)
	}

	vm, err := txscript.NewEngine(pkScript, msg, idx, flags, nil, nil, amount)
	if err != nil {
		return errors.Wrap(ErrScriptValidation, err.Error())
	}
	if err := vm.Execute(); err != nil {
		return errors.Wrap(ErrScriptValidation, err.Error())
	}

	log.Debugf("Input %d of %s verified, %d signatures paired", idx, msg.TxHash(), len(paired))
	return nil
}
