package tx

import (
	"encoding/hex"

	"github.com/btcsuite/btcd/wire"
)

// witnessScaleFactor weighs non-witness bytes per BIP141.
const witnessScaleFactor = 4

// InputSummary is the printable form of a TxIn.
type InputSummary struct {
	PrevOut   string
	ScriptSig string
	Sequence  uint32
	Witness   []string
}

// OutputSummary is the printable form of a TxOut.
type OutputSummary struct {
	Value    int64
	PkScript string
}

// Summary describes a decoded transaction for reporting.
type Summary struct {
	TxID     string
	WTxID    string
	Version  int32
	LockTime uint32
	Size     int
	Weight   int
	VSize    int
	Inputs   []InputSummary
	Outputs  []OutputSummary
}

// Summarize renders msg for reporting.
func Summarize(msg *wire.MsgTx) *Summary {
	stripped := msg.SerializeSizeStripped()
	total := msg.SerializeSize()
	weight := stripped*(witnessScaleFactor-1) + total

	s := &Summary{
		TxID:     msg.TxHash().String(),
		WTxID:    msg.WitnessHash().String(),
		Version:  msg.Version,
		LockTime: msg.LockTime,
		Size:     total,
		Weight:   weight,
		VSize:    (weight + witnessScaleFactor - 1) / witnessScaleFactor,
		Inputs:   make([]InputSummary, len(msg.TxIn)),
		Outputs:  make([]OutputSummary, len(msg.TxOut)),
	}

	for i, in := range msg.TxIn {
		witness := make([]string, len(in.Witness))
		for j, item := range in.Witness {
			witness[j] = hex.EncodeToString(item)
		}
		s.Inputs[i] = InputSummary{
			PrevOut:   in.PreviousOutPoint.String(),
			ScriptSig: hex.EncodeToString(in.SignatureScript),
			Sequence:  in.Sequence,
			Witness:   witness,
		}
	}

	for i, out := range msg.TxOut {
		s.Outputs[i] = OutputSummary{
			Value:    out.Value,
			PkScript: hex.EncodeToString(out.PkScript),
		}
	}

	return s
}
