// Package tx builds and encodes the single input, single output
// transaction skeleton that the assembler signs.
package tx

import (
	"bytes"
	"encoding/hex"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btcutil"
	"github.com/pkg/errors"
)

const (
	// DefaultVersion is the version of a newly created transaction.
	DefaultVersion int32 = 1

	// FinalSequence disables relative lock time and RBF signalling.
	FinalSequence uint32 = wire.MaxTxInSequenceNum
)

// ParseOutPoint builds an outpoint from a txid in its usual
// byte-reversed hex form. An empty txid yields the all-zero hash.
func ParseOutPoint(txid string, index uint32) (*wire.OutPoint, error) {
	var hash chainhash.Hash
	if txid != "" {
		h, err := chainhash.NewHashFromStr(txid)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid txid %s", txid)
		}
		hash = *h
	}
	return wire.NewOutPoint(&hash, index), nil
}

// Skeleton describes the unsigned transaction.
type Skeleton struct {
	Version  int32
	PrevOut  wire.OutPoint
	Sequence uint32
	PkScript []byte
	Value    int64
	LockTime uint32
}

// New returns an unsigned transaction with one input spending
// s.PrevOut and one output paying s.Value to s.PkScript.
func New(s *Skeleton) (*wire.MsgTx, error) {
	if s.Value < 0 || s.Value > btcutil.MaxSatoshi {
		return nil, errors.Errorf("output value %d out of range", s.Value)
	}
	if len(s.PkScript) == 0 {
		return nil, errors.New("output script is empty")
	}

	prevOut := s.PrevOut
	msg := wire.NewMsgTx(s.Version)
	in := wire.NewTxIn(&prevOut, nil, nil)
	in.Sequence = s.Sequence
	msg.AddTxIn(in)
	msg.AddTxOut(wire.NewTxOut(s.Value, s.PkScript))
	msg.LockTime = s.LockTime

	return msg, nil
}

// AttachProof sets the scriptSig and witness of input idx.
func AttachProof(msg *wire.MsgTx, idx int, scriptSig []byte, witness wire.TxWitness) error {
	if idx < 0 || idx >= len(msg.TxIn) {
		return errors.Errorf("input %d does not exist, transaction has %d", idx, len(msg.TxIn))
	}
	msg.TxIn[idx].SignatureScript = scriptSig
	msg.TxIn[idx].Witness = witness
	return nil
}

// Serialize encodes msg in the network format. Witness encoding
// (marker and flag) is used iff any input carries a witness.
func Serialize(msg *wire.MsgTx) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(msg.SerializeSize())
	if err := msg.Serialize(&buf); err != nil {
		return nil, errors.Wrap(err, "serialize transaction")
	}
	return buf.Bytes(), nil
}

// EncodeHex is Serialize as lowercase hex.
func EncodeHex(msg *wire.MsgTx) (string, error) {
	raw, err := Serialize(msg)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}

// Deserialize parses a transaction in either encoding.
func Deserialize(raw []byte) (*wire.MsgTx, error) {
	msg := &wire.MsgTx{}
	if err := msg.Deserialize(bytes.NewReader(raw)); err != nil {
		return nil, errors.Wrap(err, "deserialize transaction")
	}
	return msg, nil
}

// DecodeHex parses a hex encoded transaction.
func DecodeHex(s string) (*wire.MsgTx, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.Wrap(err, "invalid transaction hex")
	}
	return Deserialize(raw)
}
