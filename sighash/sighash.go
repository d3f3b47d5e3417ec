// Package sighash computes the BIP143 signature hash that version 0
// witness signatures commit to.
package sighash

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/pkg/errors"
)

// ErrUnsupportedSighashType is returned for any hash type but SIGHASH_ALL.
var ErrUnsupportedSighashType = errors.New("unsupported sighash type")

// Hashes are the three intermediate digests shared by every input
// of a transaction signed with SIGHASH_ALL.
type Hashes struct {
	Prevouts chainhash.Hash
	Sequence chainhash.Hash
	Outputs  chainhash.Hash
}

// NewHashes computes hashPrevouts, hashSequence and hashOutputs.
func NewHashes(msg *wire.MsgTx) (*Hashes, error) {
	var prevouts, sequences, outputs bytes.Buffer

	for _, in := range msg.TxIn {
		writeOutPoint(&prevouts, &in.PreviousOutPoint)
		writeUint32(&sequences, in.Sequence)
	}
	for i, out := range msg.TxOut {
		if err := wire.WriteTxOut(&outputs, 0, msg.Version, out); err != nil {
			return nil, errors.Wrapf(err, "write output %d", i)
		}
	}

	return &Hashes{
		Prevouts: chainhash.DoubleHashH(prevouts.Bytes()),
		Sequence: chainhash.DoubleHashH(sequences.Bytes()),
		Outputs:  chainhash.DoubleHashH(outputs.Bytes()),
	}, nil
}

// CheckType rejects every hash type this package cannot compute.
func CheckType(hashType txscript.SigHashType) error {
	if hashType != txscript.SigHashAll {
		return errors.Wrapf(ErrUnsupportedSighashType, "0x%02x", uint32(hashType))
	}
	return nil
}

// Calculate returns the digest for input idx spending amount, with
// scriptCode being the witness script. hashes may be nil, in which
// case they are computed from msg.
func Calculate(msg *wire.MsgTx, hashes *Hashes, idx int, scriptCode []byte, amount int64, hashType txscript.SigHashType) ([]byte, error) {
	if err := CheckType(hashType); err != nil {
		return nil, err
	}
	if idx < 0 || idx >= len(msg.TxIn) {
		return nil, errors.Errorf("input %d does not exist, transaction has %d", idx, len(msg.TxIn))
	}
	if hashes == nil {
		var err error
		if hashes, err = NewHashes(msg); err != nil {
			return nil, err
		}
	}

	in := msg.TxIn[idx]
	var preimage bytes.Buffer

	writeUint32(&preimage, uint32(msg.Version))
	preimage.Write(hashes.Prevouts[:])
	preimage.Write(hashes.Sequence[:])
	writeOutPoint(&preimage, &in.PreviousOutPoint)
	if err := wire.WriteVarBytes(&preimage, 0, scriptCode); err != nil {
		return nil, errors.Wrap(err, "write scriptCode")
	}
	writeUint64(&preimage, uint64(amount))
	writeUint32(&preimage, in.Sequence)
	preimage.Write(hashes.Outputs[:])
	writeUint32(&preimage, msg.LockTime)
	writeUint32(&preimage, uint32(hashType))

	return chainhash.DoubleHashB(preimage.Bytes()), nil
}

func writeOutPoint(w io.Writer, op *wire.OutPoint) {
	w.Write(op.Hash[:])
	writeUint32(w, op.Index)
}

func writeUint32(w io.Writer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.Write(b[:])
}

func writeUint64(w io.Writer, v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.Write(b[:])
}
