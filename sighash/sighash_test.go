package sighash

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/pkg/errors"
	_assert "github.com/stretchr/testify/require"
)

const (
	redeemScriptHex = "5221032ff8c5df0bc00fe1ac2319c3b8070d6d1e04cfbf4fedda499ae7b775185ad53b21039bbc8d24f89e5bc44c5b0d1980d6658316a6b2440023117c3c03a4975b04dd5652ae"
	p2shScriptHex   = "a914043f512301b66ffa8d73e71907e2b0b80989521587"
	expectedDigest  = "5ef430728099efb90dfda0a177aefcc14ed06e470a93dd54e1c4d4c8f7a0aea1"
)

func mustHex(t *testing.T, s string) []byte {
	b, err := hex.DecodeString(s)
	_assert.NoError(t, err)
	return b
}

func singleInputTx(t *testing.T) *wire.MsgTx {
	msg := wire.NewMsgTx(1)
	in := wire.NewTxIn(wire.NewOutPoint(&chainhash.Hash{}, 0), nil, nil)
	in.Sequence = wire.MaxTxInSequenceNum
	msg.AddTxIn(in)
	msg.AddTxOut(wire.NewTxOut(100000, mustHex(t, p2shScriptHex)))
	return msg
}

func TestCalculateKnownDigest(t *testing.T) {
	msg := singleInputTx(t)
	digest, err := Calculate(msg, nil, 0, mustHex(t, redeemScriptHex), 100000, txscript.SigHashAll)
	_assert.NoError(t, err)
	_assert.Equal(t, expectedDigest, hex.EncodeToString(digest))
}

func TestCalculateMatchesTxscript(t *testing.T) {
	prev1, err := chainhash.NewHashFromStr("abcd1234abcd1234abcd1234abcd1234abcd1234abcd1234abcd1234abcd1234")
	_assert.NoError(t, err)
	prev2, err := chainhash.NewHashFromStr("1111222233334444555566667777888899990000aaaabbbbccccddddeeeeffff")
	_assert.NoError(t, err)

	msg := wire.NewMsgTx(2)
	in1 := wire.NewTxIn(wire.NewOutPoint(prev1, 7), nil, nil)
	in1.Sequence = 0xfffffffd
	in2 := wire.NewTxIn(wire.NewOutPoint(prev2, 0), nil, nil)
	in2.Sequence = 12
	msg.AddTxIn(in1)
	msg.AddTxIn(in2)
	msg.AddTxOut(wire.NewTxOut(5000, mustHex(t, p2shScriptHex)))
	msg.AddTxOut(wire.NewTxOut(123456789, []byte{txscript.OP_RETURN}))
	msg.LockTime = 500000

	rs := mustHex(t, redeemScriptHex)
	ours, err := NewHashes(msg)
	_assert.NoError(t, err)
	theirs := txscript.NewTxSigHashes(msg)
	_assert.Equal(t, theirs.HashPrevOuts, ours.Prevouts)
	_assert.Equal(t, theirs.HashSequence, ours.Sequence)
	_assert.Equal(t, theirs.HashOutputs, ours.Outputs)

	for idx, amount := range []int64{99999, 1} {
		expected, err := txscript.CalcWitnessSigHash(rs, theirs, txscript.SigHashAll, msg, idx, amount)
		_assert.NoError(t, err)

		digest, err := Calculate(msg, ours, idx, rs, amount, txscript.SigHashAll)
		_assert.NoError(t, err)
		_assert.Equal(t, expected, digest)
	}
}

func TestCalculateCommitsToAmount(t *testing.T) {
	msg := singleInputTx(t)
	rs := mustHex(t, redeemScriptHex)

	a, err := Calculate(msg, nil, 0, rs, 100000, txscript.SigHashAll)
	_assert.NoError(t, err)
	b, err := Calculate(msg, nil, 0, rs, 100001, txscript.SigHashAll)
	_assert.NoError(t, err)
	_assert.False(t, bytes.Equal(a, b))
}

func TestCalculateRejectsOtherTypes(t *testing.T) {
	msg := singleInputTx(t)
	before := msg.TxHash()

	for _, hashType := range []txscript.SigHashType{
		txscript.SigHashOld,
		txscript.SigHashNone,
		txscript.SigHashSingle,
		txscript.SigHashAll | txscript.SigHashAnyOneCanPay,
	} {
		digest, err := Calculate(msg, nil, 0, mustHex(t, redeemScriptHex), 100000, hashType)
		_assert.Nil(t, digest)
		_assert.Equal(t, ErrUnsupportedSighashType, errors.Cause(err))
	}

	_assert.Equal(t, before, msg.TxHash())
}

func TestCalculateRejectsMissingInput(t *testing.T) {
	msg := singleInputTx(t)
	_, err := Calculate(msg, nil, 1, nil, 0, txscript.SigHashAll)
	_assert.EqualError(t, err, "input 1 does not exist, transaction has 1")
}

func TestNewHashesLongOutputScript(t *testing.T) {
	msg := singleInputTx(t)
	// a script over 252 bytes takes a three byte length prefix
	msg.AddTxOut(wire.NewTxOut(0, bytes.Repeat([]byte{txscript.OP_NOP}, 300)))

	ours, err := NewHashes(msg)
	_assert.NoError(t, err)

	var expected bytes.Buffer
	for _, out := range msg.TxOut {
		_assert.NoError(t, wire.WriteTxOut(&expected, 0, msg.Version, out))
	}
	_assert.Equal(t, chainhash.DoubleHashH(expected.Bytes()), ours.Outputs)
	_assert.Equal(t, txscript.NewTxSigHashes(msg).HashOutputs, ours.Outputs)
}
