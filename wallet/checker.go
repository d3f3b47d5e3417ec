package wallet

import (
	"github.com/btccom/nestedmultisig/keys"
	"github.com/btccom/nestedmultisig/sighash"
	"github.com/btccom/nestedmultisig/signer"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/pkg/errors"
)

// validSignature is an internal structure for capturing
// the fields of a valid signature
type validSignature struct {
	pubKey *keys.PublicKey
	sig    *signer.TxSignature
	hash   []byte
}

// checker computes witness v0 signature hashes for one input of
// a transaction and verifies signatures against them.
type checker struct {
	tx     *wire.MsgTx
	nIn    int
	amount int64
	hashes *sighash.Hashes
}

// newChecker binds a checker to input nIn, which spends amount.
// The intermediate hashes are computed once and shared by every
// signature checked afterwards, so tx must not change in between.
func newChecker(tx *wire.MsgTx, nIn int, amount int64) (*checker, error) {
	if nIn < 0 || nIn > len(tx.TxIn)-1 {
		return nil, errors.New("no input at this index")
	}

	hashes, err := sighash.NewHashes(tx)
	if err != nil {
		return nil, err
	}

	return &checker{
		tx:     tx,
		nIn:    nIn,
		amount: amount,
		hashes: hashes,
	}, nil
}

// GetSigHash returns the digest committed to by a signature of
// hashType, with script as the witness script.
func (c *checker) GetSigHash(script []byte, hashType txscript.SigHashType) ([]byte, error) {
	return sighash.Calculate(c.tx, c.hashes, c.nIn, script, c.amount, hashType)
}

// CheckSig parses a serialized key and witness signature and
// verifies the signature over this input.
func (c *checker) CheckSig(script []byte, vchPubKey []byte, vchSig []byte) (*validSignature, error) {
	pubKey, err := keys.ParsePublicKey(vchPubKey)
	if err != nil {
		return nil, err
	}

	txSig, err := signer.ParseTxSignature(vchSig)
	if err != nil {
		return nil, err
	}

	hash, err := c.GetSigHash(script, txSig.HashType)
	if err != nil {
		return nil, errors.Wrap(err, "checker failed to create sighash")
	}

	if !txSig.Signature.Verify(hash, pubKey.ECKey()) {
		return nil, errors.New("invalid signature")
	}

	return &validSignature{
		pubKey: pubKey,
		sig:    txSig,
		hash:   hash,
	}, nil
}
