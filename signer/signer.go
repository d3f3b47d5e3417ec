// Package signer produces canonical ECDSA signatures over witness
// signature hashes and encodes them for the witness stack.
package signer

import (
	"math/big"

	"github.com/btccom/nestedmultisig/keys"
	"github.com/btcsuite/btcd/btcec"
	"github.com/btcsuite/btcd/txscript"
	"github.com/pkg/errors"
)

// DigestSize is the length of a signature hash.
const DigestSize = 32

var (
	// ErrInvalidSignatureEncoding is returned when r or s is not
	// in [1, n-1], or the encoded signature cannot be parsed.
	ErrInvalidSignatureEncoding = errors.New("invalid signature encoding")

	// ErrSelfCheck is returned when a fresh signature does not
	// verify against the signing key.
	ErrSelfCheck = errors.New("signature failed verification against its own key")

	halfOrder = new(big.Int).Rsh(btcec.S256().N, 1)
)

// Sign signs digest with key. Nonces are derived per RFC6979, so the
// same key and digest always give the same signature, and s is
// always in the lower half of the curve order.
func Sign(key *keys.PrivateKey, digest []byte) (*btcec.Signature, error) {
	if len(digest) != DigestSize {
		return nil, errors.Errorf("digest must be %d bytes, got %d", DigestSize, len(digest))
	}

	priv, err := key.ECKey()
	if err != nil {
		return nil, err
	}

	sig, err := priv.Sign(digest)
	if err != nil {
		return nil, errors.Wrap(err, "ecdsa sign")
	}
	if !IsLowS(sig.S) {
		sig.S = new(big.Int).Sub(btcec.S256().N, sig.S)
	}

	if !sig.Verify(digest, key.PubKey().ECKey()) {
		return nil, ErrSelfCheck
	}

	return sig, nil
}

// IsLowS reports whether s is at most half the curve order.
func IsLowS(s *big.Int) bool {
	return s.Cmp(halfOrder) <= 0
}

// EncodeSignature DER encodes (r, s) with minimal integers, using the
// low-s form, and appends hashType as the final byte.
func EncodeSignature(r, s *big.Int, hashType txscript.SigHashType) ([]byte, error) {
	if err := checkScalar("r", r); err != nil {
		return nil, err
	}
	if err := checkScalar("s", s); err != nil {
		return nil, err
	}

	sig := &btcec.Signature{R: r, S: s}
	if !IsLowS(s) {
		sig.S = new(big.Int).Sub(btcec.S256().N, s)
	}

	return append(sig.Serialize(), byte(hashType)), nil
}

func checkScalar(name string, v *big.Int) error {
	if v == nil {
		return errors.Wrapf(ErrInvalidSignatureEncoding, "%s is missing", name)
	}
	if v.Sign() <= 0 || v.Cmp(btcec.S256().N) >= 0 {
		return errors.Wrapf(ErrInvalidSignatureEncoding, "%s out of range", name)
	}
	return nil
}

// TxSignature is an ECDSA signature together with the sighash
// type it was made for, as it appears on the witness stack.
type TxSignature struct {
	HashType  txscript.SigHashType
	Signature *btcec.Signature
}

// Serialize encodes the signature followed by its hash type byte.
func (sig *TxSignature) Serialize() ([]byte, error) {
	if sig.Signature == nil {
		return nil, errors.Wrap(ErrInvalidSignatureEncoding, "signature is missing")
	}
	return EncodeSignature(sig.Signature.R, sig.Signature.S, sig.HashType)
}

// ParseTxSignature strictly parses a DER signature with a trailing
// hash type byte.
func ParseTxSignature(sig []byte) (*TxSignature, error) {
	if len(sig) < 1 {
		return nil, errors.Wrap(ErrInvalidSignatureEncoding, "signature too short")
	}

	hashType := txscript.SigHashType(sig[len(sig)-1])
	signature, err := btcec.ParseDERSignature(sig[:len(sig)-1], btcec.S256())
	if err != nil {
		return nil, errors.Wrap(ErrInvalidSignatureEncoding, err.Error())
	}

	return &TxSignature{
		HashType:  hashType,
		Signature: signature,
	}, nil
}

// KeySigner signs with an in-memory private key.
type KeySigner struct {
	Key *keys.PrivateKey
}

// PubKey returns the public key signatures verify against.
func (k *KeySigner) PubKey() *keys.PublicKey {
	return k.Key.PubKey()
}

// Sign signs digest with the wrapped key.
func (k *KeySigner) Sign(digest []byte) (*btcec.Signature, error) {
	return Sign(k.Key, digest)
}
