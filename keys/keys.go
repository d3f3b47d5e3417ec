// Package keys holds the secp256k1 signing keys of a spend and the
// compressed public keys derived from them.
package keys

import (
	"bytes"
	"encoding/hex"
	"math/big"

	"github.com/btccom/nestedmultisig/bip32util"
	"github.com/btcsuite/btcd/btcec"
	"github.com/pkg/errors"
)

// PrivateKeySize is the length of a raw secret scalar.
const PrivateKeySize = 32

var (
	// ErrInvalidPrivateKey is returned for scalars that are not
	// 32 bytes, are zero, or are not below the curve order.
	ErrInvalidPrivateKey = errors.New("invalid private key")

	// ErrKeyErased is returned when a zeroed key is used.
	ErrKeyErased = errors.New("private key has been erased")
)

// PrivateKey is a signing key. It is only used to derive its
// PublicKey and to sign digests.
type PrivateKey struct {
	key *btcec.PrivateKey
	pub *PublicKey
}

// NewPrivateKey validates raw as a secret scalar.
func NewPrivateKey(raw []byte) (*PrivateKey, error) {
	if len(raw) != PrivateKeySize {
		return nil, errors.Wrapf(ErrInvalidPrivateKey, "expected %d bytes, got %d", PrivateKeySize, len(raw))
	}

	d := new(big.Int).SetBytes(raw)
	defer wipeInt(d)
	if d.Sign() == 0 || d.Cmp(btcec.S256().N) >= 0 {
		return nil, errors.Wrap(ErrInvalidPrivateKey, "scalar out of range")
	}

	priv, _ := btcec.PrivKeyFromBytes(btcec.S256(), raw)
	return FromECKey(priv), nil
}

// ParsePrivateKey decodes a hex encoded secret scalar.
func ParsePrivateKey(hexKey string) (*PrivateKey, error) {
	raw, err := hex.DecodeString(hexKey)
	defer wipeBytes(raw)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidPrivateKey, err.Error())
	}
	return NewPrivateKey(raw)
}

// FromBip32 derives the signing key at path below an extended
// private key.
func FromBip32(xprv string, path string) (*PrivateKey, error) {
	priv, err := bip32util.SigningKey(xprv, path)
	if err != nil {
		return nil, err
	}
	return FromECKey(priv), nil
}

// FromECKey wraps an existing btcec key.
func FromECKey(priv *btcec.PrivateKey) *PrivateKey {
	return &PrivateKey{
		key: priv,
		pub: &PublicKey{key: priv.PubKey()},
	}
}

// PubKey returns the public key for k.
func (k *PrivateKey) PubKey() *PublicKey {
	return k.pub
}

// ECKey exposes the underlying btcec key for signing.
func (k *PrivateKey) ECKey() (*btcec.PrivateKey, error) {
	if k.key == nil {
		return nil, ErrKeyErased
	}
	return k.key, nil
}

// Zero overwrites the words backing the secret scalar. The key is
// unusable afterwards, its public key stays readable.
func (k *PrivateKey) Zero() {
	if k.key == nil {
		return
	}
	wipeInt(k.key.D)
	k.key = nil
}

// wipeInt clears every backing word of v, including spare capacity,
// then sets v to zero.
func wipeInt(v *big.Int) {
	words := v.Bits()
	words = words[:cap(words)]
	for i := range words {
		words[i] = 0
	}
	v.SetInt64(0)
}

func wipeBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// PublicKey is a point on secp256k1, always serialized compressed.
type PublicKey struct {
	key *btcec.PublicKey
}

// ParsePublicKey accepts any SEC encoding btcec understands.
func ParsePublicKey(raw []byte) (*PublicKey, error) {
	pub, err := btcec.ParsePubKey(raw, btcec.S256())
	if err != nil {
		return nil, errors.Wrap(err, "invalid public key")
	}
	return &PublicKey{key: pub}, nil
}

// Serialize returns the 33 byte compressed encoding.
func (p *PublicKey) Serialize() []byte {
	return p.key.SerializeCompressed()
}

// ECKey exposes the underlying btcec key for verification.
func (p *PublicKey) ECKey() *btcec.PublicKey {
	return p.key
}

// Equal compares the compressed encodings.
func (p *PublicKey) Equal(other *PublicKey) bool {
	return other != nil && bytes.Equal(p.Serialize(), other.Serialize())
}

// String is the hex of the compressed encoding.
func (p *PublicKey) String() string {
	return hex.EncodeToString(p.Serialize())
}
