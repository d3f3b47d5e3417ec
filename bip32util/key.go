package bip32util

import (
	"github.com/btcsuite/btcd/btcec"
	"github.com/btcsuite/btcutil/hdkeychain"
	"github.com/pkg/errors"
)

var (
	// ErrBadRootKey is returned when an absolute path is applied
	// to a key that is not a master key.
	ErrBadRootKey = errors.New("root key must have a depth and parent fingerprint of 0")

	// ErrKeyIsPublic is returned when a private key is requested
	// from an extended public key.
	ErrKeyIsPublic = errors.New("extended key is public, a private key is required")

	// ErrPublicPath is returned when a signing key is derived
	// along an M/ path.
	ErrPublicPath = errors.New("path is for a public key, signing requires an m/ path")
)

// Derive walks path from the master key and returns the final child.
func Derive(master *hdkeychain.ExtendedKey, path *Path) (*hdkeychain.ExtendedKey, error) {
	if master.Depth() != 0 || master.ParentFingerprint() != 0 {
		return nil, ErrBadRootKey
	}

	if path.IsPrivate() && !master.IsPrivate() {
		return nil, ErrKeyIsPublic
	}

	key := master
	if !path.IsPrivate() && master.IsPrivate() {
		var err error
		key, err = master.Neuter()
		if err != nil {
			return nil, err
		}
	}

	for depth, index := range path.Indices {
		child, err := key.Child(index)
		if err != nil {
			return nil, errors.Wrapf(err, "derive level %d of %s", depth+1, path)
		}
		key = child
	}

	return key, nil
}

// SigningKey parses an extended private key, derives the key at
// path and returns its secp256k1 private key.
func SigningKey(xprv string, path string) (*btcec.PrivateKey, error) {
	master, err := hdkeychain.NewKeyFromString(xprv)
	if err != nil {
		return nil, errors.Wrap(err, "invalid extended key")
	}
	if !master.IsPrivate() {
		return nil, ErrKeyIsPublic
	}

	p, err := ParsePath(path)
	if err != nil {
		return nil, err
	}
	if !p.IsPrivate() {
		return nil, ErrPublicPath
	}

	child, err := Derive(master, p)
	if err != nil {
		return nil, err
	}

	return child.ECPrivKey()
}
