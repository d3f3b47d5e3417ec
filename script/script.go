// Package script derives the P2SH-P2WSH address of a multisig
// redeem script and the scripts needed to spend it.
package script

import (
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcutil"
	"github.com/btcsuite/btcutil/base58"
	"github.com/btcsuite/fastsha256"
	"github.com/pkg/errors"
	"golang.org/x/crypto/ripemd160"
)

const (
	// WitnessV0 is the witness version of a P2WSH program.
	WitnessV0 = txscript.OP_0

	// WitnessV0ScriptHashSize is the length of a P2WSH program's hash.
	WitnessV0ScriptHashSize = fastsha256.Size
)

var (
	// ErrAddressMismatch is returned when the derived address is not
	// the one the caller expects to spend from.
	ErrAddressMismatch = errors.New("address mismatch")

	// ErrMalformedRedeemScript is returned when a redeem script is not
	// a standard m-of-n CHECKMULTISIG script.
	ErrMalformedRedeemScript = errors.New("malformed redeem script")
)

// Hash160 is RIPEMD-160(SHA-256(b)).
func Hash160(b []byte) []byte {
	sha := fastsha256.Sum256(b)
	h := ripemd160.New()
	h.Write(sha[:])
	return h.Sum(nil)
}

// WitnessProgram returns the P2WSH program committing to redeemScript:
// OP_0 followed by a push of SHA-256(redeemScript).
func WitnessProgram(redeemScript []byte) []byte {
	scriptHash := fastsha256.Sum256(redeemScript)
	wp := make([]byte, 0, 2+WitnessV0ScriptHashSize)
	wp = append(wp, WitnessV0, WitnessV0ScriptHashSize)
	return append(wp, scriptHash[:]...)
}

// P2SHAddress Base58Check encodes HASH160(witnessProgram) under the
// network's script hash version byte.
func P2SHAddress(witnessProgram []byte, version byte) string {
	return base58.CheckEncode(Hash160(witnessProgram), version)
}

// ValidateExpectedAddress fails unless computed equals expected.
func ValidateExpectedAddress(computed, expected string) error {
	if computed != expected {
		return errors.Wrapf(ErrAddressMismatch, "computed %s, expected %s", computed, expected)
	}
	return nil
}

// P2SHScript is the output script OP_HASH160 <HASH160(redeem)> OP_EQUAL.
func P2SHScript(redeem []byte) ([]byte, error) {
	return txscript.NewScriptBuilder().
		AddOp(txscript.OP_HASH160).
		AddData(Hash160(redeem)).
		AddOp(txscript.OP_EQUAL).
		Script()
}

// ScriptSig is the push-only input script for a nested witness
// spend: a single push of the witness program.
func ScriptSig(witnessProgram []byte) ([]byte, error) {
	return txscript.NewScriptBuilder().AddData(witnessProgram).Script()
}

// PayToAddress returns the output script paying to a Base58 or
// bech32 address of the given network.
func PayToAddress(address string, params *chaincfg.Params) ([]byte, error) {
	addr, err := btcutil.DecodeAddress(address, params)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid destination %s", address)
	}
	if !addr.IsForNet(params) {
		return nil, errors.Errorf("destination %s is not for network %s", address, params.Name)
	}
	return txscript.PayToAddrScript(addr)
}

// Derivation collects every script derived from one redeem script.
type Derivation struct {
	RedeemScript   []byte
	Multisig       *Multisig
	WitnessProgram []byte
	ScriptSig      []byte
	PkScript       []byte
	Address        string
}

// Derive parses redeemScript and derives its nested witness scripts
// and address for params.
func Derive(redeemScript []byte, params *chaincfg.Params) (*Derivation, error) {
	ms, err := ParseMultisig(redeemScript)
	if err != nil {
		return nil, err
	}

	wp := WitnessProgram(redeemScript)
	scriptSig, err := ScriptSig(wp)
	if err != nil {
		return nil, errors.Wrap(err, "build scriptSig")
	}
	pkScript, err := P2SHScript(wp)
	if err != nil {
		return nil, errors.Wrap(err, "build P2SH script")
	}

	return &Derivation{
		RedeemScript:   redeemScript,
		Multisig:       ms,
		WitnessProgram: wp,
		ScriptSig:      scriptSig,
		PkScript:       pkScript,
		Address:        P2SHAddress(wp, params.ScriptHashAddrID),
	}, nil
}
