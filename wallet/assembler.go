package wallet

import (
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/btccom/nestedmultisig/script"
	"github.com/btccom/nestedmultisig/signer"
	"github.com/btccom/nestedmultisig/tx"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/pkg/errors"
)

// MultisigDummy is pushed beneath the signatures of every
// CHECKMULTISIG spend. The opcode pops one item more than it uses,
// a consensus bug kept for compatibility, and NULLDUMMY requires
// that item to be empty.
var MultisigDummy = []byte{}

var (
	// ErrInvalidTransition is returned when an Assembler step is
	// called out of order, or after the build failed.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrSignerCount is returned when the number of signers is not
	// the number of signatures the redeem script requires.
	ErrSignerCount = errors.New("signer count doesn't match the redeem script")

	// ErrUnknownSigner is returned for a signer whose key is not
	// in the redeem script.
	ErrUnknownSigner = errors.New("signer key is not in the redeem script")
)

// State is a step of the Assembler pipeline.
type State int

const (
	// StateBuilt is the initial state.
	StateBuilt State = iota
	// StateAddressVerified follows a successful address check.
	StateAddressVerified
	// StateSkeletonConstructed means the unsigned transaction exists.
	StateSkeletonConstructed
	// StateDigestComputed means the signature hash is known.
	StateDigestComputed
	// StateSigned means every signer produced a signature.
	StateSigned
	// StateSerialized is final, the transaction bytes are available.
	StateSerialized
	// StateFailed is terminal.
	StateFailed
)

var stateNames = map[State]string{
	StateBuilt:               "Built",
	StateAddressVerified:     "AddressVerified",
	StateSkeletonConstructed: "SkeletonConstructed",
	StateDigestComputed:      "DigestComputed",
	StateSigned:              "Signed",
	StateSerialized:          "Serialized",
	StateFailed:              "Failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Spend holds everything one build needs besides the signers.
type Spend struct {
	RedeemScript    []byte
	ExpectedAddress string

	PrevOut    wire.OutPoint
	Sequence   uint32
	InputValue int64

	Destination string
	Amount      int64

	Version  int32
	LockTime uint32
}

// Assembler builds, signs and serializes one transaction spending
// a P2SH-P2WSH multisig output. It moves forward through its states
// one step at a time and is not reusable.
type Assembler struct {
	network *Network
	spend   *Spend
	signers []SignatureProvider
	verify  bool

	state State
	err   error

	derivation *script.Derivation
	tx         *wire.MsgTx
	checker    *checker
	hashType   txscript.SigHashType
	digest     []byte
	sigs       [][]byte
}

// NewAssembler prepares a build. Signers sign in the order given,
// and their signatures end up on the stack in reverse, so the last
// signer's key must come first in the redeem script.
func NewAssembler(network *Network, spend *Spend, signers []SignatureProvider) *Assembler {
	return &Assembler{
		network: network,
		spend:   spend,
		signers: signers,
		verify:  true,
		state:   StateBuilt,
	}
}

// SetVerify toggles the script engine check run by Serialize.
func (a *Assembler) SetVerify(verify bool) {
	a.verify = verify
}

// State returns the current step.
func (a *Assembler) State() State {
	return a.state
}

// Err returns the error that moved the Assembler to StateFailed.
func (a *Assembler) Err() error {
	return a.err
}

// Derivation returns the scripts derived from the redeem script,
// available from StateAddressVerified.
func (a *Assembler) Derivation() *script.Derivation {
	return a.derivation
}

// Tx returns the transaction, available from StateSkeletonConstructed.
func (a *Assembler) Tx() *wire.MsgTx {
	return a.tx
}

// Digest returns the signature hash, available from StateDigestComputed.
func (a *Assembler) Digest() []byte {
	return a.digest
}

func (a *Assembler) expect(state State) error {
	if a.state != state {
		return errors.Wrapf(ErrInvalidTransition, "in state %s, expected %s", a.state, state)
	}
	return nil
}

func (a *Assembler) fail(err error) error {
	a.state = StateFailed
	a.err = err
	log.Errorf("Build failed: %v", err)
	return err
}

// VerifyAddress derives the nested witness address of the redeem
// script and compares it with the expected address. No signer is
// consulted before this succeeds.
func (a *Assembler) VerifyAddress() error {
	if err := a.expect(StateBuilt); err != nil {
		return err
	}

	derivation, err := script.Derive(a.spend.RedeemScript, a.network.Params)
	if err != nil {
		return a.fail(err)
	}

	log.Infof("Expected P2SH address: %s", a.spend.ExpectedAddress)
	log.Infof("Calculated P2SH address: %s", derivation.Address)

	if err := script.ValidateExpectedAddress(derivation.Address, a.spend.ExpectedAddress); err != nil {
		return a.fail(err)
	}

	ms := derivation.Multisig
	if len(a.signers) != ms.Required {
		return a.fail(errors.Wrapf(ErrSignerCount, "%d signers for a %d-of-%d script",
			len(a.signers), ms.Required, len(ms.PubKeys)))
	}
	for i, s := range a.signers {
		if ms.KeyIndex(s.PubKey()) < 0 {
			return a.fail(errors.Wrapf(ErrUnknownSigner, "signer %d (%s)", i, s.PubKey()))
		}
	}

	a.derivation = derivation
	a.state = StateAddressVerified
	return nil
}

// ConstructSkeleton creates the unsigned transaction: one input
// spending the previous output, one output paying the destination.
func (a *Assembler) ConstructSkeleton() error {
	if err := a.expect(StateAddressVerified); err != nil {
		return err
	}

	pkScript, err := script.PayToAddress(a.spend.Destination, a.network.Params)
	if err != nil {
		return a.fail(err)
	}

	msg, err := tx.New(&tx.Skeleton{
		Version:  a.spend.Version,
		PrevOut:  a.spend.PrevOut,
		Sequence: a.spend.Sequence,
		PkScript: pkScript,
		Value:    a.spend.Amount,
		LockTime: a.spend.LockTime,
	})
	if err != nil {
		return a.fail(err)
	}

	c, err := newChecker(msg, 0, a.spend.InputValue)
	if err != nil {
		return a.fail(err)
	}

	log.Debugf("Skeleton spends %s, pays %d to %s", a.spend.PrevOut, a.spend.Amount, a.spend.Destination)

	a.tx = msg
	a.checker = c
	a.state = StateSkeletonConstructed
	return nil
}

// ComputeDigest computes the BIP143 signature hash of the input,
// with the redeem script as scriptCode. An unsupported hash type is
// rejected without changing the Assembler.
func (a *Assembler) ComputeDigest(hashType txscript.SigHashType) error {
	if err := a.expect(StateSkeletonConstructed); err != nil {
		return err
	}

	digest, err := a.checker.GetSigHash(a.derivation.RedeemScript, hashType)
	if err != nil {
		return err
	}

	log.Debugf("Signature hash: %s", hex.EncodeToString(digest))

	a.hashType = hashType
	a.digest = digest
	a.state = StateDigestComputed
	return nil
}

// Sign asks every signer, in order, for a signature over the digest.
func (a *Assembler) Sign() error {
	if err := a.expect(StateDigestComputed); err != nil {
		return err
	}

	sigs := make([][]byte, 0, len(a.signers))
	for i, s := range a.signers {
		sig, err := s.Sign(a.digest)
		if err != nil {
			return a.fail(errors.Wrapf(err, "signer %d", i))
		}
		if !sig.Verify(a.digest, s.PubKey().ECKey()) {
			return a.fail(errors.Wrapf(signer.ErrSelfCheck, "signer %d", i))
		}

		txSig := &signer.TxSignature{HashType: a.hashType, Signature: sig}
		encoded, err := txSig.Serialize()
		if err != nil {
			return a.fail(errors.Wrapf(err, "signer %d", i))
		}

		log.Infof("Signed with key %s", s.PubKey())
		sigs = append(sigs, encoded)
	}

	a.sigs = sigs
	a.state = StateSigned
	return nil
}

// Serialize attaches the witness and scriptSig and encodes the
// transaction. Unless disabled with SetVerify, the result is run
// through the script engine first and nothing is returned if it
// fails.
func (a *Assembler) Serialize() ([]byte, error) {
	if err := a.expect(StateSigned); err != nil {
		return nil, err
	}

	witness := BuildWitness(a.sigs, a.derivation.RedeemScript)
	if err := tx.AttachProof(a.tx, 0, a.derivation.ScriptSig, witness); err != nil {
		return nil, a.fail(err)
	}

	if a.verify {
		err := VerifyInput(a.tx, 0, a.derivation.PkScript, a.spend.InputValue, a.network.VerifyFlags)
		if err != nil {
			return nil, a.fail(err)
		}
	}

	raw, err := tx.Serialize(a.tx)
	if err != nil {
		return nil, a.fail(err)
	}

	a.state = StateSerialized
	return raw, nil
}

// Build runs every step with the network's default hash type.
func (a *Assembler) Build() (*wire.MsgTx, []byte, error) {
	if err := a.VerifyAddress(); err != nil {
		return nil, nil, err
	}
	if err := a.ConstructSkeleton(); err != nil {
		return nil, nil, err
	}
	if err := a.ComputeDigest(a.network.DefaultHashType); err != nil {
		return nil, nil, err
	}
	if err := a.Sign(); err != nil {
		return nil, nil, err
	}

	raw, err := a.Serialize()
	if err != nil {
		return nil, nil, err
	}

	return a.tx, raw, nil
}

// BuildWitness lays out the witness stack of a multisig spend: the
// dummy, the signatures in reverse of the order they were made, and
// the witness script last.
func BuildWitness(sigs [][]byte, witnessScript []byte) wire.TxWitness {
	witness := make(wire.TxWitness, 0, len(sigs)+2)
	witness = append(witness, MultisigDummy)
	for i := len(sigs) - 1; i >= 0; i-- {
		witness = append(witness, sigs[i])
	}
	return append(witness, witnessScript)
}

// OrderSigners returns signers sorted so that BuildWitness places
// their signatures in the order of ms's keys. Signers whose key is
// not in ms sort last.
func OrderSigners(ms *script.Multisig, signers []SignatureProvider) []SignatureProvider {
	ordered := make([]SignatureProvider, len(signers))
	copy(ordered, signers)

	sort.SliceStable(ordered, func(i, j int) bool {
		return ms.KeyIndex(ordered[i].PubKey()) > ms.KeyIndex(ordered[j].PubKey())
	})

	return ordered
}
