package script

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcutil"
	"github.com/pkg/errors"
	_assert "github.com/stretchr/testify/require"
)

const (
	redeemScriptHex   = "5221032ff8c5df0bc00fe1ac2319c3b8070d6d1e04cfbf4fedda499ae7b775185ad53b21039bbc8d24f89e5bc44c5b0d1980d6658316a6b2440023117c3c03a4975b04dd5652ae"
	witnessProgramHex = "00204d4b11da1a44efeb2882827c0b85fbc82d30a60fccab14d032226f5428b57cb6"
	outerHashHex      = "043f512301b66ffa8d73e71907e2b0b809895215"
	mainnetAddress    = "325UUecEQuyrTd28Xs2hvAxdAjHM7XzqVF"
)

func mustHex(t *testing.T, s string) []byte {
	b, err := hex.DecodeString(s)
	_assert.NoError(t, err)
	return b
}

func TestWitnessProgram(t *testing.T) {
	wp := WitnessProgram(mustHex(t, redeemScriptHex))
	_assert.Equal(t, witnessProgramHex, hex.EncodeToString(wp))
	_assert.Len(t, wp, 34)
}

func TestHash160MatchesBtcutil(t *testing.T) {
	wp := mustHex(t, witnessProgramHex)
	_assert.Equal(t, btcutil.Hash160(wp), Hash160(wp))
	_assert.Equal(t, outerHashHex, hex.EncodeToString(Hash160(wp)))
}

func TestP2SHAddress(t *testing.T) {
	wp := WitnessProgram(mustHex(t, redeemScriptHex))

	t.Run("mainnet", func(t *testing.T) {
		_assert.Equal(t, mainnetAddress, P2SHAddress(wp, chaincfg.MainNetParams.ScriptHashAddrID))
	})

	t.Run("testnet", func(t *testing.T) {
		addr := P2SHAddress(wp, chaincfg.TestNet3Params.ScriptHashAddrID)
		_assert.True(t, strings.HasPrefix(addr, "2"))

		decoded, err := btcutil.DecodeAddress(addr, &chaincfg.TestNet3Params)
		_assert.NoError(t, err)
		_assert.Equal(t, outerHashHex, hex.EncodeToString(decoded.ScriptAddress()))
	})

	t.Run("deterministic", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			_assert.Equal(t, mainnetAddress, P2SHAddress(WitnessProgram(mustHex(t, redeemScriptHex)), 0x05))
		}
	})
}

func TestAddressChangesWithEveryByte(t *testing.T) {
	rs := mustHex(t, redeemScriptHex)
	seen := map[string]bool{mainnetAddress: true}

	for i := range rs {
		mutated := make([]byte, len(rs))
		copy(mutated, rs)
		mutated[i] ^= 0x01

		addr := P2SHAddress(WitnessProgram(mutated), 0x05)
		_assert.False(t, seen[addr], "byte %d produced a repeated address", i)
		seen[addr] = true
	}
}

func TestValidateExpectedAddress(t *testing.T) {
	_assert.NoError(t, ValidateExpectedAddress(mainnetAddress, mainnetAddress))

	err := ValidateExpectedAddress("3Other", mainnetAddress)
	_assert.Equal(t, ErrAddressMismatch, errors.Cause(err))
	_assert.EqualError(t, err, "computed 3Other, expected "+mainnetAddress+": address mismatch")
}

func TestScriptSigPushesWitnessProgram(t *testing.T) {
	scriptSig, err := ScriptSig(mustHex(t, witnessProgramHex))
	_assert.NoError(t, err)
	_assert.Equal(t, "22"+witnessProgramHex, hex.EncodeToString(scriptSig))
}

func TestP2SHScript(t *testing.T) {
	pkScript, err := P2SHScript(mustHex(t, witnessProgramHex))
	_assert.NoError(t, err)
	_assert.Equal(t, "a914"+outerHashHex+"87", hex.EncodeToString(pkScript))

	fromAddr, err := PayToAddress(mainnetAddress, &chaincfg.MainNetParams)
	_assert.NoError(t, err)
	_assert.Equal(t, pkScript, fromAddr)
}

func TestPayToAddressErrors(t *testing.T) {
	_, err := PayToAddress("not an address", &chaincfg.MainNetParams)
	_assert.Error(t, err)

	_, err = PayToAddress(mainnetAddress, &chaincfg.TestNet3Params)
	_assert.Error(t, err)
}

func TestDerive(t *testing.T) {
	d, err := Derive(mustHex(t, redeemScriptHex), &chaincfg.MainNetParams)
	_assert.NoError(t, err)

	_assert.Equal(t, mainnetAddress, d.Address)
	_assert.Equal(t, witnessProgramHex, hex.EncodeToString(d.WitnessProgram))
	_assert.Equal(t, "22"+witnessProgramHex, hex.EncodeToString(d.ScriptSig))
	_assert.Equal(t, "a914"+outerHashHex+"87", hex.EncodeToString(d.PkScript))
	_assert.Equal(t, 2, d.Multisig.Required)
	_assert.Len(t, d.Multisig.PubKeys, 2)

	_, err = Derive([]byte{0x51}, &chaincfg.MainNetParams)
	_assert.Equal(t, ErrMalformedRedeemScript, errors.Cause(err))
}
