package script

import (
	"testing"

	"github.com/btccom/nestedmultisig/keys"
	"github.com/pkg/errors"
	_assert "github.com/stretchr/testify/require"
)

const (
	pub0Hex = "032ff8c5df0bc00fe1ac2319c3b8070d6d1e04cfbf4fedda499ae7b775185ad53b"
	pub1Hex = "039bbc8d24f89e5bc44c5b0d1980d6658316a6b2440023117c3c03a4975b04dd56"
)

func TestParseMultisig(t *testing.T) {
	ms, err := ParseMultisig(mustHex(t, redeemScriptHex))
	_assert.NoError(t, err)
	_assert.Equal(t, 2, ms.Required)
	_assert.Equal(t, pub0Hex, ms.PubKeys[0].String())
	_assert.Equal(t, pub1Hex, ms.PubKeys[1].String())

	pub1, err := keys.ParsePublicKey(mustHex(t, pub1Hex))
	_assert.NoError(t, err)
	_assert.Equal(t, 1, ms.KeyIndex(pub1))

	key, err := keys.ParsePrivateKey("0000000000000000000000000000000000000000000000000000000000000001")
	_assert.NoError(t, err)
	_assert.Equal(t, -1, ms.KeyIndex(key.PubKey()))
}

func TestParseMultisigRejectsMalformed(t *testing.T) {
	badKey := "21" + "05" + pub0Hex[2:]

	fixtures := []struct {
		name   string
		script string
	}{
		{"empty", ""},
		{"truncated", redeemScriptHex[:40]},
		{"missing checkmultisig", redeemScriptHex[:len(redeemScriptHex)-2]},
		{"pay to pubkey hash", "76a914043f512301b66ffa8d73e71907e2b0b80989521588ac"},
		{"more sigs than keys", "5321" + pub0Hex + "21" + pub1Hex + "52ae"},
		{"invalid key", "52" + badKey + "21" + pub1Hex + "52ae"},
	}

	for _, fixture := range fixtures {
		t.Run(fixture.name, func(t *testing.T) {
			ms, err := ParseMultisig(mustHex(t, fixture.script))
			_assert.Nil(t, ms)
			_assert.Equal(t, ErrMalformedRedeemScript, errors.Cause(err))
		})
	}
}
