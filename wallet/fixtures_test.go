package wallet

import (
	"encoding/hex"
	"testing"

	"github.com/btccom/nestedmultisig/keys"
	"github.com/btccom/nestedmultisig/signer"
	"github.com/btcsuite/btcd/btcec"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	_assert "github.com/stretchr/testify/require"
)

const (
	testKey1 = "39dc0a9f0b185a2ee56349691f34716e6e0cda06a7f9707742ac113c4e2317bf"
	testKey2 = "5077ccd9c558b7d04a81920d38aa11b4a9f9de3b23fab45c3ef28039920fdd6d"

	redeemScriptHex = "5221032ff8c5df0bc00fe1ac2319c3b8070d6d1e04cfbf4fedda499ae7b775185ad53b21039bbc8d24f89e5bc44c5b0d1980d6658316a6b2440023117c3c03a4975b04dd5652ae"
	p2shScriptHex   = "a914043f512301b66ffa8d73e71907e2b0b80989521587"
	mainnetAddress  = "325UUecEQuyrTd28Xs2hvAxdAjHM7XzqVF"
	testnetAddress  = "2MsdgYPYG2NVCfQegCzeaY7wtP5VWqeAEsT"
	spendAmount     = int64(100000)

	expectedDigest = "5ef430728099efb90dfda0a177aefcc14ed06e470a93dd54e1c4d4c8f7a0aea1"
	sig1Hex        = "30450221009c5be27daa6a90db8b5e1d266078a0adc43fdfc11feb11e13a683763770b4494022072df4e7e0d767bb5ba2059d5f6114b519ffc072042d2a4a6ba8c00cb937edde301"
	sig2Hex        = "304402203e64841a39986e3d684752888ee17110e7877313c67d2c47391d70ec3a791e9002205342af2be9d4385bfa5bf24498f1a57d7a893bba088a931f9ae2065e898c3e6c01"

	expectedTxHex = "01000000000101000000000000000000000000000000000000000000000000000000000000000000000000232200204d4b11da1a44efeb2882827c0b85fbc82d30a60fccab14d032226f5428b57cb6ffffffff01a08601000000000017a914043f512301b66ffa8d73e71907e2b0b80989521587040047304402203e64841a39986e3d684752888ee17110e7877313c67d2c47391d70ec3a791e9002205342af2be9d4385bfa5bf24498f1a57d7a893bba088a931f9ae2065e898c3e6c014830450221009c5be27daa6a90db8b5e1d266078a0adc43fdfc11feb11e13a683763770b4494022072df4e7e0d767bb5ba2059d5f6114b519ffc072042d2a4a6ba8c00cb937edde301475221032ff8c5df0bc00fe1ac2319c3b8070d6d1e04cfbf4fedda499ae7b775185ad53b21039bbc8d24f89e5bc44c5b0d1980d6658316a6b2440023117c3c03a4975b04dd5652ae00000000"
	expectedTxID  = "444ef9088c8a30c1ac6d61841b4da07a97cf04323c14a5f21255b4404013e0fd"
)

func mustHex(t *testing.T, s string) []byte {
	b, err := hex.DecodeString(s)
	_assert.NoError(t, err)
	return b
}

func keySigner(t *testing.T, hexKey string) *signer.KeySigner {
	key, err := keys.ParsePrivateKey(hexKey)
	_assert.NoError(t, err)
	return &signer.KeySigner{Key: key}
}

// countingSigner records how often a wrapped provider was asked to sign.
type countingSigner struct {
	SignatureProvider
	calls *int
}

func (c *countingSigner) Sign(digest []byte) (*btcec.Signature, error) {
	*c.calls++
	return c.SignatureProvider.Sign(digest)
}

func countingSigners(t *testing.T, calls *int, hexKeys ...string) []SignatureProvider {
	providers := make([]SignatureProvider, 0, len(hexKeys))
	for _, k := range hexKeys {
		providers = append(providers, &countingSigner{SignatureProvider: keySigner(t, k), calls: calls})
	}
	return providers
}

func goldenSpend(t *testing.T) *Spend {
	return &Spend{
		RedeemScript:    mustHex(t, redeemScriptHex),
		ExpectedAddress: mainnetAddress,
		PrevOut:         *wire.NewOutPoint(&chainhash.Hash{}, 0),
		Sequence:        wire.MaxTxInSequenceNum,
		InputValue:      spendAmount,
		Destination:     mainnetAddress,
		Amount:          spendAmount,
		Version:         1,
		LockTime:        0,
	}
}

// goldenTx is the unsigned golden transaction.
func goldenTx(t *testing.T) *wire.MsgTx {
	msg := wire.NewMsgTx(1)
	in := wire.NewTxIn(wire.NewOutPoint(&chainhash.Hash{}, 0), nil, nil)
	in.Sequence = wire.MaxTxInSequenceNum
	msg.AddTxIn(in)
	msg.AddTxOut(wire.NewTxOut(spendAmount, mustHex(t, p2shScriptHex)))
	return msg
}
