package wallet

import (
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/pkg/errors"
)

const (
	// NetBtc is the constant for the bitcoin network
	NetBtc = "btc"

	// NetBtcTest is the constant for the bitcoin testnet network
	NetBtcTest = "tbtc"

	// NetBtcRegtest is the constant for the bitcoin regtest network
	NetBtcRegtest = "rbtc"
)

// CheckNetwork validates that the network is valid
func CheckNetwork(network string) (string, error) {
	switch network {
	case NetBtc, NetBtcTest, NetBtcRegtest:
		return network, nil
	default:
		return "", errors.New("network is invalid")
	}
}

// Network captures what differs from network to network: the
// chain params (address version bytes), the hash type signatures
// are made with, and the script flags the self-check runs under.
type Network struct {
	// Name is the short code, eg btc
	Name string

	// Params holds the networks chain params
	Params *chaincfg.Params

	// DefaultHashType is the sighash type used by Build.
	DefaultHashType txscript.SigHashType

	// VerifyFlags are passed to the script engine when a
	// serialized transaction is checked.
	VerifyFlags txscript.ScriptFlags
}

var (
	// BtcNetwork defines the behaviour on the Bitcoin network
	BtcNetwork = &Network{
		Name:            NetBtc,
		Params:          &chaincfg.MainNetParams,
		DefaultHashType: txscript.SigHashAll,
		VerifyFlags:     txscript.StandardVerifyFlags,
	}

	// BtcTestNetwork defines the behaviour on the Bitcoin testnet
	BtcTestNetwork = &Network{
		Name:            NetBtcTest,
		Params:          &chaincfg.TestNet3Params,
		DefaultHashType: txscript.SigHashAll,
		VerifyFlags:     txscript.StandardVerifyFlags,
	}

	// BtcRegtestNetwork defines the behaviour on the Bitcoin regtest network
	BtcRegtestNetwork = &Network{
		Name:            NetBtcRegtest,
		Params:          &chaincfg.RegressionNetParams,
		DefaultHashType: txscript.SigHashAll,
		VerifyFlags:     txscript.StandardVerifyFlags,
	}
)

// GetNetworkParams takes a network string shortcode
// and returns the *Network params
func GetNetworkParams(network string) (*Network, error) {
	switch network {
	case NetBtc:
		return BtcNetwork, nil
	case NetBtcTest:
		return BtcTestNetwork, nil
	case NetBtcRegtest:
		return BtcRegtestNetwork, nil
	}

	return nil, errors.New("invalid network")
}
