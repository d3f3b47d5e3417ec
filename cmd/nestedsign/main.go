// Command nestedsign builds, signs and writes a transaction spending
// a P2SH-P2WSH multisig output described by a YAML file.
package main

import (
	"fmt"
	"os"

	"github.com/btccom/nestedmultisig/config"
	"github.com/btccom/nestedmultisig/keys"
	"github.com/btccom/nestedmultisig/script"
	"github.com/btccom/nestedmultisig/signer"
	"github.com/btccom/nestedmultisig/sink"
	"github.com/btccom/nestedmultisig/tx"
	"github.com/btccom/nestedmultisig/wallet"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btclog"
	"github.com/davecgh/go-spew/spew"
	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
)

type options struct {
	Config       string `short:"c" long:"config" env:"NESTEDSIGN_CONFIG" description:"spend description file" default:"spend.yml"`
	Network      string `long:"network" env:"NESTEDSIGN_NETWORK" description:"override the network (btc, tbtc, rbtc)"`
	Out          string `long:"out" env:"NESTEDSIGN_OUT" description:"override the hex output file"`
	Archive      string `long:"archive" env:"NESTEDSIGN_ARCHIVE" description:"override the bbolt archive path"`
	NoVerify     bool   `long:"no-verify" description:"skip the script engine check of the signed transaction"`
	OrderSigners bool   `long:"order-signers" description:"sort the keys into redeem script order before signing"`
	DebugLevel   string `long:"debuglevel" env:"NESTEDSIGN_DEBUGLEVEL" description:"logging level: trace, debug, info, warn, error, critical, off" default:"info"`
}

func main() {
	opts := options{}

	if _, err := flags.ParseArgs(&opts, os.Args[1:]); err != nil {
		if ferr, ok := err.(*flags.Error); ok && ferr.Type == flags.ErrHelp {
			return
		}
		os.Exit(1)
	}

	setLogLevels(opts.DebugLevel)

	if err := run(opts); err != nil {
		mainLog.Errorf("%v", err)
		fmt.Fprintf(os.Stderr, "error: %v (%v)\n", errors.Cause(err), err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies the command line
// overrides.
func loadConfig(opts options) (*config.Config, error) {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return nil, err
	}

	if opts.Network != "" {
		cfg.Network = opts.Network
	}
	if opts.Out != "" {
		cfg.Output.File = opts.Out
	}
	if opts.Archive != "" {
		cfg.Output.Archive = opts.Archive
	}
	if opts.NoVerify {
		cfg.Verify = false
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(opts options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	net, err := cfg.NetworkParams()
	if err != nil {
		return err
	}
	spend, err := cfg.Spend()
	if err != nil {
		return err
	}

	privKeys, err := cfg.PrivateKeys()
	if err != nil {
		return err
	}
	defer zeroKeys(privKeys)

	signers := make([]wallet.SignatureProvider, len(privKeys))
	for i, k := range privKeys {
		signers[i] = &signer.KeySigner{Key: k}
	}

	if opts.OrderSigners {
		ms, err := script.ParseMultisig(spend.RedeemScript)
		if err != nil {
			return err
		}
		signers = wallet.OrderSigners(ms, signers)
	}

	assembler := wallet.NewAssembler(net, spend, signers)
	assembler.SetVerify(cfg.Verify)

	msg, raw, err := assembler.Build()
	if err != nil {
		return err
	}
	zeroKeys(privKeys)

	logTransaction(msg)

	out, err := openSinks(cfg.Output)
	if err != nil {
		return err
	}
	if err := out.Emit(msg, raw); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	mainLog.Infof("Signed transaction %s", msg.TxHash())
	return nil
}

func openSinks(output config.Output) (sink.Multi, error) {
	var out sink.Multi
	if output.File != "" {
		out = append(out, sink.NewFile(output.File))
	}
	if output.Archive != "" {
		archive, err := sink.OpenArchive(output.Archive)
		if err != nil {
			return nil, err
		}
		out = append(out, archive)
	}
	return out, nil
}

func logTransaction(msg *wire.MsgTx) {
	s := tx.Summarize(msg)
	mainLog.Infof("txid %s wtxid %s, %d bytes, %d vbytes", s.TxID, s.WTxID, s.Size, s.VSize)

	if mainLog.Level() <= btclog.LevelDebug {
		mainLog.Debugf("Decoded transaction:\n%s", spew.Sdump(s))
	}
}

func zeroKeys(privKeys []*keys.PrivateKey) {
	for _, k := range privKeys {
		k.Zero()
	}
}
