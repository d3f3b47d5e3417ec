// Package config loads the description of one nested multisig spend
// from a YAML file.
package config

import (
	"bytes"
	"encoding/hex"
	"io"
	"io/ioutil"
	"os"

	"github.com/btccom/nestedmultisig/keys"
	"github.com/btccom/nestedmultisig/tx"
	"github.com/btccom/nestedmultisig/wallet"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultOutputFile receives the hex of the signed transaction.
	DefaultOutputFile = "out.txt"

	// DefaultNetwork is used when the file names none.
	DefaultNetwork = wallet.NetBtc
)

// ErrInvalidConfig is returned for a file that parses but can't
// describe a spend.
var ErrInvalidConfig = errors.New("invalid config")

type (
	// Config top level struct describing a spend.
	Config struct {
		Network         string  `yaml:"network"`
		RedeemScript    string  `yaml:"redeem_script"`
		ExpectedAddress string  `yaml:"expected_address"`
		Destination     string  `yaml:"destination"`
		Amount          int64   `yaml:"amount"`
		InputValue      int64   `yaml:"input_value"`
		PrevOut         PrevOut `yaml:"prev_out"`
		Version         int32   `yaml:"version"`
		LockTime        uint32  `yaml:"lock_time"`
		Verify          bool    `yaml:"verify"`
		Keys            []Key   `yaml:"keys"`
		Output          Output  `yaml:"output"`
	}

	// PrevOut is the output being spent.
	PrevOut struct {
		TxID     string `yaml:"txid"`
		Index    uint32 `yaml:"index"`
		Sequence uint32 `yaml:"sequence"`
	}

	// Key is either a hex secret or an extended private key with a
	// derivation path.
	Key struct {
		Hex  string `yaml:"hex"`
		Xprv string `yaml:"xprv"`
		Path string `yaml:"path"`
	}

	// Output configures where the signed transaction goes.
	Output struct {
		File    string `yaml:"file"`
		Archive string `yaml:"archive"`
	}
)

// Default returns a Config holding every default value.
func Default() *Config {
	return &Config{
		Network: DefaultNetwork,
		PrevOut: PrevOut{
			Sequence: tx.FinalSequence,
		},
		Version: tx.DefaultVersion,
		Verify:  true,
		Output: Output{
			File: DefaultOutputFile,
		},
	}
}

// Load attempts to load the config from the given path.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, errors.Wrap(err, "unable to load config")
	}

	configData, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "unable to read config")
	}

	return Parse(configData)
}

// Parse decodes a YAML document over the defaults, fills the
// values derived from other fields and validates the result.
// Unknown keys are rejected.
func Parse(configData []byte) (*Config, error) {
	config := Default()

	dec := yaml.NewDecoder(bytes.NewReader(configData))
	dec.KnownFields(true)
	if err := dec.Decode(config); err != nil {
		if err == io.EOF {
			return nil, errors.Wrap(ErrInvalidConfig, "config is empty")
		}
		return nil, errors.Wrap(err, "problem unmarshaling config yaml data")
	}

	if config.Destination == "" {
		config.Destination = config.ExpectedAddress
	}
	if config.InputValue == 0 {
		config.InputValue = config.Amount
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks every field that can be checked without signing.
func (c *Config) Validate() error {
	if _, err := wallet.CheckNetwork(c.Network); err != nil {
		return errors.Wrapf(ErrInvalidConfig, "network %q: %s", c.Network, err)
	}
	if c.RedeemScript == "" {
		return errors.Wrap(ErrInvalidConfig, "redeem_script is required")
	}
	if _, err := hex.DecodeString(c.RedeemScript); err != nil {
		return errors.Wrapf(ErrInvalidConfig, "redeem_script: %s", err)
	}
	if c.ExpectedAddress == "" {
		return errors.Wrap(ErrInvalidConfig, "expected_address is required")
	}
	if c.Amount <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "amount must be positive, got %d", c.Amount)
	}
	if c.InputValue < c.Amount {
		return errors.Wrapf(ErrInvalidConfig, "input_value %d is less than amount %d", c.InputValue, c.Amount)
	}
	if _, err := tx.ParseOutPoint(c.PrevOut.TxID, c.PrevOut.Index); err != nil {
		return errors.Wrapf(ErrInvalidConfig, "prev_out: %s", err)
	}
	if len(c.Keys) == 0 {
		return errors.Wrap(ErrInvalidConfig, "at least one key is required")
	}
	for i, k := range c.Keys {
		if err := k.validate(); err != nil {
			return errors.Wrapf(ErrInvalidConfig, "key %d: %s", i, err)
		}
	}
	if c.Output.File == "" && c.Output.Archive == "" {
		return errors.Wrap(ErrInvalidConfig, "output needs a file or an archive")
	}
	return nil
}

func (k *Key) validate() error {
	switch {
	case k.Hex != "" && (k.Xprv != "" || k.Path != ""):
		return errors.New("hex can't be combined with xprv or path")
	case k.Hex != "":
		return nil
	case k.Xprv == "" || k.Path == "":
		return errors.New("needs hex, or xprv and path")
	}
	return nil
}

// PrivateKey decodes or derives the signing key.
func (k *Key) PrivateKey() (*keys.PrivateKey, error) {
	if k.Hex != "" {
		return keys.ParsePrivateKey(k.Hex)
	}
	return keys.FromBip32(k.Xprv, k.Path)
}

// NetworkParams resolves the network name.
func (c *Config) NetworkParams() (*wallet.Network, error) {
	return wallet.GetNetworkParams(c.Network)
}

// Spend converts the config into the assembler's input.
func (c *Config) Spend() (*wallet.Spend, error) {
	rs, err := hex.DecodeString(c.RedeemScript)
	if err != nil {
		return nil, errors.Wrap(err, "redeem_script")
	}

	prevOut, err := tx.ParseOutPoint(c.PrevOut.TxID, c.PrevOut.Index)
	if err != nil {
		return nil, err
	}

	return &wallet.Spend{
		RedeemScript:    rs,
		ExpectedAddress: c.ExpectedAddress,
		PrevOut:         *prevOut,
		Sequence:        c.PrevOut.Sequence,
		InputValue:      c.InputValue,
		Destination:     c.Destination,
		Amount:          c.Amount,
		Version:         c.Version,
		LockTime:        c.LockTime,
	}, nil
}

// PrivateKeys decodes every key in file order. On error the keys
// decoded so far are zeroed.
func (c *Config) PrivateKeys() ([]*keys.PrivateKey, error) {
	privKeys := make([]*keys.PrivateKey, 0, len(c.Keys))
	for i := range c.Keys {
		key, err := c.Keys[i].PrivateKey()
		if err != nil {
			for _, k := range privKeys {
				k.Zero()
			}
			return nil, errors.Wrapf(err, "key %d", i)
		}
		privKeys = append(privKeys, key)
	}
	return privKeys, nil
}
