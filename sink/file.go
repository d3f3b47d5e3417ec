package sink

import (
	"io/ioutil"

	"github.com/btccom/nestedmultisig/tx"
	"github.com/btcsuite/btcd/wire"
	"github.com/pkg/errors"
)

// File writes the lowercase hex of the transaction, with no
// trailing newline, to a file. An existing file is replaced.
type File struct {
	Path string
}

// NewFile returns a sink writing to path.
func NewFile(path string) *File {
	return &File{Path: path}
}

// Emit implements Sink. The hex is encoded from msg, raw is unused.
func (f *File) Emit(msg *wire.MsgTx, raw []byte) error {
	encoded, err := tx.EncodeHex(msg)
	if err != nil {
		return err
	}
	if err := ioutil.WriteFile(f.Path, []byte(encoded), 0644); err != nil {
		return errors.Wrapf(err, "write %s", f.Path)
	}
	log.Infof("Transaction %s written to %s", msg.TxHash(), f.Path)
	return nil
}

// Close implements Sink.
func (f *File) Close() error {
	return nil
}
