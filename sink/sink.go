// Package sink delivers signed transactions to their destinations.
package sink

import (
	"github.com/btcsuite/btcd/wire"
	"github.com/pkg/errors"
)

// Sink receives one signed transaction and its serialization.
type Sink interface {
	Emit(msg *wire.MsgTx, raw []byte) error
	Close() error
}

// Multi emits to every sink in order and stops at the first error.
type Multi []Sink

// Emit implements Sink.
func (m Multi) Emit(msg *wire.MsgTx, raw []byte) error {
	for _, s := range m {
		if err := s.Emit(msg, raw); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every sink and returns the first error.
func (m Multi) Close() error {
	var first error
	for _, s := range m {
		if err := s.Close(); err != nil && first == nil {
			first = errors.Wrap(err, "close sink")
		}
	}
	return first
}
