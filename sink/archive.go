package sink

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/pkg/errors"
	"go.etcd.io/bbolt"
)

var bucketTransactions = []byte("transactions")

var (
	// ErrNotArchived is returned by Get for an unknown txid.
	ErrNotArchived = errors.New("transaction not archived")

	// ErrConflict is returned when a txid is already archived with
	// a different witness.
	ErrConflict = errors.New("txid archived with different bytes")
)

// Archive keeps every signed transaction in a bbolt database,
// keyed by txid.
type Archive struct {
	db *bbolt.DB
}

// OpenArchive opens or creates the database at dbPath. The parent
// directory is created if it does not exist.
func OpenArchive(dbPath string) (*Archive, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, errors.Wrap(err, "create archive directory")
	}
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, errors.Wrap(err, "open archive")
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketTransactions)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "create archive bucket")
	}

	return &Archive{db: db}, nil
}

// Emit implements Sink. Archiving the same transaction twice is a
// no-op.
func (a *Archive) Emit(msg *wire.MsgTx, raw []byte) error {
	txid := msg.TxHash()
	err := a.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketTransactions)
		if existing := b.Get(txid[:]); existing != nil {
			if bytes.Equal(existing, raw) {
				return nil
			}
			return errors.Wrap(ErrConflict, txid.String())
		}
		return b.Put(txid[:], raw)
	})
	if err != nil {
		return err
	}

	n, err := a.Count()
	if err != nil {
		return errors.Wrap(err, "count archive")
	}
	log.Infof("Transaction %s archived, %d in archive", txid, n)
	return nil
}

// Get returns the archived serialization of txid.
func (a *Archive) Get(txid *chainhash.Hash) ([]byte, error) {
	var raw []byte
	err := a.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketTransactions).Get(txid[:])
		if data == nil {
			return errors.Wrap(ErrNotArchived, txid.String())
		}
		// bbolt memory is only valid inside the transaction
		raw = append([]byte(nil), data...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return raw, nil
}

// Count returns the number of archived transactions.
func (a *Archive) Count() (int, error) {
	var n int
	err := a.db.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket(bucketTransactions).Stats().KeyN
		return nil
	})
	return n, err
}

// Close implements Sink.
func (a *Archive) Close() error {
	return a.db.Close()
}
