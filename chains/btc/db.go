package btc

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/SwingbyProtocol/mempool-indexer/chains/btc/model"
	"github.com/SwingbyProtocol/mempool-indexer/chains/btc/types"
	"github.com/boltdb/bolt"
)

var (
	entriesBucket = []byte("mempool_entries")

	ErrEntryNotFound = errors.New("entry not found")
)

// Db keeps the last reported entry of every txid that was looked up.
// Values are stored in their wire shape and validated again on load.
type Db struct {
	db *bolt.DB
}

func NewDB() *Db {
	return &Db{}
}

func (d *Db) Start(path string) error {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(entriesBucket)
		return err
	})
	if err != nil {
		db.Close()
		return err
	}
	d.db = db
	return nil
}

func (d *Db) Close() error {
	if d.db == nil {
		return nil
	}
	return d.db.Close()
}

func (d *Db) StoreEntry(txid model.Txid, entry model.MempoolEntry) error {
	data, err := json.Marshal(types.NewMempoolEntry(entry))
	if err != nil {
		return err
	}
	return d.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(entriesBucket).Put([]byte(txid.String()), data)
	})
}

func (d *Db) GetEntry(txid model.Txid) (model.MempoolEntry, error) {
	var data []byte
	err := d.db.View(func(tx *bolt.Tx) error {
		value := tx.Bucket(entriesBucket).Get([]byte(txid.String()))
		if value == nil {
			return ErrEntryNotFound
		}
		// bolt values are only valid inside the transaction
		data = append([]byte{}, value...)
		return nil
	})
	if err != nil {
		return model.MempoolEntry{}, err
	}
	wire, err := types.DecodeMempoolEntry(data)
	if err != nil {
		return model.MempoolEntry{}, err
	}
	return wire.IntoModel()
}

func (d *Db) DeleteEntry(txid model.Txid) error {
	return d.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(entriesBucket).Delete([]byte(txid.String()))
	})
}
