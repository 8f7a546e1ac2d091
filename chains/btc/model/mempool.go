package model

import (
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcutil"
)

// Txid is the id of a transaction (hash of the serialization without witness).
type Txid chainhash.Hash

// Wtxid is the hash of a serialized transaction including witness data.
type Wtxid chainhash.Hash

func (id Txid) String() string {
	return chainhash.Hash(id).String()
}

func (id Wtxid) String() string {
	return chainhash.Hash(id).String()
}

// GetMempoolEntry is the validated result of `getmempoolentry`.
type GetMempoolEntry struct {
	Entry MempoolEntry
}

// MempoolEntry is one node's report of a single mempool transaction.
//
// The deprecated fee fields are nil when the node was not started with
// -deprecatedrpc=fees. A nil value is not the same as a zero fee.
type MempoolEntry struct {
	// Virtual size as defined in BIP 141.
	Vsize int64
	// Weight as defined in BIP 141.
	Weight int64
	// Deprecated.
	Fee *btcutil.Amount
	// Deprecated.
	ModifiedFee *btcutil.Amount
	// Local time the transaction entered the pool.
	Time time.Time
	// Block height when the transaction entered the pool.
	Height int64
	// Counts and sizes include the entry itself.
	DescendantCount int64
	DescendantSize  int64
	// Deprecated.
	DescendantFees *btcutil.Amount
	AncestorCount  int64
	AncestorSize   int64
	// Deprecated.
	AncestorFees *btcutil.Amount
	Wtxid        Wtxid
	Fees         MempoolEntryFees
	// Parents in the mempool, in the order the node reported them.
	Depends []Txid
	// Children in the mempool, in the order the node reported them.
	SpentBy           []Txid
	Bip125Replaceable bool
	Unbroadcast       bool
}

// MempoolEntryFees is the fee breakdown reported with every entry.
type MempoolEntryFees struct {
	Base       btcutil.Amount
	Modified   btcutil.Amount
	Ancestor   btcutil.Amount
	Descendant btcutil.Amount
}

// SaveMempool is the result of `savemempool`.
type SaveMempool struct {
	// The directory and file where the mempool was saved.
	Filename string
}
