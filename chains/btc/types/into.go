package types

import (
	"math"
	"time"

	"github.com/SwingbyProtocol/mempool-indexer/chains/btc/model"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcutil"
)

// IntoModel validates the entry and converts it into the domain type.
// Fields are checked in wire order and the first violation is returned.
func (e MempoolEntry) IntoModel() (model.MempoolEntry, error) {
	var (
		entry model.MempoolEntry
		err   error
	)
	if entry.Vsize, err = toSize("vsize", e.Vsize); err != nil {
		return model.MempoolEntry{}, err
	}
	if entry.Weight, err = toSize("weight", e.Weight); err != nil {
		return model.MempoolEntry{}, err
	}
	if entry.Fee, err = toOptionalAmount("fee", e.Fee, false); err != nil {
		return model.MempoolEntry{}, err
	}
	if entry.ModifiedFee, err = toOptionalAmount("modifiedfee", e.ModifiedFee, true); err != nil {
		return model.MempoolEntry{}, err
	}
	if e.Time < 0 {
		return model.MempoolEntry{}, &NonPhysicalError{Field: "time", Value: e.Time}
	}
	entry.Time = time.Unix(e.Time, 0).UTC()
	if entry.Height, err = toSize("height", e.Height); err != nil {
		return model.MempoolEntry{}, err
	}
	if entry.DescendantCount, err = toCount("descendantcount", e.DescendantCount); err != nil {
		return model.MempoolEntry{}, err
	}
	if entry.DescendantSize, err = toSize("descendantsize", e.DescendantSize); err != nil {
		return model.MempoolEntry{}, err
	}
	if entry.DescendantFees, err = toOptionalAmount("descendantfees", e.DescendantFees, true); err != nil {
		return model.MempoolEntry{}, err
	}
	if entry.AncestorCount, err = toCount("ancestorcount", e.AncestorCount); err != nil {
		return model.MempoolEntry{}, err
	}
	if entry.AncestorSize, err = toSize("ancestorsize", e.AncestorSize); err != nil {
		return model.MempoolEntry{}, err
	}
	if entry.AncestorFees, err = toOptionalAmount("ancestorfees", e.AncestorFees, true); err != nil {
		return model.MempoolEntry{}, err
	}
	wtxid, err := toHash("wtxid", -1, e.Wtxid)
	if err != nil {
		return model.MempoolEntry{}, err
	}
	entry.Wtxid = model.Wtxid(wtxid)
	if entry.Fees, err = e.Fees.IntoModel(); err != nil {
		return model.MempoolEntry{}, err
	}
	if entry.Depends, err = toTxids("depends", e.Depends); err != nil {
		return model.MempoolEntry{}, err
	}
	if entry.SpentBy, err = toTxids("spentby", e.SpentBy); err != nil {
		return model.MempoolEntry{}, err
	}
	entry.Bip125Replaceable = e.Bip125Replaceable
	entry.Unbroadcast = e.Unbroadcast
	return entry, nil
}

// IntoModel converts the fee breakdown. The base fee can not be negative,
// the others may carry negative fee deltas.
func (f MempoolEntryFees) IntoModel() (model.MempoolEntryFees, error) {
	var (
		fees model.MempoolEntryFees
		err  error
	)
	if fees.Base, err = toAmount("fees.base", f.Base, false); err != nil {
		return model.MempoolEntryFees{}, err
	}
	if fees.Modified, err = toAmount("fees.modified", f.Modified, true); err != nil {
		return model.MempoolEntryFees{}, err
	}
	if fees.Ancestor, err = toAmount("fees.ancestor", f.Ancestor, true); err != nil {
		return model.MempoolEntryFees{}, err
	}
	if fees.Descendant, err = toAmount("fees.descendant", f.Descendant, true); err != nil {
		return model.MempoolEntryFees{}, err
	}
	return fees, nil
}

func (g GetMempoolEntry) IntoModel() (model.GetMempoolEntry, error) {
	entry, err := g.MempoolEntry.IntoModel()
	if err != nil {
		return model.GetMempoolEntry{}, err
	}
	return model.GetMempoolEntry{Entry: entry}, nil
}

// IntoModel never fails, the shapes are identical.
func (s SaveMempool) IntoModel() (model.SaveMempool, error) {
	return model.SaveMempool{Filename: s.Filename}, nil
}

// NewMempoolEntry renders a domain entry back into its wire shape.
func NewMempoolEntry(e model.MempoolEntry) MempoolEntry {
	return MempoolEntry{
		Vsize:           e.Vsize,
		Weight:          e.Weight,
		Fee:             fromOptionalAmount(e.Fee),
		ModifiedFee:     fromOptionalAmount(e.ModifiedFee),
		Time:            e.Time.Unix(),
		Height:          e.Height,
		DescendantCount: e.DescendantCount,
		DescendantSize:  e.DescendantSize,
		DescendantFees:  fromOptionalAmount(e.DescendantFees),
		AncestorCount:   e.AncestorCount,
		AncestorSize:    e.AncestorSize,
		AncestorFees:    fromOptionalAmount(e.AncestorFees),
		Wtxid:           e.Wtxid.String(),
		Fees: MempoolEntryFees{
			Base:       e.Fees.Base.ToBTC(),
			Modified:   e.Fees.Modified.ToBTC(),
			Ancestor:   e.Fees.Ancestor.ToBTC(),
			Descendant: e.Fees.Descendant.ToBTC(),
		},
		Depends:           fromTxids(e.Depends),
		SpentBy:           fromTxids(e.SpentBy),
		Bip125Replaceable: e.Bip125Replaceable,
		Unbroadcast:       e.Unbroadcast,
	}
}

func NewSaveMempool(s model.SaveMempool) SaveMempool {
	return SaveMempool{Filename: s.Filename}
}

// ParseTxid parses a txid in the node's display byte order.
func ParseTxid(s string) (model.Txid, error) {
	hash, err := toHash("txid", -1, s)
	if err != nil {
		return model.Txid{}, err
	}
	return model.Txid(hash), nil
}

func toCount(field string, v int64) (int64, error) {
	if v < 1 {
		return 0, &NonPhysicalError{Field: field, Value: v}
	}
	return v, nil
}

func toSize(field string, v int64) (int64, error) {
	if v < 0 {
		return 0, &NonPhysicalError{Field: field, Value: v}
	}
	return v, nil
}

func toAmount(field string, v float64, allowNegative bool) (btcutil.Amount, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || (v < 0 && !allowNegative) {
		return 0, &AmountError{Field: field, Value: v}
	}
	// float64(math.MaxInt64) rounds up to 2^63, so >= is the overflow check
	sats := math.Round(v * btcutil.SatoshiPerBitcoin)
	if sats >= float64(math.MaxInt64) || sats < float64(math.MinInt64) {
		return 0, &AmountError{Field: field, Value: v}
	}
	amount, err := btcutil.NewAmount(v)
	if err != nil {
		return 0, &AmountError{Field: field, Value: v, Err: err}
	}
	return amount, nil
}

func toOptionalAmount(field string, v *float64, allowNegative bool) (*btcutil.Amount, error) {
	if v == nil {
		return nil, nil
	}
	amount, err := toAmount(field, *v, allowNegative)
	if err != nil {
		return nil, err
	}
	return &amount, nil
}

func fromOptionalAmount(a *btcutil.Amount) *float64 {
	if a == nil {
		return nil
	}
	v := a.ToBTC()
	return &v
}

func toHash(field string, index int, s string) (chainhash.Hash, error) {
	if len(s) != chainhash.MaxHashStringSize {
		return chainhash.Hash{}, &IdentifierError{Field: field, Index: index, Value: s}
	}
	hash, err := chainhash.NewHashFromStr(s)
	if err != nil {
		return chainhash.Hash{}, &IdentifierError{Field: field, Index: index, Value: s, Err: err}
	}
	return *hash, nil
}

func toTxids(field string, ids []string) ([]model.Txid, error) {
	txids := make([]model.Txid, 0, len(ids))
	for i, s := range ids {
		hash, err := toHash(field, i, s)
		if err != nil {
			return nil, err
		}
		txids = append(txids, model.Txid(hash))
	}
	return txids, nil
}

func fromTxids(txids []model.Txid) []string {
	ids := make([]string, 0, len(txids))
	for _, id := range txids {
		ids = append(ids, id.String())
	}
	return ids
}
