package types

import (
	"encoding/json"
	"errors"
)

// GetMempoolEntry is the result of `getmempoolentry <txid>`.
// The node returns the entry object itself, without a wrapper.
type GetMempoolEntry struct {
	MempoolEntry
}

// MempoolEntry is the raw entry as reported by the node.
//
// Fee, ModifiedFee, DescendantFees and AncestorFees are only present when the
// node runs with -deprecatedrpc=fees.
type MempoolEntry struct {
	Vsize             int64            `json:"vsize"`
	Weight            int64            `json:"weight"`
	Fee               *float64         `json:"fee,omitempty"`
	ModifiedFee       *float64         `json:"modifiedfee,omitempty"`
	Time              int64            `json:"time"`
	Height            int64            `json:"height"`
	DescendantCount   int64            `json:"descendantcount"`
	DescendantSize    int64            `json:"descendantsize"`
	DescendantFees    *float64         `json:"descendantfees,omitempty"`
	AncestorCount     int64            `json:"ancestorcount"`
	AncestorSize      int64            `json:"ancestorsize"`
	AncestorFees      *float64         `json:"ancestorfees,omitempty"`
	Wtxid             string           `json:"wtxid"`
	Fees              MempoolEntryFees `json:"fees"`
	Depends           []string         `json:"depends"`
	SpentBy           []string         `json:"spentby"`
	Bip125Replaceable bool             `json:"bip125-replaceable"`
	Unbroadcast       bool             `json:"unbroadcast"`
}

// MempoolEntryFees is the fee breakdown, denominated in BTC.
type MempoolEntryFees struct {
	Base       float64 `json:"base"`
	Modified   float64 `json:"modified"`
	Ancestor   float64 `json:"ancestor"`
	Descendant float64 `json:"descendant"`
}

// SaveMempool is the result of `savemempool`.
type SaveMempool struct {
	Filename string `json:"filename"`
}

var (
	mempoolEntryFields = []string{
		"vsize", "weight", "time", "height",
		"descendantcount", "descendantsize", "ancestorcount", "ancestorsize",
		"wtxid", "fees", "depends", "spentby", "bip125-replaceable", "unbroadcast",
	}
	mempoolEntryFeesFields = []string{"base", "modified", "ancestor", "descendant"}
	saveMempoolFields      = []string{"filename"}

	errMissingField = errors.New("missing required field")
)

// DecodeMempoolEntry decodes the body of a getmempoolentry result.
func DecodeMempoolEntry(data []byte) (MempoolEntry, error) {
	var entry MempoolEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return MempoolEntry{}, asDecodeError(err)
	}
	return entry, nil
}

func DecodeGetMempoolEntry(data []byte) (GetMempoolEntry, error) {
	entry, err := DecodeMempoolEntry(data)
	if err != nil {
		return GetMempoolEntry{}, err
	}
	return GetMempoolEntry{entry}, nil
}

func DecodeSaveMempool(data []byte) (SaveMempool, error) {
	var res SaveMempool
	if err := json.Unmarshal(data, &res); err != nil {
		return SaveMempool{}, asDecodeError(err)
	}
	return res, nil
}

func (e *MempoolEntry) UnmarshalJSON(data []byte) error {
	obj, err := requireFields(data, mempoolEntryFields)
	if err != nil {
		return err
	}
	var p MempoolEntry
	return decodeFields(obj, []field{
		{"vsize", &p.Vsize},
		{"weight", &p.Weight},
		{"fee", &p.Fee},
		{"modifiedfee", &p.ModifiedFee},
		{"time", &p.Time},
		{"height", &p.Height},
		{"descendantcount", &p.DescendantCount},
		{"descendantsize", &p.DescendantSize},
		{"descendantfees", &p.DescendantFees},
		{"ancestorcount", &p.AncestorCount},
		{"ancestorsize", &p.AncestorSize},
		{"ancestorfees", &p.AncestorFees},
		{"wtxid", &p.Wtxid},
		{"fees", &p.Fees},
		{"depends", &p.Depends},
		{"spentby", &p.SpentBy},
		{"bip125-replaceable", &p.Bip125Replaceable},
		{"unbroadcast", &p.Unbroadcast},
	}, func() { *e = p })
}

func (f *MempoolEntryFees) UnmarshalJSON(data []byte) error {
	obj, err := requireFields(data, mempoolEntryFeesFields)
	if err != nil {
		return err
	}
	var p MempoolEntryFees
	return decodeFields(obj, []field{
		{"base", &p.Base},
		{"modified", &p.Modified},
		{"ancestor", &p.Ancestor},
		{"descendant", &p.Descendant},
	}, func() { *f = p })
}

func (s *SaveMempool) UnmarshalJSON(data []byte) error {
	obj, err := requireFields(data, saveMempoolFields)
	if err != nil {
		return err
	}
	var p SaveMempool
	return decodeFields(obj, []field{
		{"filename", &p.Filename},
	}, func() { *s = p })
}

type field struct {
	name string
	dst  interface{}
}

// decodeFields decodes the exact-name keys in the given order, so a key that
// only differs in case is ignored and the first type mismatch is reported.
// done runs only when every field decoded.
func decodeFields(obj map[string]json.RawMessage, fields []field, done func()) error {
	for _, f := range fields {
		raw, ok := obj[f.name]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, f.dst); err != nil {
			var de *DecodeError
			if errors.As(err, &de) {
				return de.within(f.name)
			}
			return &DecodeError{Field: f.name, Err: err}
		}
	}
	done()
	return nil
}

// requireFields fails on the first listed key that is absent or null.
func requireFields(data []byte, fields []string) (map[string]json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, &DecodeError{Err: err}
	}
	for _, name := range fields {
		raw, ok := obj[name]
		if !ok || string(raw) == "null" {
			return nil, &DecodeError{Field: name, Err: errMissingField}
		}
	}
	return obj, nil
}

func asDecodeError(err error) error {
	var de *DecodeError
	if errors.As(err, &de) {
		return de
	}
	return newDecodeError(err)
}
