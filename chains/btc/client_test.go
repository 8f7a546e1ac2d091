package btc

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/SwingbyProtocol/mempool-indexer/chains/btc/types"
	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcutil"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testTxid  = "35828eb878ca543d4e4c61fd5f4e706327d9107fefa7e90aa67561d84a2a111a"
	testEntry = `{
		"vsize": 141, "weight": 561, "time": 1700000000, "height": 800000,
		"descendantcount": 2, "descendantsize": 282, "ancestorcount": 1, "ancestorsize": 141,
		"wtxid": "4a5e1e4baab89f3a32518a88c31bc87f618f76673e2cc77ab2127b7afdeda33b",
		"fees": {"base": 0.00000141, "modified": 0.00000141, "ancestor": 0.00000141, "descendant": 0.00000423},
		"depends": [],
		"spentby": ["0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b"],
		"bip125-replaceable": true, "unbroadcast": false
	}`
)

type rpcRequest struct {
	ID     interface{}       `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

// newTestNode serves JSON-RPC over plain HTTP POST the way bitcoind does.
func newTestNode(handle func(req rpcRequest) (json.RawMessage, *btcjson.RPCError)) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		result, rpcErr := handle(req)
		if result == nil {
			result = json.RawMessage("null")
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"result": result,
			"error":  rpcErr,
			"id":     req.ID,
		})
	}))
}

func newTestClient(t *testing.T, handle func(req rpcRequest) (json.RawMessage, *btcjson.RPCError)) *Client {
	node := newTestNode(handle)
	t.Cleanup(node.Close)
	c, err := NewBtcClient(node.URL)
	require.NoError(t, err)
	t.Cleanup(c.Shutdown)
	return c
}

func TestClientGetMempoolEntry(t *testing.T) {
	var got rpcRequest
	c := newTestClient(t, func(req rpcRequest) (json.RawMessage, *btcjson.RPCError) {
		got = req
		return json.RawMessage(testEntry), nil
	})
	res, err := c.GetMempoolEntry(testTxid)
	require.NoError(t, err)

	assert.Equal(t, "getmempoolentry", got.Method)
	require.Len(t, got.Params, 1)
	assert.Equal(t, `"`+testTxid+`"`, string(got.Params[0]))

	assert.Equal(t, int64(141), res.Entry.Vsize)
	assert.Equal(t, int64(2), res.Entry.DescendantCount)
	assert.Equal(t, btcutil.Amount(141), res.Entry.Fees.Base)
	assert.Equal(t, btcutil.Amount(423), res.Entry.Fees.Descendant)
	assert.Nil(t, res.Entry.Fee)
	require.Len(t, res.Entry.SpentBy, 1)
	assert.Equal(t, strings.Repeat("0b", 32), res.Entry.SpentBy[0].String())
	assert.True(t, res.Entry.Bip125Replaceable)
}

func TestClientGetMempoolEntryNotInMempool(t *testing.T) {
	c := newTestClient(t, func(req rpcRequest) (json.RawMessage, *btcjson.RPCError) {
		return nil, btcjson.NewRPCError(btcjson.ErrRPCInvalidAddressOrKey, "Transaction not in mempool")
	})
	_, err := c.GetMempoolEntry(testTxid)
	assert.True(t, errors.Is(err, ErrNotInMempool))
}

func TestClientGetMempoolEntryNodeError(t *testing.T) {
	c := newTestClient(t, func(req rpcRequest) (json.RawMessage, *btcjson.RPCError) {
		return nil, btcjson.NewRPCError(btcjson.ErrRPCMisc, "boom")
	})
	_, err := c.GetMempoolEntry(testTxid)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotInMempool))
	var rpcErr *btcjson.RPCError
	require.True(t, errors.As(err, &rpcErr))
	assert.Equal(t, btcjson.ErrRPCMisc, rpcErr.Code)
}

func TestClientGetMempoolEntryMalformedResult(t *testing.T) {
	c := newTestClient(t, func(req rpcRequest) (json.RawMessage, *btcjson.RPCError) {
		return json.RawMessage(strings.Replace(testEntry, "4a5e1e4b", "zzzzzzzz", 1)), nil
	})
	_, err := c.GetMempoolEntry(testTxid)
	assert.True(t, errors.Is(err, types.ErrInvalidIdentifier))

	c = newTestClient(t, func(req rpcRequest) (json.RawMessage, *btcjson.RPCError) {
		return json.RawMessage(`{"vsize": 141}`), nil
	})
	_, err = c.GetMempoolEntry(testTxid)
	assert.True(t, errors.Is(err, types.ErrDecode))
}

func TestClientGetMempoolEntryInvalidTxid(t *testing.T) {
	called := false
	c := newTestClient(t, func(req rpcRequest) (json.RawMessage, *btcjson.RPCError) {
		called = true
		return nil, nil
	})
	_, err := c.GetMempoolEntry("not a txid")
	var ie *types.IdentifierError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, "txid", ie.Field)
	assert.False(t, called)
}

func TestClientSaveMempool(t *testing.T) {
	var got rpcRequest
	c := newTestClient(t, func(req rpcRequest) (json.RawMessage, *btcjson.RPCError) {
		got = req
		return json.RawMessage(`{"filename": "/data/mempool.dat"}`), nil
	})
	res, err := c.SaveMempool()
	require.NoError(t, err)
	assert.Equal(t, "savemempool", got.Method)
	assert.Equal(t, "/data/mempool.dat", res.Filename)
}

func TestClient(t *testing.T) {
	rpcPath := os.Getenv("RPC")
	if rpcPath == "" {
		return
	}
	txID := os.Getenv("MEMPOOL_TXID")
	c, err := NewBtcClient(rpcPath)
	require.NoError(t, err)
	defer c.Shutdown()
	if txID == "" {
		return
	}
	res, err := c.GetMempoolEntry(txID)
	if errors.Is(err, ErrNotInMempool) {
		log.Info(err)
		return
	}
	require.NoError(t, err)
	if res.Entry.AncestorCount < 1 {
		t.Fatalf("Expected ancestor count to be >= 1 but got '%d'", res.Entry.AncestorCount)
	}
}
