package btc

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/SwingbyProtocol/mempool-indexer/chains/btc/model"
	"github.com/SwingbyProtocol/mempool-indexer/chains/btc/types"
	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcd/rpcclient"
	log "github.com/sirupsen/logrus"
)

var ErrNotInMempool = errors.New("transaction not in mempool")

type Client struct {
	*rpcclient.Client
	url *url.URL
}

func NewBtcClient(path string) (*Client, error) {
	u, err := url.Parse(path)
	if err != nil {
		return nil, err
	}
	disableTLS, useLegacyHTTP := false, false
	if u.Scheme == "ws" || u.Scheme == "http" || u.Scheme == "tcp" {
		disableTLS = true
	}
	if u.Scheme == "http" || u.Scheme == "tcp" {
		useLegacyHTTP = true
	}
	pass, _ := u.User.Password()
	connCfg := &rpcclient.ConnConfig{
		Host:         u.Host,
		Endpoint:     u.Path,
		User:         u.User.Username(),
		Pass:         pass,
		HTTPPostMode: useLegacyHTTP,
		DisableTLS:   disableTLS,
	}
	nHandlers := new(rpcclient.NotificationHandlers)
	client, err := rpcclient.New(connCfg, nHandlers)
	if err != nil {
		return nil, err
	}
	return &Client{client, u}, nil
}

// GetMempoolEntry calls getmempoolentry and converts the result.
func (c *Client) GetMempoolEntry(txid string) (model.GetMempoolEntry, error) {
	id, err := types.ParseTxid(txid)
	if err != nil {
		return model.GetMempoolEntry{}, err
	}
	param, err := json.Marshal(id.String())
	if err != nil {
		return model.GetMempoolEntry{}, err
	}
	raw, err := c.RawRequest("getmempoolentry", []json.RawMessage{param})
	if err != nil {
		var rpcErr *btcjson.RPCError
		if errors.As(err, &rpcErr) && rpcErr.Code == btcjson.ErrRPCInvalidAddressOrKey {
			return model.GetMempoolEntry{}, fmt.Errorf("%w: %s", ErrNotInMempool, id)
		}
		return model.GetMempoolEntry{}, fmt.Errorf("getmempoolentry %s: %w", id, err)
	}
	res, err := types.DecodeGetMempoolEntry(raw)
	if err != nil {
		log.Debugf("getmempoolentry %s: %s", id, string(raw))
		return model.GetMempoolEntry{}, err
	}
	return res.IntoModel()
}

// SaveMempool asks the node to dump its mempool to disk.
func (c *Client) SaveMempool() (model.SaveMempool, error) {
	raw, err := c.RawRequest("savemempool", nil)
	if err != nil {
		return model.SaveMempool{}, fmt.Errorf("savemempool: %w", err)
	}
	res, err := types.DecodeSaveMempool(raw)
	if err != nil {
		return model.SaveMempool{}, err
	}
	return res.IntoModel()
}
