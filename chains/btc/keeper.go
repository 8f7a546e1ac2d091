package btc

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/SwingbyProtocol/mempool-indexer/chains/btc/model"
	"github.com/SwingbyProtocol/mempool-indexer/chains/btc/types"
	"github.com/ant0ine/go-json-rest/rest"
	log "github.com/sirupsen/logrus"
)

const DefaultInterval = 60 * time.Second

// MempoolSource is the node side of the keeper, implemented by *Client.
type MempoolSource interface {
	GetMempoolEntry(txid string) (model.GetMempoolEntry, error)
	SaveMempool() (model.SaveMempool, error)
}

type Keeper struct {
	mu      *sync.RWMutex
	source  MempoolSource
	db      *Db
	ticker  *time.Ticker
	quit    chan struct{}
	started bool
	stop    sync.Once
	watched map[model.Txid]struct{}
}

func NewKeeper(source MempoolSource, db *Db) *Keeper {
	k := &Keeper{
		mu:      new(sync.RWMutex),
		source:  source,
		db:      db,
		quit:    make(chan struct{}),
		watched: make(map[model.Txid]struct{}),
	}
	return k
}

// WatchTxid adds a txid whose entry is refreshed on every tick.
func (k *Keeper) WatchTxid(txid string) error {
	id, err := types.ParseTxid(txid)
	if err != nil {
		return err
	}
	k.mu.Lock()
	k.watched[id] = struct{}{}
	k.mu.Unlock()
	return nil
}

func (k *Keeper) Watched() []model.Txid {
	k.mu.RLock()
	defer k.mu.RUnlock()
	ids := make([]model.Txid, 0, len(k.watched))
	for id := range k.watched {
		ids = append(ids, id)
	}
	return ids
}

// Start runs the refresh loop. A keeper runs once: calls after the first
// Start, including after Stop, are no-ops.
func (k *Keeper) Start(interval time.Duration) {
	if interval <= 0 {
		interval = DefaultInterval
	}
	k.mu.Lock()
	if k.started {
		k.mu.Unlock()
		return
	}
	k.started = true
	k.ticker = time.NewTicker(interval)
	ticker := k.ticker
	k.mu.Unlock()
	k.processKeep()
	go func() {
		for {
			select {
			case <-ticker.C:
				k.processKeep()
			case <-k.quit:
				return
			}
		}
	}()
}

func (k *Keeper) Stop() {
	k.mu.Lock()
	defer k.mu.Unlock()
	if !k.started {
		return
	}
	k.stop.Do(func() {
		k.ticker.Stop()
		close(k.quit)
	})
}

func (k *Keeper) processKeep() {
	for _, id := range k.Watched() {
		_, err := k.fetch(id)
		if errors.Is(err, ErrNotInMempool) {
			// mined or evicted
			log.Infof("BTC tx %s left the mempool", id)
			k.mu.Lock()
			delete(k.watched, id)
			k.mu.Unlock()
			if err := k.db.DeleteEntry(id); err != nil {
				log.Warn(err)
			}
			continue
		}
		if err != nil {
			log.Warnf("BTC tx %s refresh failed: %s", id, err)
		}
	}
}

func (k *Keeper) fetch(id model.Txid) (model.MempoolEntry, error) {
	res, err := k.source.GetMempoolEntry(id.String())
	if err != nil {
		return model.MempoolEntry{}, err
	}
	if err := k.db.StoreEntry(id, res.Entry); err != nil {
		log.Warnf("BTC tx %s store failed: %s", id, err)
	}
	return res.Entry, nil
}

func (k *Keeper) GetMempoolEntry(w rest.ResponseWriter, r *rest.Request) {
	id, err := types.ParseTxid(r.PathParam("txid"))
	if err != nil {
		rest.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	entry, err := k.fetch(id)
	if errors.Is(err, ErrNotInMempool) {
		rest.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		log.Warn(err)
		rest.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	w.WriteJson(types.NewMempoolEntry(entry))
}

func (k *Keeper) GetCachedMempoolEntry(w rest.ResponseWriter, r *rest.Request) {
	id, err := types.ParseTxid(r.PathParam("txid"))
	if err != nil {
		rest.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	entry, err := k.db.GetEntry(id)
	if errors.Is(err, ErrEntryNotFound) {
		rest.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		rest.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteJson(types.NewMempoolEntry(entry))
}

func (k *Keeper) SaveMempool(w rest.ResponseWriter, r *rest.Request) {
	res, err := k.source.SaveMempool()
	if err != nil {
		log.Warn(err)
		rest.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	log.Infof("BTC mempool saved to %s", res.Filename)
	w.WriteJson(types.NewSaveMempool(res))
}
