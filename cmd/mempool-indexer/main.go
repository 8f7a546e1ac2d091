package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"github.com/SwingbyProtocol/mempool-indexer/api"
	"github.com/SwingbyProtocol/mempool-indexer/chains/btc"
	"github.com/SwingbyProtocol/mempool-indexer/config"
	log "github.com/sirupsen/logrus"
)

func init() {
	log.SetReportCaller(true)
	log.SetFormatter(&log.TextFormatter{
		ForceColors:   true,
		FullTimestamp: true,
		CallerPrettyfier: func(f *runtime.Frame) (string, string) {
			s := strings.Split(f.Function, ".")
			funcname := s[len(s)-1]
			paddedFuncname := fmt.Sprintf(" %-30v", funcname+"()")
			return paddedFuncname, ""
		},
	})
	log.SetOutput(os.Stdout)
}

func main() {
	conf, err := config.NewDefaultConfig()
	if err != nil {
		log.Fatal(err)
	}
	level, err := log.ParseLevel(conf.LogConfig.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	log.SetLevel(level)

	if err := os.MkdirAll(filepath.Dir(conf.DBConfig.Path), 0755); err != nil {
		log.Fatal(err)
	}
	db := btc.NewDB()
	if err := db.Start(conf.DBConfig.Path); err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	client, err := btc.NewBtcClient(conf.BTCConfig.NodeAddr)
	if err != nil {
		log.Fatal(err)
	}
	defer client.Shutdown()

	btcKeeper := btc.NewKeeper(client, db)
	for _, txid := range conf.BTCConfig.Watch {
		if err := btcKeeper.WatchTxid(txid); err != nil {
			log.Fatal(err)
		}
	}
	btcKeeper.Start(conf.BTCConfig.Interval)
	defer btcKeeper.Stop()

	apiConfig := &api.APIConfig{
		ListenREST: conf.RESTConfig.ListenAddr,
		Actions: []*api.Action{
			api.NewGet("/api/v1/btc/mempool/:txid", btcKeeper.GetMempoolEntry),
			api.NewGet("/api/v1/btc/mempool/:txid/cached", btcKeeper.GetCachedMempoolEntry),
			api.NewPOST("/api/v1/btc/mempool/save", btcKeeper.SaveMempool),
		},
	}
	apiServer := api.NewAPI(apiConfig)
	if err := apiServer.Start(); err != nil {
		log.Fatal(err)
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGQUIT)
	sig := <-c
	log.Infof("received %s, shutting down", sig)
}
