package main

import (
	"flag"
	"log"
	"net/http"
	"os"

	"github.com/gorilla/handlers"

	"github.com/jalad-shrimali/lane-split/config"
	api "github.com/jalad-shrimali/lane-split/handlers"
	"github.com/jalad-shrimali/lane-split/store"
)

func main() {
	cfgPath := flag.String("config", "lanesplit.yaml", "path to YAML config")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal(err)
	}

	st, err := store.Open(cfg.Server.DownloadTTL())
	if err != nil {
		log.Fatal(err)
	}
	defer st.Close()

	router := api.NewRouter(api.NewServer(cfg, st))
	logged := handlers.LoggingHandler(os.Stdout, router)

	log.Printf("Server started on %s (profile %s)", cfg.Server.Addr, cfg.Conversion.Profile)
	log.Fatal(http.ListenAndServe(cfg.Server.Addr, logged))
}
