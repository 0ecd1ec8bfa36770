// pio-import bulk-loads newline-delimited JSON events into the event store.
package main

import (
	"flag"
	"log"

	"github.com/IndianOnRun/PredictionIO/config"
	"github.com/IndianOnRun/PredictionIO/event"
)

func main() {
	configPath := flag.String("config", "engine.yaml", "engine configuration file")
	file := flag.String("file", "", "events file (newline-delimited JSON)")
	appID := flag.Int("app", 0, "application ID to import into (defaults to the configured one)")
	gbk := flag.Bool("gbk", false, "transcode the input from GBK")
	flag.Parse()

	if *file == "" {
		log.Fatal("-file is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *appID == 0 {
		*appID = cfg.Engine.Params.DataSource.AppID
	}

	store, err := event.NewStore(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open event store: %v", err)
	}
	defer store.Close()

	n, err := event.ImportFile(store, *file, event.ImportOptions{AppID: *appID, GBK: *gbk})
	if err != nil {
		log.Fatalf("Import failed after %d events: %v", n, err)
	}
	log.Printf("Imported %d events into app %d", n, *appID)
}
