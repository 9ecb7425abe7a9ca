// Command check-firestore prints the dataset currently marked active in
// Firestore together with its headline metrics.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/weiwei-tsao/gerencial-qoe/apps/api/internal/business/dataset"
	"github.com/weiwei-tsao/gerencial-qoe/apps/api/internal/business/qoe"
	"github.com/weiwei-tsao/gerencial-qoe/apps/api/internal/platform/config"
	firestoreclient "github.com/weiwei-tsao/gerencial-qoe/apps/api/internal/platform/firestore"
	"github.com/weiwei-tsao/gerencial-qoe/apps/api/internal/platform/logging"
	"github.com/weiwei-tsao/gerencial-qoe/apps/api/internal/repository"
)

func main() {
	rows := flag.Int("rows", 5, "number of records to print")
	uploads := flag.Int("uploads", 5, "number of upload history entries to print")
	flag.Parse()

	ctx := context.Background()
	_ = godotenv.Load(".env.local", ".env")

	_ = os.Setenv("STORE_BACKEND", config.StoreFirestore)
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("config load")
	}

	client, _, err := firestoreclient.New(ctx, cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("firestore init")
	}
	defer client.Close()

	snap, err := repository.NewDatasetRepository(client).LoadActive(ctx)
	if errors.Is(err, dataset.ErrNoDataset) {
		fmt.Println("No active dataset.")
	} else if err != nil {
		logging.Fatal().Err(err).Msg("load active dataset")
	} else {
		printJSON("Active dataset", snap.Dataset)

		n := min(*rows, snap.Table.Len())
		printJSON(fmt.Sprintf("First %d records", n), snap.Table.Records[:n])

		metrics, _ := qoe.Summarize(snap.Table.Records)
		printJSON("Dashboard metrics", metrics)
		if len(snap.Table.Records) != snap.RowCount {
			fmt.Printf("WARNING: dataset declares %d rows but %d were stored\n", snap.RowCount, snap.Table.Len())
		}
	}

	history, err := repository.NewUploadRepository(client).ListUploads(ctx, *uploads)
	if err != nil {
		logging.Fatal().Err(err).Msg("list uploads")
	}
	printJSON("Recent uploads", history)
}

func printJSON(title string, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		logging.Fatal().Err(err).Msg("marshal")
	}
	fmt.Printf("=== %s ===\n%s\n\n", title, data)
}
