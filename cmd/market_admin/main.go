package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	app "veg_market/internal/application/market"
	"veg_market/internal/config"
	"veg_market/internal/infrastructure/persistence/jsonfile"
	"veg_market/internal/store"
)

// Maintenance jobs against the market data file: backup, restore, clear
// and a quick stats printout. The api server does not need to be
// stopped, but jobs assume they are the only writer while they run.
func main() {
	job := flag.String("job", "", "one of: backup, backups, restore, clear, stats")
	file := flag.String("file", "", "backup artifact name (restore)")
	yes := flag.Bool("yes", false, "confirm destructive jobs (clear)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}

	repo, err := jsonfile.NewRepository(cfg.Storage.DataFile, cfg.Storage.BackupDir)
	if err != nil {
		log.Fatalf("init persistence failed: %v", err)
	}
	st := store.New(repo)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	switch *job {
	case "backup":
		name, err := st.Backup(ctx)
		if err != nil {
			log.Fatalf("backup failed: %v", err)
		}
		fmt.Printf("backup written: %s\n", name)

	case "backups":
		names, err := st.Backups(ctx)
		if err != nil {
			log.Fatalf("list backups failed: %v", err)
		}
		if len(names) == 0 {
			fmt.Println("no backups found")
			return
		}
		for _, n := range names {
			fmt.Println(n)
		}

	case "restore":
		if *file == "" {
			log.Fatal("restore needs -file with a backup artifact name")
		}
		if err := st.Restore(ctx, *file); err != nil {
			log.Fatalf("restore failed: %v", err)
		}
		fmt.Printf("restored from %s\n", *file)

	case "clear":
		if !*yes {
			log.Fatal("clearing all data is irreversible; rerun with -yes to confirm")
		}
		if err := st.ClearAll(ctx); err != nil {
			log.Fatalf("clear failed: %v", err)
		}
		fmt.Println("all market data cleared")

	case "stats":
		if err := st.Load(ctx); err != nil {
			log.Fatalf("load failed: %v", err)
		}
		stats := app.NewService(st).SalesStatistics(nil, nil)
		fmt.Printf("orders:        %d\n", stats.Orders)
		fmt.Printf("total revenue: %s\n", stats.TotalRevenue)
		fmt.Printf("total profit:  %s\n", stats.TotalProfit)
		fmt.Printf("avg order:     %s\n", stats.AverageOrderValue)
		for _, vs := range stats.ByVegetable {
			fmt.Printf("  %-16s units=%-5d revenue=%-10s profit=%s\n",
				vs.Name, vs.UnitsSold, vs.Revenue, vs.Profit)
		}

	default:
		flag.Usage()
		os.Exit(2)
	}
}
