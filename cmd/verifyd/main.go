// Command verifyd runs the reference product verification server.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/weperform/feiken-authenticate/internal/verifyd"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	dbPath := flag.String("db", "verifyd.db", "sqlite database path")
	seedDemo := flag.Bool("seed-demo", false, "seed the demo QR code and exit")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	store, err := verifyd.OpenStore(*dbPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	defer store.Close()

	if *seedDemo {
		if err := verifyd.SeedDemo(store); err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(1)
		}
		fmt.Println("Seeded demo code:", verifyd.DemoCode)
		return
	}

	srv := verifyd.NewServer(store, log)
	log.Info("verifyd listening", "addr", *addr, "db", *dbPath)
	if err := http.ListenAndServe(*addr, srv.Router()); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
