// Command boardserver serves a Memory Scramble board over HTTP.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/vctt94/memoryboard/internal/board"
	"github.com/vctt94/memoryboard/internal/httpapi"
	"github.com/vctt94/memoryboard/internal/logging"
)

func main() {
	var (
		host       string
		port       int
		boardPath  string
		debugLevel string
		fifo       bool
	)
	flag.StringVar(&host, "host", "127.0.0.1", "Host to listen on")
	flag.IntVar(&port, "port", 8080, "Port to listen on")
	flag.StringVar(&boardPath, "board", "", "Path to the board file to load at startup (required)")
	flag.StringVar(&debugLevel, "debuglevel", "info", "Logging level: trace, debug, info, warn, error")
	flag.BoolVar(&fifo, "fifo-waiters", false, "Use FIFO waiter selection instead of the default random policy")
	flag.Parse()

	if boardPath == "" {
		fmt.Fprintln(os.Stderr, "boardserver: -board is required")
		os.Exit(1)
	}

	logBackend := logging.NewBackend(debugLevel)
	log := logBackend.Logger("BOARDSRV")

	f, err := os.Open(boardPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "boardserver: failed to open board file: %v\n", err)
		os.Exit(1)
	}

	opts := []board.Option{board.WithLogger(logBackend.Logger("BOARD"))}
	if fifo {
		opts = append(opts, board.WithWaiterPolicy(board.WaiterPolicyFIFO))
	}

	b, err := board.NewFromReader(f, opts...)
	f.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "boardserver: failed to parse board file: %v\n", err)
		os.Exit(1)
	}

	srv := httpapi.NewServer(b, logBackend.Logger("HTTPAPI"))

	addr := fmt.Sprintf("%s:%d", host, port)
	log.Infof("listening on %s", addr)
	if err := http.ListenAndServe(addr, srv.Router()); err != nil {
		fmt.Fprintf(os.Stderr, "boardserver: serve error: %v\n", err)
		os.Exit(1)
	}
}
