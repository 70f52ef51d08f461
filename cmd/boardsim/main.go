// Command boardsim is a concurrent stress driver for a Memory
// Scramble board: it loads a board file and fans out simulated
// players that look at the board and flip cards concurrently (they do
// not call Watch or Map), then reports match and error tallies.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/vctt94/memoryboard/internal/board"
	"github.com/vctt94/memoryboard/internal/logging"
)

func main() {
	var (
		boardPath     string
		players       int
		maxConcurrent int64
		flipsPerDrive int
		seed          int64
		debugLevel    string
	)
	flag.StringVar(&boardPath, "board", "", "Path to the board file to load (required)")
	flag.IntVar(&players, "players", 8, "Number of simulated players")
	flag.Int64Var(&maxConcurrent, "max-concurrent", 4, "Max simultaneously active simulated players")
	flag.IntVar(&flipsPerDrive, "flips", 50, "Number of flip attempts per simulated player")
	flag.Int64Var(&seed, "seed", 1, "RNG seed driving simulated player choices")
	flag.StringVar(&debugLevel, "debuglevel", "warn", "Logging level: trace, debug, info, warn, error")
	flag.Parse()

	if boardPath == "" {
		fmt.Fprintln(os.Stderr, "boardsim: -board is required")
		os.Exit(1)
	}

	logBackend := logging.NewBackend(debugLevel)

	f, err := os.Open(boardPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "boardsim: failed to open board file: %v\n", err)
		os.Exit(1)
	}
	b, err := board.NewFromReader(f, board.WithLogger(logBackend.Logger("BOARD")))
	f.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "boardsim: failed to parse board file: %v\n", err)
		os.Exit(1)
	}

	var matches, mismatches, errs int64

	sem := semaphore.NewWeighted(maxConcurrent)
	g, ctx := errgroup.WithContext(context.Background())

	for i := 0; i < players; i++ {
		playerID := "sim" + strconv.Itoa(i)
		rng := rand.New(rand.NewSource(seed + int64(i)))
		g.Go(func() error {
			if err := sem.Acquire(ctx, 1); err != nil {
				return err
			}
			defer sem.Release(1)
			return drivePlayer(ctx, b, playerID, flipsPerDrive, rng, &matches, &mismatches, &errs)
		})
	}

	if err := g.Wait(); err != nil {
		fmt.Fprintf(os.Stderr, "boardsim: simulation error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("matches=%d mismatches=%d errors=%d\n",
		atomic.LoadInt64(&matches), atomic.LoadInt64(&mismatches), atomic.LoadInt64(&errs))
}

func drivePlayer(ctx context.Context, b *board.Board, playerID string, flips int, rng *rand.Rand, matches, mismatches, errs *int64) error {
	rows, cols := b.Rows(), b.Cols()
	for i := 0; i < flips; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		row := rng.Intn(rows)
		col := rng.Intn(cols)
		before := b.Look(playerID)

		snap, err := b.Flip(playerID, row, col)
		if err != nil {
			atomic.AddInt64(errs, 1)
			continue
		}
		if snap != before {
			if wasSecondCardMatch(before, snap) {
				atomic.AddInt64(matches, 1)
			} else {
				atomic.AddInt64(mismatches, 1)
			}
		}

		if rng.Intn(10) == 0 {
			time.Sleep(time.Millisecond)
		}
	}
	return nil
}

// wasSecondCardMatch is a coarse heuristic: a match removes two
// previously-"up"/"down" cells to "none", which a mismatch never does
// on the very next snapshot.
func wasSecondCardMatch(before, after string) bool {
	return countNone(after) > countNone(before)
}

func countNone(snapshot string) int {
	count := 0
	for i := 0; i+4 < len(snapshot); i++ {
		if snapshot[i:i+4] == "none" {
			count++
		}
	}
	return count
}
