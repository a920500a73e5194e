// Bench measures blocktable insert throughput, lookup throughput, and sort
// plus merge-iteration cost, optionally across several tables in parallel
// (one goroutine per table; a single table is single-writer).
//
// Usage:
//
//	go run ./cmd/bench -keys 10000000 -keylen 16 -vallen 8
//
// Flags:
//
//	-keys       Number of distinct keys per table (default: 10,000,000)
//	-keylen     Key width in bytes (default: 16)
//	-vallen     Value width in bytes (default: 8)
//	-estimate   Entry estimate passed to the table (default: -keys value)
//	-load       Load factor, 1-255 (default: blocktable.DefaultLoadFactor)
//	-tables     Number of tables driven in parallel (default: 1)
//	-sort       Sort and merge-iterate after the insert phase (default: true)
package main

import (
	"context"
	"encoding/binary"
	"flag"
	"fmt"
	"os"
	"runtime"
	"syscall"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/spaolacci/murmur3"
	"golang.org/x/sync/errgroup"

	"github.com/netsieve/blocktable"
)

// getMaxRSS returns the maximum resident set size in bytes.
func getMaxRSS() uint64 {
	var rusage syscall.Rusage
	if err := syscall.Getrusage(syscall.RUSAGE_SELF, &rusage); err != nil {
		return 0
	}
	maxRSS := uint64(rusage.Maxrss)
	if runtime.GOOS == "linux" {
		maxRSS *= 1024 // Linux reports kilobytes
	}
	return maxRSS
}

// fillKey derives a pseudo-random keyLen-byte key from (table, i) with
// murmur3, so every table gets a distinct deterministic key stream.
func fillKey(dst []byte, table, i uint64) {
	var seedBuf [16]byte
	binary.LittleEndian.PutUint64(seedBuf[0:8], table)
	binary.LittleEndian.PutUint64(seedBuf[8:16], i)
	lo, hi := murmur3.Sum128WithSeed(seedBuf[:], uint32(table)+1)
	for j := 0; j < len(dst); j += 8 {
		var w [8]byte
		binary.LittleEndian.PutUint64(w[:], lo)
		copy(dst[j:], w[:])
		lo, hi = hi, lo^hi
	}
}

type result struct {
	insertDur time.Duration
	lookupDur time.Duration
	sortDur   time.Duration
	iterDur   time.Duration
	entries   uint64
	buckets   uint64
	checksum  uint64
	stats     blocktable.Stats
}

func runTable(tableID uint64, numKeys int, keyLen, valLen int, estimate uint64, load uint8, doSort bool) (result, error) {
	var res result

	tbl, err := blocktable.New(keyLen, valLen,
		blocktable.WithEstimate(estimate),
		blocktable.WithLoadFactor(load))
	if err != nil {
		return res, fmt.Errorf("create table %d: %w", tableID, err)
	}
	defer tbl.Close()

	key := make([]byte, keyLen)

	start := time.Now()
	for i := 0; i < numKeys; i++ {
		fillKey(key, tableID, uint64(i))
		val, inserted, err := tbl.Insert(key)
		if err != nil {
			return res, fmt.Errorf("insert %d into table %d: %w", i, tableID, err)
		}
		if inserted {
			val[0] = 1
		}
	}
	res.insertDur = time.Since(start)

	start = time.Now()
	for i := 0; i < numKeys; i++ {
		fillKey(key, tableID, uint64(i))
		if _, err := tbl.Lookup(key); err != nil {
			return res, fmt.Errorf("lookup %d in table %d: %w", i, tableID, err)
		}
	}
	res.lookupDur = time.Since(start)

	res.entries = tbl.Len()
	res.buckets = tbl.Buckets()

	if doSort {
		start = time.Now()
		if err := tbl.Sort(); err != nil {
			return res, fmt.Errorf("sort table %d: %w", tableID, err)
		}
		res.sortDur = time.Since(start)

		// Checksum the merged iteration output so the work is not dead code
		// and runs are comparable.
		digest := xxhash.New()
		start = time.Now()
		for it := tbl.Iter(); it.Next(); {
			_, _ = digest.Write(it.Key())
		}
		res.iterDur = time.Since(start)
		res.checksum = digest.Sum64()
	}

	res.stats = tbl.Stats()
	return res, nil
}

func main() {
	keysFlag := flag.Int("keys", 10_000_000, "number of distinct keys per table")
	keyLenFlag := flag.Int("keylen", 16, "key width in bytes")
	valLenFlag := flag.Int("vallen", 8, "value width in bytes")
	estimateFlag := flag.Uint64("estimate", 0, "entry estimate (0 = use -keys)")
	loadFlag := flag.Uint("load", blocktable.DefaultLoadFactor, "load factor (1-255)")
	tablesFlag := flag.Int("tables", 1, "number of tables driven in parallel")
	sortFlag := flag.Bool("sort", true, "sort and merge-iterate after inserting")
	flag.Parse()

	numKeys := *keysFlag
	estimate := *estimateFlag
	if estimate == 0 {
		estimate = uint64(numKeys)
	}

	results := make([]result, *tablesFlag)
	g, _ := errgroup.WithContext(context.Background())
	wallStart := time.Now()
	for id := 0; id < *tablesFlag; id++ {
		g.Go(func() error {
			r, err := runTable(uint64(id), numKeys, *keyLenFlag, *valLenFlag,
				estimate, uint8(*loadFlag), *sortFlag)
			results[id] = r
			return err
		})
	}
	if err := g.Wait(); err != nil {
		fmt.Fprintf(os.Stderr, "bench failed: %v\n", err)
		os.Exit(1)
	}
	wall := time.Since(wallStart)

	for id, r := range results {
		fmt.Printf("table %d: %d entries in %d buckets\n", id, r.entries, r.buckets)
		fmt.Printf("  insert: %v (%.2f M keys/s)\n",
			r.insertDur, float64(numKeys)/r.insertDur.Seconds()/1e6)
		fmt.Printf("  lookup: %v (%.2f M keys/s)\n",
			r.lookupDur, float64(numKeys)/r.lookupDur.Seconds()/1e6)
		if *sortFlag {
			fmt.Printf("  sort: %v, merge iterate: %v, checksum %016x\n",
				r.sortDur, r.iterDur, r.checksum)
		}
		fmt.Printf("  probes %d, collisions %d, hops %d, rehashes %d, blocks %d\n",
			r.stats.Finds, r.stats.Collisions, r.stats.CollisionHops,
			r.stats.Rehashes, r.stats.BlocksAllocated)
	}
	fmt.Printf("wall time: %v, peak RSS: %.1f MiB\n",
		wall, float64(getMaxRSS())/(1<<20))
}
