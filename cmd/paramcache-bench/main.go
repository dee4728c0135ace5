// Command paramcache-bench runs a synthetic producer/reader workload
// against a paramcache.Cache, serves Prometheus metrics at -http, and
// optionally serves pprof at -pprof. Grounded on the teacher's
// cmd/bench/main.go.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof/* on DefaultServeMux
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	pmet "github.com/telemetrycache/paramcache/metrics/prom"
	"github.com/telemetrycache/paramcache/paramcache"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	var (
		numParams   = flag.Int("params", 10_000, "distinct parameter keyspace size")
		deliverySz  = flag.Int("delivery_size", 8, "parameters per producer delivery")
		maxEntries  = flag.Int("max_entries", 64, "ring capacity cap per parameter")
		windowMs    = flag.Int64("window_ms", 10_000, "minimum history window retained per parameter, in ms")
		cacheAll    = flag.Bool("cache_all", true, "retain every parameter (false = lazy subscription)")
		subscribeFr = flag.Float64("subscribe_fraction", 0.1, "fraction of keyspace readers touch (lazy mode only)")

		producers = flag.Int("producers", 1, "producer goroutines (spec.md assumes one)")
		readers   = flag.Int("readers", 4*runtime.GOMAXPROCS(0), "reader goroutines")
		duration  = flag.Duration("duration", 10*time.Second, "benchmark duration")

		zipfS = flag.Float64("zipf_s", 1.1, "Zipf s > 1 (reader skew)")
		zipfV = flag.Float64("zipf_v", 1.0, "Zipf v")
		seed  = flag.Int64("seed", time.Now().UnixNano(), "random seed")

		pprofAddr   = flag.String("pprof", "", "serve pprof at addr (e.g. :6060); empty = disabled")
		metricsAddr = flag.String("http", ":8080", "serve Prometheus metrics at addr")
	)
	flag.Parse()

	if *pprofAddr != "" {
		go func() {
			log.Printf("pprof: serving at %s", *pprofAddr)
			log.Println(http.ListenAndServe(*pprofAddr, nil))
		}()
	}

	metrics := pmet.New(nil, "paramcache", "bench", nil)
	http.Handle("/metrics", promhttp.Handler())
	go func() {
		log.Printf("metrics: serving at %s", *metricsAddr)
		log.Println(http.ListenAndServe(*metricsAddr, nil))
	}()

	c := paramcache.New(paramcache.Options{
		CacheAll:      *cacheAll,
		MaxDuration:   time.Duration(*windowMs) * time.Millisecond,
		MaxNumEntries: *maxEntries,
		Metrics:       metrics,
	})
	defer func() { _ = c.Close() }()

	ids := make([]paramcache.ParameterId, *numParams)
	for i := range ids {
		ids[i] = paramcache.ParameterId{Name: "/bench/param:" + strconv.Itoa(i)}
	}

	// Prime subscriptions in lazy mode so readers have something to see
	// before the producers catch up.
	if !*cacheAll {
		subN := int(float64(*numParams) * *subscribeFr)
		for i := 0; i < subN; i++ {
			c.GetLast(ids[i])
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	var deliveries, reads, hits, misses uint64
	var wg sync.WaitGroup

	wg.Add(*producers)
	for p := 0; p < *producers; p++ {
		go func(id int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(*seed + int64(id)*7919))
			var gen int64
			for {
				select {
				case <-ctx.Done():
					return
				default:
				}
				gen++
				values := make([]*paramcache.ParameterValue, *deliverySz)
				for i := range values {
					pid := ids[r.Intn(len(ids))]
					values[i] = paramcache.NewParameterValue(pid, r.Float64(), gen, gen, paramcache.Acquired, 0)
				}
				c.Update(values)
				atomic.AddUint64(&deliveries, 1)
			}
		}(p)
	}

	wg.Add(*readers)
	for rd := 0; rd < *readers; rd++ {
		go func(id int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(*seed + int64(id)*104729))
			zipf := rand.NewZipf(r, *zipfS, *zipfV, uint64(len(ids)-1))
			for {
				select {
				case <-ctx.Done():
					return
				default:
				}
				pid := ids[zipf.Uint64()]
				atomic.AddUint64(&reads, 1)
				if v := c.GetLast(pid); v != nil {
					atomic.AddUint64(&hits, 1)
				} else {
					atomic.AddUint64(&misses, 1)
				}
			}
		}(rd)
	}

	wg.Wait()

	st := c.Stats()
	fmt.Printf("params=%d delivery_size=%d max_entries=%d window_ms=%d cache_all=%v producers=%d readers=%d dur=%v\n",
		*numParams, *deliverySz, *maxEntries, *windowMs, *cacheAll, *producers, *readers, *duration)
	fmt.Printf("deliveries=%d reads=%d hits=%d misses=%d\n", deliveries, reads, hits, misses)
	fmt.Printf("entries=%d subscribed=%d writes=%d out_of_order_drops=%d grows=%d expired=%d\n",
		st.Entries, st.Subscribed, st.TotalWrites, st.TotalOutOfOrderDrops, st.TotalGrows, st.TotalExpired)
}
