// ssfi - super simple file indexer
//
// Walks the given directories for .txt files and prints the most frequently
// occurring words as "word : count" lines, highest count first, ties broken
// by ascending word.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	_ "go.uber.org/automaxprocs"

	"github.com/kjplatz/ssfi/internal/config"
	"github.com/kjplatz/ssfi/internal/counter"
	"github.com/kjplatz/ssfi/internal/indexer"
	"github.com/kjplatz/ssfi/internal/queue"
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s -N <num> [-c <num>] [-d] [-h] <dir> [<dir> ...]\n", os.Args[0])
	fmt.Fprintln(os.Stderr, "     -N <num> : number of worker threads")
	fmt.Fprintln(os.Stderr, "     -c <num> : extract the top <num> frequently occurring words (default: 10)")
	fmt.Fprintln(os.Stderr, "     -d       : enable debug logging")
	fmt.Fprintln(os.Stderr, "     -h       : display this help and exit")
}

func main() {
	var (
		nthreads int
		count    int
		debug    bool
		help     bool
	)
	flag.IntVar(&nthreads, "N", 0, "number of worker threads")
	flag.IntVar(&nthreads, "nthreads", 0, "number of worker threads")
	flag.IntVar(&count, "c", 0, "number of top words to report")
	flag.IntVar(&count, "count", 0, "number of top words to report")
	flag.BoolVar(&debug, "d", false, "enable debug logging")
	flag.BoolVar(&debug, "debug", false, "enable debug logging")
	flag.BoolVar(&help, "h", false, "display help and exit")
	flag.BoolVar(&help, "help", false, "display help and exit")
	flag.Usage = usage
	flag.Parse()

	if help {
		usage()
		return
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log.Debug().Msg("debug logging enabled")
	}

	if nthreads <= 0 {
		fmt.Fprintln(os.Stderr, "Error: number of worker threads must be specified and greater than zero")
		usage()
		os.Exit(1)
	}

	config.Init()
	if count <= 0 {
		count = config.AppConfig.Int(config.KeyTopCount)
	}

	counts, err := counter.NewStringMap(counter.MapConfig{
		InitialCapacity: config.AppConfig.Int(config.KeyInitialCapacity),
		MaxProbes:       config.AppConfig.Int(config.KeyMaxProbes),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("creating counter map")
	}

	q := queue.New[string]()
	pool := indexer.NewPool(q, counts, nthreads)
	pool.Start()

	indexer.NewWalker(q).Walk(flag.Args())

	pool.Shutdown()
	pool.Wait()

	for _, e := range counts.TopK(count) {
		fmt.Printf("%s : %d\n", e.Key, e.Count)
	}
}
