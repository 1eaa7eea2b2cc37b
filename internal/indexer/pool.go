// Package indexer wires the work queue and the counter map into a
// word-frequency indexer: a walker produces file paths, a pool of workers
// consumes them and counts every word.
package indexer

import (
	"bufio"
	"os"
	"regexp"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/kjplatz/ssfi/internal/counter"
	"github.com/kjplatz/ssfi/internal/queue"
)

// poisonPath stops a worker. One is enqueued per worker on Shutdown; real
// file paths are never empty.
const poisonPath = ""

var wordPattern = regexp.MustCompile(`[[:alnum:]]+`)

// Pool runs a fixed number of workers, each looping dequeue -> tokenize ->
// increment until it dequeues a poison value. Completion is tracked by a
// counter under the pool's lock, observed through a condition variable.
type Pool struct {
	queue   *queue.Queue[string]
	counts  *counter.Map[string]
	workers int

	mu       sync.Mutex
	finished *sync.Cond
	done     int
}

func NewPool(q *queue.Queue[string], counts *counter.Map[string], workers int) *Pool {
	p := &Pool{queue: q, counts: counts, workers: workers}
	p.finished = sync.NewCond(&p.mu)
	return p
}

// Start launches the workers. They keep draining the queue until each has
// seen a poison value.
func (p *Pool) Start() {
	for i := 1; i <= p.workers; i++ {
		go p.run(i)
	}
}

// Shutdown enqueues one poison value per worker. Work enqueued before
// Shutdown is still drained; FIFO order puts the poison behind it.
func (p *Pool) Shutdown() {
	for i := 0; i < p.workers; i++ {
		p.queue.Enqueue(poisonPath)
	}
}

// Wait blocks until every worker has exited.
func (p *Pool) Wait() {
	p.mu.Lock()
	for p.done < p.workers {
		p.finished.Wait()
	}
	p.mu.Unlock()
}

func (p *Pool) run(id int) {
	log.Debug().Int("worker", id).Msg("worker starting")
	for {
		path := p.queue.Dequeue()
		if path == poisonPath {
			break
		}
		log.Debug().Int("worker", id).Str("file", path).Msg("processing file")
		p.indexFile(path)
	}
	log.Debug().Int("worker", id).Msg("worker done")

	p.mu.Lock()
	p.done++
	p.mu.Unlock()
	p.finished.Broadcast()
}

// indexFile counts every lowercased alphanumeric word in the file. Files that
// cannot be opened or read are reported and skipped; they never abort the
// run.
func (p *Pool) indexFile(path string) {
	f, err := os.Open(path)
	if err != nil {
		log.Error().Err(err).Str("file", path).Msg("cannot open file")
		return
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		for _, word := range wordPattern.FindAllString(sc.Text(), -1) {
			p.counts.Increment(strings.ToLower(word))
		}
	}
	if err := sc.Err(); err != nil {
		log.Error().Err(err).Str("file", path).Msg("reading file")
	}
}
