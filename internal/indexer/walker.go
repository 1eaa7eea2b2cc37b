package indexer

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/kjplatz/ssfi/internal/queue"
)

// Walker feeds the paths of text files under one or more root directories
// into the work queue. Entries that cannot be read are logged and skipped;
// a bad directory never aborts the run.
type Walker struct {
	queue *queue.Queue[string]
}

func NewWalker(q *queue.Queue[string]) *Walker {
	return &Walker{queue: q}
}

// Walk traverses each root and enqueues every file whose name ends in ".txt"
// (case-insensitive).
func (w *Walker) Walk(roots []string) {
	for _, root := range roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				log.Error().Err(err).Str("path", path).Msg("cannot read directory entry")
				return nil
			}
			if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".txt") {
				return nil
			}
			log.Debug().Str("file", path).Msg("queueing file")
			w.queue.Enqueue(path)
			return nil
		})
		if err != nil {
			log.Error().Err(err).Str("dir", root).Msg("processing directory")
		}
	}
}
