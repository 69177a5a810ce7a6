package corpus

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/arliden/semlabel/internal/encoder"
	"github.com/arliden/semlabel/internal/model"
)

// EmbedOptions controls corpus embedding throughput.
type EmbedOptions struct {
	BatchSize int // texts per EncodeBatch call
	Workers   int // concurrent batches; 1 = sequential
}

// Embed applies the encoder to every example and returns index-ready corpus
// entries in input order. It is a pure function of the encoder weights: the
// same weights used at query time must be used here, or the two sides of
// the embedding space drift apart.
func Embed(enc encoder.Encoder, examples []model.Example, opts EmbedOptions) ([]model.CorpusEntry, error) {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 32
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}

	type job struct {
		start int
		texts []string
	}
	jobs := make([]job, 0, (len(examples)+opts.BatchSize-1)/opts.BatchSize)
	for start := 0; start < len(examples); start += opts.BatchSize {
		end := min(start+opts.BatchSize, len(examples))
		texts := make([]string, end-start)
		for i := start; i < end; i++ {
			texts[i-start] = examples[i].Text
		}
		jobs = append(jobs, job{start: start, texts: texts})
	}

	vectors := make([][]float32, len(examples))
	jobCh := make(chan job, len(jobs))
	errCh := make(chan error, opts.Workers)

	var wg sync.WaitGroup
	for w := 0; w < opts.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobCh {
				vecs, err := enc.EncodeBatch(j.texts)
				if err != nil {
					errCh <- fmt.Errorf("corpus: embed batch at %d: %w", j.start, err)
					return
				}
				// Slots are disjoint per job; no lock needed.
				for i, v := range vecs {
					vectors[j.start+i] = v
				}
			}
		}()
	}
	for _, j := range jobs {
		jobCh <- j
	}
	close(jobCh)
	wg.Wait()
	close(errCh)
	if err := <-errCh; err != nil {
		return nil, err
	}

	dim := enc.Dim()
	entries := make([]model.CorpusEntry, len(examples))
	for i, ex := range examples {
		if len(vectors[i]) != dim {
			return nil, fmt.Errorf("corpus: entry %d: %w", i, encoder.ErrDimensionMismatch)
		}
		entries[i] = model.CorpusEntry{
			ID:     "c" + strconv.Itoa(i),
			Text:   ex.Text,
			Label:  ex.Label,
			Vector: vectors[i],
		}
	}
	return entries, nil
}
