package pipeline

import (
	"context"
	"runtime"
	"sync"

	"github.com/seqvar/vrsfhir/internal/fhir"
	"github.com/seqvar/vrsfhir/internal/vrs"
)

// workItem holds a decoded allele ready for translation.
type workItem struct {
	Seq    int
	Line   int
	Allele *vrs.Allele
}

// workResult holds the translation output for a single allele.
type workResult struct {
	Seq    int
	Line   int
	Allele *vrs.Allele
	Doc    *fhir.MolecularDefinition
	Err    error
}

// parallelTranslate translates work items using a pool of workers.
// Results arrive on the returned channel in completion order; use
// orderedCollect to consume them in sequence-number order. If workers is
// 0, runtime.NumCPU() is used.
func (p *Pipeline) parallelTranslate(ctx context.Context, items <-chan workItem, workers int) <-chan workResult {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make(chan workResult, 2*workers)

	var wg sync.WaitGroup
	wg.Add(workers)

	for range workers {
		go func() {
			defer wg.Done()
			for item := range items {
				doc, err := p.translator.Translate(ctx, item.Allele)
				results <- workResult{
					Seq:    item.Seq,
					Line:   item.Line,
					Allele: item.Allele,
					Doc:    doc,
					Err:    err,
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// orderedCollect calls fn for each result in sequence-number order,
// buffering out-of-order results until the next expected sequence number
// arrives. Blocks until the results channel is closed.
func orderedCollect(results <-chan workResult, fn func(workResult) error) error {
	pending := make(map[int]workResult)
	nextSeq := 0

	for r := range results {
		pending[r.Seq] = r

		for {
			rr, ok := pending[nextSeq]
			if !ok {
				break
			}
			delete(pending, nextSeq)
			nextSeq++
			if err := fn(rr); err != nil {
				// Drain remaining results to unblock workers.
				for range results {
				}
				return err
			}
		}
	}

	return nil
}
