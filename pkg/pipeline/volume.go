package pipeline

import (
	"fmt"

	"ctfiducials/internal/models"
	"ctfiducials/pkg/monitoring"
)

// ProcessVolume runs every slice of vol on processing.numCores workers and
// returns the results in slice order. Slices without metadata are processed
// with empty metadata and therefore fail table removal.
func (p *Processor) ProcessVolume(vol *models.Volume) []SliceResult {
	total := vol.Len()
	results := make([]SliceResult, total)
	if total == 0 {
		return results
	}

	numWorkers := p.cfg.Processing.NumCores
	if numWorkers > total {
		numWorkers = total
	}

	type task struct {
		pos   int
		slice *models.Slice
		meta  models.SliceMeta
	}
	type processingResult struct {
		pos int
		res SliceResult
	}

	tasks := make(chan task)
	resultChan := make(chan processingResult)

	for w := 0; w < numWorkers; w++ {
		go func() {
			for t := range tasks {
				resultChan <- processingResult{pos: t.pos, res: p.RunSlice(t.slice, t.meta)}
			}
		}()
	}

	go func() {
		for i, s := range vol.Slices {
			var meta models.SliceMeta
			if i < len(vol.Meta) {
				meta = vol.Meta[i]
			}
			tasks <- task{pos: i, slice: s, meta: meta}
		}
		close(tasks)
	}()

	failed := 0
	for completed := 1; completed <= total; completed++ {
		r := <-resultChan
		results[r.pos] = r.res
		if r.res.Err != nil {
			failed++
			monitoring.Logf("skipping slice %d: %v", r.res.Index, r.res.Err)
		}
		if p.cfg.Output.Verbose {
			fmt.Printf("\rProcessing slices: %.1f%% complete", float64(completed)/float64(total)*100)
		}
	}
	if p.cfg.Output.Verbose {
		fmt.Println()
	}
	if failed > 0 {
		monitoring.Logf("%d of %d slices failed", failed, total)
	}
	return results
}

// Failed returns the results that carry an error
func Failed(results []SliceResult) []SliceResult {
	var out []SliceResult
	for _, r := range results {
		if r.Err != nil {
			out = append(out, r)
		}
	}
	return out
}
