package agreement

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/vijay-prabhu/rfb-agreement/internal/annotation"
)

// BatchOptions controls ScoreAll.
type BatchOptions struct {
	// Workers bounds concurrent frame scoring (0 = NumCPU).
	Workers  int
	Progress ProgressCallback
}

type frameResult struct {
	guid      string
	agreement FrameAgreement
	err       error
}

// ScoreAll scores every frame in parallel. Frames are independent, so results are
// gathered into a map once all workers finish. The first failing frame, in GUID
// order, is returned as the error.
func (s *Scorer) ScoreAll(ctx context.Context, frames map[string]annotation.FramePair, opts BatchOptions) (map[string]FrameAgreement, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	total := len(frames)
	started := time.Now()
	var progressMu sync.Mutex
	scored := 0
	report := func() {
		if opts.Progress == nil {
			return
		}
		progressMu.Lock()
		defer progressMu.Unlock()
		scored++
		opts.Progress(Progress{Phase: PhaseScoring, Current: scored, Total: total, StartedAt: started})
	}
	if opts.Progress != nil {
		opts.Progress(Progress{Phase: PhaseScoring, Total: total, StartedAt: started})
	}

	resultChan := make(chan frameResult, total)
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for guid, fp := range frames {
		guid, fp := guid, fp
		wg.Add(1)
		go func() {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				resultChan <- frameResult{guid: guid, err: ctx.Err()}
				return
			}

			agreement, err := s.Score(fp.A, fp.B)
			report()
			resultChan <- frameResult{guid: guid, agreement: agreement, err: err}
		}()
	}

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	results := make(map[string]FrameAgreement, total)
	var failed []frameResult
	for r := range resultChan {
		if r.err != nil {
			failed = append(failed, r)
			continue
		}
		results[r.guid] = r.agreement
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(failed) > 0 {
		sort.Slice(failed, func(i, j int) bool { return failed[i].guid < failed[j].guid })
		return nil, fmt.Errorf("frame %s: %w", failed[0].guid, failed[0].err)
	}
	return results, nil
}
