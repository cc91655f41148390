package terminology

import (
	"context"
	"runtime"
	"sync"
)

// BatchResult pairs a Coding with its validation outcome. Exactly one of
// Result and Err is set.
type BatchResult struct {
	Coding Coding
	Result *ValidateResult
	Err    error
}

// ValidateCodings validates every coding against its own CodeSystem using
// a bounded number of goroutines. Results come back in input order.
//
// If workers <= 0 it defaults to runtime.NumCPU(). Cancellation through
// ctx stops handing out new work; codings not processed report ctx.Err().
func ValidateCodings(ctx context.Context, svc CodeValidator, codings []Coding, workers int) []BatchResult {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(codings) {
		workers = len(codings)
	}

	results := make([]BatchResult, len(codings))
	jobs := make(chan int)

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range jobs {
				c := codings[i]
				res, err := svc.ValidateCodeInCodeSystem(c.System, c.Code, c.Display)
				results[i] = BatchResult{Coding: c, Result: res, Err: err}
			}
		}()
	}

	dispatched := len(codings)
	for i := range codings {
		if ctx.Err() != nil {
			dispatched = i
			break
		}
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	// Codings that never reached a worker report the cancellation.
	for j := dispatched; j < len(codings); j++ {
		results[j] = BatchResult{Coding: codings[j], Err: ctx.Err()}
	}

	return results
}
