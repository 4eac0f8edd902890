package stego

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/image-stego-mcp/internal/pixel"
)

// Item is one image in a batch. Load is called on a worker goroutine; a load
// failure becomes that item's outcome.
type Item struct {
	ID   string
	Load func() (*pixel.Grid, error)
}

// Operation is applied to each loaded grid.
type Operation func(g *pixel.Grid) (*Result, error)

// BatchOptions configures Run.
type BatchOptions struct {
	// Workers bounds concurrency. Zero or negative means runtime.NumCPU().
	Workers int
	// Store, if set, is called with each successful result, typically to
	// persist Result.Grid. A Store error becomes the item's outcome.
	Store func(id string, r *Result) error
}

// Outcome is the per-item result of a batch.
type Outcome struct {
	Result *Result   `json:"result,omitempty"`
	Err    error     `json:"-"`
	Kind   ErrorKind `json:"kind"`
}

// OK reports whether the item completed without error.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// EmbedOp returns an Operation embedding meta.
func EmbedOp(meta any, opts Options) Operation {
	return func(g *pixel.Grid) (*Result, error) { return Embed(g, meta, opts) }
}

// ExtractOp returns an Operation extracting metadata.
func ExtractOp(opts Options) Operation {
	return func(g *pixel.Grid) (*Result, error) { return Extract(g, opts) }
}

// VerifyOp returns an Operation checking for a header.
func VerifyOp(opts Options) Operation {
	return func(g *pixel.Grid) (*Result, error) { return Verify(g, opts) }
}

// UpdateOp returns an Operation merging patch into existing metadata.
func UpdateOp(patch map[string]any, opts Options) Operation {
	return func(g *pixel.Grid) (*Result, error) { return Update(g, patch, opts) }
}

// ClearOp returns an Operation removing metadata.
func ClearOp(opts Options) Operation {
	return func(g *pixel.Grid) (*Result, error) { return Clear(g, opts) }
}

// Run applies op to every item and returns exactly one outcome per distinct
// item ID. Items are independent: a failure, or a panic, in one item is
// recorded in its outcome and does not stop the others. Completion order is
// unspecified. Once ctx is done, items that have not started are recorded
// with KindCanceled. A repeated ID is processed once.
func Run(ctx context.Context, items []Item, op Operation, opts BatchOptions) map[string]Outcome {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	var (
		mu      sync.Mutex
		results = make(map[string]Outcome, len(items))
	)
	record := func(id string, o Outcome) {
		mu.Lock()
		results[id] = o
		mu.Unlock()
	}

	var g errgroup.Group
	g.SetLimit(workers)

	seen := make(map[string]bool, len(items))
	for _, item := range items {
		if seen[item.ID] {
			continue
		}
		seen[item.ID] = true

		if err := ctx.Err(); err != nil {
			record(item.ID, failed(err))
			continue
		}

		item := item
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				record(item.ID, failed(err))
				return nil
			}
			record(item.ID, runItem(item, op, opts.Store))
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func runItem(item Item, op Operation, store func(string, *Result) error) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = Outcome{Err: fmt.Errorf("panic processing %s: %v", item.ID, r), Kind: KindInternal}
		}
	}()

	if item.Load == nil {
		return failed(fmt.Errorf("%w: no loader for %s", ErrSourceUnreadable, item.ID))
	}
	g, err := item.Load()
	if err != nil {
		return failed(err)
	}
	res, err := op(g)
	if err != nil {
		return failed(err)
	}
	if store != nil {
		if err := store(item.ID, res); err != nil {
			return failed(err)
		}
	}
	return Outcome{Result: res}
}

func failed(err error) Outcome {
	return Outcome{Err: err, Kind: KindOf(err)}
}
