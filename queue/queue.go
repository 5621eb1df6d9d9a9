package queue

import (
	"context"
	"fmt"
	log "log/slog"
	"sync"

	"github.com/puzpuzpuz/xsync/v3"
	"golang.org/x/sync/errgroup"

	"github.com/sharedcode/sco"
)

// groupKey identifies one FIFO lane: records of the same owner and field
// replay in enqueue order, distinct lanes may replay concurrently.
type groupKey struct {
	owner   sco.UUID
	fieldNo int
}

func (k groupKey) String() string {
	return fmt.Sprintf("%s:%d", k.owner.String(), k.fieldNo)
}

type group struct {
	mu  sync.Mutex
	ops []sco.Operation
}

// Queue is a reference sco.OperationQueue. Enqueue is safe for concurrent use
// across goroutines; records within one owner+field group keep their enqueue
// order and Flush replays them in that order.
type Queue struct {
	groups *xsync.MapOf[groupKey, *group]
	// keys preserves first-seen group order so Pending output is stable.
	mu   sync.Mutex
	keys []groupKey
}

func NewQueue() *Queue {
	return &Queue{groups: xsync.NewMapOf[groupKey, *group]()}
}

// Enqueue appends the record to its owner+field group.
func (q *Queue) Enqueue(op sco.Operation) {
	k := groupKey{owner: op.Owner, fieldNo: op.FieldNo}
	g, loaded := q.groups.LoadOrStore(k, &group{})
	if !loaded {
		q.mu.Lock()
		q.keys = append(q.keys, k)
		q.mu.Unlock()
	}
	g.mu.Lock()
	g.ops = append(g.ops, op)
	g.mu.Unlock()
}

// Len returns the total number of pending records.
func (q *Queue) Len() int {
	n := 0
	q.groups.Range(func(_ groupKey, g *group) bool {
		g.mu.Lock()
		n += len(g.ops)
		g.mu.Unlock()
		return true
	})
	return n
}

// Pending returns the pending records of one owner+field group, in enqueue order.
func (q *Queue) Pending(owner sco.UUID, fieldNo int) []sco.Operation {
	g, ok := q.groups.Load(groupKey{owner: owner, fieldNo: fieldNo})
	if !ok {
		return nil
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]sco.Operation, len(g.ops))
	copy(out, g.ops)
	return out
}

// Flush replays all pending records and empties the queue. Groups replay
// concurrently; within a group, records replay strictly FIFO and a failing
// record aborts the remainder of its group. The first error encountered is
// returned; successfully replayed records are not re-run.
func (q *Queue) Flush(ctx context.Context) error {
	q.mu.Lock()
	keys := q.keys
	q.keys = nil
	q.mu.Unlock()

	eg, ctx := errgroup.WithContext(ctx)
	for _, k := range keys {
		g, ok := q.groups.LoadAndDelete(k)
		if !ok {
			continue
		}
		eg.Go(func() error {
			g.mu.Lock()
			ops := g.ops
			g.ops = nil
			g.mu.Unlock()
			for i, op := range ops {
				if err := op.Apply(ctx); err != nil {
					log.Warn("deferred operation replay failed", "group", k.String(),
						"kind", op.Kind.String(), "index", i, "remaining", len(ops)-i-1)
					return err
				}
			}
			return nil
		})
	}
	return eg.Wait()
}
