package alloc

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/heap"
)

type liveAlloc struct {
	p    Ptr
	size int
	seed byte
}

// Test_Property_RandomOps runs a seeded mix of alloc, calloc, realloc and
// free and checks after every step that the chunk walk covers the heap, the
// free counter matches the chunks, and no live payload was disturbed.
func Test_Property_RandomOps(t *testing.T) {
	for _, seed := range []int64{1, 42, 1337} {
		fa := newTestAllocator(t, heap.DefaultLayout)
		capacity := fa.FreeBytes()
		rng := rand.New(rand.NewSource(seed))

		var live []liveAlloc
		nextSeed := byte(1)

		for step := range 2000 {
			switch op := rng.Intn(4); {
			case op == 0 || op == 1 || len(live) == 0:
				size := rng.Intn(600)
				var (
					p   Ptr
					b   []byte
					err error
				)
				if op == 1 {
					p, b, err = fa.Calloc(size, 1)
					if err == nil {
						require.Equal(t, make([]byte, len(b)), b, "step %d: calloc not zeroed", step)
					}
				} else {
					p, b, err = fa.Alloc(size)
				}
				if err != nil {
					require.ErrorIs(t, err, ErrOutOfMemory, "step %d", step)
					break
				}
				fill(b[:size], nextSeed)
				live = append(live, liveAlloc{p: p, size: size, seed: nextSeed})
				nextSeed++

			case op == 2:
				i := rng.Intn(len(live))
				la := live[i]
				size := rng.Intn(900)
				p, b, err := fa.Realloc(la.p, size)
				if err != nil {
					require.ErrorIs(t, err, ErrOutOfMemory, "step %d", step)
					got, perr := fa.Payload(la.p)
					require.NoError(t, perr)
					require.True(t, checkFill(got[:la.size], la.seed), "step %d: failed realloc changed payload", step)
					break
				}
				keep := min(la.size, size)
				require.True(t, checkFill(b[:keep], la.seed), "step %d: realloc lost payload", step)
				fill(b[:size], la.seed)
				live[i] = liveAlloc{p: p, size: size, seed: la.seed}

			default:
				i := rng.Intn(len(live))
				require.NoError(t, fa.Free(live[i].p), "step %d", step)
				live = append(live[:i], live[i+1:]...)
			}

			assertInvariants(t, fa)
			if step%100 == 0 {
				for _, la := range live {
					got, err := fa.Payload(la.p)
					require.NoError(t, err, "step %d", step)
					require.True(t, checkFill(got[:la.size], la.seed), "step %d: payload at 0x%x disturbed", step, la.p)
				}
			}
		}

		for _, la := range live {
			require.NoError(t, fa.Free(la.p))
		}
		assert.Equal(t, capacity, fa.FreeBytes(), "seed %d: leak", seed)
		assert.Equal(t, []shape{freeChunk(capacity)}, chunkShape(t, fa))
	}
}

// Test_Property_Conservation checks that balanced alloc/free sequences
// restore the counter regardless of release order.
func Test_Property_Conservation(t *testing.T) {
	fa := newTestAllocator(t, heap.DefaultLayout)
	rng := rand.New(rand.NewSource(7))

	for round := range 20 {
		before := fa.FreeBytes()

		var ptrs []Ptr
		for range 1 + rng.Intn(40) {
			p, _, err := fa.Alloc(rng.Intn(128))
			require.NoError(t, err)
			ptrs = append(ptrs, p)
		}
		rng.Shuffle(len(ptrs), func(i, j int) { ptrs[i], ptrs[j] = ptrs[j], ptrs[i] })
		for _, p := range ptrs {
			require.NoError(t, fa.Free(p))
		}

		require.Equal(t, before, fa.FreeBytes(), "round %d", round)
	}
}

func Test_Locked_Concurrent(t *testing.T) {
	fa := newTestAllocator(t, heap.DefaultLayout)
	capacity := fa.FreeBytes()
	la := NewLocked(fa)

	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func(seed byte) {
			defer wg.Done()
			for range 50 {
				p, _, err := la.Calloc(4, 8)
				if !assert.NoError(t, err) {
					return
				}
				err = la.Do(func(a Allocator) error {
					b, err := a.(*FirstFit).Payload(p)
					if err != nil {
						return err
					}
					fill(b, seed)
					if !checkFill(b, seed) {
						t.Errorf("payload at 0x%x overwritten", p)
					}
					return nil
				})
				assert.NoError(t, err)
				p, _, err = la.Realloc(p, 64)
				assert.NoError(t, err)
				assert.NoError(t, la.Free(p))
			}
		}(byte(g))
	}
	wg.Wait()

	assert.Equal(t, capacity, la.FreeBytes())
}
