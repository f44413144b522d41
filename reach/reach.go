// Package reach builds the DP1 and DP2 reachability tensors the forward
// search DFS (package search) uses to prune: for every (search depth, f4,
// f5, and a third tracked register) combination, the tensor records which
// values of a fourth register are reachable from the start state AND can
// still reach some suffix the backward table recognizes.
//
// Ported from original_source/src/forward1.rs (DP1, third register f9,
// fourth register f7) and forward2.rs (DP2, third register f7, fourth
// register f8). Construction is two-pass: a forward sweep marks states
// reachable from the start, then a backward sweep intersects that with
// states that can still reach the backward table's frontier, propagating
// set membership between adjacent depths with BitSet256.RotateLeft/
// RotateRight instead of one bit at a time, since the forward step's effect
// on the tracked register is a pure additive rotation of the fourth
// register's value.
package reach

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/tanzaku/yokaidouchuuki/alphabet"
	"github.com/tanzaku/yokaidouchuuki/backward"
	"github.com/tanzaku/yokaidouchuuki/bitset"
	"github.com/tanzaku/yokaidouchuuki/state"
)

const (
	dim4F = 0x100 // width of the f4 axis
	dim5F = 0x100 // width of the f5 axis

	// DP1AxisWidth is the width of DP1's third axis, f9. The checksum's f9
	// accumulator only ever takes 64 distinct observed values across the
	// search depths this tool explores; state.AssertF9Range documents the
	// assumption this bakes in.
	DP1AxisWidth = 0x40

	// DP2AxisWidth is the width of DP2's third axis, f7.
	DP2AxisWidth = 0x100
)

// shardCount bounds the number of mutexes guarding concurrent cell writes
// during construction, trading contention for memory: one mutex per cell
// would be wasteful at tensor sizes in the tens of millions of cells.
const shardCount = 256

// Tensor is a 4-dimensional table of BitSet256 cells, indexed by
// (depth, f4, f5, axis), recording which values of a tracked register are
// valid at each point.
type Tensor struct {
	cells     []bitset.BitSet256
	axisWidth int
	maxLen    int
}

func newTensor(maxLen, axisWidth int) *Tensor {
	n := (maxLen + 1) * dim4F * dim5F * axisWidth
	return &Tensor{
		cells:     make([]bitset.BitSet256, n),
		axisWidth: axisWidth,
		maxLen:    maxLen,
	}
}

func (t *Tensor) index(depth, f4, f5, axis int) int {
	return ((depth*dim4F+f4)*dim5F+f5)*t.axisWidth + axis
}

// IsValid reports whether value is a reachable-and-live member of the cell
// at (depth, f4, f5, axis).
func (t *Tensor) IsValid(depth, f4, f5, axis int, value byte) bool {
	return t.cells[t.index(depth, f4, f5, axis)].Get(int(value))
}

// MaxLen returns the greatest depth the tensor was built for.
func (t *Tensor) MaxLen() int {
	return t.maxLen
}

// Cells returns the tensor's flat cell array, in index order, for
// persistence by package cache.
func (t *Tensor) Cells() []bitset.BitSet256 {
	return t.cells
}

// FromCells reconstructs a Tensor from a flat cell array previously
// obtained from Cells, for the same (maxLen, axisWidth) shape it was built
// with. The caller is responsible for ensuring cells came from a tensor of
// that exact shape; this does no validation beyond the length check.
func FromCells(maxLen, axisWidth int, cells []bitset.BitSet256) *Tensor {
	want := (maxLen + 1) * dim4F * dim5F * axisWidth
	if len(cells) != want {
		return nil
	}
	return &Tensor{cells: cells, axisWidth: axisWidth, maxLen: maxLen}
}

// shardedCells is a BitSet256 array guarded by a fixed-size pool of
// mutexes, used only during Tensor construction where many goroutines
// write to overlapping index ranges.
type shardedCells struct {
	cells []bitset.BitSet256
	locks [shardCount]sync.Mutex
}

func newShardedCells(n int) *shardedCells {
	return &shardedCells{cells: make([]bitset.BitSet256, n)}
}

func (s *shardedCells) lockFor(i int) *sync.Mutex {
	return &s.locks[i%shardCount]
}

func (s *shardedCells) set(i, bit int) {
	l := s.lockFor(i)
	l.Lock()
	s.cells[i].Set(bit)
	l.Unlock()
}

func (s *shardedCells) orAssign(i int, v bitset.BitSet256) {
	l := s.lockFor(i)
	l.Lock()
	s.cells[i].OrAssign(v)
	l.Unlock()
}

func (s *shardedCells) intersectInto(i int, v bitset.BitSet256) {
	l := s.lockFor(i)
	l.Lock()
	s.cells[i] = s.cells[i].And(v)
	l.Unlock()
}

func (s *shardedCells) get(i int) bitset.BitSet256 {
	l := s.lockFor(i)
	l.Lock()
	v := s.cells[i]
	l.Unlock()
	return v
}

func (s *shardedCells) isZero(i int) bool {
	return s.get(i).IsZero()
}

// seedFunc builds the forward-step input state for one (f4, f5, axis)
// combination, with every register besides f4/f5/axis zeroed, matching how
// forward1.rs/forward2.rs seed their per-cell probe Memory.
type seedFunc func(f4, f5, axis byte) state.HashState

// trackFunc reads, from a state, the value that belongs on the tensor's
// third axis and the tracked register's bit position.
type trackFunc func(s state.HashState) (axis int, bit int)

func buildGeneric(maxLen, axisWidth int, seed seedFunc, track trackFunc, table *backward.Table) *Tensor {
	if maxLen < 0 {
		panic(fmt.Sprintf("reach: backward table depth %d exceeds target length, leaving maxLen %d negative", table.Depth(), maxLen))
	}
	n := (maxLen + 1) * dim4F * dim5F * axisWidth

	forwardVisit := newShardedCells(n)
	backwardValid := newShardedCells(n)

	indexOf := func(depth, f4, f5, axis int) int {
		return ((depth*dim4F+f4)*dim5F+f5)*axisWidth + axis
	}

	// Seed the backward pass with the backward table's frontier: each node
	// there is a state the backward enumeration can still reach a suffix
	// from, recorded at depth maxLen.
	for _, node := range table.Nodes() {
		axis, bit := track(node.State)
		i := indexOf(maxLen, int(node.State.F4), int(node.State.F5), axis)
		backwardValid.set(i, bit)
	}

	// Seed the forward pass with the start state at depth 0.
	start := state.Initial()
	startAxis, startBit := track(start)
	forwardVisit.set(indexOf(0, int(start.F4), int(start.F5), startAxis), startBit)

	numWorkers := runtime.GOMAXPROCS(0)

	// Forward sweep: propagate reachability from depth 0 to maxLen.
	for depth := 0; depth < maxLen; depth++ {
		forEachCell(numWorkers, func(f4, f5, axis int) {
			i := indexOf(depth, f4, f5, axis)
			if forwardVisit.isZero(i) {
				return
			}
			cur := forwardVisit.get(i)
			for _, c := range alphabet.Codes {
				next := state.Forward(seed(byte(f4), byte(f5), byte(axis)), c)
				nextAxis, offset := track(next)
				j := indexOf(depth+1, int(next.F4), int(next.F5), nextAxis)
				forwardVisit.orAssign(j, cur.RotateLeft(offset))
			}
		}, axisWidth)
	}

	// Backward sweep: union in every value whose successor is still valid one
	// depth further, restricted to the forward-visited values, depth
	// maxLen-1 down to 0.
	for depth := maxLen - 1; depth >= 0; depth-- {
		forEachCell(numWorkers, func(f4, f5, axis int) {
			i := indexOf(depth, f4, f5, axis)
			if forwardVisit.isZero(i) {
				return
			}
			for _, c := range alphabet.Codes {
				next := state.Forward(seed(byte(f4), byte(f5), byte(axis)), c)
				nextAxis, offset := track(next)
				j := indexOf(depth+1, int(next.F4), int(next.F5), nextAxis)
				rotated := backwardValid.get(j).RotateRight(offset)
				backwardValid.orAssign(i, rotated.And(forwardVisit.get(i)))
			}
		}, axisWidth)
	}

	t := newTensor(maxLen, axisWidth)
	copy(t.cells, backwardValid.cells)
	return t
}

// forEachCell fans a (f4, f5, axis) triple out across numWorkers goroutines
// sharded by f4, matching the rayon par_bridge sweep over the same space.
func forEachCell(numWorkers int, f func(f4, f5, axis int), axisWidth int) {
	jobs := make(chan int, dim4F)
	var wg sync.WaitGroup

	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for f4 := range jobs {
				for f5 := 0; f5 < dim5F; f5++ {
					for axis := 0; axis < axisWidth; axis++ {
						f(f4, f5, axis)
					}
				}
			}
		}()
	}

	for f4 := 0; f4 < dim4F; f4++ {
		jobs <- f4
	}
	close(jobs)
	wg.Wait()
}

// BuildDP1 constructs the DP1 tensor (third axis f9, tracked register f7)
// for the search depths between the start state and the backward table's
// frontier.
func BuildDP1(targetLen int, table *backward.Table) *Tensor {
	maxLen := targetLen - table.Depth()
	seed := func(f4, f5, axis byte) state.HashState {
		return state.HashState{F4: f4, F5: f5, F9: axis}
	}
	track := func(s state.HashState) (axis int, bit int) {
		if !state.AssertF9Range(s.F9) {
			panic(fmt.Sprintf("reach: f9 value %#x exceeds DP1's assumed %#x-wide axis", s.F9, DP1AxisWidth))
		}
		return int(s.F9), int(s.F7)
	}
	return buildGeneric(maxLen, DP1AxisWidth, seed, track, table)
}

// BuildDP2 constructs the DP2 tensor (third axis f7, tracked register f8)
// for the search depths between the start state and the backward table's
// frontier.
func BuildDP2(targetLen int, table *backward.Table) *Tensor {
	maxLen := targetLen - table.Depth()
	seed := func(f4, f5, axis byte) state.HashState {
		return state.HashState{F4: f4, F5: f5, F7: axis}
	}
	track := func(s state.HashState) (axis int, bit int) {
		return int(s.F7), int(s.F8)
	}
	return buildGeneric(maxLen, DP2AxisWidth, seed, track, table)
}
