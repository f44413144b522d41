package state

import "golang.org/x/sys/cpu"

// LaneWidth is the number of lanes processed by one ForwardFanOut call,
// chosen to cover the 42-character alphabet; the remaining lanes are
// padding.
const LaneWidth = 64

// Lanes is a fixed-width batch of character codes, fed to ForwardFanOut one
// slot per lane. Unused lanes must be set to alphabet.NoCode.
type Lanes [LaneWidth]byte

// hasAVX2 mirrors the CPU-feature-dispatch pattern the original forward-step
// fan-out used, without requiring actual vector instructions: both branches
// below are pure Go and computed identically, so this only changes which
// code path runs, never the result. See DESIGN.md's state entry.
var hasAVX2 = cpu.X86.HasAVX2

// ForwardFanOut applies Forward to s once per lane in lanes, skipping lanes
// equal to noCode, and returns the resulting states. It is the batch
// evaluation the search DFS uses to advance one ply against all candidate
// characters at once instead of looping one Forward call at a time.
func ForwardFanOut(s HashState, lanes Lanes, noCode byte) [LaneWidth]HashState {
	if hasAVX2 {
		return forwardFanOutUnrolled(s, lanes, noCode)
	}
	return forwardFanOutScalar(s, lanes, noCode)
}

// forwardFanOutScalar evaluates each lane with the table-driven Forward.
func forwardFanOutScalar(s HashState, lanes Lanes, noCode byte) [LaneWidth]HashState {
	var out [LaneWidth]HashState
	for i, a := range lanes {
		if a == noCode {
			continue
		}
		out[i] = Forward(s, a)
	}
	return out
}

// forwardFanOutUnrolled evaluates each lane with the naive unrolled 8-round
// feedback loop (crcRoundNaive) instead of the precomputed table, standing
// in for the width-64 vector fan-out the original routine ran in hardware
// SIMD. It must produce results identical to forwardFanOutScalar for every
// lane; state_test.go's TestForwardFanOutAgreesWithScalar checks this.
func forwardFanOutUnrolled(s HashState, lanes Lanes, noCode byte) [LaneWidth]HashState {
	// adc is the lane add-with-carry: the carry out of bit 7 is recovered
	// from the operands and the wrapped 8-bit sum alone.
	adc := func(x, y, carryIn byte) (sum, carryOut byte) {
		sum = x + y + carryIn
		return sum, ((x&y | (x|y)&^sum) & 0x80) >> 7
	}

	var out [LaneWidth]HashState
	for i, a := range lanes {
		if a == noCode {
			continue
		}
		newF4, newF5 := crcRoundNaive(a, s.F4, s.F5)

		c1 := byte(0)
		if newF4 >= 0xE5 {
			c1 = 1
		}
		newF7, c2 := adc(a, s.F7, c1)
		newF8, c3 := adc(s.F8, newF5, c2)

		newF9 := s.F9 ^ a

		lsb := s.Fa & 1
		rotated := (s.Fa >> 1) | (c3 << 7)
		newFa, c4 := adc(rotated, a, lsb)

		newFb := s.Fb + byte(popcount(a)) + c4

		out[i] = HashState{
			F4: newF4, F5: newF5, F7: newF7, F8: newF8,
			F9: newF9, Fa: newFa, Fb: newFb,
		}
	}
	return out
}

func popcount(b byte) int {
	n := 0
	for b != 0 {
		n += int(b & 1)
		b >>= 1
	}
	return n
}
