package calendar

import (
	"fmt"
	"math/bits"
	"strconv"
	"strings"
)

// paddingBits are the leading bits of every BITFELD pattern that do not map
// to a day.
const paddingBits = 2

// Pattern is a set of day indices relative to a validity window start.
type Pattern struct {
	words []uint64
	size  int
}

func NewPattern(size int) Pattern {
	return Pattern{words: make([]uint64, (size+63)/64), size: size}
}

// PatternOf returns a pattern of the given size with the listed days set.
func PatternOf(size int, days ...int) Pattern {
	p := NewPattern(size)
	for _, day := range days {
		p.set(day)
	}

	return p
}

// Always returns a pattern with every day of size set.
func Always(size int) Pattern {
	p := NewPattern(size)
	for i := 0; i < size; i++ {
		p.set(i)
	}

	return p
}

// ParseHexPattern decodes a BITFELD hexadecimal pattern. Each hex digit holds
// four days, most significant bit first, after the two padding bits.
func ParseHexPattern(hex string) (Pattern, error) {
	hex = strings.TrimSpace(hex)
	if hex == "" {
		return Pattern{}, fmt.Errorf("empty bit pattern")
	}

	total := len(hex) * 4
	if total <= paddingBits {
		return Pattern{}, fmt.Errorf("bit pattern %q has no day bits", hex)
	}

	p := NewPattern(total - paddingBits)
	for i, r := range hex {
		nibble, err := strconv.ParseUint(string(r), 16, 8)
		if err != nil {
			return Pattern{}, fmt.Errorf("bit pattern has invalid hex digit %q at position %d", r, i+1)
		}

		for b := 0; b < 4; b++ {
			if nibble&(1<<(3-b)) == 0 {
				continue
			}
			bit := i*4 + b
			if bit < paddingBits {
				continue
			}
			p.set(bit - paddingBits)
		}
	}

	return p, nil
}

func (p *Pattern) set(day int) {
	if day < 0 || day >= p.size {
		return
	}
	p.words[day/64] |= 1 << (day % 64)
}

func (p Pattern) Len() int {
	return p.size
}

func (p Pattern) Has(day int) bool {
	if day < 0 || day >= p.size {
		return false
	}

	return p.words[day/64]&(1<<(day%64)) != 0
}

func (p Pattern) Count() int {
	count := 0
	for _, word := range p.words {
		count += bits.OnesCount64(word)
	}

	return count
}

func (p Pattern) Empty() bool {
	return p.Count() == 0
}

// Days lists the set day indices in ascending order.
func (p Pattern) Days() []int {
	days := make([]int, 0, p.Count())
	for i := 0; i < p.size; i++ {
		if p.Has(i) {
			days = append(days, i)
		}
	}

	return days
}

// Fit cuts the pattern down to days. A pattern shorter than days cannot
// describe the whole window and is rejected.
func (p Pattern) Fit(days int) (Pattern, error) {
	if p.size < days {
		return Pattern{}, fmt.Errorf("bit pattern covers %d days but the validity window has %d", p.size, days)
	}

	fitted := NewPattern(days)
	for i := range fitted.words {
		fitted.words[i] = p.words[i]
	}
	if rest := days % 64; rest != 0 && len(fitted.words) > 0 {
		fitted.words[len(fitted.words)-1] &= (1 << rest) - 1
	}

	return fitted, nil
}

func (p Pattern) combine(other Pattern, op func(a, b uint64) uint64) Pattern {
	size := p.size
	if other.size > size {
		size = other.size
	}

	result := NewPattern(size)
	for i := range result.words {
		var a, b uint64
		if i < len(p.words) {
			a = p.words[i]
		}
		if i < len(other.words) {
			b = other.words[i]
		}
		result.words[i] = op(a, b)
	}

	return result
}

func (p Pattern) Union(other Pattern) Pattern {
	return p.combine(other, func(a, b uint64) uint64 { return a | b })
}

func (p Pattern) Intersect(other Pattern) Pattern {
	return p.combine(other, func(a, b uint64) uint64 { return a & b })
}

func (p Pattern) Subtract(other Pattern) Pattern {
	return p.combine(other, func(a, b uint64) uint64 { return a &^ b })
}

func (p Pattern) Equal(other Pattern) bool {
	if p.size != other.size {
		return false
	}
	for i := range p.words {
		if p.words[i] != other.words[i] {
			return false
		}
	}

	return true
}

func (p Pattern) String() string {
	var b strings.Builder
	for i := 0; i < p.size; i++ {
		if p.Has(i) {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}

	return b.String()
}
