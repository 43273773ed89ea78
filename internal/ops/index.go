package ops

import (
	"fmt"
	"strings"

	"github.com/born-ml/tensorcore/internal/tensor"
)

type indexKind int

const (
	indexAt indexKind = iota
	indexSlice
	indexEllipsis
)

// IndexItem addresses one axis: a single position (which drops the axis) or a
// half-open [Start, Stop) range with a positive Step.
type IndexItem struct {
	kind  indexKind
	Start int
	Stop  int
	Step  int
	// open bounds
	fromStart, toEnd bool
}

// At selects one position; negative positions count from the end.
func At(i int) IndexItem {
	return IndexItem{kind: indexAt, Start: i}
}

// Range selects [start, stop) with step 1.
func Range(start, stop int) IndexItem {
	return IndexItem{kind: indexSlice, Start: start, Stop: stop, Step: 1}
}

// Stride selects [start, stop) every step elements.
func Stride(start, stop, step int) IndexItem {
	return IndexItem{kind: indexSlice, Start: start, Stop: stop, Step: step}
}

// All selects the whole axis.
func All() IndexItem {
	return IndexItem{kind: indexSlice, Step: 1, fromStart: true, toEnd: true}
}

// IsSingle reports whether the item selects one position.
func (it IndexItem) IsSingle() bool { return it.kind == indexAt }

// Resolve returns the concrete start, stop and step of the item against an
// axis of length n, with negative bounds normalized and ranges clamped.
func (it IndexItem) Resolve(n int) (start, stop, step int, err error) {
	switch it.kind {
	case indexAt:
		i := it.Start
		if i < 0 {
			i += n
		}
		if i < 0 || i >= n {
			return 0, 0, 0, fmt.Errorf("index %d out of range for axis of size %d", it.Start, n)
		}
		return i, i + 1, 1, nil
	case indexSlice:
		step = it.Step
		if step <= 0 {
			return 0, 0, 0, fmt.Errorf("slice step must be positive, got %d", step)
		}
		start, stop = it.Start, it.Stop
		if it.fromStart {
			start = 0
		}
		if it.toEnd {
			stop = n
		}
		start, stop = clampBound(start, n), clampBound(stop, n)
		if stop < start {
			stop = start
		}
		return start, stop, step, nil
	}
	return 0, 0, 0, fmt.Errorf("ellipsis cannot be resolved against an axis")
}

func clampBound(i, n int) int {
	if i < 0 {
		i += n
	}
	return max(0, min(i, n))
}

func (it IndexItem) String() string {
	switch it.kind {
	case indexAt:
		return fmt.Sprint(it.Start)
	case indexEllipsis:
		return "..."
	}
	var b strings.Builder
	if !it.fromStart {
		fmt.Fprint(&b, it.Start)
	}
	b.WriteByte(':')
	if !it.toEnd {
		fmt.Fprint(&b, it.Stop)
	}
	if it.Step != 1 {
		fmt.Fprintf(&b, ":%d", it.Step)
	}
	return b.String()
}

// Index is a multi-axis index. Missing trailing items select whole axes.
type Index []IndexItem

// Ellipsis is the full-slice sentinel: indexing with it addresses the whole tensor.
var Ellipsis = Index{{kind: indexEllipsis}}

// IsEllipsis reports whether idx is the full-slice sentinel.
func (idx Index) IsEllipsis() bool {
	return len(idx) == 1 && idx[0].kind == indexEllipsis
}

func (idx Index) String() string {
	parts := make([]string, len(idx))
	for i, it := range idx {
		parts[i] = it.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Indexer is the indexing collaborator used by the dispatch layer.
type Indexer interface {
	// GetItem returns the sub-tensor addressed by idx.
	GetItem(x *tensor.RawTensor, idx Index) (*tensor.RawTensor, error)
	// SetItem returns a copy of x whose addressed region holds value (broadcast as needed).
	SetItem(x *tensor.RawTensor, idx Index, value *tensor.RawTensor) (*tensor.RawTensor, error)
}
