package batch

import "fmt"

// Order selects the traversal order over the favorites list
type Order string

const (
	// OrderForward visits episodes in input order
	OrderForward Order = "forward"
	// OrderAlternate interleaves newest and oldest (0, n-1, 1, n-2, ...) to
	// front-load variety when a long run may be interrupted
	OrderAlternate Order = "alternate"
)

// ParseOrder validates a traversal-order name
func ParseOrder(s string) (Order, error) {
	switch Order(s) {
	case OrderForward, OrderAlternate:
		return Order(s), nil
	case "":
		return OrderForward, nil
	}
	return "", fmt.Errorf("unknown traversal order %q (want forward or alternate)", s)
}

// Indices returns the visit order for n episodes under the given traversal
func Indices(n int, order Order) []int {
	idx := make([]int, 0, n)
	if order == OrderAlternate {
		for i, j := 0, n-1; i <= j; i, j = i+1, j-1 {
			idx = append(idx, i)
			if i != j {
				idx = append(idx, j)
			}
		}
		return idx
	}
	for i := 0; i < n; i++ {
		idx = append(idx, i)
	}
	return idx
}
