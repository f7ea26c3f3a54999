package batch

import (
	"reflect"
	"testing"
)

func TestParseOrder(t *testing.T) {
	tests := []struct {
		input   string
		want    Order
		wantErr bool
	}{
		{"forward", OrderForward, false},
		{"alternate", OrderAlternate, false},
		{"", OrderForward, false},
		{"backwards", "", true},
	}

	for _, tt := range tests {
		got, err := ParseOrder(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseOrder(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseOrder(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestIndices(t *testing.T) {
	tests := []struct {
		name  string
		n     int
		order Order
		want  []int
	}{
		{"forward", 4, OrderForward, []int{0, 1, 2, 3}},
		{"alternate even", 6, OrderAlternate, []int{0, 5, 1, 4, 2, 3}},
		{"alternate odd", 5, OrderAlternate, []int{0, 4, 1, 3, 2}},
		{"alternate single", 1, OrderAlternate, []int{0}},
		{"alternate pair", 2, OrderAlternate, []int{0, 1}},
		{"empty", 0, OrderAlternate, []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Indices(tt.n, tt.order)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Indices(%d, %s) = %v, want %v", tt.n, tt.order, got, tt.want)
			}
		})
	}
}

func TestIndicesIsPermutation(t *testing.T) {
	for _, n := range []int{0, 1, 2, 3, 7, 10, 101} {
		for _, order := range []Order{OrderForward, OrderAlternate} {
			got := Indices(n, order)
			if len(got) != n {
				t.Fatalf("Indices(%d, %s) has %d elements", n, order, len(got))
			}
			seen := make(map[int]bool, n)
			for _, i := range got {
				if i < 0 || i >= n || seen[i] {
					t.Fatalf("Indices(%d, %s) = %v is not a permutation", n, order, got)
				}
				seen[i] = true
			}
		}
	}
}
