package search

import (
	"reflect"
	"testing"
)

func TestPageNumbers(t *testing.T) {
	cases := []struct {
		name        string
		currentPage int
		totalPages  int
		want        []int
	}{
		{"single page renders no controls", 1, 1, []int{}},
		{"zero pages renders no controls", 1, 0, []int{}},
		{"two pages", 1, 2, []int{1, 2}},
		{"middle of long run", 5, 10, []int{1, Ellipsis, 4, 5, 6, Ellipsis, 10}},
		{"first page of five", 1, 5, []int{1, 2, Ellipsis, 5}},
		{"second page of five", 2, 5, []int{1, 2, 3, Ellipsis, 5}},
		{"third page of five", 3, 5, []int{1, 2, 3, 4, 5}},
		{"last page of five", 5, 5, []int{1, Ellipsis, 4, 5}},
		{"near end of long run", 9, 10, []int{1, Ellipsis, 8, 9, 10}},
		{"last page of long run", 10, 10, []int{1, Ellipsis, 9, 10}},
		{"three of three", 3, 3, []int{1, 2, 3}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := PageNumbers(tc.currentPage, tc.totalPages)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("PageNumbers(%d, %d) = %v, want %v", tc.currentPage, tc.totalPages, got, tc.want)
			}
		})
	}
}

func TestPageNumbersIsPure(t *testing.T) {
	first := PageNumbers(5, 10)
	second := PageNumbers(5, 10)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("repeated calls differ: %v vs %v", first, second)
	}
}
