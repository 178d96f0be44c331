package metrics

import (
	"reflect"
	"testing"
)

func TestSortedCounts(t *testing.T) {
	tests := []struct {
		name   string
		counts map[string]int
		want   []Count
	}{
		{
			name:   "nil counts",
			counts: nil,
			want:   nil,
		},
		{
			name:   "empty counts",
			counts: map[string]int{},
			want:   nil,
		},
		{
			name:   "sorted by count desc",
			counts: map[string]int{"200": 10, "500": 5, "404": 7},
			want: []Count{
				{Label: "200", Count: 10},
				{Label: "404", Count: 7},
				{Label: "500", Count: 5},
			},
		},
		{
			name:   "ties sorted by label",
			counts: map[string]int{"503": 2, "201": 2},
			want: []Count{
				{Label: "201", Count: 2},
				{Label: "503", Count: 2},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SortedCounts(tt.counts)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("SortedCounts() = %#v, want %#v", got, tt.want)
			}
		})
	}
}
