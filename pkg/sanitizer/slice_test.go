package sanitizer

import (
	"reflect"
	"testing"
)

func TestNormalizeTags(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{
			name:  "convert to lowercase",
			input: []string{"Organic", "GRAIN FREE"},
			want:  []string{"organic", "grain free"},
		},
		{
			name:  "trim and collapse whitespace",
			input: []string{" organic ", "grain   free"},
			want:  []string{"organic", "grain free"},
		},
		{
			name:  "remove duplicates",
			input: []string{"Organic", "organic", "ORGANIC"},
			want:  []string{"organic"},
		},
		{
			name:  "filter empty strings",
			input: []string{"organic", "", "  ", "puppy"},
			want:  []string{"organic", "puppy"},
		},
		{
			name:  "empty input",
			input: []string{},
			want:  []string{},
		},
		{
			name:  "nil input",
			input: nil,
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeTags(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NormalizeTags(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeList(t *testing.T) {
	got := NormalizeList([]string{" Chicken ", "Rice", "", "Chicken", "rice"})
	want := []string{"Chicken", "Rice", "rice"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeList() = %v, want %v", got, want)
	}
}
