package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitList(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"empty", "", nil},
		{"blank", "   ", nil},
		{"single", "mq1:9092", []string{"mq1:9092"}},
		{"trims", " mq1:9092 , mq2:9092", []string{"mq1:9092", "mq2:9092"}},
		{"drops empty and repeated", "mq1:9092,,mq1:9092, ", []string{"mq1:9092"}},
		{"preserves order", "b,a,b,c", []string{"b", "a", "c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SplitList(tt.input, ","))
		})
	}
}
