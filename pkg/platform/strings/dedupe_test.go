package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	assert.Nil(t, DedupeAndTrim(nil))
	assert.Equal(t, []string{}, DedupeAndTrim([]string{}))
	assert.Equal(t, []string{}, DedupeAndTrim([]string{"", "  "}))

	assert.Equal(t,
		[]string{"kafka-0:9092", "kafka-1:9092"},
		DedupeAndTrim([]string{" kafka-0:9092", "kafka-1:9092 ", "kafka-0:9092", ""}),
	)

	// hostnames are not case-folded
	assert.Equal(t,
		[]string{"Kafka-0:9092", "kafka-0:9092"},
		DedupeAndTrim([]string{"Kafka-0:9092", "kafka-0:9092"}),
	)
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{name: "unset", input: "", expected: nil},
		{name: "whitespace only", input: "   ", expected: nil},
		{name: "only separators", input: " , ,", expected: []string{}},
		{name: "single broker", input: "localhost:9092", expected: []string{"localhost:9092"}},
		{
			name:     "trims, drops blanks and repeats",
			input:    "broker-1:9092, broker-2:9092,,broker-1:9092 ",
			expected: []string{"broker-1:9092", "broker-2:9092"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SplitList(tt.input, ","))
		})
	}
}
