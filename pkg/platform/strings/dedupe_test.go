package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   []string
	}{
		{name: "nil input", values: nil, want: nil},
		{name: "only blanks", values: []string{"", "  ", "\t"}, want: nil},
		{name: "trims and keeps order", values: []string{" Transact", "ClearOrigin "}, want: []string{"Transact", "ClearOrigin"}},
		{name: "drops duplicates after trimming", values: []string{"Transact", " Transact ", "SetTopic"}, want: []string{"Transact", "SetTopic"}},
		{name: "case sensitive", values: []string{"Transact", "transact"}, want: []string{"Transact", "transact"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DedupeAndTrim(tt.values))
		})
	}
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, SplitList("kafka-1:9092, kafka-2:9092,,kafka-1:9092"))
	assert.Nil(t, SplitList(""))
}
