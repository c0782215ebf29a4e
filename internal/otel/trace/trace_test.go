package trace

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSampler(t *testing.T) {
	testCases := []struct {
		name     string
		ratio    float64
		contains string
	}{
		{name: "given zero ratio should sample everything", ratio: 0, contains: "AlwaysOnSampler"},
		{name: "given ratio of one should sample everything", ratio: 1, contains: "AlwaysOnSampler"},
		{name: "given quarter ratio should sample by trace id", ratio: 0.25, contains: "TraceIDRatioBased{0.25}"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Contains(t, NewSampler(tc.ratio).Description(), tc.contains)
		})
	}
}
