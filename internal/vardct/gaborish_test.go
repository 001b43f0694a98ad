package vardct

import (
	"testing"

	"github.com/jxldecoder/jxl/internal/modular"
)

// TestApplyGaborishPreservesConstantChannel checks the defining property
// of a normalized convolution kernel: a uniform input is unchanged.
func TestApplyGaborishPreservesConstantChannel(t *testing.T) {
	c := modular.NewChannel(6, 6, 0, 0)
	for i := range c.Data {
		c.Data[i] = 100
	}
	ApplyGaborish(c, 0.115, 0.06)
	for i, v := range c.Data {
		if v != 100 {
			t.Fatalf("Data[%d] = %d, want 100 (constant input should stay constant)", i, v)
		}
	}
}

func TestApplyGaborishZeroWeightsIsIdentity(t *testing.T) {
	c := modular.NewChannel(3, 3, 0, 0)
	c.Data = []int32{1, 2, 3, 4, 5, 6, 7, 8, 9}
	ApplyGaborish(c, 0, 0)
	want := []int32{1, 2, 3, 4, 5, 6, 7, 8, 9}
	for i, v := range c.Data {
		if v != want[i] {
			t.Fatalf("Data[%d] = %d, want %d (zero weights should be identity)", i, v, want[i])
		}
	}
}
