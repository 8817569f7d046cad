package transition

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSampleCount(t *testing.T) {
	require.Equal(t, 20, SampleCount(2, 10))
	require.Equal(t, 10, SampleCount(1, 10))
	require.Equal(t, 1, SampleCount(0.05, 10))
	require.Equal(t, 1, SampleCount(0, 10))
}

func TestLinspace(t *testing.T) {
	require.Nil(t, Linspace(0, 1, 0))
	require.Equal(t, []float64{3}, Linspace(3, 9, 1))
	require.Equal(t, []float64{0, 0.5, 1}, Linspace(0, 1, 3))

	got := Linspace(3.99, 5.99, 20)
	require.Len(t, got, 20)
	require.Equal(t, 3.99, got[0])
	require.Equal(t, 5.99, got[19])
}

func TestTailTimes(t *testing.T) {
	got := tailTimes(10, 2, 10, 0.01)
	require.Len(t, got, 20)
	require.InDelta(t, 7.99, got[0], 1e-9)
	require.InDelta(t, 9.99, got[19], 1e-9)

	// A clip shorter than epsilon still yields one candidate at zero.
	require.Equal(t, []float64{0}, tailTimes(0.005, 2, 10, 0.01))
}

func TestHeadTimes(t *testing.T) {
	got := headTimes(1, 2, 10)
	require.Len(t, got, 10)
	require.Equal(t, 0.0, got[0])
	require.Equal(t, 1.0, got[9])
}
