package wire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFrameUnframeRoundTrip(t *testing.T) {
	const blockSize = 1024

	cases := [][]byte{
		{},
		[]byte("hello"),
		make([]byte, blockSize), // exactly B bytes
	}

	for _, m := range cases {
		block, err := Frame(blockSize, m)
		require.NoError(t, err)
		require.Len(t, block, blockSize+4)

		got := Unframe(blockSize, block)
		if len(m) == 0 {
			require.Empty(t, got)
		} else {
			require.Equal(t, m, got)
		}
	}
}

func TestFrameRejectsOversizedPayload(t *testing.T) {
	const blockSize = 1024
	_, err := Frame(blockSize, make([]byte, blockSize+1))
	require.Error(t, err)
}

func TestUnframeEmptyFromDefaultData(t *testing.T) {
	const blockSize = 1024
	require.Empty(t, Unframe(blockSize, DefaultData(blockSize)))
	require.True(t, IsDefaultData(blockSize, DefaultData(blockSize)))
}

func TestUnframeRejectsDeclaredLengthExceedingBlockSize(t *testing.T) {
	const blockSize = 16
	block := make([]byte, blockSize+4)
	// Declare a length bigger than the block size itself.
	block[0] = 0xFF
	require.Nil(t, Unframe(blockSize, block))
}

func TestUnframeRejectsDeclaredLengthExceedingAvailableData(t *testing.T) {
	const blockSize = 16
	block := make([]byte, blockSize+4)
	block[0] = byte(blockSize) // declares the max legal length
	truncated := block[:4+2]   // but only 2 bytes of data are present
	require.Nil(t, Unframe(blockSize, truncated))
}

func TestUnframeRejectsShortBlock(t *testing.T) {
	require.Nil(t, Unframe(16, []byte{1, 2}))
}
