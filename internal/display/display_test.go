package display

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plantlink/bitmap"
)

type fakeConnection struct {
	writes [][]byte
}

func (c *fakeConnection) Write(data []byte) error {
	d := make([]byte, len(data))
	copy(d, data)
	c.writes = append(c.writes, d)
	return nil
}

func (c *fakeConnection) Close() error {
	return nil
}

func aPackedBitmap(t *testing.T, width int, height int) *bitmap.PackedBitmap {
	t.Helper()
	g, err := bitmap.NewPixelGrid(width, height, make([]uint8, width*height))
	require.NoError(t, err)
	return bitmap.Pack(g, nil)
}

func TestWriteBitmapFrame(t *testing.T) {
	c := &fakeConnection{}
	b := aPackedBitmap(t, 128, 32)

	require.NoError(t, WriteBitmap(c, b))
	require.Len(t, c.writes, 2)

	assert.Equal(t, []byte{Soh, Draw, 16, 32, 0}, c.writes[0])
	assert.Len(t, c.writes[1], 16*32)
}

func TestWriteBitmapSlicesTallImages(t *testing.T) {
	c := &fakeConnection{}
	b := aPackedBitmap(t, 128, 150)

	require.NoError(t, WriteBitmap(c, b))
	// 64 + 64 + 22 rows, a header and a data write each
	require.Len(t, c.writes, 6)

	assert.Equal(t, []byte{Soh, Draw, 16, 64, 0}, c.writes[0])
	assert.Equal(t, []byte{Soh, Draw, 16, 64, 0}, c.writes[2])
	assert.Equal(t, []byte{Soh, Draw, 16, 22, 0}, c.writes[4])
	assert.Len(t, c.writes[5], 16*22)
}

func TestWriteBitmapRejectsTooWide(t *testing.T) {
	c := &fakeConnection{}
	b := aPackedBitmap(t, 256, 8)

	assert.Error(t, WriteBitmap(c, b))
	assert.Empty(t, c.writes)
}

func TestClearScreen(t *testing.T) {
	c := &fakeConnection{}
	require.NoError(t, ClearScreen(c))
	require.Len(t, c.writes, 1)
	assert.Equal(t, []byte{Soh, Clear}, c.writes[0])
}
