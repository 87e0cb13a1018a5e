package images

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func TestRawFromMat(t *testing.T) {
	mat := gocv.NewMatWithSize(2, 3, gocv.MatTypeCV8UC3)
	defer mat.Close()

	for row := 0; row < 2; row++ {
		for col := 0; col < 3; col++ {
			i := row*3 + col
			mat.SetUCharAt(row, col*3, uint8(i))
			mat.SetUCharAt(row, col*3+1, uint8(i+100))
			mat.SetUCharAt(row, col*3+2, uint8(i+200))
		}
	}

	raw, err := RawFromMat(mat)
	require.NoError(t, err)
	assert.Equal(t, rawFixture(3, 2), raw)
}

func TestRawFromMatErrors(t *testing.T) {
	empty := gocv.NewMat()
	defer empty.Close()
	_, err := RawFromMat(empty)
	assert.Error(t, err)

	grey := gocv.NewMatWithSize(2, 2, gocv.MatTypeCV8UC1)
	defer grey.Close()
	_, err = RawFromMat(grey)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported mat type")
}

func TestMatRoundTrip(t *testing.T) {
	src, err := NewRGBImage(0, 0).Copy(rawFixture(4, 3), 255)
	require.NoError(t, err)
	src.SetLabel(9)

	mat, err := MatFromRGBImage(src, 255)
	require.NoError(t, err)
	defer mat.Close()
	assert.Equal(t, 3, mat.Rows())
	assert.Equal(t, 4, mat.Cols())

	back, err := RGBImageFromMat(mat, 9)
	require.NoError(t, err)
	assert.Equal(t, src.Raw(255), back.Raw(255))
	assert.Equal(t, float32(9), back.Label())

	again, err := MatFromRGBImage(back, 255)
	require.NoError(t, err)
	defer again.Close()
	assert.Equal(t, ComputeMatChecksum(mat), ComputeMatChecksum(again))
}

func TestMatFromEmptyImage(t *testing.T) {
	mat, err := MatFromRGBImage(NewRGBImage(0, 0), 255)
	defer mat.Close()
	assert.Error(t, err)
	assert.True(t, mat.Empty())
	assert.Equal(t, "empty", ComputeMatChecksum(mat))
}
