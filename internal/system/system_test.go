package system

import (
	"context"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImagePoolReusesBuffers(t *testing.T) {
	rect := image.Rect(0, 0, 64, 48)

	img := GetImage(rect)
	require.NotNil(t, img)
	assert.Equal(t, rect, img.Bounds())
	PutImage(img)

	again := GetImage(rect)
	require.NotNil(t, again)
	assert.Equal(t, rect, again.Bounds())
	PutImage(again)
}

func TestImagePoolDistinctSizes(t *testing.T) {
	small := GetImage(image.Rect(0, 0, 10, 10))
	large := GetImage(image.Rect(0, 0, 100, 100))
	assert.NotEqual(t, small.Bounds(), large.Bounds())
	PutImage(small)
	PutImage(large)
}

func TestImagePoolIgnoresNil(t *testing.T) {
	assert.NotPanics(t, func() { PutImage(nil) })
}

func TestCollectHostReport(t *testing.T) {
	report := CollectHostReport(context.Background())

	// Core counts are the one field every supported platform reports.
	assert.Greater(t, report.LogicalCores, 0)
	assert.NotEmpty(t, report.String())
}
