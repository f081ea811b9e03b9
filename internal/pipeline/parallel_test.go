package pipeline

import (
	"context"
	"fmt"
	"testing"

	"github.com/pictext/pictext/internal/apierr"
	"github.com/pictext/pictext/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractBatch_AllSucceed(t *testing.T) {
	p := testPipeline(okEngine("cloud_vision", "some text"), nil, nil)

	inputs := []BatchInput{
		{Filename: "one.png", Content: testutil.TextPNG(t, "one")},
		{Filename: "two.png", Content: testutil.TextPNG(t, "two")},
		{Filename: "three.png", Content: testutil.TextPNG(t, "three")},
	}

	batch, err := p.ExtractBatch(context.Background(), inputs, DefaultOptions())
	require.NoError(t, err)

	assert.True(t, batch.Success)
	assert.Equal(t, 3, batch.TotalFiles)
	assert.Equal(t, 3, batch.Successful)
	assert.Zero(t, batch.Failed)
	require.Len(t, batch.Results, 3)
	for i, name := range []string{"one.png", "two.png", "three.png"} {
		assert.Equal(t, name, batch.Results[i].Filename)
		require.NotNil(t, batch.Results[i].Result)
	}
}

func TestExtractBatch_IsolatesInvalidItem(t *testing.T) {
	p := testPipeline(okEngine("cloud_vision", "some text"), nil, nil)

	inputs := []BatchInput{
		{Filename: "one.png", Content: testutil.TextPNG(t, "one")},
		{Filename: "broken.png", Content: []byte("garbage, not an image")},
		{Filename: "three.png", Content: testutil.TextPNG(t, "three")},
	}

	batch, err := p.ExtractBatch(context.Background(), inputs, DefaultOptions())
	require.NoError(t, err)

	assert.False(t, batch.Success)
	assert.Equal(t, 3, batch.TotalFiles)
	assert.Equal(t, 2, batch.Successful)
	assert.Equal(t, 1, batch.Failed)

	// Submission order survives; the middle item carries the error.
	assert.True(t, batch.Results[0].Success)
	assert.False(t, batch.Results[1].Success)
	require.NotNil(t, batch.Results[1].Error)
	assert.Equal(t, string(apierr.CodeInvalidFileType), batch.Results[1].Error.Code)
	assert.Nil(t, batch.Results[1].Result)
	assert.True(t, batch.Results[2].Success)
}

func TestExtractBatch_TooManyFiles(t *testing.T) {
	p := testPipeline(okEngine("cloud_vision", "x"), nil, nil)

	inputs := make([]BatchInput, 11)
	for i := range inputs {
		inputs[i] = BatchInput{Filename: fmt.Sprintf("f%d.png", i), Content: testutil.TextPNG(t, "x")}
	}

	_, err := p.ExtractBatch(context.Background(), inputs, DefaultOptions())
	require.Error(t, err)
	assert.Equal(t, apierr.CodeTooManyFiles, apierr.CodeOf(err))

	// Rejected wholesale: no engine work happened.
	eng := p.primary.(*fakeEngine)
	assert.Zero(t, eng.calls.Load())
}

func TestExtractBatch_EmptyBatch(t *testing.T) {
	p := testPipeline(okEngine("cloud_vision", "x"), nil, nil)

	_, err := p.ExtractBatch(context.Background(), nil, DefaultOptions())
	require.Error(t, err)
	assert.Equal(t, apierr.CodeMissingFile, apierr.CodeOf(err))
}

func TestExtractBatch_OrderStableUnderConcurrency(t *testing.T) {
	p := testPipeline(okEngine("cloud_vision", "text"), nil, nil)

	const n = 8
	inputs := make([]BatchInput, n)
	for i := range inputs {
		inputs[i] = BatchInput{
			Filename: fmt.Sprintf("img-%02d.png", i),
			Content:  testutil.TextPNG(t, fmt.Sprintf("image %d", i)),
		}
	}

	batch, err := p.ExtractBatch(context.Background(), inputs, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, batch.Results, n)
	for i := range n {
		assert.Equal(t, fmt.Sprintf("img-%02d.png", i), batch.Results[i].Filename)
	}
}

func TestExtractBatch_SanitizesReportedFilenames(t *testing.T) {
	p := testPipeline(okEngine("cloud_vision", "x"), nil, nil)

	inputs := []BatchInput{
		{Filename: "../../etc/passwd.png", Content: testutil.TextPNG(t, "x")},
	}

	batch, err := p.ExtractBatch(context.Background(), inputs, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "passwd.png", batch.Results[0].Filename)
}
