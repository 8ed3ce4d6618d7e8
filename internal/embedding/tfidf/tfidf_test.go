package tfidf

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var corpus = []string{
	"Newton's laws describe force and motion.",
	"Derivatives measure the rate of change.",
	"Chemical reactions rearrange atoms and bonds.",
}

func TestEncodeRequiresPrepare(t *testing.T) {
	e := New()
	_, err := e.Encode(context.Background(), []string{"force"})
	assert.Error(t, err)
}

func TestPrepareBuildsVocabulary(t *testing.T) {
	e := New()
	require.NoError(t, e.Prepare(corpus))
	assert.Greater(t, e.Dimension(), 0)
}

func TestPrepareEmptyCorpus(t *testing.T) {
	assert.Error(t, New().Prepare(nil))
}

func TestEncodeVectorsAreNormalized(t *testing.T) {
	e := New()
	require.NoError(t, e.Prepare(corpus))
	vecs, err := e.Encode(context.Background(), []string{"force and motion"})
	require.NoError(t, err)
	require.Len(t, vecs, 1)

	norm := 0.0
	for _, v := range vecs[0] {
		norm += v * v
	}
	assert.InDelta(t, 1.0, norm, 1e-9)
}

func TestEncodeIdenticalTextsMatch(t *testing.T) {
	e := New()
	require.NoError(t, e.Prepare(corpus))
	vecs, err := e.Encode(context.Background(), []string{"rate of change", "rate of change"})
	require.NoError(t, err)
	require.Len(t, vecs, 2)
	assert.Equal(t, vecs[0], vecs[1])
}

func TestEncodeUnknownTokensYieldZeroVector(t *testing.T) {
	e := New()
	require.NoError(t, e.Prepare(corpus))
	vecs, err := e.Encode(context.Background(), []string{"zzz qqq"})
	require.NoError(t, err)
	for _, v := range vecs[0] {
		assert.Zero(t, v)
	}
}
