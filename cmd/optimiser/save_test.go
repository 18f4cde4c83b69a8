package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/alejandrodnm/f1optimiser/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCommitter struct {
	committed []domain.OptimizationResult
	discarded []domain.OptimizationResult
	err       error
}

func (f *fakeCommitter) Commit(_ context.Context, res domain.OptimizationResult) error {
	if f.err != nil {
		return f.err
	}
	f.committed = append(f.committed, res)
	return nil
}

func (f *fakeCommitter) Discard(_ context.Context, res domain.OptimizationResult) error {
	f.discarded = append(f.discarded, res)
	return nil
}

func TestFinish_AskYes(t *testing.T) {
	c := &fakeCommitter{}
	var out bytes.Buffer

	err := finish(context.Background(), c, domain.OptimizationResult{RunID: "r"}, "ask", strings.NewReader("y\n"), &out)
	require.NoError(t, err)

	assert.Len(t, c.committed, 1)
	assert.Empty(t, c.discarded)
	assert.Contains(t, out.String(), "Save this team")
	assert.Contains(t, out.String(), "Team saved.")
}

func TestFinish_AskDefaultsToNo(t *testing.T) {
	for _, answer := range []string{"\n", "n\n", "maybe\n", ""} {
		c := &fakeCommitter{}
		var out bytes.Buffer

		err := finish(context.Background(), c, domain.OptimizationResult{RunID: "r"}, "ask", strings.NewReader(answer), &out)
		require.NoError(t, err)

		assert.Empty(t, c.committed, "answer %q", answer)
		assert.Len(t, c.discarded, 1, "answer %q", answer)
	}
}

func TestFinish_Modes(t *testing.T) {
	c := &fakeCommitter{}
	var out bytes.Buffer
	require.NoError(t, finish(context.Background(), c, domain.OptimizationResult{}, "yes", strings.NewReader(""), &out))
	require.NoError(t, finish(context.Background(), c, domain.OptimizationResult{}, "no", strings.NewReader("y\n"), &out))

	assert.Len(t, c.committed, 1)
	assert.Len(t, c.discarded, 1)
	assert.NotContains(t, out.String(), "[y/N]")
}

func TestFinish_LimitlessPrompt(t *testing.T) {
	c := &fakeCommitter{}
	var out bytes.Buffer
	res := domain.OptimizationResult{RestorePriorState: true}

	require.NoError(t, finish(context.Background(), c, res, "ask", strings.NewReader("yes\n"), &out))
	assert.Contains(t, out.String(), "Limitless chip")
	assert.Contains(t, out.String(), "Previous team kept")
}

func TestFinish_CommitError(t *testing.T) {
	c := &fakeCommitter{err: errors.New("disk full")}
	err := finish(context.Background(), c, domain.OptimizationResult{}, "yes", strings.NewReader(""), &bytes.Buffer{})
	require.Error(t, err)
}
