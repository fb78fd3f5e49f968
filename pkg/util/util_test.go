package util

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapErrorf(t *testing.T) {
	orig := errors.New("vertex 9 out of range")
	err := WrapErrorf(orig, ErrBadParamInput, "shortest path %d -> %d", 1, 9)

	assert.Equal(t, "shortest path 1 -> 9: vertex 9 out of range", err.Error())
	assert.ErrorIs(t, err, orig)
	assert.ErrorIs(t, err, ErrBadParamInput)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Equal(t, ErrBadParamInput, ErrorCode(err))

	wrapped := errors.Join(errors.New("query"), err)
	assert.Equal(t, ErrBadParamInput, ErrorCode(wrapped))

	assert.Equal(t, ErrInternalServerError, ErrorCode(errors.New("plain")))
	assert.Equal(t, "no orig", WrapErrorf(nil, ErrNotFound, "no orig").Error())
}

func TestReverseG(t *testing.T) {
	in := []int{1, 2, 3, 4}
	assert.Equal(t, []int{4, 3, 2, 1}, ReverseG(in))
	assert.Equal(t, []int{1, 2, 3, 4}, in)
	assert.Empty(t, ReverseG([]int{}))
}

func TestStopConcurrentOperation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	assert.False(t, StopConcurrentOperation(ctx))
	cancel()
	assert.True(t, StopConcurrentOperation(ctx))
}

func TestReadLineAndFields(t *testing.T) {
	long := strings.Repeat("7 ", 3000)
	br := bufio.NewReaderSize(strings.NewReader("1 2 3\n"+long+"\n"), 16)

	line, err := ReadLine(br)
	require.NoError(t, err)
	f, err := Fields(line, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, f)

	line, err = ReadLine(br)
	require.NoError(t, err)
	_, err = Fields(line, 3000)
	assert.NoError(t, err)
	_, err = Fields(line, 2)
	assert.Error(t, err)

	_, err = ReadLine(br)
	assert.ErrorIs(t, err, io.EOF)
}

func TestMinMaxRound(t *testing.T) {
	assert.Equal(t, 2, MinG(2, 5))
	assert.Equal(t, 5.5, MaxG(2.0, 5.5))
	assert.Equal(t, 3.14, RoundFloat(3.14159, 2))
	assert.InDelta(t, 180.0, RadiansToDegree(DegreeToRadians(180)), 1e-12)
}
