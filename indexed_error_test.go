package lanes

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIndexedError_WrapsAndExposesIndex(t *testing.T) {
	err := newIndexedError(errBoom, 7)
	require.ErrorIs(t, err, errBoom)

	idx, ok := ExtractTaskIndex(err)
	require.True(t, ok)
	require.Equal(t, 7, idx)
}

func TestIndexedError_NilErrorStaysNil(t *testing.T) {
	require.NoError(t, newIndexedError(nil, 3))
}

func TestExtractTaskIndex_PlainError(t *testing.T) {
	_, ok := ExtractTaskIndex(errors.New("plain"))
	require.False(t, ok)
}

func TestIndexedError_Format(t *testing.T) {
	err := newIndexedError(errBoom, 4)
	require.Equal(t, "boom", fmt.Sprintf("%s", err))
	require.Equal(t, "boom", fmt.Sprintf("%v", err))
	require.Equal(t, `"boom"`, fmt.Sprintf("%q", err))
	require.Contains(t, fmt.Sprintf("%+v", err), "task(index=4)")
}
