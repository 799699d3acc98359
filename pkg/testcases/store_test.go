package testcases

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeCase(t *testing.T, root, problemID string, number int, input, output string) {
	t.Helper()
	inputsDir := filepath.Join(root, problemID, "inputs")
	outputsDir := filepath.Join(root, problemID, "outputs")
	require.NoError(t, os.MkdirAll(inputsDir, 0o755))
	require.NoError(t, os.MkdirAll(outputsDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(inputsDir, "input"+strconv.Itoa(number)+".txt"), []byte(input), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(outputsDir, "output"+strconv.Itoa(number)+".txt"), []byte(output), 0o644))
}

func TestFSStoreLoadsOrderedCases(t *testing.T) {
	root := t.TempDir()
	writeCase(t, root, "two-sum", 2, "3 4\n", "7\n")
	writeCase(t, root, "two-sum", 1, "1 2\n", "3\n")

	store := NewFSStore(root)
	cases, err := store.Load(context.Background(), "two-sum")
	require.NoError(t, err)
	require.Len(t, cases, 2)
	require.Equal(t, 1, cases[0].Number)
	require.Equal(t, "1 2", cases[0].Input)
	require.Equal(t, "3", cases[0].ExpectedOutput)
	require.Equal(t, 2, cases[1].Number)
	require.Equal(t, "7", cases[1].ExpectedOutput)
}

func TestFSStoreMissingProblem(t *testing.T) {
	store := NewFSStore(t.TempDir())

	_, err := store.Load(context.Background(), "nope")
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrNotFound))
}

func TestFSStoreEmptyTestSet(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "hollow", "inputs"), 0o755))

	store := NewFSStore(root)
	_, err := store.Load(context.Background(), "hollow")
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrEmptyTestSet))
}

func TestFSStoreRejectsTraversal(t *testing.T) {
	store := NewFSStore(t.TempDir())

	_, err := store.Load(context.Background(), "../etc")
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrNotFound))
}

func TestFSStoreMissingExpectedOutputFails(t *testing.T) {
	root := t.TempDir()
	writeCase(t, root, "broken", 1, "in", "out")
	require.NoError(t, os.Remove(filepath.Join(root, "broken", "outputs", "output1.txt")))

	store := NewFSStore(root)
	_, err := store.Load(context.Background(), "broken")
	require.Error(t, err)
}
