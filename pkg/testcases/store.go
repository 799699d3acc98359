package testcases

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// ErrNotFound indicates the problem has no test case directory on disk.
var ErrNotFound = errors.New("test cases not found")

// ErrEmptyTestSet indicates the directory exists but holds zero test cases.
var ErrEmptyTestSet = errors.New("test set is empty")

// Case is one (input, expected output) pair. Number is 1-based and stable:
// the same index always refers to the same logical case.
type Case struct {
	Number         int
	Input          string
	ExpectedOutput string
}

// Store loads the ordered test case sequence for a problem.
type Store interface {
	Load(ctx context.Context, problemID string) ([]Case, error)
}

// NewFSStore returns a Store reading cases from
// <root>/<problemID>/inputs/inputN.txt and <root>/<problemID>/outputs/outputN.txt.
func NewFSStore(root string) Store {
	return &fsStore{root: root}
}

type fsStore struct {
	root string
}

func (s *fsStore) Load(ctx context.Context, problemID string) ([]Case, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Guard against path traversal through the caller-supplied problem id.
	if problemID == "" || problemID != filepath.Base(problemID) {
		return nil, fmt.Errorf("%w: invalid problem id %q", ErrNotFound, problemID)
	}

	inputsDir := filepath.Join(s.root, problemID, "inputs")
	entries, err := os.ReadDir(inputsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: problem %s", ErrNotFound, problemID)
		}
		return nil, fmt.Errorf("read test case directory: %w", err)
	}

	numbers := make([]int, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		number, ok := caseNumber(entry.Name())
		if !ok {
			continue
		}
		numbers = append(numbers, number)
	}
	if len(numbers) == 0 {
		return nil, fmt.Errorf("%w: problem %s", ErrEmptyTestSet, problemID)
	}
	sort.Ints(numbers)

	outputsDir := filepath.Join(s.root, problemID, "outputs")
	cases := make([]Case, 0, len(numbers))
	for _, number := range numbers {
		input, err := os.ReadFile(filepath.Join(inputsDir, fmt.Sprintf("input%d.txt", number)))
		if err != nil {
			return nil, fmt.Errorf("read input %d for problem %s: %w", number, problemID, err)
		}
		expected, err := os.ReadFile(filepath.Join(outputsDir, fmt.Sprintf("output%d.txt", number)))
		if err != nil {
			return nil, fmt.Errorf("read expected output %d for problem %s: %w", number, problemID, err)
		}
		cases = append(cases, Case{
			Number:         number,
			Input:          strings.TrimSpace(string(input)),
			ExpectedOutput: strings.TrimSpace(string(expected)),
		})
	}

	return cases, nil
}

func caseNumber(name string) (int, bool) {
	if !strings.HasPrefix(name, "input") || !strings.HasSuffix(name, ".txt") {
		return 0, false
	}
	digits := strings.TrimSuffix(strings.TrimPrefix(name, "input"), ".txt")
	number, err := strconv.Atoi(digits)
	if err != nil || number < 1 {
		return 0, false
	}
	return number, true
}
