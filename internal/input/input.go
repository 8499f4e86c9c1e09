// Package input parses the line-oriented format read by the platforms
// command: one line of whitespace separated weights followed by a line
// holding the platform limit.
package input

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/eugenenazirov/platform-allocator/internal/allocator"
)

// Request is a parsed allocation request.
type Request struct {
	Weights []float64
	Limit   float64
}

// Parse reads weights from the first line and the limit from the second.
// An empty first line means no items.
func Parse(r io.Reader) (Request, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	lines := make([]string, 0, 2)
	for len(lines) < 2 && scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return Request{}, fmt.Errorf("read input: %w", err)
	}
	if len(lines) < 2 {
		return Request{}, fmt.Errorf("expected weights and limit lines, got %d line(s): %w", len(lines), allocator.ErrInputFormat)
	}

	weights, err := ParseWeights(lines[0])
	if err != nil {
		return Request{}, err
	}
	limit, err := ParseLimit(lines[1])
	if err != nil {
		return Request{}, err
	}
	return Request{Weights: weights, Limit: limit}, nil
}

// ParseWeights converts a whitespace separated list of numbers.
func ParseWeights(line string) ([]float64, error) {
	fields := strings.Fields(line)
	weights := make([]float64, 0, len(fields))
	for i, field := range fields {
		value, err := parseNumber(field)
		if err != nil {
			return nil, fmt.Errorf("weight %d %q: %w", i+1, field, err)
		}
		weights = append(weights, value)
	}
	return weights, nil
}

// ParseLimit converts the limit line. Exactly one number is expected.
func ParseLimit(line string) (float64, error) {
	fields := strings.Fields(line)
	if len(fields) != 1 {
		return 0, fmt.Errorf("limit line must hold one number, got %d: %w", len(fields), allocator.ErrInputFormat)
	}
	value, err := parseNumber(fields[0])
	if err != nil {
		return 0, fmt.Errorf("limit %q: %w", fields[0], err)
	}
	return value, nil
}

// FormatCount renders a platform count the way the command prints it.
func FormatCount(n int) string {
	return strconv.Itoa(n)
}

func parseNumber(s string) (float64, error) {
	value, err := strconv.ParseFloat(s, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			return 0, fmt.Errorf("out of range: %w", allocator.ErrInputFormat)
		}
		return 0, fmt.Errorf("not a number: %w", allocator.ErrInputFormat)
	}
	return value, nil
}
