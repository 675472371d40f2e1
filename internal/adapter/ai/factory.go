package ai

import (
	"fmt"
	"strings"
)

const (
	// ModeMock selects the deterministic template generator.
	ModeMock = "mock"
)

// NewGenerator creates a generator for the AI_MODE setting.
func NewGenerator(mode string) (Generator, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", ModeMock:
		return NewMockGenerator(), nil
	default:
		return nil, fmt.Errorf("unsupported AI mode %q", mode)
	}
}
