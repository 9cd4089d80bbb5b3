package mocks

import (
	"github.com/brettbedarf/vshell"
	"github.com/stretchr/testify/mock"
)

// MockSubscriber records bus deliveries for testing across packages
type MockSubscriber[T any] struct {
	mock.Mock
}

func (m *MockSubscriber[T]) Handle(v T) {
	m.Called(v)
}

// MockLineProcessor implements vshell.LineProcessor
type MockLineProcessor struct {
	mock.Mock
}

var _ vshell.LineProcessor = (*MockLineProcessor)(nil)

func (m *MockLineProcessor) ProcessLine(raw string) {
	m.Called(raw)
}

// MockGate implements the policy gate used by the progression tracker
type MockGate struct {
	mock.Mock
}

func (m *MockGate) Allow(command string) bool {
	args := m.Called(command)
	return args.Bool(0)
}

func (m *MockGate) Disallow(command string) bool {
	args := m.Called(command)
	return args.Bool(0)
}

func (m *MockGate) Block(literal string) bool {
	args := m.Called(literal)
	return args.Bool(0)
}

func (m *MockGate) Unblock(literal string) bool {
	args := m.Called(literal)
	return args.Bool(0)
}
