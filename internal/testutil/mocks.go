// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"github.com/steadops/pullup/internal/pull/executor"
	"github.com/stretchr/testify/mock"
)

// MockExecutor provides a mock implementation of the pull.Executor
// interface so runner tests can script subprocess outcomes and inspect the
// command lines that were built.
type MockExecutor struct {
	mock.Mock

	// Commands records every command line passed to Run, in order.
	Commands []string
}

// Run mocks the Run method
func (m *MockExecutor) Run(cmdline string) (*executor.Result, error) {
	m.Commands = append(m.Commands, cmdline)

	args := m.Called(cmdline)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*executor.Result), args.Error(1)
}
