//go:build headless
// +build headless

package monitor

import (
	"github.com/pkg/errors"

	"nescore/internal/app"
)

// Monitor stub for headless builds
type Monitor struct{}

// New creates a stub monitor for headless builds
func New(application *app.Application) *Monitor {
	return &Monitor{}
}

// Run reports that no window is available
func (m *Monitor) Run() error {
	return errors.New("monitor not available in headless build")
}
