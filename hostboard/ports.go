package hostboard

import (
	"io"

	"github.com/pkg/errors"

	"github.com/hubertat/ledkit"
	"github.com/hubertat/ledkit/drivers"
)

// NewPorts creates one driver per configured port. Mock drivers are
// labelled with their port so monitor output reads "[PF pin 6] ...".
func NewPorts(cfgs map[ledkit.Port]drivers.Config) (map[ledkit.Port]drivers.IoDriver, error) {
	ports := make(map[ledkit.Port]drivers.IoDriver, len(cfgs))
	for port, cfg := range cfgs {
		driver, err := drivers.New(cfg)
		if err != nil {
			return nil, errors.Wrapf(err, "port %s", port)
		}
		if mock, ok := driver.(*drivers.MockIoDriver); ok {
			mock.Label = "P" + string(port) + " "
		}
		ports[port] = driver
	}
	return ports, nil
}

// MockPorts puts every port of layout on a mock driver.
func MockPorts(layout ledkit.Layout) map[ledkit.Port]drivers.IoDriver {
	cfgs := make(map[ledkit.Port]drivers.Config)
	for _, port := range layout.Ports() {
		cfgs[port] = drivers.Config{Driver: "mock"}
	}
	ports, _ := NewPorts(cfgs)
	return ports
}

// MonitorMockPorts prints state changes of every mock port to writer. Call it
// after bring-up, once the ports have their pins.
func MonitorMockPorts(ports map[ledkit.Port]drivers.IoDriver, writer io.Writer) {
	for _, driver := range ports {
		if mock, ok := driver.(*drivers.MockIoDriver); ok {
			mock.MonitorStateChanges(writer)
		}
	}
}
