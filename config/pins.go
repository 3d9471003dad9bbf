package config

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/hubertat/ledkit"
)

// ParsePort accepts a single bank letter, "F" or "f".
func ParsePort(name string) (ledkit.Port, error) {
	name = strings.ToUpper(strings.TrimSpace(name))
	if len(name) != 1 || name[0] < 'A' || name[0] > 'Z' {
		return "", errors.Errorf("invalid port %q", name)
	}
	return ledkit.Port(name), nil
}

// ParsePinRef reads pin names like "PA6" or "pd13".
func ParsePinRef(name string) (ledkit.PinRef, error) {
	s := strings.ToUpper(strings.TrimSpace(name))
	if len(s) < 3 || s[0] != 'P' {
		return ledkit.PinRef{}, errors.Errorf("invalid pin %q", name)
	}
	port, err := ParsePort(s[1:2])
	if err != nil {
		return ledkit.PinRef{}, errors.Wrapf(err, "pin %q", name)
	}
	line, err := strconv.ParseUint(s[2:], 10, 8)
	if err != nil {
		return ledkit.PinRef{}, errors.Errorf("invalid line in pin %q", name)
	}
	return ledkit.PinRef{Port: port, Line: uint8(line)}, nil
}
