package oem7

import "errors"

// Predefined error types for robust error handling
var (
	ErrInvalidBaudRate = errors.New("unsupported baud rate")
	ErrInvalidConfig   = errors.New("invalid configuration")
	ErrPortClosed      = errors.New("serial port is closed")

	// ErrNoDeviceDetected is the terminal state of discovery once the
	// candidate space is exhausted. An absent receiver is an expected
	// outcome, not a fault.
	ErrNoDeviceDetected = errors.New("no receiver detected")

	// ErrNoCommands signals an empty resolved command sequence.
	ErrNoCommands = errors.New("no commands resolved")
)
