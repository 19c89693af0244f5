package g3

import "fmt"

// Status is the single-byte result code carried in ADP confirm primitives.
type Status uint8

const (
	StatusSuccess Status = 0x00

	StatusInvalidRequest  Status = 0xA1
	StatusFailed          Status = 0xA2
	StatusInvalidIPv6Frame Status = 0xA3
	StatusNotPermitted    Status = 0xA4
	StatusRouteError      Status = 0xA5
	StatusTimeout         Status = 0xA6
	StatusInvalidIndex    Status = 0xA7
	StatusInvalidParameter Status = 0xA8
	StatusNoBeacon        Status = 0xA9

	StatusReadOnly            Status = 0xB0
	StatusUnsupportedAttribute Status = 0xB1
	StatusIncompletePath      Status = 0xB2
	StatusBusy                Status = 0xB3
	StatusNoBuffers           Status = 0xB4

	StatusErrorInternal Status = 0xFF
)

var statusNames = map[Status]string{
	StatusSuccess:              "success",
	StatusInvalidRequest:       "invalid request",
	StatusFailed:               "failed",
	StatusInvalidIPv6Frame:     "invalid ipv6 frame",
	StatusNotPermitted:         "not permitted",
	StatusRouteError:           "route error",
	StatusTimeout:              "timeout",
	StatusInvalidIndex:         "invalid index",
	StatusInvalidParameter:     "invalid parameter",
	StatusNoBeacon:             "no beacon",
	StatusReadOnly:             "read only",
	StatusUnsupportedAttribute: "unsupported attribute",
	StatusIncompletePath:       "incomplete path",
	StatusBusy:                 "busy",
	StatusNoBuffers:            "no buffers",
	StatusErrorInternal:        "internal error",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status(0x%02X)", uint8(s))
}

// OK reports whether the status represents a successful outcome.
func (s Status) OK() bool {
	return s == StatusSuccess
}

// AsError converts a non-success status into an error, and returns nil for success.
func (s Status) AsError() error {
	if s.OK() {
		return nil
	}
	return fmt.Errorf("g3: %s", s)
}
