package audio

import "strings"

// Criteria narrows device selection. Index below zero and an empty Name both
// mean "not set"; with neither set the heuristic policy applies.
type Criteria struct {
	Index int
	Name  string
}

// loopbackMarkers match the usual names of devices that capture system
// output rather than a microphone.
var loopbackMarkers = []string{"stereo mix", "loopback", "blackhole", "soundflower"}

// Select picks the capture device, in order of preference:
//
//  1. the explicit index, iff that device has input channels — a miss is a
//     miss, not a fallback;
//  2. the first input-capable device whose name matches exactly;
//  3. the first device whose name contains a loopback marker;
//  4. the first input-capable device in catalog order.
func Select(devices []Device, c Criteria) (Device, bool) {
	if c.Index >= 0 {
		if c.Index < len(devices) && devices[c.Index].Input() {
			return devices[c.Index], true
		}
		return Device{}, false
	}

	if c.Name != "" {
		for _, d := range devices {
			if d.Name == c.Name && d.Input() {
				return d, true
			}
		}
		return Device{}, false
	}

	if d, ok := FindLoopback(devices); ok {
		return d, true
	}

	for _, d := range devices {
		if d.Input() {
			return d, true
		}
	}
	return Device{}, false
}

// FindLoopback returns the first device whose name contains a loopback
// marker, case-insensitively.
func FindLoopback(devices []Device) (Device, bool) {
	for _, d := range devices {
		name := strings.ToLower(d.Name)
		for _, marker := range loopbackMarkers {
			if strings.Contains(name, marker) {
				return d, true
			}
		}
	}
	return Device{}, false
}
