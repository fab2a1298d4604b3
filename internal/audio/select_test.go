package audio

import "testing"

func catalog(devices ...Device) []Device {
	for i := range devices {
		devices[i].Index = i
	}
	return devices
}

func TestSelectExplicitIndex(t *testing.T) {
	devices := catalog(
		Device{Name: "Microphone", MaxInputChannels: 2},
		Device{Name: "Stereo Mix", MaxInputChannels: 2},
		Device{Name: "Speakers"},
	)

	got, ok := Select(devices, Criteria{Index: 0})
	if !ok || got.Name != "Microphone" {
		t.Fatalf("Select(index 0) = %q, %v; want Microphone", got.Name, ok)
	}
}

func TestSelectExplicitIndexWithoutInputIsHardMiss(t *testing.T) {
	devices := catalog(
		Device{Name: "Microphone", MaxInputChannels: 2},
		Device{Name: "Speakers"},
	)

	if got, ok := Select(devices, Criteria{Index: 1}); ok {
		t.Fatalf("Select(index 1) = %q, want no fallback for an output-only device", got.Name)
	}
}

func TestSelectExplicitIndexOutOfRange(t *testing.T) {
	devices := catalog(Device{Name: "Microphone", MaxInputChannels: 2})

	if got, ok := Select(devices, Criteria{Index: 5}); ok {
		t.Fatalf("Select(index 5) = %q, want nothing", got.Name)
	}
}

func TestSelectExplicitName(t *testing.T) {
	devices := catalog(
		Device{Name: "Microphone", MaxInputChannels: 2},
		Device{Name: "Stereo Mix", MaxInputChannels: 2},
	)

	got, ok := Select(devices, Criteria{Index: -1, Name: "Stereo Mix"})
	if !ok || got.Name != "Stereo Mix" {
		t.Fatalf("Select(name) = %q, %v; want Stereo Mix", got.Name, ok)
	}
}

func TestSelectExplicitNameMissing(t *testing.T) {
	devices := catalog(Device{Name: "Microphone", MaxInputChannels: 2})

	if got, ok := Select(devices, Criteria{Index: -1, Name: "BlackHole 2ch"}); ok {
		t.Fatalf("Select(absent name) = %q, want nothing", got.Name)
	}
}

func TestSelectExplicitNameWithoutInput(t *testing.T) {
	devices := catalog(
		Device{Name: "Microphone", MaxInputChannels: 2},
		Device{Name: "Speakers"},
	)

	if got, ok := Select(devices, Criteria{Index: -1, Name: "Speakers"}); ok {
		t.Fatalf("Select(output-only name) = %q, want nothing", got.Name)
	}
}

func TestSelectPrefersLoopback(t *testing.T) {
	devices := catalog(
		Device{Name: "Microphone", MaxInputChannels: 2},
		Device{Name: "Stereo Mix", MaxInputChannels: 2},
		Device{Name: "Speakers"},
	)

	got, ok := Select(devices, Criteria{Index: -1})
	if !ok || got.Name != "Stereo Mix" {
		t.Fatalf("Select(heuristic) = %q, %v; want Stereo Mix", got.Name, ok)
	}
}

func TestSelectLoopbackIsCaseInsensitive(t *testing.T) {
	devices := catalog(
		Device{Name: "Built-in Microphone", MaxInputChannels: 1},
		Device{Name: "BlackHole 2ch", MaxInputChannels: 2},
	)

	got, ok := Select(devices, Criteria{Index: -1})
	if !ok || got.Name != "BlackHole 2ch" {
		t.Fatalf("Select(heuristic) = %q, %v; want BlackHole 2ch", got.Name, ok)
	}
}

func TestSelectFallsBackToFirstInput(t *testing.T) {
	devices := catalog(
		Device{Name: "Speakers"},
		Device{Name: "Microphone", MaxInputChannels: 2},
		Device{Name: "Webcam Mic", MaxInputChannels: 1},
	)

	got, ok := Select(devices, Criteria{Index: -1})
	if !ok || got.Name != "Microphone" {
		t.Fatalf("Select(fallback) = %q, %v; want Microphone", got.Name, ok)
	}
}

func TestSelectEmptyCatalog(t *testing.T) {
	if got, ok := Select(nil, Criteria{Index: -1}); ok {
		t.Fatalf("Select(empty) = %q, want nothing", got.Name)
	}
}

func TestSelectNoUsableDevice(t *testing.T) {
	devices := catalog(Device{Name: "Speakers"}, Device{Name: "HDMI Out"})

	if got, ok := Select(devices, Criteria{Index: -1}); ok {
		t.Fatalf("Select(no inputs) = %q, want nothing", got.Name)
	}
}

func TestFindLoopbackOrder(t *testing.T) {
	devices := catalog(
		Device{Name: "Soundflower (2ch)", MaxInputChannels: 2},
		Device{Name: "Stereo Mix", MaxInputChannels: 2},
	)

	got, ok := FindLoopback(devices)
	if !ok || got.Name != "Soundflower (2ch)" {
		t.Fatalf("FindLoopback = %q, %v; want first match in list order", got.Name, ok)
	}
}

func TestFindLoopbackNoMatch(t *testing.T) {
	devices := catalog(
		Device{Name: "Microphone", MaxInputChannels: 2},
		Device{Name: "Speakers"},
	)

	if got, ok := FindLoopback(devices); ok {
		t.Fatalf("FindLoopback = %q, want no match", got.Name)
	}
}
