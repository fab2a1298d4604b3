package audio

import "testing"

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat("f32"); err != nil || f != FormatFloat32 {
		t.Errorf("ParseFormat(f32) = %q, %v", f, err)
	}
	if f, err := ParseFormat("i16"); err != nil || f != FormatInt16 {
		t.Errorf("ParseFormat(i16) = %q, %v", f, err)
	}
	for _, s := range []string{"", "u8", "f64", "F32"} {
		if _, err := ParseFormat(s); err == nil {
			t.Errorf("ParseFormat(%q) accepted, want error", s)
		}
	}
}

func TestDeviceInput(t *testing.T) {
	if (Device{Name: "Speakers"}).Input() {
		t.Error("device with no input channels reported as input-capable")
	}
	if !(Device{Name: "Microphone", MaxInputChannels: 1}).Input() {
		t.Error("device with input channels not reported as input-capable")
	}
}
