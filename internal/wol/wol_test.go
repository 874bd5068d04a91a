package wol

import (
	"bytes"
	"testing"
)

func TestMagicPacket(t *testing.T) {
	packet, err := MagicPacket("AA:BB:CC:DD:EE:FF")
	if err != nil {
		t.Fatalf("MagicPacket: %v", err)
	}

	if len(packet) != 102 {
		t.Fatalf("packet length = %d, want 102", len(packet))
	}

	sync := bytes.Repeat([]byte{0xFF}, 6)
	if !bytes.Equal(packet[:6], sync) {
		t.Errorf("header = % X, want six 0xFF bytes", packet[:6])
	}

	hw := []byte{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF}
	for i := 0; i < 16; i++ {
		start := 6 + i*6
		if !bytes.Equal(packet[start:start+6], hw) {
			t.Fatalf("repetition %d = % X, want % X", i, packet[start:start+6], hw)
		}
	}
}

func TestMagicPacket_InvalidMAC(t *testing.T) {
	for _, mac := range []string{"", "not-a-mac", "AA:BB:CC:DD:EE"} {
		if _, err := MagicPacket(mac); err == nil {
			t.Errorf("MagicPacket(%q) succeeded, want error", mac)
		}
	}
}

func TestMagicPacket_Not48Bit(t *testing.T) {
	// EUI-64 parses as a valid hardware address but cannot be woken.
	if _, err := MagicPacket("aa:bb:cc:dd:ee:ff:00:11"); err == nil {
		t.Error("expected error for 64-bit address")
	}
}
