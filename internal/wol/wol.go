// Package wol builds and transmits Wake-on-LAN magic packets.
package wol

import (
	"fmt"
	"log/slog"
	"net"
)

// DefaultBroadcastAddr is the discard-port broadcast target used when no
// address is configured.
const DefaultBroadcastAddr = "255.255.255.255:9"

// MagicPacket builds the 102-byte magic packet for a MAC address: six 0xFF
// synchronization bytes followed by sixteen repetitions of the hardware
// address.
func MagicPacket(mac string) ([]byte, error) {
	hw, err := net.ParseMAC(mac)
	if err != nil {
		return nil, fmt.Errorf("parse mac: %w", err)
	}
	if len(hw) != 6 {
		return nil, fmt.Errorf("mac %q is not a 48-bit address", mac)
	}

	packet := make([]byte, 0, 102)
	for i := 0; i < 6; i++ {
		packet = append(packet, 0xFF)
	}
	for i := 0; i < 16; i++ {
		packet = append(packet, hw...)
	}
	return packet, nil
}

// Dispatcher sends magic packets over the local broadcast domain.
type Dispatcher struct {
	broadcastAddr string
	logger        *slog.Logger
}

func NewDispatcher(broadcastAddr string, logger *slog.Logger) *Dispatcher {
	if broadcastAddr == "" {
		broadcastAddr = DefaultBroadcastAddr
	}
	return &Dispatcher{broadcastAddr: broadcastAddr, logger: logger}
}

// Wake broadcasts one magic packet addressed to the MAC. It neither
// confirms delivery nor waits for the device to come up; the resulting
// power state is observed by a later status read.
func (d *Dispatcher) Wake(mac string) error {
	packet, err := MagicPacket(mac)
	if err != nil {
		return err
	}

	conn, err := net.Dial("udp", d.broadcastAddr)
	if err != nil {
		return fmt.Errorf("dial broadcast %s: %w", d.broadcastAddr, err)
	}
	defer conn.Close()

	if _, err := conn.Write(packet); err != nil {
		return fmt.Errorf("send magic packet: %w", err)
	}

	d.logger.Debug("magic packet sent", "mac", mac, "broadcast", d.broadcastAddr)
	return nil
}
