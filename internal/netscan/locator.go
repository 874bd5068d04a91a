// Package netscan resolves equipo IP addresses from the ARP cache, probes
// host reachability with ICMP echo, and composes the two into live status
// enrichment.
package netscan

import (
	"context"
	"log/slog"
	"net"
	"os/exec"
	"strings"
)

// Locator resolves a device's current IP address from the local network's
// address-resolution cache. A miss is the only failure signal: read errors
// on the underlying cache are swallowed and reported as not found.
type Locator interface {
	Lookup(ctx context.Context, mac string) (string, bool)
}

// ARPLocator reads the operating system's ARP table through the host's
// `arp -a` tool. It only sees devices that have communicated on the local
// segment recently; a powered-off machine, an expired entry and a host on
// another subnet are all indistinguishable from "not found".
type ARPLocator struct {
	logger *slog.Logger
}

func NewARPLocator(logger *slog.Logger) *ARPLocator {
	return &ARPLocator{logger: logger}
}

// Lookup returns the IP currently associated with the MAC, matching
// case- and delimiter-insensitively against the ARP table.
func (l *ARPLocator) Lookup(ctx context.Context, mac string) (string, bool) {
	out, err := exec.CommandContext(ctx, "arp", "-a").Output()
	if err != nil {
		// Permission problems, a missing tool and a non-zero exit all
		// degrade to "not found"; status inaccuracy is expected here.
		l.logger.Debug("arp table read failed", "error", err)
		return "", false
	}
	return FindByMAC(string(out), mac)
}

// FindByMAC scans `arp -a` output for the entry whose hardware address
// matches mac and returns its protocol address. Exported so the parser can
// be tested against captured tool output.
func FindByMAC(output, mac string) (string, bool) {
	want := canonicalMAC(mac)
	if want == "" {
		return "", false
	}
	for _, line := range strings.Split(output, "\n") {
		if !strings.Contains(canonicalizeLine(line), want) {
			continue
		}
		if ip, ok := extractIPv4(line); ok {
			return ip, true
		}
	}
	return "", false
}

// canonicalMAC converts a MAC in any standard delimiter style to the
// lowercase hyphen-grouped form used for table matching. Returns "" for
// anything that is not twelve hex digits.
func canonicalMAC(mac string) string {
	stripped := strings.ToLower(mac)
	for _, sep := range []string{":", "-", "."} {
		stripped = strings.ReplaceAll(stripped, sep, "")
	}
	if len(stripped) != 12 {
		return ""
	}
	for _, c := range stripped {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return ""
		}
	}
	var b strings.Builder
	b.Grow(17)
	for i := 0; i < 12; i += 2 {
		if i > 0 {
			b.WriteByte('-')
		}
		b.WriteString(stripped[i : i+2])
	}
	return b.String()
}

// canonicalizeLine lowercases an arp output line and normalizes the MAC
// delimiters it may contain so substring matching works on both the
// colon-grouped (Linux/BSD) and hyphen-grouped (Windows) formats.
func canonicalizeLine(line string) string {
	norm := strings.ToLower(line)
	return strings.ReplaceAll(norm, ":", "-")
}

// extractIPv4 pulls the first IPv4 address out of an arp output line.
// Linux prints it parenthesized, Windows as the leading column.
func extractIPv4(line string) (string, bool) {
	for _, field := range strings.Fields(line) {
		candidate := strings.Trim(field, "()")
		if ip := net.ParseIP(candidate); ip != nil && ip.To4() != nil {
			return candidate, true
		}
	}
	return "", false
}
