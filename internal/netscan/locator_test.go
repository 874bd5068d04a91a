package netscan

import "testing"

const linuxARPOutput = `gateway (192.168.1.1) at 10:27:f5:aa:01:02 [ether] on eth0
nas.local (192.168.1.50) at aa:bb:cc:dd:ee:ff [ether] on eth0
? (192.168.1.77) at <incomplete> on eth0
printer.local (192.168.1.80) at 00:11:22:33:44:55 [ether] on eth0`

const windowsARPOutput = `
Interface: 192.168.1.10 --- 0x4
  Internet Address      Physical Address      Type
  192.168.1.1           10-27-f5-aa-01-02     dynamic
  192.168.1.50          aa-bb-cc-dd-ee-ff     dynamic
  192.168.1.255         ff-ff-ff-ff-ff-ff     static
`

func TestFindByMAC_Linux(t *testing.T) {
	ip, ok := FindByMAC(linuxARPOutput, "AA:BB:CC:DD:EE:FF")
	if !ok {
		t.Fatal("expected a match")
	}
	if ip != "192.168.1.50" {
		t.Errorf("ip = %q, want 192.168.1.50", ip)
	}
}

func TestFindByMAC_Windows(t *testing.T) {
	ip, ok := FindByMAC(windowsARPOutput, "aa:bb:cc:dd:ee:ff")
	if !ok {
		t.Fatal("expected a match")
	}
	if ip != "192.168.1.50" {
		t.Errorf("ip = %q, want 192.168.1.50", ip)
	}
}

func TestFindByMAC_DelimiterAndCaseInsensitive(t *testing.T) {
	forms := []string{
		"aa:bb:cc:dd:ee:ff",
		"AA:BB:CC:DD:EE:FF",
		"aa-bb-cc-dd-ee-ff",
		"AABB.CCDD.EEFF",
		"aabbccddeeff",
	}
	for _, mac := range forms {
		if ip, ok := FindByMAC(linuxARPOutput, mac); !ok || ip != "192.168.1.50" {
			t.Errorf("FindByMAC(%q) = (%q, %v), want (192.168.1.50, true)", mac, ip, ok)
		}
	}
}

func TestFindByMAC_NoEntry(t *testing.T) {
	if ip, ok := FindByMAC(linuxARPOutput, "de:ad:be:ef:00:01"); ok {
		t.Errorf("expected no match, got %q", ip)
	}
}

func TestFindByMAC_InvalidMAC(t *testing.T) {
	for _, mac := range []string{"", "zz:zz:zz:zz:zz:zz", "aa:bb:cc", "gateway"} {
		if _, ok := FindByMAC(linuxARPOutput, mac); ok {
			t.Errorf("FindByMAC(%q) matched, want no match", mac)
		}
	}
}

func TestFindByMAC_EmptyOutput(t *testing.T) {
	if _, ok := FindByMAC("", "aa:bb:cc:dd:ee:ff"); ok {
		t.Error("expected no match on empty output")
	}
}
