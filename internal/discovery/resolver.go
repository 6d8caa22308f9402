package discovery

import (
	"errors"
	"fmt"
	"net"
	"strings"

	psnet "github.com/shirou/gopsutil/v4/net"
)

// ErrNoAddressResolved means no LAN address could be found for the host.
var ErrNoAddressResolved = errors.New("could not determine server IP")

// AddressResolver finds an IPv4 address phones on the LAN can reach.
type AddressResolver interface {
	Resolve() (string, error)
}

// privatePrefixes are matched as string prefixes, in order.
var privatePrefixes = []string{"192.168.", "10.", "172."}

// NetResolver prefers a private address on any interface and falls back to
// the source address the OS would pick for a public destination.
type NetResolver struct {
	// ProbeAddr is dialed over UDP for the fallback; no packet is sent.
	ProbeAddr string

	interfaceAddrs func() ([]string, error)
	probe          func(addr string) (string, error)
}

func NewNetResolver() *NetResolver {
	return &NetResolver{
		ProbeAddr:      "8.8.8.8:80",
		interfaceAddrs: interfaceAddrs,
		probe:          probeSourceAddr,
	}
}

func (r *NetResolver) Resolve() (string, error) {
	addrs, ifErr := r.interfaceAddrs()
	if ip := PickPrivate(addrs); ip != "" {
		return ip, nil
	}

	ip, err := r.probe(r.ProbeAddr)
	if err == nil && ip != "" {
		return ip, nil
	}
	if cause := errors.Join(ifErr, err); cause != nil {
		return "", fmt.Errorf("%w: %v", ErrNoAddressResolved, cause)
	}
	return "", ErrNoAddressResolved
}

// PickPrivate returns the first IPv4 address with a private prefix. Entries
// may carry a CIDR suffix.
func PickPrivate(addrs []string) string {
	for _, a := range addrs {
		ip, _, _ := strings.Cut(a, "/")
		if strings.Contains(ip, ":") {
			continue
		}
		for _, p := range privatePrefixes {
			if strings.HasPrefix(ip, p) {
				return ip
			}
		}
	}
	return ""
}

// interfaceAddrs lists the addresses of every local interface.
func interfaceAddrs() ([]string, error) {
	ifaces, err := psnet.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("list interfaces: %w", err)
	}
	var addrs []string
	for _, iface := range ifaces {
		for _, a := range iface.Addrs {
			addrs = append(addrs, a.Addr)
		}
	}
	return addrs, nil
}

// probeSourceAddr asks the kernel which local address routes to addr. UDP
// dial does not send anything.
func probeSourceAddr(addr string) (string, error) {
	conn, err := net.Dial("udp4", addr)
	if err != nil {
		return "", fmt.Errorf("probe %s: %w", addr, err)
	}
	defer conn.Close()
	local, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok || local.IP.IsUnspecified() {
		return "", fmt.Errorf("probe %s: no local address", addr)
	}
	return local.IP.String(), nil
}
