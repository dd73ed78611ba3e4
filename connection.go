package connector

import (
	"net"
	"strconv"
	"strings"

	"github.com/emove/connector/transport"
)

// State is the lifecycle state of the connection.
type State int32

const (
	Idle State = iota
	Connecting
	Connected
	Disconnecting
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Connecting:
		return "Connecting"
	case Connected:
		return "Connected"
	case Disconnecting:
		return "Disconnecting"
	default:
		return "State(" + strconv.Itoa(int(s)) + ")"
	}
}

// Address is a parsed host:port pair.
type Address struct {
	Host string
	Port int
}

func (a Address) String() string {
	return net.JoinHostPort(a.Host, strconv.Itoa(a.Port))
}

// Connection is a snapshot of the single logical connection.
//
// ID is transport.NoHandle exactly when no socket is owned: always in Idle,
// and in Connecting until the transport has created the socket.
type Connection struct {
	ID            transport.Handle
	State         State
	RemoteAddress Address
}

// ParseAddress splits addr at its last colon into host and port.
// A bracketed IPv6 host such as [::1]:80 loses its brackets.
func ParseAddress(addr string) (Address, error) {
	addr = strings.TrimSpace(addr)
	i := strings.LastIndexByte(addr, ':')
	if i < 0 {
		return Address{}, &ValidationError{Address: addr, Reason: StatusMissingPort}
	}

	host, portText := addr[:i], addr[i+1:]
	if len(host) > 1 && host[0] == '[' && host[len(host)-1] == ']' {
		host = host[1 : len(host)-1]
	}
	if host == "" {
		return Address{}, &ValidationError{Address: addr, Reason: "You must provide host name."}
	}
	if portText == "" {
		return Address{}, &ValidationError{Address: addr, Reason: StatusMissingPort}
	}

	port, err := strconv.Atoi(portText)
	if err != nil || port < 0 || port > 65535 {
		return Address{}, &ValidationError{Address: addr, Reason: "Port must be a number between 0 and 65535."}
	}
	return Address{Host: host, Port: port}, nil
}
