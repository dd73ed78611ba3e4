package transport

import "strconv"

// Result codes reported by Connect, Send and OnError. They follow the
// network error numbering of the platform the connector was first written for.
const (
	ResultOK                 = 0
	ResultFailed             = -2
	ResultInvalidHandle      = -4
	ResultSocketNotConnected = -15
	ResultConnectionClosed   = -100
	ResultConnectionReset    = -101
	ResultConnectionRefused  = -102
	ResultConnectionAborted  = -103
	ResultConnectionFailed   = -104
	ResultNameNotResolved    = -105
	ResultAddressUnreachable = -109
	ResultTimedOut           = -118
)

// ResultRemoteClosed is the code signalling the peer closed its end.
const ResultRemoteClosed = ResultSocketNotConnected

var resultNames = map[int]string{
	ResultOK:                 "OK",
	ResultFailed:             "FAILED",
	ResultInvalidHandle:      "INVALID_HANDLE",
	ResultSocketNotConnected: "SOCKET_NOT_CONNECTED",
	ResultConnectionClosed:   "CONNECTION_CLOSED",
	ResultConnectionReset:    "CONNECTION_RESET",
	ResultConnectionRefused:  "CONNECTION_REFUSED",
	ResultConnectionAborted:  "CONNECTION_ABORTED",
	ResultConnectionFailed:   "CONNECTION_FAILED",
	ResultNameNotResolved:    "NAME_NOT_RESOLVED",
	ResultAddressUnreachable: "ADDRESS_UNREACHABLE",
	ResultTimedOut:           "TIMED_OUT",
}

// ResultName returns a readable name for a result code.
func ResultName(code int) string {
	if code > 0 {
		return "OK"
	}
	if name, ok := resultNames[code]; ok {
		return name
	}
	return "ERROR_" + strconv.Itoa(-code)
}

// Failed reports whether result is a failure code.
func Failed(result int) bool {
	return result < 0
}
