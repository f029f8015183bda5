package domain

// TransportType is the kind of link reported by the platform. Empty means unknown.
type TransportType string

const (
	TransportUnknown  TransportType = ""
	TransportNone     TransportType = "none"
	TransportWiFi     TransportType = "wifi"
	TransportCellular TransportType = "cellular"
	TransportEthernet TransportType = "ethernet"
)

// NetworkStatus is a reachability snapshot, replaced wholesale on every platform event.
type NetworkStatus struct {
	Connected         bool
	Transport         TransportType
	InternetReachable *bool
}

// Reachable is true when connected and the internet is not known to be unreachable.
func (s NetworkStatus) Reachable() bool {
	if !s.Connected {
		return false
	}
	return s.InternetReachable == nil || *s.InternetReachable
}

// Online returns a connected status with an unknown transport.
func Online() NetworkStatus {
	return NetworkStatus{Connected: true}
}

// Offline returns a disconnected status.
func Offline() NetworkStatus {
	reachable := false
	return NetworkStatus{Connected: false, Transport: TransportNone, InternetReachable: &reachable}
}
