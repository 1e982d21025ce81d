package relay

import (
	"fmt"
	"strings"
)

// ConnectQRPrefix marks a desktop discovery QR payload. The desktop renders
// "EMBREL_CONNECT:http://<address>:<port>" as a scannable code and the
// mobile client extracts the URL from it.
const ConnectQRPrefix = "EMBREL_CONNECT:"

// FormatConnectQR builds the discovery payload for one host address
func FormatConnectQR(address string, port int) string {
	return fmt.Sprintf("%shttp://%s:%d", ConnectQRPrefix, address, port)
}

// ParseConnectQR extracts the relay URL from a scanned discovery payload
func ParseConnectQR(data string) (string, error) {
	if !strings.HasPrefix(data, ConnectQRPrefix) {
		return "", fmt.Errorf("not a desktop connection code")
	}
	url := strings.TrimPrefix(data, ConnectQRPrefix)
	if url == "" {
		return "", fmt.Errorf("connection code has no URL")
	}
	return url, nil
}
