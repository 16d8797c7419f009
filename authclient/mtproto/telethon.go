package mtproto

import (
	"encoding/base64"
	"encoding/binary"
	"net"
	"strconv"

	"github.com/gotd/td/session"
	"github.com/pkg/errors"

	"github.com/jrsteele09/tg-session-bot/authclient"
)

// Telethon v1 string sessions are the literal character '1' followed by the
// urlsafe base64 of: dc_id(1) server_ip(4|16) port(2) auth_key(256),
// big endian throughout.
const telethonVersion = "1"

func encodeTelethonString(data *session.Data) (authclient.SessionString, error) {
	if data == nil {
		return "", errors.New("[encodeTelethonString] no session data")
	}
	if len(data.AuthKey) != authKeyLen {
		return "", errors.Errorf("[encodeTelethonString] auth key length %d", len(data.AuthKey))
	}

	host, portStr, err := net.SplitHostPort(data.Addr)
	if err != nil {
		return "", errors.Wrap(err, "[encodeTelethonString] split server address")
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return "", errors.Errorf("[encodeTelethonString] server address %q is not an IP", host)
	}
	ipBytes := ip.To4()
	if ipBytes == nil {
		ipBytes = ip.To16()
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return "", errors.Wrap(err, "[encodeTelethonString] parse server port")
	}

	buf := make([]byte, 0, 1+len(ipBytes)+2+authKeyLen)
	buf = append(buf, byte(data.DC))
	buf = append(buf, ipBytes...)
	buf = binary.BigEndian.AppendUint16(buf, uint16(port))
	buf = append(buf, data.AuthKey...)

	return authclient.SessionString(telethonVersion + base64.URLEncoding.EncodeToString(buf)), nil
}
