package mtproto

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"net"
	"testing"

	"github.com/gotd/td/session"
	"github.com/stretchr/testify/require"
)

func TestEncodeTelethonString(t *testing.T) {
	data := &session.Data{
		DC:      4,
		Addr:    "149.154.167.91:443",
		AuthKey: testAuthKey(),
	}

	encoded, err := encodeTelethonString(data)
	require.NoError(t, err)
	require.Equal(t, byte('1'), encoded[0])

	raw, err := base64.URLEncoding.DecodeString(string(encoded[1:]))
	require.NoError(t, err)
	require.Len(t, raw, 1+4+2+authKeyLen)

	require.Equal(t, byte(4), raw[0])
	require.True(t, net.IP(raw[1:5]).Equal(net.ParseIP("149.154.167.91")))
	require.Equal(t, uint16(443), binary.BigEndian.Uint16(raw[5:7]))
	require.True(t, bytes.Equal(testAuthKey(), raw[7:]))
}

func TestEncodeTelethonString_IPv6(t *testing.T) {
	data := &session.Data{
		DC:      2,
		Addr:    "[2001:67c:4e8:f002::a]:443",
		AuthKey: testAuthKey(),
	}

	encoded, err := encodeTelethonString(data)
	require.NoError(t, err)

	raw, err := base64.URLEncoding.DecodeString(string(encoded[1:]))
	require.NoError(t, err)
	require.Len(t, raw, 1+16+2+authKeyLen)
	require.True(t, net.IP(raw[1:17]).Equal(net.ParseIP("2001:67c:4e8:f002::a")))
}

func TestEncodeTelethonString_BadAddr(t *testing.T) {
	data := &session.Data{DC: 2, Addr: "not-an-address", AuthKey: testAuthKey()}

	_, err := encodeTelethonString(data)
	require.Error(t, err)
}
