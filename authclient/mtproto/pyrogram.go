package mtproto

import (
	"encoding/base64"
	"encoding/binary"

	"github.com/gotd/td/session"
	"github.com/pkg/errors"

	"github.com/jrsteele09/tg-session-bot/authclient"
)

const authKeyLen = 256

// Pyrogram v2 string sessions pack, big endian:
// dc_id(1) api_id(4) test_mode(1) auth_key(256) user_id(8) is_bot(1),
// then urlsafe base64 with the padding stripped.
const pyrogramPackedLen = 1 + 4 + 1 + authKeyLen + 8 + 1

func encodePyrogramString(data *session.Data, apiID int, userID int64) (authclient.SessionString, error) {
	if data == nil {
		return "", errors.New("[encodePyrogramString] no session data")
	}
	if len(data.AuthKey) != authKeyLen {
		return "", errors.Errorf("[encodePyrogramString] auth key length %d", len(data.AuthKey))
	}

	buf := make([]byte, 0, pyrogramPackedLen)
	buf = append(buf, byte(data.DC))
	buf = binary.BigEndian.AppendUint32(buf, uint32(apiID))
	buf = append(buf, 0) // test_mode
	buf = append(buf, data.AuthKey...)
	buf = binary.BigEndian.AppendUint64(buf, uint64(userID))
	buf = append(buf, 0) // is_bot

	return authclient.SessionString(base64.RawURLEncoding.EncodeToString(buf)), nil
}
