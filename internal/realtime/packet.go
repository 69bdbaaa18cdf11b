// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package realtime

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Engine.IO packet types.
const (
	eioOpen    byte = '0'
	eioClose   byte = '1'
	eioPing    byte = '2'
	eioPong    byte = '3'
	eioMessage byte = '4'
)

// Socket.IO packet types carried inside an Engine.IO message.
const (
	sioConnect      byte = '0'
	sioDisconnect   byte = '1'
	sioEvent        byte = '2'
	sioConnectError byte = '4'
)

// ErrMalformedPacket is returned for frames that cannot be decoded.
var ErrMalformedPacket = errors.New("malformed socket.io packet")

// frame is one decoded transport frame.
type frame struct {
	eio     byte
	sio     byte
	event   string
	payload json.RawMessage
	body    []byte
}

// openPayload is the body of the Engine.IO open packet.
type openPayload struct {
	SID          string `json:"sid"`
	PingInterval int    `json:"pingInterval"`
	PingTimeout  int    `json:"pingTimeout"`
}

// connectPayload is the body of a Socket.IO connect ack.
type connectPayload struct {
	SID     string `json:"sid"`
	Message string `json:"message"`
}

func decodeFrame(data []byte) (frame, error) {
	if len(data) == 0 {
		return frame{}, ErrMalformedPacket
	}
	f := frame{eio: data[0], body: data[1:]}
	if f.eio != eioMessage {
		return f, nil
	}
	if len(f.body) == 0 {
		return f, ErrMalformedPacket
	}
	f.sio = f.body[0]
	rest := f.body[1:]

	// Namespaces other than "/" are prefixed with "/nsp,".
	if len(rest) > 0 && rest[0] == '/' {
		for i, c := range rest {
			if c == ',' {
				rest = rest[i+1:]
				break
			}
		}
	}
	// Skip an ack id.
	i := 0
	for i < len(rest) && rest[i] >= '0' && rest[i] <= '9' {
		i++
	}
	rest = rest[i:]
	f.body = rest

	if f.sio != sioEvent {
		return f, nil
	}
	var args []json.RawMessage
	if err := json.Unmarshal(rest, &args); err != nil || len(args) == 0 {
		return f, fmt.Errorf("%w: %s", ErrMalformedPacket, string(data))
	}
	if err := json.Unmarshal(args[0], &f.event); err != nil {
		return f, fmt.Errorf("%w: event name", ErrMalformedPacket)
	}
	if len(args) > 1 {
		f.payload = args[1]
	}
	return f, nil
}

func encodeEvent(name string, payload interface{}) ([]byte, error) {
	args := []interface{}{name}
	if payload != nil {
		args = append(args, payload)
	}
	body, err := json.Marshal(args)
	if err != nil {
		return nil, err
	}
	return append([]byte{eioMessage, sioEvent}, body...), nil
}

func connectPacket() []byte {
	return []byte{eioMessage, sioConnect}
}

func disconnectPacket() []byte {
	return []byte{eioMessage, sioDisconnect}
}

func pongPacket() []byte {
	return []byte{eioPong}
}
