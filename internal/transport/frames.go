package transport

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
)

// Telephony media stream event kinds.
const (
	EventStart = "start"
	EventMedia = "media"
	EventStop  = "stop"
)

var errEmptyEvent = errors.New("frame has no event kind")

// Frame is one JSON message on the media stream socket, inbound or
// outbound.
type Frame struct {
	Event     string     `json:"event"`
	StreamSid string     `json:"streamSid,omitempty"`
	Start     *StartData `json:"start,omitempty"`
	Media     *MediaData `json:"media,omitempty"`
}

// StartData announces a new call. StreamSid is the call identifier for
// the rest of the stream.
type StartData struct {
	StreamSid        string            `json:"streamSid"`
	AccountSid       string            `json:"accountSid"`
	CallSid          string            `json:"callSid"`
	CustomParameters map[string]string `json:"customParameters,omitempty"`
}

// MediaData carries one base64-encoded chunk of 8 kHz mulaw audio.
type MediaData struct {
	Payload string `json:"payload"`
}

func DecodeFrame(data []byte) (*Frame, error) {
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode transport frame: %w", err)
	}
	if f.Event == "" {
		return nil, errEmptyEvent
	}
	return &f, nil
}

// EncodeMediaFrame builds the outbound media event that plays audio back
// to the caller.
func EncodeMediaFrame(streamSid string, audio []byte) ([]byte, error) {
	f := Frame{
		Event:     EventMedia,
		StreamSid: streamSid,
		Media:     &MediaData{Payload: base64.StdEncoding.EncodeToString(audio)},
	}
	return json.Marshal(f)
}
