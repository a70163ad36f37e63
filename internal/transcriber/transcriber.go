package transcriber

import (
	"context"
	"errors"
)

// ErrStreamUnavailable means the speech provider refused to open a
// recognition stream. Fatal to session start.
var ErrStreamUnavailable = errors.New("transcription stream unavailable")

type StreamWriter interface {
	Write(audio []byte) error
	Close() error
}

// ResultReceiver gets transcription callbacks for one call, in the order
// the audio was submitted. Only isFinal results carry stable text.
type ResultReceiver interface {
	OnResult(text string, confidence float64, isFinal bool)
	OnError(err error)
}

type Transcriber interface {
	StartStreaming(ctx context.Context, callID, language string, receiver ResultReceiver) (StreamWriter, error)
}
