// Package voice provides the speech boundary of the agent: turning
// caller audio into text and agent replies into audio.
package voice

import "context"

// Transcriber converts one utterance of caller audio to text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, contentType string) (string, error)
}

// Synthesizer renders agent text as speakable audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}
