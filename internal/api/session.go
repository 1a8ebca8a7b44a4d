package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/qoodeng/wolfe/internal/agent"
	"github.com/qoodeng/wolfe/internal/voice"
)

// maxFrameBytes caps inbound frames; audio utterances dominate.
const maxFrameBytes = 10 << 20

// frameQueueSize bounds how many caller frames can pile up while a
// turn is in flight. Audio keeps arriving mid-turn; the reader stays
// on the socket and the turn loop drains the queue in order.
const frameQueueSize = 16

// Frame is the wire format for both directions of a session.
//
// Inbound types: "text" (typed input) and "audio" (base64 caller
// audio). Binary WebSocket messages are shorthand for audio frames.
//
// Outbound types: "transcript" (what the caller was heard to say),
// "response" (the agent's words), "audio" (base64 synthesized speech),
// and "error".
type Frame struct {
	Type        string `json:"type"`
	Text        string `json:"text,omitempty"`
	Audio       string `json:"audio,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Message     string `json:"message,omitempty"`
}

// inbound is one parsed caller frame handed from the read goroutine to
// the turn loop.
type inbound struct {
	isAudio     bool
	text        string
	audio       []byte
	contentType string
}

// session is one caller's connection. The read goroutine owns
// ReadMessage; turns run on the session goroutine; writes are
// serialized by writeMu because a reply and its audio are sent back to
// back and errors can be sent from either goroutine.
type session struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
	conv    *agent.Conversation
	stt     voice.Transcriber
	tts     voice.Synthesizer
	logger  *slog.Logger
}

func newSession(conn *websocket.Conn, conv *agent.Conversation, stt voice.Transcriber, tts voice.Synthesizer, logger *slog.Logger) *session {
	return &session{
		conn:   conn,
		conv:   conv,
		stt:    stt,
		tts:    tts,
		logger: logger,
	}
}

// run greets the caller and then serves turns until the caller hangs
// up. Reads happen on a separate goroutine so a disconnect is observed
// even while a turn is blocked on the model or the store; the hang-up
// cancels ctx, and the in-flight turn halts at its next suspension
// point.
func (s *session) run(ctx context.Context) {
	defer s.conn.Close()
	s.conn.SetReadLimit(maxFrameBytes)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.logger.Info("caller connected")

	frames := make(chan inbound, frameQueueSize)
	go s.readLoop(ctx, cancel, frames)

	greeting, err := s.conv.Greeting(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.Error("greeting failed", "error", err)
		s.sendError("The agent is unavailable right now. Please call back later.")
		return
	}
	s.speak(ctx, greeting)

	for {
		select {
		case <-ctx.Done():
			return
		case f, ok := <-frames:
			if !ok {
				return
			}
			if f.isAudio {
				s.handleAudio(ctx, f.audio, f.contentType)
			} else {
				s.handleText(ctx, f.text)
			}
		}
	}
}

// readLoop reads and parses caller frames until the connection closes,
// then cancels the session context so an in-flight turn stops calling
// out. Malformed frames are answered directly without involving the
// turn loop.
func (s *session) readLoop(ctx context.Context, cancel context.CancelFunc, frames chan<- inbound) {
	defer cancel()
	defer close(frames)

	for {
		msgType, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Warn("connection closed unexpectedly", "error", err)
			} else {
				s.logger.Info("caller disconnected")
			}
			return
		}

		var f inbound
		switch msgType {
		case websocket.BinaryMessage:
			f = inbound{isAudio: true, audio: data, contentType: "audio/wav"}
		case websocket.TextMessage:
			var frame Frame
			if err := json.Unmarshal(data, &frame); err != nil {
				s.sendError("Malformed frame.")
				continue
			}
			switch frame.Type {
			case "text":
				f = inbound{text: frame.Text}
			case "audio":
				audio, err := base64.StdEncoding.DecodeString(frame.Audio)
				if err != nil {
					s.sendError("Malformed audio payload.")
					continue
				}
				contentType := frame.ContentType
				if contentType == "" {
					contentType = "audio/wav"
				}
				f = inbound{isAudio: true, audio: audio, contentType: contentType}
			default:
				s.sendError("Unknown frame type.")
				continue
			}
		default:
			continue
		}

		select {
		case frames <- f:
		case <-ctx.Done():
			return
		}
	}
}

// handleText runs one conversation turn from typed or transcribed
// input.
func (s *session) handleText(ctx context.Context, text string) {
	if text == "" {
		return
	}

	reply, err := s.conv.Turn(ctx, text)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.Error("turn failed", "error", err)
		s.sendError("I'm sorry, something went wrong. Could you say that again?")
		return
	}
	s.speak(ctx, reply)
}

// handleAudio transcribes caller audio and runs the turn on the
// transcript. Silence is dropped without a round trip to the model.
func (s *session) handleAudio(ctx context.Context, audio []byte, contentType string) {
	if s.stt == nil {
		s.sendError("This server does not accept audio input.")
		return
	}

	transcript, err := s.stt.Transcribe(ctx, audio, contentType)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.Error("transcription failed", "error", err)
		s.sendError("I couldn't hear that. Could you repeat it?")
		return
	}
	if transcript == "" {
		return
	}

	s.send(Frame{Type: "transcript", Text: transcript})
	s.handleText(ctx, transcript)
}

// speak sends the agent's reply as text and, when a synthesizer is
// configured, as audio. Synthesis failure downgrades the turn to
// text only.
func (s *session) speak(ctx context.Context, reply string) {
	if reply == "" {
		return
	}
	s.send(Frame{Type: "response", Text: reply})

	if s.tts == nil {
		return
	}
	audio, err := s.tts.Synthesize(ctx, reply)
	if err != nil {
		s.logger.Error("synthesis failed", "error", err)
		return
	}
	s.send(Frame{Type: "audio", Audio: base64.StdEncoding.EncodeToString(audio), ContentType: "audio/wav"})
}

func (s *session) sendError(msg string) {
	s.send(Frame{Type: "error", Message: msg})
}

func (s *session) send(f Frame) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.conn.WriteJSON(f); err != nil {
		s.logger.Debug("failed to write frame", "type", f.Type, "error", err)
	}
}
