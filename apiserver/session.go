package apiserver

import (
	"io"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/holtzmann/mipsgo/asm"
	"github.com/holtzmann/mipsgo/interp"
	"github.com/holtzmann/mipsgo/source"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// clientMessage is the wire shape of every frame a client sends. The
// first frame on a connection must be an "assemble" message; after that,
// only "stdin" frames are forwarded and frames of any other type are ignored.
type clientMessage struct {
	Type   string `json:"type"`
	Source string `json:"source,omitempty"`
	IOMode string `json:"io_mode,omitempty"`
	Data   string `json:"data,omitempty"`
}

// serverMessage is the wire shape of every frame the server sends back.
type serverMessage struct {
	Type    string `json:"type"` // "output", "exited", "error"
	Data    string `json:"data,omitempty"`
	Code    int32  `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// session owns one WebSocket connection's lifetime: one assembled program,
// one interpreter, and the goroutines relaying bytes across the frame
// boundary in both directions.
type session struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func newSession(conn *websocket.Conn) *session {
	return &session{conn: conn}
}

func (s *session) run() {
	defer s.conn.Close()

	var first clientMessage
	if err := s.conn.ReadJSON(&first); err != nil {
		s.sendError("expected an initial assemble message: " + err.Error())
		return
	}
	if first.Type != "assemble" {
		s.sendError("first message must have type \"assemble\"")
		return
	}

	layout, err := asm.Assemble([]*source.File{source.NewFromString("session.s", first.Source)})
	if err != nil {
		s.sendError("assemble failed: " + err.Error())
		return
	}

	pr, pw := io.Pipe()
	var istream io.Reader = pr
	var mode interp.IOMode
	switch first.IOMode {
	case "", "syscall":
		mode = interp.IOSyscall
	case "mmio":
		// The MMIO pre-step poll expects a read-some stream that returns
		// immediately; a raw pipe read would block the step loop instead.
		mode = interp.IOMMIO
		istream = newNonblockReader(pr)
	default:
		s.sendError("unrecognised io_mode: " + first.IOMode)
		return
	}
	it := interp.NewInterpreter(istream, &wsWriter{s: s})
	it.IOMode = mode

	go s.pumpStdin(pw)

	code, runErr := it.Interpret(layout)
	pw.Close()
	if runErr != nil {
		s.sendError(runErr.Error())
		return
	}
	s.send(serverMessage{Type: "exited", Code: code})
}

// pumpStdin forwards every subsequent "stdin" message's payload into pw,
// closing it when the connection ends.
func (s *session) pumpStdin(pw *io.PipeWriter) {
	defer pw.Close()
	for {
		var msg clientMessage
		if err := s.conn.ReadJSON(&msg); err != nil {
			return
		}
		if msg.Type == "stdin" {
			if _, err := pw.Write([]byte(msg.Data)); err != nil {
				return
			}
		}
	}
}

func (s *session) send(msg serverMessage) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.conn.WriteJSON(msg); err != nil {
		log.Printf("websocket write error: %v", err)
	}
}

func (s *session) sendError(message string) {
	s.send(serverMessage{Type: "error", Message: message})
}

// nonblockReader drains a blocking reader from a background goroutine so
// that Read hands back only bytes that have already arrived, never waiting
// for more.
type nonblockReader struct {
	mu  sync.Mutex
	buf []byte
	eof bool
}

func newNonblockReader(r io.Reader) *nonblockReader {
	n := &nonblockReader{}
	go func() {
		chunk := make([]byte, 512)
		for {
			c, err := r.Read(chunk)
			n.mu.Lock()
			n.buf = append(n.buf, chunk[:c]...)
			if err != nil {
				n.eof = true
				n.mu.Unlock()
				return
			}
			n.mu.Unlock()
		}
	}()
	return n
}

func (n *nonblockReader) Read(p []byte) (int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.buf) == 0 {
		if n.eof {
			return 0, io.EOF
		}
		return 0, nil
	}
	c := copy(p, n.buf)
	n.buf = n.buf[c:]
	return c, nil
}

// wsWriter adapts a session's WebSocket connection to an io.Writer of
// ostream bytes, one "output" frame per Write call.
type wsWriter struct {
	s *session
}

func (w *wsWriter) Write(p []byte) (int, error) {
	w.s.send(serverMessage{Type: "output", Data: string(p)})
	return len(p), nil
}
