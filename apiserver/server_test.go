package apiserver

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dial(t *testing.T) (*websocket.Conn, *httptest.Server) {
	t.Helper()
	server := NewServer("127.0.0.1:0")
	testServer := httptest.NewServer(server.Handler())

	wsURL := "ws" + strings.TrimPrefix(testServer.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		testServer.Close()
		t.Fatalf("failed to connect to websocket: %v", err)
	}
	return conn, testServer
}

func TestSession_AssembleRunAndExit(t *testing.T) {
	conn, testServer := dial(t)
	defer testServer.Close()
	defer conn.Close()

	req := clientMessage{Type: "assemble", Source: `.data
msg: .asciiz "hi"
.text
.globl main
main:
la $a0, msg
li $v0, 4
syscall
li $v0, 10
syscall
`}
	if err := conn.WriteJSON(req); err != nil {
		t.Fatalf("failed to send assemble message: %v", err)
	}

	var output strings.Builder
	deadline := time.Now().Add(2 * time.Second)
	for {
		if err := conn.SetReadDeadline(deadline); err != nil {
			t.Fatalf("SetReadDeadline failed: %v", err)
		}
		var msg serverMessage
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("ReadJSON failed: %v", err)
		}
		switch msg.Type {
		case "output":
			output.WriteString(msg.Data)
		case "exited":
			if msg.Code != 0 {
				t.Errorf("exit code = %d, want 0", msg.Code)
			}
			if output.String() != "hi" {
				t.Errorf("output = %q, want %q", output.String(), "hi")
			}
			return
		case "error":
			t.Fatalf("session reported error: %s", msg.Message)
		default:
			t.Fatalf("unexpected message type: %s", msg.Type)
		}
	}
}

func TestSession_RejectsNonAssembleFirstMessage(t *testing.T) {
	conn, testServer := dial(t)
	defer testServer.Close()
	defer conn.Close()

	if err := conn.WriteJSON(clientMessage{Type: "stdin", Data: "x"}); err != nil {
		t.Fatalf("failed to send message: %v", err)
	}

	var msg serverMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON failed: %v", err)
	}
	if msg.Type != "error" {
		t.Errorf("message type = %s, want error", msg.Type)
	}
}

func TestSession_RejectsBadSource(t *testing.T) {
	conn, testServer := dial(t)
	defer testServer.Close()
	defer conn.Close()

	if err := conn.WriteJSON(clientMessage{Type: "assemble", Source: "not valid mips\n"}); err != nil {
		t.Fatalf("failed to send assemble message: %v", err)
	}

	var msg serverMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON failed: %v", err)
	}
	if msg.Type != "error" {
		t.Errorf("message type = %s, want error", msg.Type)
	}
}

func TestSession_StdinFeedsReadChar(t *testing.T) {
	conn, testServer := dial(t)
	defer testServer.Close()
	defer conn.Close()

	req := clientMessage{Type: "assemble", Source: `.text
.globl main
main:
li $v0, 12
syscall
move $a0, $v0
li $v0, 11
syscall
li $v0, 10
syscall
`}
	if err := conn.WriteJSON(req); err != nil {
		t.Fatalf("failed to send assemble message: %v", err)
	}
	if err := conn.WriteJSON(clientMessage{Type: "stdin", Data: "Q"}); err != nil {
		t.Fatalf("failed to send stdin message: %v", err)
	}

	var output strings.Builder
	deadline := time.Now().Add(2 * time.Second)
	for {
		if err := conn.SetReadDeadline(deadline); err != nil {
			t.Fatalf("SetReadDeadline failed: %v", err)
		}
		var msg serverMessage
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("ReadJSON failed: %v", err)
		}
		switch msg.Type {
		case "output":
			output.WriteString(msg.Data)
		case "exited":
			if output.String() != "Q" {
				t.Errorf("output = %q, want %q", output.String(), "Q")
			}
			return
		case "error":
			t.Fatalf("session reported error: %s", msg.Message)
		}
	}
}
