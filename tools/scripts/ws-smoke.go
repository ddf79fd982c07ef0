// Package main provides a CI-friendly smoke test for a running globchat
// server.
//
// It validates:
//   - register -> login -> bearer token
//   - /auth/status proceeds with the logged-in uid
//   - websocket handshake with the token
//   - text frame -> receipt echo
//   - binary frame -> error payload + close
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/coder/websocket"
)

const maxReadBytes = 1 << 20 // 1MiB

func main() {
	var (
		baseURL  = flag.String("url", "http://127.0.0.1:8080", "Server base URL")
		username = flag.String("user", fmt.Sprintf("smoke-%d", time.Now().UnixNano()), "Username to register")
		password = flag.String("pass", "smoke-test-password", "Password to register with")
		timeout  = flag.Duration("timeout", 7*time.Second, "Per-step timeout")
		verbose  = flag.Bool("v", false, "Verbose output")
	)
	flag.Parse()

	if err := validateBaseURL(*baseURL); err != nil {
		fatalf("invalid -url: %v", err)
	}

	root := context.Background()

	mustRegister(root, *baseURL, *username, *password, *timeout)
	token := mustLogin(root, *baseURL, *username, *password, *timeout)
	uid := mustStatusProceed(root, *baseURL, token, *timeout)
	if *verbose {
		fmt.Printf("authenticated: user=%s uid=%d\n", *username, uid)
	}

	conn := mustDialWS(root, *baseURL, token, *timeout)
	defer func() { _ = conn.Close(websocket.StatusNormalClosure, "done") }()

	mustEchoText(root, conn, *timeout)
	mustRejectBinary(root, conn, *timeout)

	fmt.Printf("OK: user=%s uid=%d\n", *username, uid)
}

func validateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	if strings.TrimSpace(u.Host) == "" {
		return errors.New("missing host")
	}
	return nil
}

func postJSON(parent context.Context, rawURL string, body any, stepTimeout time.Duration) (*http.Response, error) {
	ctx, cancel := context.WithTimeout(parent, stepTimeout)
	defer cancel()

	buf, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(buf))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return http.DefaultClient.Do(req)
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func mustRegister(parent context.Context, baseURL, username, password string, stepTimeout time.Duration) {
	resp, err := postJSON(parent, baseURL+"/auth/register", credentials{Username: username, Password: password}, stepTimeout)
	if err != nil {
		fatalf("register: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var out struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		fatalf("register: decode: %v", err)
	}
	if out.Status != "success" {
		fatalf("register: status=%q", out.Status)
	}
}

func mustLogin(parent context.Context, baseURL, username, password string, stepTimeout time.Duration) string {
	resp, err := postJSON(parent, baseURL+"/auth/login", credentials{Username: username, Password: password}, stepTimeout)
	if err != nil {
		fatalf("login: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var out struct {
		Status struct {
			LoggedIn struct {
				Token string `json:"token"`
			} `json:"logged_in"`
		} `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		fatalf("login: decode: %v", err)
	}
	if strings.TrimSpace(out.Status.LoggedIn.Token) == "" {
		fatalf("login: no token in response")
	}
	return out.Status.LoggedIn.Token
}

func mustStatusProceed(parent context.Context, baseURL, token string, stepTimeout time.Duration) int64 {
	ctx, cancel := context.WithTimeout(parent, stepTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/auth/status", nil)
	if err != nil {
		fatalf("status: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fatalf("status: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var out struct {
		Next struct {
			Proceed struct {
				UID int64 `json:"uid"`
			} `json:"proceed"`
		} `json:"next"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		fatalf("status: decode: %v", err)
	}
	if out.Next.Proceed.UID == 0 {
		fatalf("status: expected proceed, token not accepted")
	}
	return out.Next.Proceed.UID
}

func mustDialWS(parent context.Context, baseURL, token string, stepTimeout time.Duration) *websocket.Conn {
	ctx, cancel := context.WithTimeout(parent, stepTimeout)
	defer cancel()

	wsURL := strings.Replace(baseURL, "http", "ws", 1) + "/ws"

	h := http.Header{}
	h.Set("Authorization", "Bearer "+token)

	conn, resp, err := websocket.Dial(ctx, wsURL, &websocket.DialOptions{HTTPHeader: h})
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		fatalf("ws dial: %v", err)
	}

	conn.SetReadLimit(maxReadBytes)
	return conn
}

func mustEchoText(parent context.Context, conn *websocket.Conn, stepTimeout time.Duration) {
	ctx, cancel := context.WithTimeout(parent, stepTimeout)
	defer cancel()

	payload := fmt.Sprintf(`{"smoke":%d}`, time.Now().UnixNano())
	if err := conn.Write(ctx, websocket.MessageText, []byte(payload)); err != nil {
		fatalf("ws write: %v", err)
	}

	typ, data, err := conn.Read(ctx)
	if err != nil {
		fatalf("ws read: %v", err)
	}
	if typ != websocket.MessageText {
		fatalf("ws read: unexpected frame type %v", typ)
	}

	var ack struct {
		Received bool            `json:"received"`
		Echo     json.RawMessage `json:"echo"`
	}
	if err := json.Unmarshal(data, &ack); err != nil {
		fatalf("ws ack: decode %q: %v", data, err)
	}
	if !ack.Received || string(ack.Echo) != payload {
		fatalf("ws ack mismatch: %s", data)
	}
}

func mustRejectBinary(parent context.Context, conn *websocket.Conn, stepTimeout time.Duration) {
	ctx, cancel := context.WithTimeout(parent, stepTimeout)
	defer cancel()

	if err := conn.Write(ctx, websocket.MessageBinary, []byte{0xde, 0xad}); err != nil {
		fatalf("ws binary write: %v", err)
	}

	_, data, err := conn.Read(ctx)
	if err != nil {
		fatalf("ws binary: expected error payload before close, got read error: %v", err)
	}
	var msg struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &msg); err != nil || msg.Error == "" {
		fatalf("ws binary: unexpected payload %q", data)
	}

	// The server closes the connection after rejecting the frame.
	_, _, err = conn.Read(ctx)
	if websocket.CloseStatus(err) != websocket.StatusUnsupportedData {
		fatalf("ws binary: expected unsupported-data close, got %v", err)
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "SMOKE FAIL: "+format+"\n", args...)
	os.Exit(1)
}
