package probe

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"wsprobe/internal/models"
)

const (
	// DefaultEndpoint is probed when a target does not name a URL.
	DefaultEndpoint = "ws://localhost:7171"
	// DefaultPayload is sent when a target does not name a payload.
	DefaultPayload = "ping"
)

// Run performs one send/receive exchange against the target and records the
// outcome. Exactly one connection is opened, and it is closed on every exit
// path. Any failure during dialing, sending or receiving collapses into the
// result's Error field; Run itself never fails.
func Run(ctx context.Context, target models.Target) models.ProbeResult {
	return run(ctx, target, nil)
}

// Report runs one probe and writes human-readable status lines to w: a
// confirmation once the connection is up, the reply verbatim, or a single
// error line. The caller always proceeds normally afterwards.
func Report(ctx context.Context, target models.Target, w io.Writer) models.ProbeResult {
	res := run(ctx, target, func(line string) {
		fmt.Fprintln(w, line)
	})
	if res.Error != "" {
		fmt.Fprintf(w, "Error: %s\n", res.Error)
	}
	return res
}

func run(ctx context.Context, target models.Target, status func(line string)) models.ProbeResult {
	say := func(line string) {
		if status != nil {
			status(line)
		}
	}

	res := models.ProbeResult{
		ID:        target.ID,
		Name:      target.Name,
		CheckedAt: time.Now().UTC(),
	}

	endpoint := strings.TrimSpace(target.URL)
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	payload := target.Payload
	if payload == "" {
		payload = DefaultPayload
	}

	started := time.Now()
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetReadDeadline(deadline)
		_ = conn.SetWriteDeadline(deadline)
	}

	say("Connected to WebSocket!")

	if err := conn.WriteMessage(websocket.TextMessage, []byte(payload)); err != nil {
		res.Error = err.Error()
		return res
	}

	_, reply, err := conn.ReadMessage()
	if err != nil {
		res.Error = err.Error()
		return res
	}

	res.OK = true
	res.Reply = string(reply)
	res.LatencyMs = int64(time.Since(started) / time.Millisecond)
	say(fmt.Sprintf("Received: %s", res.Reply))
	return res
}
