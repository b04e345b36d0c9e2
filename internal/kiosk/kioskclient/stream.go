package kioskclient

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/yungbote/kiosk-backend/internal/realtime"
)

// Stream holds the display's change-event stream open until ctx ends or the
// server closes it. Comments and heartbeats are skipped.
func (c *Client) Stream(ctx context.Context, device string, onEvent func(realtime.SSEMessage)) error {
	path := "/api/playback/stream"
	if device != "" {
		path += "?device=" + url.QueryEscape(device)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("")+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return decodeAPIError(resp.StatusCode, raw)
	}
	c.log.Info("Change stream connected", "device", device)

	err = readSSE(resp.Body, func(event, data string) error {
		var msg realtime.SSEMessage
		if err := json.Unmarshal([]byte(data), &msg); err != nil {
			c.log.Warn("Skipping malformed SSE frame", "event", event, "error", err)
			return nil
		}
		if msg.Event == "" {
			msg.Event = realtime.SSEEvent(event)
		}
		onEvent(msg)
		return nil
	})
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func readSSE(r io.Reader, onEvent func(event, data string) error) error {
	br := bufio.NewReader(r)
	var (
		eventName string
		dataLines []string
	)
	flush := func() error {
		if len(dataLines) == 0 {
			eventName = ""
			return nil
		}
		data := strings.Join(dataLines, "\n")
		ev := eventName
		eventName, dataLines = "", nil
		return onEvent(ev, data)
	}

	for {
		line, err := br.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				return flush()
			}
			return fmt.Errorf("read sse: %w", err)
		}
		line = strings.TrimRight(line, "\r\n")
		switch {
		case line == "":
			if err := flush(); err != nil {
				return err
			}
		case strings.HasPrefix(line, ":"):
		case strings.HasPrefix(line, "event:"):
			eventName = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			dataLines = append(dataLines, strings.TrimSpace(strings.TrimPrefix(line, "data:")))
		}
	}
}
