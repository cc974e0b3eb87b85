package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"os"
	"regexp"

	. "github.com/KirbyMcKenzie/BotBuilder-V3/util/testutil"

	"github.com/gorilla/websocket"
)

// WebSocketClient connects to an upstream WebSocket service.  Every
// in-bound message is processed; messages routed to "ws" go back out
// over the connection.
func (s *Service) WebSocketClient(ctx context.Context, urls string) error {

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	u, err := url.Parse(urls)
	if err != nil {
		return err
	}

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return err
	}
	defer c.Close()

	log.Printf("Service.WebSocketClient starting: %s", urls)

	s.wsClientC = make(chan interface{}, 10) // ?

	go func() {
		for {
			select {
			case <-ctx.Done():
				log.Printf("WebSocketClient reader closing per ctx")
				return
			default:
			}

			_, message, err := c.ReadMessage()
			if err != nil {
				s.err(err)
				continue
			}
			Logf("wsclient heard %s", message)

			var x interface{}
			if err = json.Unmarshal(message, &x); err != nil {
				err = fmt.Errorf("Service WebSocket client in-bound Unmarshal error %s on %s", err, message)
				s.err(err)
				continue
			}

			op := SOp{
				BOp: &BOp{
					Process: &OpProcess{
						Message: x,
					},
				},
			}

			if err = op.Do(ctx, s); err != nil {
				s.err(err)
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			log.Printf("WebSocketClient writer closing per ctx")
			return nil
		case x := <-s.wsClientC:
			Logf("WebSocketClient writer heard %s", JS(x))
			m, is := x.(map[string]interface{})
			if !is {
				s.err(fmt.Errorf(`%s (%T) isn't a %T`, JS(x), x, m))
				continue
			}

			// Remove the "to"
			delete(m, "to")

			js, err := json.Marshal(&m)
			if err != nil {
				s.err(err)
				continue
			}

			js = withBotEnvVars(js)

			Logf("WebSocketClient writer writing %s", js)

			if err = c.WriteMessage(websocket.TextMessage, js); err != nil {
				s.err(err)
				continue
			}
		}
	}
}

// withBotEnvVars replaces all substrings matching botEnvVars with
// their corresponding values of environment variables.
func withBotEnvVars(msg []byte) []byte {
	// ToDo: Make more efficient!
	return botEnvVars.ReplaceAllFunc(msg, func(bs []byte) []byte {
		if val := os.Getenv(string(bs[1:])); val != "" {
			return []byte(val)
		}
		return bs
	})
}

// botEnvVars matches strings that get expanded based on the
// environment.  See withBotEnvVars.
var botEnvVars = regexp.MustCompile(`\$BOT_\w+`)
