package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vovakirdan/wirechat-relay/internal/proto"
)

type inboundFrame struct {
	Type  string          `json:"type"`
	ID    string          `json:"id"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
	Error *proto.Error    `json:"error"`
}

func main() {
	if err := run(); err != nil {
		log.Printf("ws_chat: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:8080/ws", "WebSocket address")
	token := flag.String("token", os.Getenv("WIRECHAT_TOKEN"), "access token (see `wirechat-relay token`)")
	toUser := flag.Int64("to-user", 0, "send lines to this user id")
	toGroup := flag.Int64("to-group", 0, "send lines to this group id")
	flag.Parse()

	if *token == "" {
		return errors.New("a token is required")
	}
	target, kind := *toUser, "user"
	if *toGroup > 0 {
		target, kind = *toGroup, "group"
	}

	baseCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	header := http.Header{}
	header.Set("Authorization", "Bearer "+*token)
	conn, _, err := websocket.Dial(ctx, *addr, &websocket.DialOptions{HTTPHeader: header})
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	fmt.Printf("Connected to %s\n", *addr)
	if target > 0 {
		fmt.Printf("Lines are sent to %s %d. Ctrl+C to exit.\n", kind, target)
	} else {
		fmt.Println("Listening only; pass -to-user or -to-group to send. Ctrl+C to exit.")
	}

	go func() {
		defer cancel()
		readLoop(ctx, conn)
	}()

	if target > 0 {
		writeLoop(ctx, conn, kind, target)
	} else {
		<-ctx.Done()
	}

	stop()
	cancel()
	_ = conn.Close(websocket.StatusNormalClosure, "bye")
	return nil
}

func readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		var frame inboundFrame
		if err := wsjson.Read(ctx, conn, &frame); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return
			}
			log.Printf("read error: %v", err)
			return
		}

		switch {
		case frame.Type == proto.OutboundTypeError && frame.Error != nil:
			fmt.Printf("error (%s): %s: %s\n", frame.ID, frame.Error.Code, frame.Error.Msg)
		case frame.Type == proto.OutboundTypeAck:
			var ack proto.Ack
			if err := json.Unmarshal(frame.Data, &ack); err != nil {
				log.Printf("unmarshal ack: %v", err)
				continue
			}
			fmt.Printf("sent #%d at %s\n", ack.Message.ID, time.UnixMilli(ack.CreatedAt).Format(time.Kitchen))
		case frame.Event == proto.EventNameMessage:
			var msg proto.Message
			if err := json.Unmarshal(frame.Data, &msg); err != nil {
				log.Printf("unmarshal message: %v", err)
				continue
			}
			if msg.Type == "group" {
				fmt.Printf("[group %d] %s: %s\n", msg.Target, msg.FromName, msg.Message)
			} else {
				fmt.Printf("%s: %s\n", msg.FromName, msg.Message)
			}
		case frame.Event == proto.EventNameUserStatus:
			var st proto.UserStatus
			if err := json.Unmarshal(frame.Data, &st); err != nil {
				log.Printf("unmarshal user_status: %v", err)
				continue
			}
			state := "offline"
			if st.Online {
				state = "online"
			}
			fmt.Printf("user %d is %s\n", st.UserID, state)
		default:
			fmt.Printf("type=%s event=%s data=%s\n", frame.Type, frame.Event, frame.Data)
		}
	}
}

func writeLoop(ctx context.Context, conn *websocket.Conn, kind string, target int64) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	seq := 0
	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			text := strings.TrimSpace(line)
			if text == "" {
				continue
			}

			payload, err := json.Marshal(proto.SendData{Type: kind, Target: target, Message: text})
			if err != nil {
				log.Printf("marshal msg: %v", err)
				return
			}
			seq++
			inbound := proto.Inbound{Type: proto.InboundTypeMessage, ID: strconv.Itoa(seq), Data: payload}
			if err := wsjson.Write(ctx, conn, inbound); err != nil {
				log.Printf("send error: %v", err)
				return
			}
		}
	}
}
