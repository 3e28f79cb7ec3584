package http

import (
	"encoding/json"

	"github.com/vovakirdan/wirechat-relay/internal/core"
	"github.com/vovakirdan/wirechat-relay/internal/proto"
	"github.com/vovakirdan/wirechat-relay/internal/store"
)

const errCodeInvalidMessage = "invalid_message"

func inboundToRequest(inbound proto.Inbound) (*core.SendRequest, *proto.Error) {
	if inbound.Type != proto.InboundTypeMessage {
		return nil, &proto.Error{Code: errCodeInvalidMessage, Msg: "unknown message type"}
	}

	var data proto.SendData
	if err := json.Unmarshal(inbound.Data, &data); err != nil {
		return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "malformed message data"}
	}

	return &core.SendRequest{
		Type:        store.AddressingType(data.Type),
		Target:      data.Target,
		Content:     data.Message,
		ContentType: store.ContentType(data.MessageType),
		ReferenceID: data.ReferenceID,
	}, nil
}

func messageToProto(m *store.Message) proto.Message {
	return proto.Message{
		ID:          m.ID,
		FromUser:    m.FromUserID,
		FromName:    m.FromName,
		Type:        string(m.Type),
		Target:      m.Target,
		MessageType: string(m.ContentType),
		Message:     m.Content,
		ReferenceID: m.ReferenceID,
		CreatedAt:   m.CreatedAt.UnixMilli(),
	}
}

func ackOutbound(requestID string, m *store.Message) proto.Outbound {
	return proto.Outbound{
		Type: proto.OutboundTypeAck,
		ID:   requestID,
		Data: proto.Ack{
			CreatedAt: m.CreatedAt.UnixMilli(),
			Message:   messageToProto(m),
		},
	}
}

func errorOutbound(requestID string, protoErr *proto.Error) proto.Outbound {
	return proto.Outbound{
		Type:  proto.OutboundTypeError,
		ID:    requestID,
		Error: protoErr,
	}
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventMessage:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventNameMessage,
			Data:  messageToProto(event.Message),
		}
	case core.EventPresence:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventNameUserStatus,
			Data: proto.UserStatus{
				UserID: event.UserID,
				Online: event.Online,
			},
		}
	default:
		return proto.Outbound{Type: proto.OutboundTypeEvent}
	}
}
