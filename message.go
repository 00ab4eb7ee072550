package libcdp

import (
	"encoding/json"
	"fmt"

	"github.com/bytedance/sonic"
)

// jsonCodec is used for every encode/decode touching the wire or a raw event
// payload. ConfigStd behaves like encoding/json.
var jsonCodec = sonic.ConfigStd

// Message is a single frame of the remote-debugging protocol. Outgoing
// commands carry ID, Method and Params; the endpoint answers with a frame
// echoing the ID and carrying Result or Error; server-pushed notifications
// carry Method and Params but no ID.
type Message struct {
	ID        int64           `json:"id,omitempty"`
	SessionID string          `json:"sessionId,omitempty"`
	Method    string          `json:"method,omitempty"`
	Params    json.RawMessage `json:"params,omitempty"`
	Result    json.RawMessage `json:"result,omitempty"`
	Error     *ResponseError  `json:"error,omitempty"`
}

// IsResponse reports whether the frame answers a previously sent command.
func (m *Message) IsResponse() bool {
	return m.Method == "" && m.ID > 0
}

// IsEvent reports whether the frame is a server-pushed notification.
func (m *Message) IsEvent() bool {
	return m.Method != "" && m.ID == 0
}

func (m *Message) String() string {
	if m.IsResponse() {
		return fmt.Sprintf("Message{id=%d,result=%s,err=%v}", m.ID, m.Result, m.Error)
	}
	return fmt.Sprintf("Message{method=%s,params=%s}", m.Method, m.Params)
}

// ResponseError is the error object of a failed command response.
type ResponseError struct {
	Code    int64  `json:"code"`
	Message string `json:"message"`
	Data    string `json:"data,omitempty"`
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("cdp error %d: %s", e.Code, e.Message)
}

func DecodeMessage(data []byte) (*Message, error) {
	msg := new(Message)
	if err := jsonCodec.Unmarshal(data, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func EncodeMessage(m *Message) ([]byte, error) {
	return jsonCodec.Marshal(m)
}
