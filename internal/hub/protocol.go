package hub

import (
	"bytes"
	"encoding/json"
)

// recordSeparator завершает каждое сообщение JSON-протокола SignalR
const recordSeparator byte = 0x1e

// Типы сообщений хаба
const (
	messageInvocation       = 1
	messageStreamItem       = 2
	messageCompletion       = 3
	messageStreamInvocation = 4
	messageCancelInvocation = 5
	messagePing             = 6
	messageClose            = 7
)

var handshakeRequest = []byte(`{"protocol":"json","version":1}`)

// message - общий вид входящего сообщения хаба
type message struct {
	Type         int               `json:"type"`
	InvocationID string            `json:"invocationId,omitempty"`
	Target       string            `json:"target,omitempty"`
	Arguments    []json.RawMessage `json:"arguments,omitempty"`
	Result       json.RawMessage   `json:"result,omitempty"`
	Error        string            `json:"error,omitempty"`
}

// invocation - исходящий вызов метода на сервере
type invocation struct {
	Type         int    `json:"type"`
	InvocationID string `json:"invocationId,omitempty"`
	Target       string `json:"target"`
	Arguments    []any  `json:"arguments"`
}

type ping struct {
	Type int `json:"type"`
}

type handshakeResponse struct {
	Error string `json:"error,omitempty"`
}

// negotiateResponse - ответ POST /negotiate
type negotiateResponse struct {
	ConnectionID        string `json:"connectionId"`
	ConnectionToken     string `json:"connectionToken"`
	NegotiateVersion    int    `json:"negotiateVersion"`
	URL                 string `json:"url"`
	AccessToken         string `json:"accessToken"`
	Error               string `json:"error"`
	AvailableTransports []struct {
		Transport       string   `json:"transport"`
		TransferFormats []string `json:"transferFormats"`
	} `json:"availableTransports"`
}

// supportsWebSockets - сервер предлагает транспорт WebSockets.
// Пустой список означает, что сервер его не прислал.
func (n negotiateResponse) supportsWebSockets() bool {
	if len(n.AvailableTransports) == 0 {
		return true
	}
	for _, t := range n.AvailableTransports {
		if t.Transport == "WebSockets" {
			return true
		}
	}
	return false
}

// token - идентификатор соединения для параметра id
func (n negotiateResponse) token() string {
	if n.NegotiateVersion >= 1 && n.ConnectionToken != "" {
		return n.ConnectionToken
	}
	return n.ConnectionID
}

// splitRecords режет кадр на сообщения по разделителю
func splitRecords(frame []byte) [][]byte {
	parts := bytes.Split(frame, []byte{recordSeparator})
	out := make([][]byte, 0, len(parts))
	for _, p := range parts {
		if len(bytes.TrimSpace(p)) == 0 {
			continue
		}
		out = append(out, p)
	}
	return out
}

// encodeRecord кодирует сообщение и добавляет разделитель
func encodeRecord(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return append(b, recordSeparator), nil
}
