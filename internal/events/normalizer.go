package events

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/shenikar/station_dashboard/internal/models"
)

// Имена методов хаба, которые вызывает сервер
const (
	TargetIncidentAdded             = "IncidentAdded"
	TargetIncidentFieldChanged      = "IncidentFieldChanged"
	TargetIncidentRemoved           = "IncidentRemoved"
	TargetIncidentsRemoved          = "IncidentsRemoved"
	TargetIncidentUnitStatusChanged = "IncidentUnitStatusChanged"
	TargetIncidentCommentAdded      = "IncidentCommentAdded"
	TargetUnitStatusChanged         = "UnitStatusChanged"
	TargetUnitFieldChanged          = "UnitFieldChanged"
	TargetReceiveGroupMessage       = "ReceiveGroupMessage"
)

// Targets - все входящие методы, на которые подписывается панель
var Targets = []string{
	TargetIncidentAdded,
	TargetIncidentFieldChanged,
	TargetIncidentRemoved,
	TargetIncidentsRemoved,
	TargetIncidentUnitStatusChanged,
	TargetIncidentCommentAdded,
	TargetUnitStatusChanged,
	TargetUnitFieldChanged,
	TargetReceiveGroupMessage,
}

var (
	ErrUnknownEvent   = errors.New("unknown event")
	ErrMalformedEvent = errors.New("malformed event")

	errMissingIncidentID = errors.New("missing incident id")
)

// Normalize превращает входящее сообщение хаба в каноническое событие.
// Чистая функция: ничего не меняет и не переупорядочивает.
func Normalize(target string, args []json.RawMessage) (Event, error) {
	switch target {
	case TargetIncidentAdded:
		if err := wantArgs(target, args, 1); err != nil {
			return nil, err
		}
		var head struct {
			ID *models.IncidentID `json:"id"`
		}
		if err := decodeObject(args[0], &head); err != nil {
			return nil, malformed(target, err)
		}
		if head.ID == nil {
			return nil, malformed(target, errMissingIncidentID)
		}
		inc := &models.Incident{}
		if err := decodeObject(args[0], inc); err != nil {
			return nil, malformed(target, err)
		}
		return IncidentAdded{Incident: inc}, nil

	case TargetIncidentFieldChanged:
		if err := wantArgs(target, args, 3); err != nil {
			return nil, err
		}
		id, field, err := idAndName(args[0], args[1])
		if err != nil {
			return nil, malformed(target, err)
		}
		return IncidentUpdated{IncidentID: id, Field: field, Value: args[2]}, nil

	case TargetIncidentRemoved:
		if err := wantArgs(target, args, 1); err != nil {
			return nil, err
		}
		var id models.IncidentID
		if err := json.Unmarshal(args[0], &id); err != nil {
			return nil, malformed(target, err)
		}
		return IncidentRemoved{IncidentID: id}, nil

	case TargetIncidentsRemoved:
		if err := wantArgs(target, args, 1); err != nil {
			return nil, err
		}
		var ids []models.IncidentID
		if err := decodeObject(args[0], &ids); err != nil {
			return nil, malformed(target, err)
		}
		return IncidentsRemoved{IncidentIDs: ids}, nil

	case TargetIncidentUnitStatusChanged:
		if err := wantArgs(target, args, 2); err != nil {
			return nil, err
		}
		var id models.IncidentID
		if err := json.Unmarshal(args[0], &id); err != nil {
			return nil, malformed(target, err)
		}
		fields, err := decodeFields(args[1])
		if err != nil {
			return nil, malformed(target, err)
		}
		var radioName string
		if rn, ok := fields["radioName"]; ok {
			if err := json.Unmarshal(rn, &radioName); err != nil {
				return nil, malformed(target, err)
			}
		}
		if radioName == "" {
			return nil, malformed(target, errors.New("unit without radioName"))
		}
		return IncidentUnitUpdated{IncidentID: id, RadioName: radioName, Fields: fields}, nil

	case TargetIncidentCommentAdded:
		if err := wantArgs(target, args, 2); err != nil {
			return nil, err
		}
		var id models.IncidentID
		if err := json.Unmarshal(args[0], &id); err != nil {
			return nil, malformed(target, err)
		}
		comment, err := decodeComment(args[1])
		if err != nil {
			return nil, malformed(target, err)
		}
		return IncidentCommentAdded{IncidentID: id, Comment: comment}, nil

	case TargetUnitStatusChanged:
		if err := wantArgs(target, args, 2); err != nil {
			return nil, err
		}
		var radioName string
		if err := json.Unmarshal(args[0], &radioName); err != nil {
			return nil, malformed(target, err)
		}
		return UnitUpdated{RadioName: radioName, Field: "statusId", Value: args[1]}, nil

	case TargetUnitFieldChanged:
		if err := wantArgs(target, args, 3); err != nil {
			return nil, err
		}
		var radioName, field string
		if err := json.Unmarshal(args[0], &radioName); err != nil {
			return nil, malformed(target, err)
		}
		if err := json.Unmarshal(args[1], &field); err != nil {
			return nil, malformed(target, err)
		}
		return UnitUpdated{RadioName: radioName, Field: LowerFirst(field), Value: args[2]}, nil

	case TargetReceiveGroupMessage:
		if err := wantArgs(target, args, 3); err != nil {
			return nil, err
		}
		var msg GroupMessage
		for i, dst := range []*string{&msg.Group, &msg.User, &msg.Message} {
			if err := json.Unmarshal(args[i], dst); err != nil {
				// Сообщение может быть объектом, храним как есть
				*dst = string(args[i])
			}
		}
		return msg, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUnknownEvent, target)
}

// LowerFirst переводит первую букву в нижний регистр: "IsActive" -> "isActive"
func LowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || unicode.IsLower(r) {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}

func wantArgs(target string, args []json.RawMessage, n int) error {
	if len(args) < n {
		return fmt.Errorf("%w: %s expects %d arguments, got %d", ErrMalformedEvent, target, n, len(args))
	}
	return nil
}

func malformed(target string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrMalformedEvent, target, err)
}

func idAndName(rawID, rawName json.RawMessage) (models.IncidentID, string, error) {
	var id models.IncidentID
	if err := json.Unmarshal(rawID, &id); err != nil {
		return 0, "", err
	}
	var name string
	if err := json.Unmarshal(rawName, &name); err != nil {
		return 0, "", err
	}
	if name == "" {
		return 0, "", errors.New("empty field name")
	}
	return id, LowerFirst(name), nil
}

// decodeObject декодирует объект, в том числе упакованный в JSON-строку,
// как это делали старые версии сервера
func decodeObject(raw json.RawMessage, dst any) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '"' {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return err
		}
		raw = json.RawMessage(inner)
	}
	return json.Unmarshal(raw, dst)
}

// decodeFields разбирает объект в карту полей с именами в lowerCamelCase
func decodeFields(raw json.RawMessage) (map[string]json.RawMessage, error) {
	var wire map[string]json.RawMessage
	if err := decodeObject(raw, &wire); err != nil {
		return nil, err
	}
	fields := make(map[string]json.RawMessage, len(wire))
	for k, v := range wire {
		fields[LowerFirst(k)] = v
	}
	return fields, nil
}

func decodeComment(raw json.RawMessage) (models.Comment, error) {
	var c models.Comment
	if err := decodeObject(raw, &c); err != nil {
		return c, err
	}
	if c.ID == 0 {
		var alt struct {
			ID int64 `json:"id"`
		}
		if err := decodeObject(raw, &alt); err == nil {
			c.ID = alt.ID
		}
	}
	return c, nil
}
