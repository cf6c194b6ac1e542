package details

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownEventType = errors.New("unknown event type")
	ErrMissingField     = errors.New("missing required field")
)

// EventData es la variante tipada del payload de un registro vital.
// Cada tipo de evento tiene su propio struct con sus campos y sus
// required-fields propios.
type EventData interface {
	// Validate chequea los campos obligatorios de la variante.
	Validate() error

	// Holder devuelve el/los titular(es) que van impresos en el certificado.
	Holder() string

	// EventDate devuelve la fecha del evento (dob/dod/dom según variante).
	EventDate() string
}

// Decode deserializa el payload según el tipo de evento.
// Recibe el tipo como string para no depender del paquete records.
func Decode(eventType string, raw []byte) (EventData, error) {
	if len(raw) == 0 {
		raw = []byte("{}")
	}

	switch strings.ToUpper(strings.TrimSpace(eventType)) {
	case "BIRTH":
		var d Birth
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, fmt.Errorf("decode birth data: %w", err)
		}
		return &d, nil
	case "DEATH":
		var d Death
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, fmt.Errorf("decode death data: %w", err)
		}
		return &d, nil
	case "MARRIAGE":
		var d Marriage
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, fmt.Errorf("decode marriage data: %w", err)
		}
		return &d, nil
	case "DIVORCE":
		var d Divorce
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, fmt.Errorf("decode divorce data: %w", err)
		}
		return &d, nil
	default:
		return nil, ErrUnknownEventType
	}
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s", ErrMissingField, field)
	}
	return nil
}
