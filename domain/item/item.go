package item

import "encoding/json"

type Item struct {
	Id   string
	Data map[string]any
}

func New(itemId string, data map[string]any) (*Item, error) {
	if itemId == "" {
		return nil, ErrInvalidId
	}
	if data == nil {
		data = map[string]any{}
	}
	return &Item{Id: itemId, Data: data}, nil
}

// Serialize returns the JSON text of the payload, the form written to blob mirrors.
func (i *Item) Serialize() ([]byte, error) {
	return json.Marshal(i.Data)
}
