package types

import (
	"encoding/base64"
	"encoding/json"
	"sort"
	"strconv"

	"github.com/pkg/errors"
)

// TransactionBytes carries a client-signed transaction across the JSON
// boundary. Wallet tooling serializes byte buffers in several shapes, so
// decoding accepts all of them and normalizes to one buffer:
//
//	"AQID..."                        base64 string
//	[1, 2, 3]                        number array
//	{"0": 1, "1": 2, "2": 3}         index-keyed object
//	{"type": "Buffer", "data": [..]} node Buffer JSON
//
// Encoding always emits base64.
type TransactionBytes []byte

func (t TransactionBytes) MarshalJSON() ([]byte, error) {
	return json.Marshal(base64.StdEncoding.EncodeToString(t))
}

func (t *TransactionBytes) UnmarshalJSON(data []byte) error {
	if len(data) == 0 {
		return errors.New("empty transaction payload")
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return errors.Wrap(err, "failed to decode transaction string")
		}
		raw, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return errors.Wrap(err, "transaction string is not valid base64")
		}
		*t = raw
		return nil
	case '[':
		raw, err := decodeByteArray(data)
		if err != nil {
			return err
		}
		*t = raw
		return nil
	case '{':
		raw, err := decodeByteObject(data)
		if err != nil {
			return err
		}
		*t = raw
		return nil
	default:
		return errors.New("unsupported transaction encoding")
	}
}

func decodeByteArray(data []byte) ([]byte, error) {
	var nums []int
	if err := json.Unmarshal(data, &nums); err != nil {
		return nil, errors.Wrap(err, "failed to decode transaction byte array")
	}

	raw := make([]byte, len(nums))
	for i, n := range nums {
		if n < 0 || n > 255 {
			return nil, errors.Errorf("transaction byte %d out of range at index %d", n, i)
		}
		raw[i] = byte(n)
	}

	return raw, nil
}

func decodeByteObject(data []byte) ([]byte, error) {
	// node Buffer JSON wraps the byte array
	var buf struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &buf); err == nil && buf.Type == "Buffer" && len(buf.Data) > 0 {
		return decodeByteArray(buf.Data)
	}

	var keyed map[string]int
	if err := json.Unmarshal(data, &keyed); err != nil {
		return nil, errors.Wrap(err, "failed to decode transaction byte object")
	}
	if len(keyed) == 0 {
		return nil, errors.New("transaction byte object is empty")
	}

	indexes := make([]int, 0, len(keyed))
	for k := range keyed {
		i, err := strconv.Atoi(k)
		if err != nil || i < 0 {
			return nil, errors.Errorf("transaction byte object has non-index key %q", k)
		}
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)

	raw := make([]byte, len(indexes))
	for pos, i := range indexes {
		if i != pos {
			return nil, errors.Errorf("transaction byte object is missing index %d", pos)
		}
		n := keyed[strconv.Itoa(i)]
		if n < 0 || n > 255 {
			return nil, errors.Errorf("transaction byte %d out of range at index %d", n, i)
		}
		raw[pos] = byte(n)
	}

	return raw, nil
}
