// Package history decodes, groups and presents the flat purchase history
// returned by inventory/history.
package history

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"inventoritoko/internal/models"

	jsoniter "github.com/json-iterator/go"
)

// Decode faults. A DecodeError wraps exactly one of these.
var (
	ErrNotArray     = errors.New("history document is not a JSON array")
	ErrMissingField = errors.New("required field missing")
	ErrTypeMismatch = errors.New("unexpected JSON type")
	ErrMalformed    = errors.New("malformed JSON")
	ErrTrailingData = errors.New("unexpected data after history array")
)

// DecodeError reports where decoding stopped. Index is the zero-based position
// of the offending row, or -1 when the fault is outside any row.
type DecodeError struct {
	Index int
	Field string
	Err   error
}

func (e *DecodeError) Error() string {
	switch {
	case e.Index < 0:
		return fmt.Sprintf("decode history: %v", e.Err)
	case e.Field == "":
		return fmt.Sprintf("decode history item %d: %v", e.Index, e.Err)
	default:
		return fmt.Sprintf("decode history item %d field %q: %v", e.Index, e.Field, e.Err)
	}
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Field names of a history row.
const (
	fieldTransactionID         = "transactionId"
	fieldTransactionTotalPrice = "transactionTotalPrice"
	fieldTransactionCreatedAt  = "transactionCreatedAt"
	fieldItemID                = "itemId"
	fieldProductID             = "productId"
	fieldQuantity              = "quantity"
	fieldItemPrice             = "itemPrice"
	fieldProductName           = "productName"
	fieldProductImage          = "productImage"
)

var requiredFields = []string{
	fieldTransactionID, fieldItemID, fieldProductID, fieldQuantity, fieldProductName,
}

var iterConfig = jsoniter.Config{}.Froze()

// DecodeReader buffers r fully and decodes it.
func DecodeReader(r io.Reader) ([]models.PurchaseHistoryItem, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("read history body: %w", err)
	}
	return Decode(buf.Bytes())
}

// Decode reads a JSON array of history rows token by token. Nullable string
// fields may be null or absent; required fields must be present with the
// right type. Any structural fault fails the whole decode and no partial
// result is returned.
func Decode(data []byte) ([]models.PurchaseHistoryItem, error) {
	iter := jsoniter.ParseBytes(iterConfig, data)
	if iter.WhatIsNext() != jsoniter.ArrayValue {
		if iter.Error != nil && iter.Error != io.EOF {
			return nil, &DecodeError{Index: -1, Err: fmt.Errorf("%w: %v", ErrMalformed, iter.Error)}
		}
		return nil, &DecodeError{Index: -1, Err: ErrNotArray}
	}

	items := make([]models.PurchaseHistoryItem, 0)
	var fault *DecodeError
	ok := iter.ReadArrayCB(func(iter *jsoniter.Iterator) bool {
		item, derr := decodeItem(iter, len(items))
		if derr != nil {
			fault = derr
			return false
		}
		items = append(items, item)
		return true
	})
	if fault != nil {
		return nil, fault
	}
	if !ok || iter.Error != nil {
		return nil, &DecodeError{Index: len(items), Err: malformed(iter.Error)}
	}
	// Only whitespace may follow the array; anything else leaves Error unset.
	iter.WhatIsNext()
	if iter.Error != io.EOF {
		return nil, &DecodeError{Index: -1, Err: ErrTrailingData}
	}
	return items, nil
}

func malformed(err error) error {
	switch {
	case err == nil:
		return ErrMalformed
	case err == io.EOF:
		return fmt.Errorf("%w: %w", ErrMalformed, io.ErrUnexpectedEOF)
	default:
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
}

func decodeItem(iter *jsoniter.Iterator, index int) (models.PurchaseHistoryItem, *DecodeError) {
	var item models.PurchaseHistoryItem
	if next := iter.WhatIsNext(); next != jsoniter.ObjectValue {
		if next == jsoniter.InvalidValue {
			return item, &DecodeError{Index: index, Err: malformed(iter.Error)}
		}
		return item, &DecodeError{Index: index, Err: fmt.Errorf("%w: row is not an object", ErrTypeMismatch)}
	}

	seen := make(map[string]bool, len(requiredFields))
	var fault *DecodeError
	fail := func(field string, err error) bool {
		fault = &DecodeError{Index: index, Field: field, Err: err}
		return false
	}

	ok := iter.ReadObjectCB(func(iter *jsoniter.Iterator, field string) bool {
		if iter.Error != nil {
			return false
		}
		var err error
		switch field {
		case fieldTransactionID:
			item.TransactionID, err = readInt(iter)
		case fieldItemID:
			item.ItemID, err = readInt(iter)
		case fieldProductID:
			item.ProductID, err = readInt(iter)
		case fieldQuantity:
			item.Quantity, err = readInt(iter)
		case fieldProductName:
			item.ProductName, err = readString(iter)
		case fieldTransactionTotalPrice:
			item.TransactionTotalPrice, err = readNullString(iter)
		case fieldTransactionCreatedAt:
			item.TransactionCreatedAt, err = readNullString(iter)
		case fieldItemPrice:
			item.ItemPrice, err = readNullString(iter)
		case fieldProductImage:
			item.ProductImage, err = readNullString(iter)
		default:
			iter.Skip()
		}
		if err != nil {
			return fail(field, err)
		}
		seen[field] = true
		return iter.Error == nil
	})
	if fault != nil {
		return item, fault
	}
	if !ok || iter.Error != nil {
		return item, &DecodeError{Index: index, Err: malformed(iter.Error)}
	}
	for _, field := range requiredFields {
		if !seen[field] {
			return item, &DecodeError{Index: index, Field: field, Err: ErrMissingField}
		}
	}
	return item, nil
}

func readInt(iter *jsoniter.Iterator) (int, error) {
	if next := iter.WhatIsNext(); next != jsoniter.NumberValue {
		iter.Skip()
		return 0, fmt.Errorf("%w: want number, got %s", ErrTypeMismatch, valueTypeName(next))
	}
	n := iter.ReadNumber()
	if iter.Error != nil {
		return 0, malformed(iter.Error)
	}
	v, err := n.Int64()
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer", ErrTypeMismatch, n.String())
	}
	return int(v), nil
}

func readString(iter *jsoniter.Iterator) (string, error) {
	if next := iter.WhatIsNext(); next != jsoniter.StringValue {
		iter.Skip()
		return "", fmt.Errorf("%w: want string, got %s", ErrTypeMismatch, valueTypeName(next))
	}
	s := iter.ReadString()
	if iter.Error != nil {
		return "", malformed(iter.Error)
	}
	return s, nil
}

func readNullString(iter *jsoniter.Iterator) (models.NullString, error) {
	switch next := iter.WhatIsNext(); next {
	case jsoniter.NilValue:
		iter.ReadNil()
		return models.None(), nil
	case jsoniter.StringValue:
		s, err := readString(iter)
		if err != nil {
			return models.None(), err
		}
		return models.Some(s), nil
	default:
		iter.Skip()
		return models.None(), fmt.Errorf("%w: want string or null, got %s", ErrTypeMismatch, valueTypeName(next))
	}
}

func valueTypeName(t jsoniter.ValueType) string {
	switch t {
	case jsoniter.StringValue:
		return "string"
	case jsoniter.NumberValue:
		return "number"
	case jsoniter.NilValue:
		return "null"
	case jsoniter.BoolValue:
		return "bool"
	case jsoniter.ArrayValue:
		return "array"
	case jsoniter.ObjectValue:
		return "object"
	default:
		return "invalid"
	}
}
