package esewa

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Callback field names as delivered by the gateway.
const (
	fieldTransactionUUID  = "transaction_uuid"
	fieldTransactionCode  = "transaction_code"
	fieldRefID            = "ref_id"
	fieldStatus           = "status"
	fieldTotalAmount      = "total_amount"
	fieldProductCode      = "product_code"
	fieldSignedFieldNames = "signed_field_names"
	fieldSignature        = "signature"
	fieldData             = "data"
)

// CallbackData is one flat, normalized view of a gateway callback, whatever
// transport shape it arrived in.
type CallbackData struct {
	TransactionUUID  string
	TransactionCode  string
	RefID            string
	Status           string
	TotalAmountRaw   string
	TotalAmount      float64
	ProductCode      string
	SignedFieldNames string
	Signature        string

	// Fields holds every decoded key/value pair; signature verification
	// pulls values from here, not from local state.
	Fields map[string]string
}

// HasAmount reports whether the payload carried a parseable total_amount.
func (d *CallbackData) HasAmount() bool {
	return d.TotalAmountRaw != ""
}

// DecodeCallback normalizes a callback request into CallbackData. The gateway
// may deliver fields via query string, form body, or a single base64 "data"
// field whose decoded bytes are either JSON or a URL-encoded query; all forms
// land in the same flat map.
func DecodeCallback(r *http.Request) (*CallbackData, error) {
	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("parse callback form: %w", err)
	}

	fields := make(map[string]string, len(r.Form))
	for key := range r.Form {
		fields[key] = r.Form.Get(key)
	}

	if encoded, ok := fields[fieldData]; ok && encoded != "" {
		decoded, err := decodeDataField(encoded)
		if err != nil {
			return nil, err
		}
		delete(fields, fieldData)
		for k, v := range decoded {
			fields[k] = v
		}
	}

	return fromFields(fields)
}

// DecodeValues normalizes an already-flat set of values (used by tests and
// by replayed payloads).
func DecodeValues(values url.Values) (*CallbackData, error) {
	fields := make(map[string]string, len(values))
	for key := range values {
		fields[key] = values.Get(key)
	}
	return fromFields(fields)
}

func fromFields(fields map[string]string) (*CallbackData, error) {
	d := &CallbackData{
		TransactionUUID:  fields[fieldTransactionUUID],
		TransactionCode:  fields[fieldTransactionCode],
		RefID:            fields[fieldRefID],
		Status:           strings.ToUpper(strings.TrimSpace(fields[fieldStatus])),
		TotalAmountRaw:   fields[fieldTotalAmount],
		ProductCode:      fields[fieldProductCode],
		SignedFieldNames: fields[fieldSignedFieldNames],
		Signature:        fields[fieldSignature],
		Fields:           fields,
	}

	if d.TotalAmountRaw != "" {
		amount, err := ParseAmount(d.TotalAmountRaw)
		if err != nil {
			return nil, fmt.Errorf("parse total_amount %q: %w", d.TotalAmountRaw, err)
		}
		d.TotalAmount = amount
	}

	return d, nil
}

func decodeDataField(encoded string) (map[string]string, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		// The gateway has been observed using URL-safe alphabets too.
		raw, err = base64.URLEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("decode base64 data field: %w", err)
		}
	}

	// JSON object first, URL-encoded query as fallback.
	var asJSON map[string]any
	if err := json.Unmarshal(raw, &asJSON); err == nil {
		fields := make(map[string]string, len(asJSON))
		for k, v := range asJSON {
			fields[k] = stringify(v)
		}
		return fields, nil
	}

	values, err := url.ParseQuery(string(raw))
	if err != nil {
		return nil, fmt.Errorf("decoded data field is neither JSON nor a query string: %w", err)
	}
	fields := make(map[string]string, len(values))
	for key := range values {
		fields[key] = values.Get(key)
	}
	return fields, nil
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return ""
	default:
		b, _ := json.Marshal(t)
		return string(b)
	}
}

// ParseAmount parses a gateway amount string. The gateway groups thousands
// with commas ("1,000.0"), so those are stripped first.
func ParseAmount(raw string) (float64, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	return strconv.ParseFloat(cleaned, 64)
}

// FormatAmount renders an amount as the fixed 2-decimal string the gateway
// signs over.
func FormatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', 2, 64)
}
