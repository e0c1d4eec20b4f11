// ABOUTME: Sum type for remote call results
// ABOUTME: A response is either a structured acknowledgement or an opaque value

package kuma

import "encoding/json"

// Response is the result of one remote call. Mutating calls acknowledge
// with an {ok, msg, ...} object; some query calls return an opaque value.
// Callers pattern-match with Ack before trusting any extra fields.
type Response struct {
	raw json.RawMessage
}

// Ack is a structured acknowledgement. Extra carries any fields beyond
// ok/msg (for example the assigned monitorID on an add call).
type Ack struct {
	OK    bool
	Msg   string
	Extra map[string]json.RawMessage
}

// Ack decodes the response as a structured acknowledgement. It reports
// false when the response is not an object carrying an "ok" field, in
// which case the value should be read through Raw instead.
func (r Response) Ack() (Ack, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(r.raw, &fields); err != nil {
		return Ack{}, false
	}
	okField, present := fields["ok"]
	if !present {
		return Ack{}, false
	}

	var ack Ack
	if err := json.Unmarshal(okField, &ack.OK); err != nil {
		return Ack{}, false
	}
	if msgField, present := fields["msg"]; present {
		_ = json.Unmarshal(msgField, &ack.Msg)
	}
	delete(fields, "ok")
	delete(fields, "msg")
	ack.Extra = fields
	return ack, true
}

// Raw returns the undecoded response value.
func (r Response) Raw() json.RawMessage {
	return r.raw
}

// Int extracts an integer extra field such as an assigned entity id.
func (a Ack) Int(key string) (int64, bool) {
	raw, present := a.Extra[key]
	if !present {
		return 0, false
	}
	var v int64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, false
	}
	return v, true
}

// remoteErr converts a negative acknowledgement into a RemoteError.
func remoteErr(event string, ack Ack) error {
	return &RemoteError{Event: event, Message: ack.Msg}
}
