package channel

import "errors"

// Error codes surfaced to callers. Vendor error codes pass through
// unchanged; these cover everything the relay itself decides.
const (
	CodeOK               = 0
	CodeBadRequest       = 40000
	CodeInvalidAPIKey    = 40001
	CodeInvalidSignature = 40002
	CodeTimestampExpired = 40003
	CodeValidation       = 42200
	CodeInternal         = 50000
)

// Result is the unified outcome of one send attempt: either fully success
// (errcode 0, msgid from the vendor) or fully error. MsgID holds a
// json.Number or string as the vendor returned it, so integer ids
// round-trip without precision loss.
type Result struct {
	ErrCode int    `json:"errcode"`
	ErrMsg  string `json:"errmsg"`
	MsgID   any    `json:"msgid"`
}

// OK reports whether the send succeeded.
func (r Result) OK() bool { return r.ErrCode == CodeOK }

// resultFromError converts an adapter-internal error into a structured
// Result. Vendor and token errors carry their numeric code as a typed
// field, so no error-message scraping is needed; anything without a vendor
// code becomes the generic internal code.
func resultFromError(err error) Result {
	var ve *VendorError
	if errors.As(err, &ve) && ve.Code != 0 {
		return Result{ErrCode: ve.Code, ErrMsg: ve.Msg}
	}
	var te *TokenError
	if errors.As(err, &te) && te.Code != 0 {
		return Result{ErrCode: te.Code, ErrMsg: te.Msg}
	}
	return Result{ErrCode: CodeInternal, ErrMsg: err.Error()}
}
