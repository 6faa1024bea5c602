package channel

import "fmt"

// VendorError is a non-zero errcode in a vendor send response. The code is
// carried as a typed field from the moment the response is parsed.
type VendorError struct {
	Code int
	Msg  string
}

func (e *VendorError) Error() string {
	return fmt.Sprintf("vendor error: errcode=%d, errmsg=%s", e.Code, e.Msg)
}

// TokenError is a failed vendor token exchange: a transport failure
// (Code 0, wrapped cause), a non-zero errcode in the token payload, or a
// 200 response with no token in it.
type TokenError struct {
	Code  int
	Msg   string
	cause error
}

func (e *TokenError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("token exchange failed: %s: %v", e.Msg, e.cause)
	}
	if e.Code != 0 {
		return fmt.Sprintf("token exchange failed: errcode=%d, errmsg=%s", e.Code, e.Msg)
	}
	return "token exchange failed: " + e.Msg
}

func (e *TokenError) Unwrap() error { return e.cause }

// ConfigError is a send that cannot proceed because required configuration
// is absent (no template_id anywhere, for the wechat channel). It carries
// no vendor code, so it normalizes to the generic internal code.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string { return e.Msg }
