package auth

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func testCredentials() *Credentials {
	return NewCredentials([]string{"test_api_key_12345", "test_api_key_67890"}, "test_secret")
}

func TestValidate_APIKeyOnly(t *testing.T) {
	v := NewValidator(testCredentials())

	// Any payload passes when only the key is checked.
	for _, payload := range []string{"", "a=1&b=2", `{"title":"x"}`} {
		if err := v.Validate("test_api_key_12345", nil, payload, ""); err != nil {
			t.Errorf("valid key with payload %q: unexpected error %v", payload, err)
		}
	}

	tests := []struct {
		name   string
		apiKey string
	}{
		{"unknown key", "invalid_key"},
		{"empty key", ""},
		{"near miss", "test_api_key_1234"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.apiKey, nil, "", "")
			if !errors.Is(err, ErrInvalidAPIKey) {
				t.Errorf("expected ErrInvalidAPIKey, got %v", err)
			}
		})
	}
}

func TestValidate_EmptyCredentialSet(t *testing.T) {
	v := NewValidator(NewCredentials(nil, ""))
	if err := v.Validate("anything", nil, "", ""); !errors.Is(err, ErrInvalidAPIKey) {
		t.Errorf("expected ErrInvalidAPIKey with empty credential set, got %v", err)
	}
}

func TestValidate_SignatureRequiresTimestamp(t *testing.T) {
	v := NewValidator(testCredentials())
	err := v.Validate("test_api_key_12345", nil, "payload", "deadbeef")
	if !errors.Is(err, ErrTimestampRequired) {
		t.Fatalf("expected ErrTimestampRequired, got %v", err)
	}
	if !strings.Contains(err.Error(), "timestamp") {
		t.Errorf("error message should mention timestamp, got %q", err.Error())
	}
}

func TestValidate_TimestampWindow(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	v := NewValidator(testCredentials())
	v.now = func() time.Time { return now }

	tests := []struct {
		offset int64
		ok     bool
	}{
		{-301, false},
		{-300, true},
		{-299, true},
		{0, true},
		{299, true},
		{300, true},
		{301, false},
	}
	for _, tt := range tests {
		ts := now.Unix() + tt.offset
		sig := Sign("test_secret", "test_api_key_12345", ts, "payload")
		err := v.Validate("test_api_key_12345", &ts, "payload", sig)
		if tt.ok && err != nil {
			t.Errorf("offset %+d: unexpected error %v", tt.offset, err)
		}
		if !tt.ok && !errors.Is(err, ErrTimestampExpired) {
			t.Errorf("offset %+d: expected ErrTimestampExpired, got %v", tt.offset, err)
		}
	}
}

func TestValidate_SignatureRoundTrip(t *testing.T) {
	v := NewValidator(testCredentials())
	ts := time.Now().Unix()
	payload := "api_key=test_api_key_12345&content=hello&title=hi"

	sig := Sign("test_secret", "test_api_key_12345", ts, payload)
	if len(sig) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(sig))
	}
	if err := v.Validate("test_api_key_12345", &ts, payload, sig); err != nil {
		t.Fatalf("round-trip validation failed: %v", err)
	}
}

func TestValidate_SignatureMismatch(t *testing.T) {
	v := NewValidator(testCredentials())
	ts := time.Now().Unix()
	sig := Sign("test_secret", "test_api_key_12345", ts, "payload")

	// Flip the last character.
	tampered := sig[:63] + string(flipHex(sig[63]))
	err := v.Validate("test_api_key_12345", &ts, "payload", tampered)
	if !errors.Is(err, ErrSignatureMismatch) {
		t.Errorf("tampered signature: expected ErrSignatureMismatch, got %v", err)
	}

	// Wrong payload under a correct signature.
	err = v.Validate("test_api_key_12345", &ts, "other payload", sig)
	if !errors.Is(err, ErrSignatureMismatch) {
		t.Errorf("wrong payload: expected ErrSignatureMismatch, got %v", err)
	}
}

func TestValidate_NoSecretConfigured(t *testing.T) {
	creds := NewCredentials([]string{"k"}, "")
	v := NewValidator(creds)
	ts := time.Now().Unix()
	sig := Sign("", "k", ts, "payload")
	if err := v.Validate("k", &ts, "payload", sig); !errors.Is(err, ErrSignatureMismatch) {
		t.Errorf("signed request without configured secret should fail, got %v", err)
	}
}

func TestVerify_OneCharTamper(t *testing.T) {
	ts := int64(1_700_000_000)
	sig := Sign("s3cr3t", "key", ts, "payload")
	for i := range sig {
		tampered := sig[:i] + string(flipHex(sig[i])) + sig[i+1:]
		if Verify("s3cr3t", "key", ts, "payload", tampered) {
			t.Fatalf("tampered signature at index %d verified", i)
		}
	}
	if !Verify("s3cr3t", "key", ts, "payload", sig) {
		t.Fatal("untampered signature should verify")
	}
}

// flipHex returns a different hex digit.
func flipHex(c byte) byte {
	if c == 'a' {
		return 'b'
	}
	return 'a'
}
