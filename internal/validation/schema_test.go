package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_Contact(t *testing.T) {
	tests := []struct {
		name       string
		body       map[string]any
		wantFields []string
		want       Values
	}{
		{
			name: "valid with numeric phone",
			body: map[string]any{"name": " A ", "email": "A@X.com", "phone": float64(9999999999)},
			want: Values{"name": "A", "email": "a@x.com", "phone": int64(9999999999)},
		},
		{
			name: "phone as digit string is coerced",
			body: map[string]any{"name": "A", "email": "a@x.com", "phone": "9876543210", "message": "hi"},
			want: Values{"name": "A", "email": "a@x.com", "phone": int64(9876543210), "message": "hi"},
		},
		{
			name: "undeclared fields are dropped",
			body: map[string]any{"name": "A", "email": "a@x.com", "phone": float64(1), "admin": true},
			want: Values{"name": "A", "email": "a@x.com", "phone": int64(1)},
		},
		{
			name:       "every failing field is reported",
			body:       map[string]any{"email": "nope", "phone": "call me"},
			wantFields: []string{"name", "email", "phone"},
		},
		{
			name:       "fractional phone",
			body:       map[string]any{"name": "A", "email": "a@x.com", "phone": 12.5},
			wantFields: []string{"phone"},
		},
		{
			name:       "empty name",
			body:       map[string]any{"name": "   ", "email": "a@x.com", "phone": float64(1)},
			wantFields: []string{"name"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, report := Validate(ContactSchema, tt.body)
			if tt.wantFields != nil {
				require.NotNil(t, report)
				assert.Nil(t, values)
				assert.Len(t, report.Details, len(tt.wantFields))
				for _, f := range tt.wantFields {
					assert.True(t, failed(report, f), "expected error for %s, got %+v", f, report.Details)
				}
				return
			}
			require.Nil(t, report)
			assert.Equal(t, tt.want, values)
		})
	}
}

func TestValidate_ContactPhoneOutsideSafeRange(t *testing.T) {
	for _, phone := range []any{
		float64(1e30),
		float64(1<<53 + 2),
		float64(-1e19),
		"99999999999999999999",
		"9007199254740993",
	} {
		_, report := Validate(ContactSchema, map[string]any{"name": "E", "email": "e@x.com", "phone": phone})
		require.NotNil(t, report, "%v", phone)
		require.Len(t, report.Details, 1)
		assert.Equal(t, FieldError{Field: "phone", Rule: "unsafe", Message: `"phone" must be a safe number`}, report.Details[0])
	}

	values, report := Validate(ContactSchema, map[string]any{"name": "E", "email": "e@x.com", "phone": float64(1<<53 - 1)})
	require.Nil(t, report)
	assert.Equal(t, int64(1<<53-1), values.Int("phone"))
}

func TestValidate_InquiryPhoneIsTextWithMinimum(t *testing.T) {
	_, report := Validate(InquirySchema, map[string]any{"name": "B", "email": "b@x.com", "phone": "12345"})
	require.NotNil(t, report)
	require.Len(t, report.Details, 1)
	assert.Equal(t, FieldError{Field: "phone", Rule: "min", Message: `"phone" length must be at least 10 characters long`}, report.Details[0])

	_, report = Validate(InquirySchema, map[string]any{"name": "B", "email": "b@x.com", "phone": float64(9999999999)})
	require.NotNil(t, report)
	assert.Equal(t, "type", report.Details[0].Rule)

	values, report := Validate(InquirySchema, map[string]any{"name": "B", "email": "b@x.com", "phone": "+91 98765 43210", "message": ""})
	require.Nil(t, report)
	assert.Equal(t, "+91 98765 43210", values.String("phone"))
	assert.NotContains(t, values, "message")
}

func TestValidate_NewsletterEmail(t *testing.T) {
	_, report := Validate(NewsletterSchema, map[string]any{"email": "not-an-email"})
	require.NotNil(t, report)
	assert.True(t, failed(report, "email"))
	assert.Equal(t, `"email" must be a valid email`, report.Error())

	values, report := Validate(NewsletterSchema, map[string]any{"email": "Reader@Studio.Design"})
	require.Nil(t, report)
	assert.Equal(t, "reader@studio.design", values.String("email"))

	_, report = Validate(NewsletterSchema, map[string]any{})
	require.NotNil(t, report)
	assert.Equal(t, "required", report.Details[0].Rule)
}

func failed(r *Report, field string) bool {
	for _, d := range r.Details {
		if d.Field == field {
			return true
		}
	}
	return false
}
