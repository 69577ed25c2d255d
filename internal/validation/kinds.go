package validation

// The phone rules differ on purpose: the contact page sends a number,
// the inquiry modal sends free text of at least 10 characters.
var (
	ContactSchema = Schema{Fields: []Field{
		{Name: "name", Type: Text, Required: true},
		{Name: "email", Type: Text, Required: true, Email: true, Lowercase: true},
		{Name: "phone", Type: Integer, Required: true},
		{Name: "message", Type: Text},
	}}

	InquirySchema = Schema{Fields: []Field{
		{Name: "name", Type: Text, Required: true},
		{Name: "email", Type: Text, Required: true, Email: true, Lowercase: true},
		{Name: "phone", Type: Text, Required: true, MinLength: 10},
		{Name: "message", Type: Text},
	}}

	NewsletterSchema = Schema{Fields: []Field{
		{Name: "email", Type: Text, Required: true, Email: true, Lowercase: true},
	}}
)
