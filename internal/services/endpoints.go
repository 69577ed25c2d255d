package services

import (
	"vastucraft/internal/domain"
	"vastucraft/internal/validation"
)

// ContactEndpoint handles the contact page form. Email or phone already on
// record makes it a duplicate.
func ContactEndpoint() Endpoint {
	return Endpoint{
		Kind:   domain.KindContact,
		Paths:  []string{"/api/contact", "/api/contactApi.js"},
		Schema: validation.ContactSchema,
		Build: func(v validation.Values) domain.Submission {
			return &domain.ContactSubmission{
				Name:    v.String("name"),
				Email:   v.String("email"),
				Phone:   v.Int("phone"),
				Message: v.String("message"),
			}
		},
		Messages: Messages{
			Created:      "New Contact Details Added Successfully",
			Duplicate:    "Data Already Exists",
			InsertFailed: "Error While Inserting Contact Details",
		},
	}
}

// InquiryEndpoint handles the quick-inquiry modal. Every inquiry is stored.
func InquiryEndpoint() Endpoint {
	return Endpoint{
		Kind:   domain.KindInquiry,
		Paths:  []string{"/api/inquiry", "/api/inquiryApi.js"},
		Schema: validation.InquirySchema,
		Build: func(v validation.Values) domain.Submission {
			return &domain.InquirySubmission{
				Name:    v.String("name"),
				Email:   v.String("email"),
				Phone:   v.String("phone"),
				Message: v.String("message"),
			}
		},
		Messages: Messages{
			Created:      "Inquiry Submitted Successfully",
			InsertFailed: "Error Saving Inquiry",
		},
	}
}

// NewsletterEndpoint handles the footer signup.
func NewsletterEndpoint() Endpoint {
	return Endpoint{
		Kind:   domain.KindNewsletter,
		Paths:  []string{"/api/subscribe", "/api/emailSubscribingApi.js"},
		Schema: validation.NewsletterSchema,
		Build: func(v validation.Values) domain.Submission {
			return &domain.NewsletterSubscription{Email: v.String("email")}
		},
		Messages: Messages{
			Created:      "Subscribed Successfully",
			Duplicate:    "Already Subscribed",
			InsertFailed: "Error While Subscribing",
		},
	}
}

// Endpoints lists every submission form served by the API.
func Endpoints() []Endpoint {
	return []Endpoint{ContactEndpoint(), InquiryEndpoint(), NewsletterEndpoint()}
}
