package domain

import (
	"time"

	"gorm.io/gorm"
)

// Kind identifies one of the submission forms served by the API.
type Kind string

const (
	KindContact    Kind = "contact"
	KindInquiry    Kind = "inquiry"
	KindNewsletter Kind = "newsletter"
)

// KeyField is one column of a natural key together with the value being looked up.
type KeyField struct {
	Field string
	Value any
}

// Submission is a validated form record ready to be persisted.
type Submission interface {
	Kind() Kind
	// TableName is the table (gorm) or collection (mongo) the record lives in.
	TableName() string
	// Recipient is the submitter's address for the confirmation email.
	Recipient() string
	// NaturalKey lists the fields used for duplicate detection. A stored record
	// matching any one of them is a duplicate. Empty means duplicates are allowed.
	NaturalKey() []KeyField
	// Touch sets the creation timestamps if they are still zero.
	Touch(now time.Time)
}

// Timestamps are set once on creation and never changed afterwards.
type Timestamps struct {
	CreatedAt time.Time `gorm:"not null" json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt" bson:"updatedAt"`
}

func (t *Timestamps) Touch(now time.Time) {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = t.CreatedAt
	}
}

// ContactSubmission represents a contact page submission
type ContactSubmission struct {
	ID      uint   `gorm:"primaryKey" json:"id" bson:"-"`
	Name    string `gorm:"not null" json:"name" bson:"name"`
	Email   string `gorm:"not null;uniqueIndex" json:"email" bson:"email"`
	Phone   int64  `gorm:"not null;index" json:"phone" bson:"phone"`
	Message string `gorm:"type:text" json:"message,omitempty" bson:"message,omitempty"`
	Timestamps `bson:",inline"`
}

func (ContactSubmission) TableName() string { return "contact_submissions" }

func (*ContactSubmission) Kind() Kind { return KindContact }

func (c *ContactSubmission) Recipient() string { return c.Email }

func (c *ContactSubmission) NaturalKey() []KeyField {
	return []KeyField{{Field: "email", Value: c.Email}, {Field: "phone", Value: c.Phone}}
}

// BeforeCreate hook
func (c *ContactSubmission) BeforeCreate(tx *gorm.DB) error {
	c.Touch(tx.NowFunc())
	return nil
}

// InquirySubmission represents a quick inquiry sent from the site-wide modal.
// The same person may inquire any number of times.
type InquirySubmission struct {
	ID      uint   `gorm:"primaryKey" json:"id" bson:"-"`
	Name    string `gorm:"not null" json:"name" bson:"name"`
	Email   string `gorm:"not null;index" json:"email" bson:"email"`
	Phone   string `gorm:"not null" json:"phone" bson:"phone"`
	Message string `gorm:"type:text" json:"message,omitempty" bson:"message,omitempty"`
	Timestamps `bson:",inline"`
}

func (InquirySubmission) TableName() string { return "inquiry_submissions" }

func (*InquirySubmission) Kind() Kind { return KindInquiry }

func (i *InquirySubmission) Recipient() string { return i.Email }

func (*InquirySubmission) NaturalKey() []KeyField { return nil }

// BeforeCreate hook
func (i *InquirySubmission) BeforeCreate(tx *gorm.DB) error {
	i.Touch(tx.NowFunc())
	return nil
}

// NewsletterSubscription represents a footer newsletter signup
type NewsletterSubscription struct {
	ID    uint   `gorm:"primaryKey" json:"id" bson:"-"`
	Email string `gorm:"not null;uniqueIndex" json:"email" bson:"email"`
	Timestamps `bson:",inline"`
}

func (NewsletterSubscription) TableName() string { return "newsletter_subscriptions" }

func (*NewsletterSubscription) Kind() Kind { return KindNewsletter }

func (n *NewsletterSubscription) Recipient() string { return n.Email }

func (n *NewsletterSubscription) NaturalKey() []KeyField {
	return []KeyField{{Field: "email", Value: n.Email}}
}

// BeforeCreate hook
func (n *NewsletterSubscription) BeforeCreate(tx *gorm.DB) error {
	n.Touch(tx.NowFunc())
	return nil
}

// Models lists every persisted record type, for migrations and index setup.
func Models() []Submission {
	return []Submission{&ContactSubmission{}, &InquirySubmission{}, &NewsletterSubscription{}}
}
