package domain

import (
	"time"

	"github.com/google/uuid"
)

// NewSubscriber is a subscription request whose name and email have both
// been validated. There is no partially valid NewSubscriber.
type NewSubscriber struct {
	Name  SubscriberName
	Email SubscriberEmail
}

// NewSubscriberFrom builds a NewSubscriber from raw form input. The name is
// checked first and the first failure is returned.
func NewSubscriberFrom(name, email string) (NewSubscriber, error) {
	n, err := ParseSubscriberName(name)
	if err != nil {
		return NewSubscriber{}, err
	}
	e, err := ParseSubscriberEmail(email)
	if err != nil {
		return NewSubscriber{}, err
	}
	return NewSubscriber{Name: n, Email: e}, nil
}

// Subscriber is a persisted subscription record. ID and SubscribedAt are
// assigned by the intake pipeline at write time.
type Subscriber struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	SubscribedAt time.Time `json:"subscribed_at" db:"subscribed_at"`
}
