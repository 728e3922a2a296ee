// Package directory verifies that an email belongs to a known, verified customer.
package directory

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// ErrCustomerNotFound is returned when no customer is registered for an email.
var ErrCustomerNotFound = errors.New("customer not found")

// Customer is the directory's view of an account holder.
type Customer struct {
	ID       string `json:"customer_id"`
	Email    string `json:"email"`
	Name     string `json:"name,omitempty"`
	Verified bool   `json:"verified"`
}

// Directory looks customers up by email. Implementations return
// ErrCustomerNotFound for unknown emails; an unverified customer is returned
// with Verified=false and a nil error.
type Directory interface {
	VerifyCustomer(ctx context.Context, email string) (*Customer, error)
}

// Static is an in-process directory backed by a fixture map.
type Static struct {
	mu        sync.RWMutex
	customers map[string]Customer
}

// NewStatic builds a Static directory. Emails are matched case-insensitively.
func NewStatic(customers ...Customer) *Static {
	s := &Static{customers: make(map[string]Customer, len(customers))}
	for _, c := range customers {
		s.customers[normalizeEmail(c.Email)] = c
	}
	return s
}

// DefaultCustomers are the development fixtures used when no directory URL is configured.
func DefaultCustomers() []Customer {
	return []Customer{
		{ID: "cust_001", Email: "ada@example.com", Name: "Ada Lovelace", Verified: true},
		{ID: "cust_002", Email: "grace@example.com", Name: "Grace Hopper", Verified: true},
		{ID: "cust_003", Email: "pending@example.com", Name: "Pending Person", Verified: false},
	}
}

func (s *Static) VerifyCustomer(_ context.Context, email string) (*Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.customers[normalizeEmail(email)]
	if !ok {
		return nil, ErrCustomerNotFound
	}
	return &c, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
