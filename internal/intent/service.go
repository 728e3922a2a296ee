package intent

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	dErrors "scp-gateway/pkg/domain-errors"
	"scp-gateway/pkg/requestcontext"
)

const (
	maxIntentTypeLength = 100
	maxStatusLength     = 50
	maxMilestoneLength  = 200
)

// Service appends activities and folds them into intents.
type Service struct {
	store  Store
	logger *slog.Logger
	newID  func() string
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithIDGenerator replaces the uuid generator for intent ids.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// NewService constructs an intent service over the given log.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		logger: slog.Default(),
		newID:  func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create seeds a new intent for the customer.
func (s *Service) Create(ctx context.Context, customerID string, params CreateParams) (*Intent, error) {
	intentType := strings.TrimSpace(params.IntentType)
	if intentType == "" {
		return nil, dErrors.New(dErrors.CodeInvalidParams, "intent_type is required")
	}
	if len(intentType) > maxIntentTypeLength {
		return nil, dErrors.New(dErrors.CodeInvalidParams, "intent_type is too long")
	}
	if err := checkObject(params.Context, "context"); err != nil {
		return nil, err
	}

	status := StatusCreated
	activity := &Activity{
		CustomerID: customerID,
		IntentID:   s.newID(),
		Kind:       KindCreated,
		Status:     &status,
		Payload:    Payload{IntentType: intentType, Context: params.Context},
		CreatedAt:  requestcontext.Now(ctx),
	}
	if err := s.store.Append(ctx, activity); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record intent")
	}

	s.logger.InfoContext(ctx, "intent created",
		"customer_id", customerID,
		"intent_id", activity.IntentID,
		"intent_type", intentType,
		"request_id", requestcontext.RequestID(ctx),
	)
	return &Intent{
		ID:         activity.IntentID,
		IntentType: intentType,
		Context:    params.Context,
		Status:     status,
		Milestones: []Milestone{},
		CreatedAt:  activity.CreatedAt,
		UpdatedAt:  activity.CreatedAt,
	}, nil
}

// Update appends an updated activity to an existing intent.
func (s *Service) Update(ctx context.Context, customerID string, params UpdateParams) (*Intent, error) {
	if params.Status != nil {
		st := strings.TrimSpace(*params.Status)
		if st == "" || len(st) > maxStatusLength {
			return nil, dErrors.New(dErrors.CodeInvalidParams, "status must be 1-50 characters")
		}
		params.Status = &st
	}
	if len(params.Milestone) > maxMilestoneLength {
		return nil, dErrors.New(dErrors.CodeInvalidParams, "milestone is too long")
	}
	if err := checkObject(params.Data, "data"); err != nil {
		return nil, err
	}
	return s.appendUpdate(ctx, customerID, params.IntentID, params.Status, Payload{
		Milestone: params.Milestone,
		Data:      params.Data,
	})
}

// Fulfill marks an intent fulfilled, optionally linking the order that closed it.
func (s *Service) Fulfill(ctx context.Context, customerID string, params FulfillParams) (*Intent, error) {
	status := StatusFulfilled
	return s.appendUpdate(ctx, customerID, params.IntentID, &status, Payload{
		Milestone: StatusFulfilled,
		OrderID:   strings.TrimSpace(params.OrderID),
	})
}

// List folds the customer's log, optionally keeping only intents in status.
func (s *Service) List(ctx context.Context, customerID string, params ListParams) ([]Intent, error) {
	activities, err := s.store.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load intents")
	}
	intents := Fold(activities)

	filter := strings.TrimSpace(params.Status)
	if filter == "" {
		return intents, nil
	}
	out := make([]Intent, 0, len(intents))
	for _, in := range intents {
		if in.Status == filter {
			out = append(out, in)
		}
	}
	return out, nil
}

func (s *Service) appendUpdate(ctx context.Context, customerID, intentID string, status *string, payload Payload) (*Intent, error) {
	intentID = strings.TrimSpace(intentID)
	if intentID == "" {
		return nil, dErrors.New(dErrors.CodeInvalidParams, "intent_id is required")
	}
	exists, err := s.store.Exists(ctx, customerID, intentID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load intent")
	}
	if !exists {
		return nil, dErrors.New(dErrors.CodeNotFound, "intent not found")
	}

	activity := &Activity{
		CustomerID: customerID,
		IntentID:   intentID,
		Kind:       KindUpdated,
		Status:     status,
		Payload:    payload,
		CreatedAt:  requestcontext.Now(ctx),
	}
	if err := s.store.Append(ctx, activity); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record intent update")
	}

	s.logger.InfoContext(ctx, "intent updated",
		"customer_id", customerID,
		"intent_id", intentID,
		"request_id", requestcontext.RequestID(ctx),
	)

	intents, err := s.List(ctx, customerID, ListParams{})
	if err != nil {
		return nil, err
	}
	for i := range intents {
		if intents[i].ID == intentID {
			return &intents[i], nil
		}
	}
	return nil, dErrors.New(dErrors.CodeNotFound, "intent not found")
}

// checkObject accepts an absent value, JSON null, or a JSON object.
func checkObject(raw json.RawMessage, field string) error {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil
	}
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return dErrors.New(dErrors.CodeInvalidParams, field+" must be a JSON object")
	}
	return nil
}
