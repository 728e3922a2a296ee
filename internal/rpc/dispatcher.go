package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"scp-gateway/internal/auth/models"
	"scp-gateway/internal/customerdata"
	"scp-gateway/internal/intent"
	"scp-gateway/internal/platform/metrics"
	dErrors "scp-gateway/pkg/domain-errors"
	"scp-gateway/pkg/requestcontext"
)

// Method names.
const (
	MethodGetOrders      = "scp.get_orders"
	MethodGetLoyalty     = "scp.get_loyalty"
	MethodGetOffers      = "scp.get_offers"
	MethodGetPreferences = "scp.get_preferences"
	MethodCreateIntent   = "scp.create_intent"
	MethodGetIntents     = "scp.get_intents"
	MethodUpdateIntent   = "scp.update_intent"
	MethodFulfillIntent  = "scp.fulfill_intent"
)

const (
	defaultOrderLimit = 10
	maxOrderLimit     = 50
)

// IntentService is the intent log as seen by the dispatcher.
type IntentService interface {
	Create(ctx context.Context, customerID string, params intent.CreateParams) (*intent.Intent, error)
	Update(ctx context.Context, customerID string, params intent.UpdateParams) (*intent.Intent, error)
	Fulfill(ctx context.Context, customerID string, params intent.FulfillParams) (*intent.Intent, error)
	List(ctx context.Context, customerID string, params intent.ListParams) ([]intent.Intent, error)
}

// Grant is the verified caller identity taken from the bearer token.
type Grant struct {
	CustomerID string
	ClientID   string
	Scopes     []string
}

type handlerFunc func(ctx context.Context, grant Grant, params json.RawMessage) (any, error)

type method struct {
	scope  models.Scope
	handle handlerFunc
}

// Dispatcher routes calls through the fixed method table.
type Dispatcher struct {
	data    customerdata.Provider
	intents IntentService
	logger  *slog.Logger
	metrics *metrics.Metrics
	methods map[string]method
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

// NewDispatcher builds the method table over the given collaborators.
func NewDispatcher(data customerdata.Provider, intents IntentService, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		data:    data,
		intents: intents,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.methods = map[string]method{
		MethodGetOrders:      {scope: models.ScopeOrders, handle: d.getOrders},
		MethodGetLoyalty:     {scope: models.ScopeLoyalty, handle: d.getLoyalty},
		MethodGetOffers:      {scope: models.ScopeOffers, handle: d.getOffers},
		MethodGetPreferences: {scope: models.ScopePreferences, handle: d.getPreferences},
		MethodCreateIntent:   {scope: models.ScopeIntentCreate, handle: d.createIntent},
		MethodGetIntents:     {scope: models.ScopeIntentRead, handle: d.getIntents},
		MethodUpdateIntent:   {scope: models.ScopeIntentWrite, handle: d.updateIntent},
		MethodFulfillIntent:  {scope: models.ScopeIntentWrite, handle: d.fulfillIntent},
	}
	return d
}

// Methods returns the method table as method name to required scope.
func (d *Dispatcher) Methods() map[string]string {
	out := make(map[string]string, len(d.methods))
	for name, m := range d.methods {
		out[name] = string(m.scope)
	}
	return out
}

// Dispatch runs one call. It always returns an envelope carrying req.ID.
func (d *Dispatcher) Dispatch(ctx context.Context, grant Grant, req Request) (resp Response) {
	start := time.Now()
	label := req.Method
	if _, ok := d.methods[label]; !ok {
		label = "unknown"
	}

	defer func() {
		if r := recover(); r != nil {
			d.logger.ErrorContext(ctx, "rpc handler panic",
				"method", req.Method,
				"panic", fmt.Sprint(r),
				"request_id", requestcontext.RequestID(ctx),
			)
			resp = failure(req.ID, errorObject(dErrors.New(dErrors.CodeInternal, "handler panic")))
		}
		if d.metrics != nil {
			outcome := "ok"
			if resp.Error != nil {
				outcome = resp.Error.Message
			}
			d.metrics.ObserveRPC(label, outcome, time.Since(start))
		}
	}()

	result, err := d.call(ctx, grant, req)
	if err != nil {
		if dErrors.CodeOf(err) == dErrors.CodeInternal {
			d.logger.ErrorContext(ctx, "rpc call failed",
				"method", req.Method,
				"customer_id", grant.CustomerID,
				"error", err,
				"request_id", requestcontext.RequestID(ctx),
			)
		}
		return failure(req.ID, errorObject(err))
	}
	return success(req.ID, result)
}

func (d *Dispatcher) call(ctx context.Context, grant Grant, req Request) (any, error) {
	if req.JSONRPC != "" && req.JSONRPC != Version {
		return nil, dErrors.New(dErrors.CodeInvalidRequest, "unsupported jsonrpc version")
	}
	m, ok := d.methods[strings.TrimSpace(req.Method)]
	if !ok {
		return nil, dErrors.New(dErrors.CodeMethodNotFound, "unknown method")
	}
	if !slices.Contains(grant.Scopes, string(m.scope)) {
		return nil, dErrors.New(dErrors.CodeForbiddenScope, "missing scope").
			WithData("required_scope", string(m.scope))
	}
	return m.handle(ctx, grant, req.Params)
}

// decodeParams unmarshals params into dst. Absent or null params leave dst zero.
func decodeParams(raw json.RawMessage, dst any) error {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidParams, "params must be an object matching the method")
	}
	return nil
}

type ordersParams struct {
	Limit *int `json:"limit"`
}

func (d *Dispatcher) getOrders(ctx context.Context, grant Grant, raw json.RawMessage) (any, error) {
	var p ordersParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	limit := defaultOrderLimit
	if p.Limit != nil {
		if *p.Limit < 1 || *p.Limit > maxOrderLimit {
			return nil, dErrors.New(dErrors.CodeInvalidParams, fmt.Sprintf("limit must be between 1 and %d", maxOrderLimit))
		}
		limit = *p.Limit
	}
	orders, err := d.data.Orders(ctx, grant.CustomerID, limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load orders")
	}
	if orders == nil {
		orders = []customerdata.Order{}
	}
	return map[string]any{"orders": orders}, nil
}

func (d *Dispatcher) getLoyalty(ctx context.Context, grant Grant, _ json.RawMessage) (any, error) {
	loyalty, err := d.data.Loyalty(ctx, grant.CustomerID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load loyalty")
	}
	return map[string]any{"loyalty": loyalty}, nil
}

func (d *Dispatcher) getOffers(ctx context.Context, grant Grant, _ json.RawMessage) (any, error) {
	offers, err := d.data.Offers(ctx, grant.CustomerID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load offers")
	}
	if offers == nil {
		offers = []customerdata.Offer{}
	}
	return map[string]any{"offers": offers}, nil
}

func (d *Dispatcher) getPreferences(ctx context.Context, grant Grant, _ json.RawMessage) (any, error) {
	prefs, err := d.data.Preferences(ctx, grant.CustomerID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load preferences")
	}
	return map[string]any{"preferences": prefs}, nil
}

func (d *Dispatcher) createIntent(ctx context.Context, grant Grant, raw json.RawMessage) (any, error) {
	var p intent.CreateParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	in, err := d.intents.Create(ctx, grant.CustomerID, p)
	if err != nil {
		return nil, err
	}
	return map[string]any{"intent": in}, nil
}

func (d *Dispatcher) getIntents(ctx context.Context, grant Grant, raw json.RawMessage) (any, error) {
	var p intent.ListParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	intents, err := d.intents.List(ctx, grant.CustomerID, p)
	if err != nil {
		return nil, err
	}
	if intents == nil {
		intents = []intent.Intent{}
	}
	return map[string]any{"intents": intents}, nil
}

func (d *Dispatcher) updateIntent(ctx context.Context, grant Grant, raw json.RawMessage) (any, error) {
	var p intent.UpdateParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	in, err := d.intents.Update(ctx, grant.CustomerID, p)
	if err != nil {
		return nil, err
	}
	return map[string]any{"intent": in}, nil
}

func (d *Dispatcher) fulfillIntent(ctx context.Context, grant Grant, raw json.RawMessage) (any, error) {
	var p intent.FulfillParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	in, err := d.intents.Fulfill(ctx, grant.CustomerID, p)
	if err != nil {
		return nil, err
	}
	return map[string]any{"intent": in}, nil
}
