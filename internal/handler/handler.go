package handler

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/segyhp/payment-reminder/internal/domain"
	customError "github.com/segyhp/payment-reminder/pkg/errors"
	"github.com/segyhp/payment-reminder/pkg/response"
)

type DispatchService interface {
	RunDispatch(ctx context.Context, forceRun bool, batchLimit *int) (*domain.RunReport, error)
	Status(ctx context.Context) (*domain.DispatchStatus, error)
}

type PaymentService interface {
	ConfirmPayment(ctx context.Context, reminderID, token string) (*domain.PaymentResponse, error)
	MarkPaid(ctx context.Context, request *domain.MarkPaidRequest) (*domain.PaymentResponse, error)
	Complete(ctx context.Context, reminderID string) (*domain.CompleteResponse, error)
}

type ReminderService interface {
	Upcoming(ctx context.Context, ownerID string, days int) ([]*domain.ReminderView, error)
	History(ctx context.Context, ownerID string, limit, offset int) ([]*domain.Reminder, error)
	Recurring(ctx context.Context, ownerID string) ([]*domain.RecurringView, error)
}

// NewValidator returns a validator that understands decimal amounts.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return v
}

// decodeJSON reads an optional JSON body into dst. An empty body leaves dst
// untouched.
func decodeJSON(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// writeError answers with the status mapped from err. Store failures carry
// the underlying message for operators; everything else gets the public
// message only.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error, fallback string) {
	status := customError.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logger.Error(fallback, "error", err)
		response.InternalServerError(w, fallback, err)
		return
	}
	response.Error(w, status, customError.PublicMessage(err, fallback), nil)
}

// APIKeyMiddleware admits requests carrying the configured key either as a
// bearer token or in the X-API-Key header.
func APIKeyMiddleware(apiKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("X-API-Key")
			if key == "" {
				key = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			}

			if apiKey == "" || subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) != 1 {
				response.Unauthorized(w, "Unauthorized")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
