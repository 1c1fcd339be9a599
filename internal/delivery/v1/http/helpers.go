package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"reflect"
	"strings"

	"github.com/DRSN-tech/store-service/internal/domain"
	"github.com/DRSN-tech/store-service/pkg/e"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func NewErrorResponse(code int, message string) *ErrorResponse {
	return &ErrorResponse{
		Code:    code,
		Message: message,
	}
}

var validate = newValidator()

// newValidator возвращает валидатор, который называет поля по json-тегам.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return v
}

func ToHTTPResponse(err error) (int, string) {
	var validationErrs validator.ValidationErrors

	switch {
	case errors.As(err, &validationErrs):
		return http.StatusBadRequest, formatValidationErrors(validationErrs)
	case errors.Is(err, e.ErrProductNotFound):
		return http.StatusNotFound, e.ErrProductNotFound.Error()
	case errors.Is(err, e.ErrProductAlreadyExists):
		return http.StatusConflict, e.ErrProductAlreadyExists.Error()
	case errors.Is(err, e.ErrUnsupportedMediaType):
		return http.StatusUnsupportedMediaType, e.ErrUnsupportedMediaType.Error()
	case errors.Is(err, e.ErrInvalidProductID):
		return http.StatusBadRequest, e.ErrInvalidProductID.Error()
	case errors.Is(err, e.ErrInvalidPriceFilter):
		return http.StatusBadRequest, e.ErrInvalidPriceFilter.Error()
	case errors.Is(err, e.ErrProductNameRequired):
		return http.StatusBadRequest, e.ErrProductNameRequired.Error()
	case errors.Is(err, e.ErrNegativeQuantity):
		return http.StatusBadRequest, e.ErrNegativeQuantity.Error()
	case errors.Is(err, e.ErrNegativePrice):
		return http.StatusBadRequest, e.ErrNegativePrice.Error()
	case errors.Is(err, e.ErrInvalidPrice):
		return http.StatusBadRequest, e.ErrInvalidPrice.Error()
	case errors.Is(err, e.ErrStatusBadRequest):
		return http.StatusBadRequest, e.ErrStatusBadRequest.Error()
	default:
		return http.StatusInternalServerError, e.ErrInternalServerError.Error()
	}
}

func WriteError(w http.ResponseWriter, err error) {
	code, msg := ToHTTPResponse(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(NewErrorResponse(code, msg))
}

func WriteSuccess(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// decodeJSONBody читает тело запроса в dst и прогоняет валидацию по тегам `validate`.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) error {
	const maxBodySize = 1 << 20

	if ct := r.Header.Get("Content-Type"); ct != "" {
		mediaType, _, err := mime.ParseMediaType(ct)
		if err != nil || mediaType != "application/json" {
			return e.ErrUnsupportedMediaType
		}
	}

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err := dec.Decode(dst); err != nil {
		return e.Wrap(err.Error(), e.ErrStatusBadRequest)
	}

	return validate.Struct(dst)
}

// parsePriceParam разбирает границу цены из query. Пустое значение означает отсутствие границы.
func parsePriceParam(r *http.Request, key string) (*decimal.Decimal, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}

	d, err := decimal.NewFromString(raw)
	if err != nil || !domain.PriceFitsStorage(d) {
		return nil, e.Wrap(fmt.Sprintf("%s=%q", key, raw), e.ErrInvalidPriceFilter)
	}

	return &d, nil
}

func formatValidationErrors(errs validator.ValidationErrors) string {
	parts := make([]string, 0, len(errs))
	for _, fe := range errs {
		parts = append(parts, fmt.Sprintf("field %s failed on %s", fe.Field(), fe.Tag()))
	}

	return "validation failed: " + strings.Join(parts, "; ")
}
