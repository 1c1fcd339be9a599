package e

import "fmt"

var (
	// 404 Not Found
	ErrProductNotFound = fmt.Errorf("product not found")

	// 409 Conflict
	ErrProductAlreadyExists = fmt.Errorf("product with this name already exists")

	// 400 Bad Request
	ErrStatusBadRequest     = fmt.Errorf("bad request")
	ErrProductNameRequired  = fmt.Errorf("product name is required")
	ErrNegativeQuantity     = fmt.Errorf("quantity must not be negative")
	ErrNegativePrice        = fmt.Errorf("price must not be negative")
	ErrInvalidPrice         = fmt.Errorf("price does not fit storage precision")
	ErrInvalidProductID     = fmt.Errorf("invalid product id")
	ErrInvalidPriceFilter   = fmt.Errorf("invalid price filter")
	ErrUnsupportedMediaType = fmt.Errorf("unsupported media type")

	// 500 Internal Server Error
	ErrInternalServerError = fmt.Errorf("internal server error")

	// Конфигурация
	ErrIncorrectEnvVariable = fmt.Errorf("incorrect environment variable")
)

// Wrap оборачивает ошибку
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}
