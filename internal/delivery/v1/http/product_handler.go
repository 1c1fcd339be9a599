package http

import (
	"net/http"

	"github.com/DRSN-tech/store-service/internal/usecase"
	"github.com/DRSN-tech/store-service/pkg/e"
	"github.com/DRSN-tech/store-service/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type ProductHandler struct {
	productUsecase usecase.ProductUC
	logger         logger.Logger
}

func NewProductHandler(productUsecase usecase.ProductUC, logger logger.Logger) *ProductHandler {
	return &ProductHandler{productUsecase: productUsecase, logger: logger}
}

// createProduct
//
//	@Summary		Создание товара
//	@Description	Создаёт товар с уникальным именем
//	@Tags			products
//	@Accept			json
//	@Produce		json
//	@Param			product	body		CreateProductRequest	true	"Товар"
//	@Success		201		{object}	ProductResponse
//	@Failure		400		{object}	ErrorResponse	"Ошибка валидации"
//	@Failure		409		{object}	ErrorResponse	"Товар с таким именем уже существует"
//	@Router			/products [post]
func (p *ProductHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		p.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, err)
		return
	}

	product, err := p.productUsecase.Create(r.Context(), req.toUseCase())
	if err != nil {
		p.writeUseCaseError(w, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, newProductResponse(product))
}

// getProduct
//
//	@Summary	Получение товара
//	@Tags		products
//	@Produce	json
//	@Param		id	path		string	true	"ID товара (UUID)"
//	@Success	200	{object}	ProductResponse
//	@Failure	400	{object}	ErrorResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/products/{id} [get]
func (p *ProductHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	product, err := p.productUsecase.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		p.writeUseCaseError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, newProductResponse(product))
}

// queryProducts
//
//	@Summary		Список товаров
//	@Description	Возвращает товары с ценой строго между price_gt и price_lt. Границы необязательны.
//	@Tags			products
//	@Produce		json
//	@Param			price_gt	query		string	false	"Цена строго больше"
//	@Param			price_lt	query		string	false	"Цена строго меньше"
//	@Success		200			{array}		ProductResponse
//	@Failure		400			{object}	ErrorResponse
//	@Router			/products [get]
func (p *ProductHandler) queryProducts(w http.ResponseWriter, r *http.Request) {
	minPrice, err := parsePriceParam(r, "price_gt")
	if err != nil {
		p.logger.Warnf("%d %s", http.StatusBadRequest, err.Error())
		WriteError(w, err)
		return
	}

	maxPrice, err := parsePriceParam(r, "price_lt")
	if err != nil {
		p.logger.Warnf("%d %s", http.StatusBadRequest, err.Error())
		WriteError(w, err)
		return
	}

	products, err := p.productUsecase.Query(r.Context(), usecase.NewQueryProductsReq(minPrice, maxPrice))
	if err != nil {
		p.writeUseCaseError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, newProductsResponse(products))
}

// updateProduct
//
//	@Summary		Частичное обновление товара
//	@Description	Обновляет переданные поля. updated_at выставляется автоматически, если не передан.
//	@Tags			products
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"ID товара (UUID)"
//	@Param			product	body		UpdateProductRequest	true	"Изменяемые поля"
//	@Success		200		{object}	ProductResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Router			/products/{id} [patch]
func (p *ProductHandler) updateProduct(w http.ResponseWriter, r *http.Request) {
	var req UpdateProductRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		p.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, err)
		return
	}

	product, err := p.productUsecase.Update(r.Context(), req.toUseCase(chi.URLParam(r, "id")))
	if err != nil {
		p.writeUseCaseError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, newProductResponse(product))
}

// deleteProduct
//
//	@Summary	Удаление товара
//	@Tags		products
//	@Param		id	path	string	true	"ID товара (UUID)"
//	@Success	204
//	@Failure	400	{object}	ErrorResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/products/{id} [delete]
func (p *ProductHandler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	deleted, err := p.productUsecase.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		p.writeUseCaseError(w, err)
		return
	}

	// Документ исчез между поиском и удалением
	if !deleted {
		WriteError(w, e.ErrProductNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// writeUseCaseError логирует ошибку с уровнем по статусу и пишет ответ.
func (p *ProductHandler) writeUseCaseError(w http.ResponseWriter, err error) {
	code, _ := ToHTTPResponse(err)
	if code >= http.StatusInternalServerError {
		p.logger.Errorf(err, "request failed")
	} else {
		p.logger.Warnf("%d %s", code, err.Error())
	}

	WriteError(w, err)
}
