package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"craftmarket/internal/catalog"
	"craftmarket/internal/middleware"
)

func ListProducts(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /products"
		defer handlePanic(c, route)

		page, limit, err := parsePaginationParams(c.Query("page"), c.Query("limit"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()
		result, err := svc.ListProducts(ctx, page, limit)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func GetProduct(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /products/:id"
		defer handlePanic(c, route)

		id, ok := pathID(c, route, "id")
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()
		product, err := svc.GetProduct(ctx, id)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

func Search(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /search"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()
		result, err := svc.Search(ctx, c.Query("term"))
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func ListSkills(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /skills"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()
		skills, err := svc.ListSkills(ctx)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, skills)
	}
}

func ListSellerPortfolio(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /portfolio/seller/:sellerId"
		defer handlePanic(c, route)

		sellerID, ok := pathID(c, route, "sellerId")
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()
		items, err := svc.ListPortfolio(ctx, sellerID)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, items)
	}
}

func ListOwnProducts(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /seller/products"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()
		products, err := svc.ListSellerProducts(ctx, middleware.UserID(c))
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, products)
	}
}

func CreateProduct(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /seller/products"
		defer handlePanic(c, route)

		var req catalog.ProductInput
		if !bindJSON(c, &req) {
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()
		product, err := svc.CreateProduct(ctx, middleware.UserID(c), req)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusCreated, product)
	}
}

func UpdateProduct(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /seller/products/:id"
		defer handlePanic(c, route)

		id, ok := pathID(c, route, "id")
		if !ok {
			return
		}
		var req catalog.ProductUpdate
		if !bindJSON(c, &req) {
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()
		product, err := svc.UpdateProduct(ctx, middleware.UserID(c), id, req)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

func DeleteProduct(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /seller/products/:id"
		defer handlePanic(c, route)

		id, ok := pathID(c, route, "id")
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()
		if err := svc.DeleteProduct(ctx, middleware.UserID(c), id); err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Product successfully deleted."})
	}
}

func ListOwnPortfolio(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /seller/portfolio"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()
		items, err := svc.ListOwnPortfolio(ctx, middleware.UserID(c))
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, items)
	}
}

func CreatePortfolio(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /seller/portfolio"
		defer handlePanic(c, route)

		var req catalog.PortfolioInput
		if !bindJSON(c, &req) {
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()
		item, err := svc.CreatePortfolio(ctx, middleware.UserID(c), req)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusCreated, item)
	}
}

func UpdatePortfolio(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /seller/portfolio/:id"
		defer handlePanic(c, route)

		id, ok := pathID(c, route, "id")
		if !ok {
			return
		}
		var req catalog.PortfolioInput
		if !bindJSON(c, &req) {
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()
		item, err := svc.UpdatePortfolio(ctx, middleware.UserID(c), id, req)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

func DeletePortfolio(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /seller/portfolio/:id"
		defer handlePanic(c, route)

		id, ok := pathID(c, route, "id")
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()
		if err := svc.DeletePortfolio(ctx, middleware.UserID(c), id); err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

func ToggleFeatured(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /seller/portfolio/:id/featured"
		defer handlePanic(c, route)

		id, ok := pathID(c, route, "id")
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()
		item, err := svc.ToggleFeatured(ctx, middleware.UserID(c), id)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, item)
	}
}
