package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"craftmarket/internal/account"
	"craftmarket/internal/middleware"
)

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type AddSkillRequest struct {
	SkillName string `json:"skillName" binding:"required"`
}

func Register(svc *account.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /auth/register"
		defer handlePanic(c, route)

		var req account.RegisterInput
		if !bindJSON(c, &req) {
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()
		user, err := svc.Register(ctx, req)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully", "user": user})
	}
}

func Login(svc *account.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /auth/login"
		defer handlePanic(c, route)

		var req LoginRequest
		if !bindJSON(c, &req) {
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()
		tokens, err := svc.Login(ctx, req.Email, req.Password)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, tokens)
	}
}

func Refresh(svc *account.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /auth/refresh"
		defer handlePanic(c, route)

		var req RefreshRequest
		if !bindJSON(c, &req) {
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()
		tokens, err := svc.Refresh(ctx, req.RefreshToken)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, tokens)
	}
}

func Logout(svc *account.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /auth/logout"
		defer handlePanic(c, route)

		var req RefreshRequest
		if !bindJSON(c, &req) {
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()
		if err := svc.Logout(ctx, req.RefreshToken); err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "logged out"})
	}
}

func Me(svc *account.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /auth/me"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()
		user, err := svc.Me(ctx, middleware.UserID(c))
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

func GetProfile(svc *account.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /profile"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()
		profile, err := svc.GetProfile(ctx, middleware.UserID(c))
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, profile)
	}
}

func UpdateProfile(svc *account.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /profile"
		defer handlePanic(c, route)

		var req account.ProfileUpdate
		if !bindJSON(c, &req) {
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()
		profile, err := svc.UpdateProfile(ctx, middleware.UserID(c), req)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, profile)
	}
}

func AddSkill(svc *account.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /profile/skills"
		defer handlePanic(c, route)

		var req AddSkillRequest
		if !bindJSON(c, &req) {
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()
		skill, err := svc.AddSkill(ctx, middleware.UserID(c), req.SkillName)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusCreated, skill)
	}
}
