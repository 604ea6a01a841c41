package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"contactbook/internal/auth"
	"contactbook/internal/model"
	"contactbook/internal/store"
)

type AuthHandler struct {
	Store       *store.Store
	TokenConfig auth.TokenConfig
	Log         zerolog.Logger
}

type loginBody struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type registerBody struct {
	Name     string `json:"name" binding:"required,min=2"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var body registerBody
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, "Please provide name, email and a password of at least 6 characters")
		return
	}

	hash, err := auth.HashPassword(body.Password)
	if err != nil {
		h.Log.Error().Err(err).Msg("hash password")
		fail(c, http.StatusInternalServerError, "Server error")
		return
	}

	user, err := h.Store.CreateUser(body.Name, body.Email, hash)
	if errors.Is(err, store.ErrEmailTaken) {
		fail(c, http.StatusConflict, "User already exists")
		return
	}
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	h.issue(c, http.StatusCreated, "User registered successfully", user)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var body loginBody
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, "Please provide email and password")
		return
	}

	user, found := h.Store.UserByEmail(body.Email)
	if !found || auth.CheckPassword(user.PasswordHash, body.Password) != nil {
		fail(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	h.issue(c, http.StatusOK, "Login successful", user)
}

func (h *AuthHandler) issue(c *gin.Context, status int, message string, user store.User) {
	token, err := auth.CreateToken(user.ID, user.Email, h.TokenConfig)
	if err != nil {
		h.Log.Error().Err(err).Msg("create token")
		fail(c, http.StatusInternalServerError, "Token creation failed")
		return
	}
	ok(c, status, message, model.AuthData{Token: token, User: user.Public()})
}
