package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"contactbook/internal/middleware"
	"contactbook/internal/model"
	"contactbook/internal/store"
)

type ContactHandler struct {
	Store *store.Store
}

type createContactBody struct {
	Name    string `json:"name" binding:"required"`
	Phone   string `json:"phone" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Address string `json:"address"`
}

type updateContactBody struct {
	Name    *string `json:"name" binding:"omitempty,min=1"`
	Phone   *string `json:"phone" binding:"omitempty,min=1"`
	Email   *string `json:"email" binding:"omitempty,email"`
	Address *string `json:"address"`
}

func (h *ContactHandler) List(c *gin.Context) {
	userID, authed := middleware.UserIDFromContext(c)
	if !authed {
		fail(c, http.StatusUnauthorized, "Token is not valid")
		return
	}
	ok(c, http.StatusOK, "Contacts retrieved successfully", h.Store.ListContacts(userID))
}

func (h *ContactHandler) Get(c *gin.Context) {
	userID, authed := middleware.UserIDFromContext(c)
	if !authed {
		fail(c, http.StatusUnauthorized, "Token is not valid")
		return
	}
	contact, err := h.Store.GetContact(userID, c.Param("id"))
	if err != nil {
		h.storeError(c, err)
		return
	}
	ok(c, http.StatusOK, "Contact retrieved successfully", contact)
}

func (h *ContactHandler) Create(c *gin.Context) {
	userID, authed := middleware.UserIDFromContext(c)
	if !authed {
		fail(c, http.StatusUnauthorized, "Token is not valid")
		return
	}

	var body createContactBody
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, "Please provide name, phone and a valid email")
		return
	}

	contact, err := h.Store.CreateContact(userID, model.CreateContactRequest{
		Name:    body.Name,
		Phone:   body.Phone,
		Email:   body.Email,
		Address: body.Address,
	})
	if err != nil {
		h.storeError(c, err)
		return
	}
	ok(c, http.StatusCreated, "Contact created successfully", contact)
}

func (h *ContactHandler) Update(c *gin.Context) {
	userID, authed := middleware.UserIDFromContext(c)
	if !authed {
		fail(c, http.StatusUnauthorized, "Token is not valid")
		return
	}

	var body updateContactBody
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, "Invalid contact fields")
		return
	}

	contact, err := h.Store.UpdateContact(userID, c.Param("id"), model.UpdateContactRequest{
		Name:    body.Name,
		Phone:   body.Phone,
		Email:   body.Email,
		Address: body.Address,
	})
	if err != nil {
		h.storeError(c, err)
		return
	}
	ok(c, http.StatusOK, "Contact updated successfully", contact)
}

func (h *ContactHandler) Delete(c *gin.Context) {
	userID, authed := middleware.UserIDFromContext(c)
	if !authed {
		fail(c, http.StatusUnauthorized, "Token is not valid")
		return
	}
	if err := h.Store.DeleteContact(userID, c.Param("id")); err != nil {
		h.storeError(c, err)
		return
	}
	ok(c, http.StatusOK, "Contact deleted successfully", nil)
}

func (h *ContactHandler) storeError(c *gin.Context, err error) {
	if errors.Is(err, store.ErrNotFound) {
		fail(c, http.StatusNotFound, "Contact not found")
		return
	}
	fail(c, http.StatusInternalServerError, "Server error")
}
