package api

import (
	"net/http"

	"stopbonus/internal/entity/dto"

	"github.com/gin-gonic/gin"
)

type nameRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *HTTPHandler) ListAccounts(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	accounts, err := h.svc.ListAccounts(ctx)
	if err != nil {
		respondError(c, err, "list accounts")
		return
	}
	if accounts == nil {
		accounts = []dto.AccountView{}
	}

	c.JSON(http.StatusOK, dto.AccountListResponse{Accounts: accounts})
}

func (h *HTTPHandler) CreateAccount(c *gin.Context) {
	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		MissingField(c, "name")
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	account, err := h.svc.CreateAccount(ctx, req.Name)
	if err != nil {
		respondError(c, err, "create account")
		return
	}

	c.JSON(http.StatusCreated, dto.AccountDetailResponse{Account: account})
}

func (h *HTTPHandler) UpdateAccount(c *gin.Context) {
	id, ok := parseID(c, "account")
	if !ok {
		return
	}

	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		MissingField(c, "name")
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	account, err := h.svc.RenameAccount(ctx, id, req.Name)
	if err != nil {
		respondError(c, err, "update account")
		return
	}

	c.JSON(http.StatusOK, dto.AccountDetailResponse{Account: account})
}

// DeleteAccount 删除账户，同时删除其武器、记录和关联。
func (h *HTTPHandler) DeleteAccount(c *gin.Context) {
	id, ok := parseID(c, "account")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.svc.DeleteAccount(ctx, id); err != nil {
		respondError(c, err, "delete account")
		return
	}

	c.Status(http.StatusNoContent)
}
