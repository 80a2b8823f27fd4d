package api

import (
	"net/http"
	"strings"

	"stopbonus/internal/entity/dto"

	"github.com/gin-gonic/gin"
)

func (h *HTTPHandler) ListWeapons(c *gin.Context) {
	accountID, ok := parseID(c, "account")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	weapons, err := h.svc.ListWeapons(ctx, accountID, strings.TrimSpace(c.Query("q")))
	if err != nil {
		respondError(c, err, "list weapons")
		return
	}
	if weapons == nil {
		weapons = []dto.WeaponView{}
	}

	c.JSON(http.StatusOK, dto.WeaponListResponse{Weapons: weapons})
}

func (h *HTTPHandler) CreateWeapon(c *gin.Context) {
	accountID, ok := parseID(c, "account")
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

	weapon, err := h.svc.CreateWeapon(ctx, accountID, req.Name)
	if err != nil {
		respondError(c, err, "create weapon")
		return
	}

	c.JSON(http.StatusCreated, dto.WeaponDetailResponse{Weapon: weapon})
}

func (h *HTTPHandler) UpdateWeapon(c *gin.Context) {
	id, ok := parseID(c, "weapon")
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

	weapon, err := h.svc.RenameWeapon(ctx, id, req.Name)
	if err != nil {
		respondError(c, err, "update weapon")
		return
	}

	c.JSON(http.StatusOK, dto.WeaponDetailResponse{Weapon: weapon})
}

// DeleteWeapon 删除武器；引用它的记录保留，只移除关联。
func (h *HTTPHandler) DeleteWeapon(c *gin.Context) {
	id, ok := parseID(c, "weapon")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.svc.DeleteWeapon(ctx, id); err != nil {
		respondError(c, err, "delete weapon")
		return
	}

	c.Status(http.StatusNoContent)
}
