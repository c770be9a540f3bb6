package httpapi

import (
	"net/http"
	"strconv"

	"placement-portal/pkg/logger"

	"github.com/gin-gonic/gin"
)

func (h Handlers) ListUsers(c *gin.Context) {
	users, err := h.Accounts.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h Handlers) GetUser(c *gin.Context) {
	u, err := h.Accounts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// DeleteUser removes the account. Tokens already issued stay valid until they expire,
// but scope resolution for a deleted HR account fails from the next request on.
func (h Handlers) DeleteUser(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id := c.Param("id")
	if err := h.Accounts.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	if h.Audit != nil {
		if err := h.Audit.LogUserDeleted(c.Request.Context(), p.ID, id, c.ClientIP()); err != nil {
			logger.FromGin(c).Warn("audit append failed", "type", "user_deleted", "err", err)
		}
	}
	c.Status(http.StatusNoContent)
}

func (h Handlers) AssignOfficer(c *gin.Context) {
	h.officerAssignment(c, true)
}

func (h Handlers) UnassignOfficer(c *gin.Context) {
	h.officerAssignment(c, false)
}

func (h Handlers) officerAssignment(c *gin.Context, assign bool) {
	p, ok := principal(c)
	if !ok {
		return
	}
	companyID, ok := int64Param(c, "cid")
	if !ok {
		return
	}
	officerID := c.Param("id")
	ctx := c.Request.Context()

	if assign {
		a, err := h.Accounts.AssignOfficer(ctx, officerID, companyID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, a)
	} else {
		if err := h.Accounts.UnassignOfficer(ctx, officerID, companyID); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}

	if h.Audit != nil {
		if err := h.Audit.LogOfficerAssignment(ctx, assign, p.ID, officerID, companyID, c.ClientIP()); err != nil {
			logger.FromGin(c).Warn("audit append failed", "type", "officer_assignment", "err", err)
		}
	}
}

func (h Handlers) AuditEvents(c *gin.Context) {
	if h.Audit == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "audit not configured"})
		return
	}
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			badRequest(c, "limit must be a positive integer")
			return
		}
		limit = n
	}
	events, err := h.Audit.Recent(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}
