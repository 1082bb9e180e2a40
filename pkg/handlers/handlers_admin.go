package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/elfworks/santa-api-go/pkg/auth"
)

// Login handles site-admin login
func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	admin, err := h.Store.AdminByUsername(c.Request.Context(), req.Username)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if !auth.CheckPasswordHash(req.Password, admin.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := auth.CreateToken(admin.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"access_token": token, "token_type": "bearer"})
}

// ListGroups returns every group without assignments
func (h *Handler) ListGroups(c *gin.Context) {
	groups, err := h.Store.ListGroups(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not list groups"})
		return
	}

	summaries := make([]gin.H, 0, len(groups))
	for _, g := range groups {
		summaries = append(summaries, gin.H{
			"id":           g.ID,
			"code":         g.Code,
			"name":         g.Name,
			"organizer":    g.OrganizerName,
			"participants": len(g.Participants),
			"created_at":   g.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"groups": summaries})
}

// AdminDeleteGroup removes any group by its internal id
func (h *Handler) AdminDeleteGroup(c *gin.Context) {
	if err := h.Store.DeleteGroup(c.Request.Context(), c.Param("id")); err != nil {
		h.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Group deleted"})
}

// GetStats returns rolling daily usage counters with totals
func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.Store.StatsSince(c.Request.Context(), 30)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch stats"})
		return
	}

	var totalGroups, totalPairings, totalSent, totalSkipped int64
	for _, day := range stats {
		totalGroups += int64(day.GroupsCreated)
		totalPairings += int64(day.PairingsComputed)
		totalSent += int64(day.MailsSent)
		totalSkipped += int64(day.MailsSkipped)
	}

	c.JSON(http.StatusOK, gin.H{
		"history": stats,
		"totals": gin.H{
			"groups_created":    totalGroups,
			"pairings_computed": totalPairings,
			"mails_sent":        totalSent,
			"mails_skipped":     totalSkipped,
		},
	})
}

// AdminInterface serves the admin web interface from embedded files
func (h *Handler) AdminInterface(c *gin.Context) {
	data, err := staticEmbed.ReadFile("static/admin.html")
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "static/admin.html not found in embedded FS"})
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", data)
}

// Index serves the public create-group page
func (h *Handler) Index(c *gin.Context) {
	data, err := staticEmbed.ReadFile("static/index.html")
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "static/index.html not found in embedded FS"})
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", data)
}
