package api

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"domain-locker/internal/domain"
	"domain-locker/internal/service"

	"github.com/gin-gonic/gin"
)

type DomainHandler struct {
	Domains    *service.DomainService
	Lookup     service.DomainLookup
	Cloudflare *service.CloudflareService
}

func NewDomainHandler(d *service.DomainService, l service.DomainLookup, cf *service.CloudflareService) *DomainHandler {
	return &DomainHandler{Domains: d, Lookup: l, Cloudflare: cf}
}

// GetDomains godoc
// @Summary List domains (paging, search, tag/registrar filter, sort)
// @Param page query int false "page"
// @Param limit query int false "page size"
// @Param sort query string false "expiry_asc | expiry_desc | name_asc | name_desc | created_desc"
// @Router /api/domains [get]
func (h *DomainHandler) GetDomains(c *gin.Context) {
	page, _ := strconv.ParseInt(c.DefaultQuery("page", "1"), 10, 64)
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "25"), 10, 64)

	filter := domain.ListFilter{
		Page:      page,
		PageSize:  limit,
		Search:    c.Query("search"),
		Tag:       c.Query("tag"),
		Registrar: c.Query("registrar"),
		SortBy:    c.Query("sort"),
	}
	filter.Normalize()

	domains, total, err := h.Domains.List(c.Request.Context(), currentUser(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	if domains == nil {
		domains = []domain.Domain{}
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  domains,
		"total": total,
		"page":  filter.Page,
		"limit": filter.PageSize,
	})
}

func (h *DomainHandler) GetDomain(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	d, err := h.Domains.Get(c.Request.Context(), currentUser(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": d})
}

func (h *DomainHandler) GetDomainByName(c *gin.Context) {
	d, err := h.Domains.GetByName(c.Request.Context(), currentUser(c), c.Param("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": d})
}

func (h *DomainHandler) CreateDomain(c *gin.Context) {
	var req service.CreateDomainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	d, err := h.Domains.Create(c.Request.Context(), currentUser(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": d})
}

func (h *DomainHandler) UpdateDomain(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req service.UpdateDomainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	d, err := h.Domains.Update(c.Request.Context(), currentUser(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": d})
}

func (h *DomainHandler) DeleteDomain(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.Domains.Delete(c.Request.Context(), currentUser(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Domain deleted"})
}

func (h *DomainHandler) GetHistory(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	updates, err := h.Domains.History(c.Request.Context(), currentUser(c), id, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	if updates == nil {
		updates = []domain.DomainUpdate{}
	}
	c.JSON(http.StatusOK, gin.H{"data": updates})
}

// ExportDomains writes every domain of the user as CSV.
// @Router /api/domains/export [get]
func (h *DomainHandler) ExportDomains(c *gin.Context) {
	domains, err := h.Domains.ListAll(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}

	filename := fmt.Sprintf("domains_%s.csv", time.Now().Format("20060102"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", "attachment; filename="+filename)

	// BOM so Excel opens the file as UTF-8
	_, _ = c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	w := csv.NewWriter(c.Writer)
	_ = w.Write([]string{"Domain", "Registrar", "Expiry Date", "Days Left", "SSL Issuer", "SSL Expiry", "IP Addresses", "Tags", "Notes"})

	now := time.Now()
	for _, d := range domains {
		w.Write(exportRow(d, now))
	}
	w.Flush()
}

func exportRow(d domain.Domain, now time.Time) []string {
	registrar, expiry, daysLeft, issuer, sslExpiry := "", "", "", "", ""
	if d.Registrar != nil {
		registrar = d.Registrar.Name
	}
	if left, known := d.DaysUntilExpiry(now); known {
		expiry = d.ExpiryDate.UTC().Format("2006-01-02")
		daysLeft = strconv.Itoa(left)
	}
	if d.SSL != nil {
		issuer = d.SSL.Issuer
		sslExpiry = d.SSL.ValidTo.UTC().Format("2006-01-02")
	}
	ips := make([]string, len(d.IPAddresses))
	for i, ip := range d.IPAddresses {
		ips[i] = ip.IPAddress
	}
	return []string{
		d.DomainName,
		registrar,
		expiry,
		daysLeft,
		issuer,
		sslExpiry,
		strings.Join(ips, " "),
		strings.Join(d.Tags, ", "),
		d.Notes,
	}
}

// GetDomainInfo runs a live lookup without saving anything.
// @Router /api/domain-info [get]
func (h *DomainHandler) GetDomainInfo(c *gin.Context) {
	name := c.Query("domain")
	if strings.TrimSpace(name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "domain is required"})
		return
	}

	info, err := h.Lookup.Lookup(c.Request.Context(), name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": info})
}

// ImportCloudflare adds every Cloudflare zone not tracked yet.
// @Router /api/domains/import/cloudflare [post]
func (h *DomainHandler) ImportCloudflare(c *gin.Context) {
	var req struct {
		APIToken string `json:"api_token"`
	}
	// Body is optional
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	result, err := h.Cloudflare.ImportZones(c.Request.Context(), currentUser(c), req.APIToken)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Imported %d domain(s)", len(result.Added)),
		"data":    result,
	})
}

func (h *DomainHandler) GetRegistrars(c *gin.Context) {
	registrars, err := h.Domains.Registrars(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	if registrars == nil {
		registrars = []domain.Registrar{}
	}
	c.JSON(http.StatusOK, gin.H{"data": registrars})
}

func (h *DomainHandler) GetStats(c *gin.Context) {
	stats, err := h.Domains.Statistics(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": stats})
}
