package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rahim112008/ovinmanager/internal/service/reporting"
)

// Dashboard returns the herd indicators of the current scope.
func (h *Handler) Dashboard(c *gin.Context) {
	d, err := h.svc.Reporting.Dashboard(c.Request.Context(), current(c).Scope())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// Inventory downloads the animals of the current scope as a workbook.
func (h *Handler) Inventory(c *gin.Context) {
	data, err := h.svc.Reporting.InventoryWorkbook(c.Request.Context(), current(c).Scope())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="inventaire.xlsx"`)
	c.Data(http.StatusOK, reporting.WorkbookContentType, data)
}

func attachment(filename string) string {
	return fmt.Sprintf("attachment; filename=%q", filename)
}
