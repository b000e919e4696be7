package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"clinic/internal/domain"
)

// @Summary Выгрузить календарь врача
// @Description Формирует iCalendar с активными записями врача за период (до 366 дней) и возвращает временную ссылку
// @Tags Выгрузки
// @Accept json
// @Produce json
// @Param id path int true "ID врача"
// @Param input body domain.CalendarExportDTO true "Период"
// @Success 200 {object} successResponseBody{data=domain.ExportResult}
// @Failure 400 {object} errorResponseBody "Неверный период"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Failure 503 {object} errorResponseBody "Файловое хранилище не настроено"
// @Security ApiKeyAuth
// @Router /doctors/{id}/calendar-export [post]
func (h *Handler) exportDoctorCalendar(c *gin.Context) {
	principal, err := getPrincipal(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	doctorID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req domain.CalendarExportDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequestResponse(c, "неверный формат данных")
		return
	}

	from, err := domain.ParseDate(req.From)
	if err != nil {
		badRequestResponse(c, err.Error())
		return
	}
	to, err := domain.ParseDate(req.To)
	if err != nil {
		badRequestResponse(c, err.Error())
		return
	}

	result, err := h.services.Export.ExportDoctorCalendar(c.Request.Context(), principal, doctorID, from, to)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	successResponse(c, http.StatusOK, result)
}

// @Summary Выгрузить реестр записей за день
// @Description Таблица Excel со всеми записями дня для регистратуры
// @Tags Выгрузки
// @Produce json
// @Param date path string true "Дата (YYYY-MM-DD)"
// @Success 200 {object} successResponseBody{data=domain.ExportResult}
// @Failure 400 {object} errorResponseBody "Неверная дата"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Failure 503 {object} errorResponseBody "Файловое хранилище не настроено"
// @Security ApiKeyAuth
// @Router /rosters/{date}/export [post]
func (h *Handler) exportDailyRoster(c *gin.Context) {
	principal, err := getPrincipal(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	date, err := domain.ParseDate(c.Param("date"))
	if err != nil {
		badRequestResponse(c, err.Error())
		return
	}

	result, err := h.services.Export.ExportDailyRoster(c.Request.Context(), principal, date)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	successResponse(c, http.StatusOK, result)
}
