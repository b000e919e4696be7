package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"clinic/internal/domain"
)

// @Summary Правила расписания врача
// @Description Недельные правила приема врача. День недели: 1 - воскресенье, 7 - суббота
// @Tags Расписание
// @Produce json
// @Param id path int true "ID врача"
// @Success 200 {object} successResponseBody{data=[]domain.WeeklyScheduleRule}
// @Failure 400 {object} errorResponseBody "Неверный формат ID"
// @Failure 502 {object} errorResponseBody "Ошибка хранилища"
// @Router /doctors/{id}/schedule-rules [get]
func (h *Handler) getScheduleRules(c *gin.Context) {
	doctorID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	rules, err := h.services.Schedule.ListRules(c.Request.Context(), doctorID)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	successResponse(c, http.StatusOK, rules)
}

// @Summary Правило расписания по ID
// @Tags Расписание
// @Produce json
// @Param id path int true "ID правила"
// @Success 200 {object} successResponseBody{data=domain.WeeklyScheduleRule}
// @Failure 400 {object} errorResponseBody "Неверный формат ID"
// @Failure 404 {object} errorResponseBody "Правило не найдено"
// @Router /schedule-rules/{id} [get]
func (h *Handler) getScheduleRuleByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	rule, err := h.services.Schedule.GetRule(c.Request.Context(), id)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	successResponse(c, http.StatusOK, rule)
}

// @Summary Создать правило расписания
// @Description Часы приема должны быть кратны 30 минутам, начало раньше окончания
// @Tags Расписание
// @Accept json
// @Produce json
// @Param id path int true "ID врача"
// @Param input body domain.CreateScheduleRuleDTO true "День недели и часы приема"
// @Success 201 {object} successResponseBody{data=idResponse}
// @Failure 400 {object} errorResponseBody "Ошибка валидации данных"
// @Failure 401 {object} errorResponseBody "Не авторизован"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Security ApiKeyAuth
// @Router /doctors/{id}/schedule-rules [post]
func (h *Handler) createScheduleRule(c *gin.Context) {
	principal, err := getPrincipal(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	doctorID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req domain.CreateScheduleRuleDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	id, err := h.services.Schedule.CreateRule(c.Request.Context(), principal, doctorID, req)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	createdResponse(c, idResponse{ID: id})
}

// @Summary Обновить правило расписания
// @Tags Расписание
// @Accept json
// @Param id path int true "ID правила"
// @Param input body domain.UpdateScheduleRuleDTO true "Изменяемые поля"
// @Success 204 "Правило обновлено"
// @Failure 400 {object} errorResponseBody "Ошибка валидации данных"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Failure 404 {object} errorResponseBody "Правило не найдено"
// @Security ApiKeyAuth
// @Router /schedule-rules/{id} [put]
func (h *Handler) updateScheduleRule(c *gin.Context) {
	principal, err := getPrincipal(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req domain.UpdateScheduleRuleDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequestResponse(c, "неверный формат данных")
		return
	}

	if err := h.services.Schedule.UpdateRule(c.Request.Context(), principal, id, req); err != nil {
		serviceErrorResponse(c, err)
		return
	}

	noContentResponse(c)
}

// @Summary Удалить правило расписания
// @Tags Расписание
// @Param id path int true "ID правила"
// @Success 204 "Правило удалено"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Failure 404 {object} errorResponseBody "Правило не найдено"
// @Security ApiKeyAuth
// @Router /schedule-rules/{id} [delete]
func (h *Handler) deleteScheduleRule(c *gin.Context) {
	principal, err := getPrincipal(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.services.Schedule.DeleteRule(c.Request.Context(), principal, id); err != nil {
		serviceErrorResponse(c, err)
		return
	}

	noContentResponse(c)
}

// @Summary Отпуска врача
// @Description Врач видит свои отпуска, сотрудник любые
// @Tags Отпуска
// @Produce json
// @Param id path int true "ID врача"
// @Param from query string false "С даты (YYYY-MM-DD)"
// @Param to query string false "По дату (YYYY-MM-DD)"
// @Param status query string false "Статус" Enums(pending, approved, rejected)
// @Success 200 {object} successResponseBody{data=[]domain.LeavePeriod}
// @Failure 400 {object} errorResponseBody "Неверные параметры"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Security ApiKeyAuth
// @Router /doctors/{id}/leaves [get]
func (h *Handler) getLeaves(c *gin.Context) {
	principal, err := getPrincipal(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	doctorID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if !principal.ManagesDoctor(doctorID) {
		forbiddenResponse(c)
		return
	}

	filter := domain.LeaveFilter{DoctorID: doctorID}

	if raw := c.Query("from"); raw != "" {
		d, err := domain.ParseDate(raw)
		if err != nil {
			badRequestResponse(c, err.Error())
			return
		}
		filter.From = &d
	}

	if raw := c.Query("to"); raw != "" {
		d, err := domain.ParseDate(raw)
		if err != nil {
			badRequestResponse(c, err.Error())
			return
		}
		filter.To = &d
	}

	if raw := c.Query("status"); raw != "" {
		status := domain.LeaveStatus(raw)
		filter.Status = &status
	}

	leaves, err := h.services.Schedule.ListLeaves(c.Request.Context(), filter)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	successResponse(c, http.StatusOK, leaves)
}

// @Summary Оформить отпуск
// @Description Отпуск врача ожидает утверждения, отпуск от сотрудника сразу утвержден. Даты включительно
// @Tags Отпуска
// @Accept json
// @Produce json
// @Param id path int true "ID врача"
// @Param input body domain.CreateLeaveDTO true "Период отпуска"
// @Success 201 {object} successResponseBody{data=idResponse}
// @Failure 400 {object} errorResponseBody "Ошибка валидации данных"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Security ApiKeyAuth
// @Router /doctors/{id}/leaves [post]
func (h *Handler) createLeave(c *gin.Context) {
	principal, err := getPrincipal(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	doctorID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req domain.CreateLeaveDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequestResponse(c, "неверный формат данных")
		return
	}

	id, err := h.services.Schedule.CreateLeave(c.Request.Context(), principal, doctorID, req)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	createdResponse(c, idResponse{ID: id})
}

// @Summary Утвердить или отклонить отпуск
// @Tags Отпуска
// @Accept json
// @Param id path int true "ID отпуска"
// @Param input body domain.UpdateLeaveStatusDTO true "Новый статус"
// @Success 204 "Статус изменен"
// @Failure 400 {object} errorResponseBody "Неверные данные"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Failure 404 {object} errorResponseBody "Отпуск не найден"
// @Security ApiKeyAuth
// @Router /leaves/{id}/status [patch]
func (h *Handler) updateLeaveStatus(c *gin.Context) {
	principal, err := getPrincipal(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req domain.UpdateLeaveStatusDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequestResponse(c, "неверный формат данных")
		return
	}

	if err := h.services.Schedule.UpdateLeaveStatus(c.Request.Context(), principal, id, req.Status); err != nil {
		serviceErrorResponse(c, err)
		return
	}

	noContentResponse(c)
}
