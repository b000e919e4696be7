package rest

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"clinic/internal/domain"
)

// @Summary Записаться на прием
// @Description Бронирует слот. Пациент записывает себя, сотрудник указывает patient_id. При 409 нужно заново запросить слоты
// @Tags Записи
// @Accept json
// @Produce json
// @Param input body domain.BookAppointmentDTO true "Врач, дата и время"
// @Success 201 {object} successResponseBody{data=domain.Appointment}
// @Failure 400 {object} errorResponseBody "Время вне расписания, прошедшая дата или неверные данные"
// @Failure 401 {object} errorResponseBody "Не авторизован"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Failure 409 {object} errorResponseBody "Слот уже занят"
// @Failure 429 {object} errorResponseBody "Слишком много запросов"
// @Failure 502 {object} errorResponseBody "Ошибка хранилища"
// @Security ApiKeyAuth
// @Router /appointments [post]
func (h *Handler) bookAppointment(c *gin.Context) {
	principal, err := getPrincipal(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	var req domain.BookAppointmentDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	appointment, err := h.services.Appointment.Book(c.Request.Context(), principal, req)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	createdResponse(c, appointment)
}

// @Summary Список записей
// @Description Пациент видит свои записи, врач свои приемы, сотрудник все
// @Tags Записи
// @Produce json
// @Param doctor_id query int false "ID врача"
// @Param patient_id query int false "ID пациента"
// @Param status query string false "Статусы через запятую" example(scheduled,confirmed)
// @Param date_from query string false "С даты (YYYY-MM-DD)"
// @Param date_to query string false "По дату (YYYY-MM-DD)"
// @Param limit query int false "Размер страницы" default(20)
// @Param offset query int false "Смещение" default(0)
// @Success 200 {object} paginatedResponse{data=[]domain.Appointment}
// @Failure 400 {object} errorResponseBody "Неверные параметры"
// @Failure 401 {object} errorResponseBody "Не авторизован"
// @Failure 502 {object} errorResponseBody "Ошибка хранилища"
// @Security ApiKeyAuth
// @Router /appointments [get]
func (h *Handler) getAppointments(c *gin.Context) {
	principal, err := getPrincipal(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	var filter domain.AppointmentFilter

	if raw := c.Query("doctor_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			badRequestResponse(c, "неверный ID врача")
			return
		}
		filter.DoctorID = &id
	}

	if raw := c.Query("patient_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			badRequestResponse(c, "неверный ID пациента")
			return
		}
		filter.PatientID = &id
	}

	if raw := c.Query("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			filter.Statuses = append(filter.Statuses, domain.AppointmentStatus(strings.TrimSpace(s)))
		}
	}

	if raw := c.Query("date_from"); raw != "" {
		d, err := domain.ParseDate(raw)
		if err != nil {
			badRequestResponse(c, err.Error())
			return
		}
		filter.StartDate = &d
	}

	if raw := c.Query("date_to"); raw != "" {
		d, err := domain.ParseDate(raw)
		if err != nil {
			badRequestResponse(c, err.Error())
			return
		}
		filter.EndDate = &d
	}

	filter.Limit, err = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || filter.Limit <= 0 {
		filter.Limit = 20
	}
	filter.Offset, err = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || filter.Offset < 0 {
		filter.Offset = 0
	}

	appointments, total, err := h.services.Appointment.List(c.Request.Context(), principal, filter)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	page := filter.Offset/filter.Limit + 1

	paginatedSuccessResponse(c, appointments, total, page, filter.Limit)
}

// @Summary Получить запись по ID
// @Tags Записи
// @Produce json
// @Param id path int true "ID записи"
// @Success 200 {object} successResponseBody{data=domain.Appointment}
// @Failure 400 {object} errorResponseBody "Неверный формат ID"
// @Failure 401 {object} errorResponseBody "Не авторизован"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Failure 404 {object} errorResponseBody "Запись не найдена"
// @Security ApiKeyAuth
// @Router /appointments/{id} [get]
func (h *Handler) getAppointmentByID(c *gin.Context) {
	principal, err := getPrincipal(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	appointment, err := h.services.Appointment.GetByID(c.Request.Context(), principal, id)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	successResponse(c, http.StatusOK, appointment)
}

// @Summary Отменить запись
// @Description Переводит запись в статус cancelled. Прошедшие и завершенные записи не отменяются
// @Tags Записи
// @Param id path int true "ID записи"
// @Success 204 "Запись отменена"
// @Failure 401 {object} errorResponseBody "Не авторизован"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Failure 404 {object} errorResponseBody "Запись не найдена"
// @Failure 409 {object} errorResponseBody "Прием уже прошел или запись уже закрыта"
// @Security ApiKeyAuth
// @Router /appointments/{id} [delete]
func (h *Handler) cancelAppointment(c *gin.Context) {
	principal, err := getPrincipal(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.services.Appointment.Cancel(c.Request.Context(), principal, id); err != nil {
		serviceErrorResponse(c, err)
		return
	}

	noContentResponse(c)
}

// @Summary Сменить статус записи
// @Description Подтверждение, завершение, неявка или отмена по правилам жизненного цикла
// @Tags Записи
// @Accept json
// @Param id path int true "ID записи"
// @Param input body domain.UpdateAppointmentStatusDTO true "Новый статус"
// @Success 204 "Статус изменен"
// @Failure 400 {object} errorResponseBody "Неверные данные"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Failure 409 {object} errorResponseBody "Недопустимая смена статуса"
// @Security ApiKeyAuth
// @Router /appointments/{id}/status [patch]
func (h *Handler) updateAppointmentStatus(c *gin.Context) {
	principal, err := getPrincipal(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req domain.UpdateAppointmentStatusDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequestResponse(c, "неверный формат данных")
		return
	}

	if err := h.services.Appointment.Transition(c.Request.Context(), principal, id, req.Status); err != nil {
		serviceErrorResponse(c, err)
		return
	}

	noContentResponse(c)
}
