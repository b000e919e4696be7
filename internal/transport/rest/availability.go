package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"clinic/internal/domain"
)

type availabilityResponse struct {
	DoctorID  int64  `json:"doctor_id"`
	Date      string `json:"date" example:"2025-03-10"`
	Available bool   `json:"available"`
}

type slotsResponse struct {
	DoctorID int64             `json:"doctor_id"`
	Date     string            `json:"date" example:"2025-03-10"`
	Slots    []domain.TimeSlot `json:"slots"`
}

type availableDatesResponse struct {
	DoctorID int64    `json:"doctor_id"`
	Dates    []string `json:"dates" example:"2025-03-10,2025-03-17"`
}

// @Summary Доступность даты
// @Description Проверяет, принимает ли врач в указанную дату: есть активное правило на день недели и нет утвержденного отпуска
// @Tags Расписание
// @Produce json
// @Param id path int true "ID врача"
// @Param date query string true "Дата (YYYY-MM-DD)"
// @Success 200 {object} successResponseBody{data=availabilityResponse}
// @Failure 400 {object} errorResponseBody "Неверные параметры"
// @Failure 502 {object} errorResponseBody "Ошибка хранилища"
// @Router /doctors/{id}/availability [get]
func (h *Handler) getDateAvailability(c *gin.Context) {
	doctorID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	date, err := domain.ParseDate(c.Query("date"))
	if err != nil {
		badRequestResponse(c, err.Error())
		return
	}

	available, err := h.services.Availability.IsDateAvailable(c.Request.Context(), doctorID, date)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	successResponse(c, http.StatusOK, availabilityResponse{
		DoctorID:  doctorID,
		Date:      date.Format(domain.DateLayout),
		Available: available,
	})
}

// @Summary Доступные даты
// @Description Возвращает даты периода, в которые врач принимает (не более 62 дней)
// @Tags Расписание
// @Produce json
// @Param id path int true "ID врача"
// @Param from query string true "Начало периода (YYYY-MM-DD)"
// @Param to query string true "Конец периода (YYYY-MM-DD)"
// @Success 200 {object} successResponseBody{data=availableDatesResponse}
// @Failure 400 {object} errorResponseBody "Неверные параметры"
// @Failure 502 {object} errorResponseBody "Ошибка хранилища"
// @Router /doctors/{id}/available-dates [get]
func (h *Handler) getAvailableDates(c *gin.Context) {
	doctorID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	from, err := domain.ParseDate(c.Query("from"))
	if err != nil {
		badRequestResponse(c, err.Error())
		return
	}
	to, err := domain.ParseDate(c.Query("to"))
	if err != nil {
		badRequestResponse(c, err.Error())
		return
	}

	dates, err := h.services.Availability.AvailableDates(c.Request.Context(), doctorID, from, to)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	formatted := make([]string, len(dates))
	for i, d := range dates {
		formatted[i] = d.Format(domain.DateLayout)
	}

	successResponse(c, http.StatusOK, availableDatesResponse{DoctorID: doctorID, Dates: formatted})
}

// @Summary Слоты на дату
// @Description Сетка 30-минутных слотов врача на дату с признаком доступности. Пустой список, если врач не принимает
// @Tags Расписание
// @Produce json
// @Param id path int true "ID врача"
// @Param date query string true "Дата (YYYY-MM-DD)"
// @Success 200 {object} successResponseBody{data=slotsResponse}
// @Failure 400 {object} errorResponseBody "Неверные параметры"
// @Failure 502 {object} errorResponseBody "Ошибка хранилища"
// @Router /doctors/{id}/slots [get]
func (h *Handler) getSlots(c *gin.Context) {
	doctorID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	date, err := domain.ParseDate(c.Query("date"))
	if err != nil {
		badRequestResponse(c, err.Error())
		return
	}

	slots, err := h.services.Availability.ComputeSlots(c.Request.Context(), doctorID, date)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	successResponse(c, http.StatusOK, slotsResponse{
		DoctorID: doctorID,
		Date:     date.Format(domain.DateLayout),
		Slots:    slots,
	})
}
