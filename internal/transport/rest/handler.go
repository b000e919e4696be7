package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"clinic/config"
	"clinic/internal/service"
	"clinic/internal/transport/websocket"
	"clinic/pkg/validator"
)

type Handler struct {
	services *service.Services
	logger   *zap.Logger
	config   *config.Config
	verifier *TokenVerifier
	feed     *websocket.AppointmentFeed
	limiter  RateLimiter
}

// NewHandler wires the HTTP layer. limiter may be nil to disable booking
// rate limits.
func NewHandler(services *service.Services, logger *zap.Logger, cfg *config.Config, feed *websocket.AppointmentFeed, limiter RateLimiter) *Handler {
	if err := validator.Register(); err != nil {
		logger.Error("не удалось зарегистрировать правила валидации", zap.Error(err))
	}

	return &Handler{
		services: services,
		logger:   logger,
		config:   cfg,
		verifier: NewTokenVerifier(cfg.JWT.SigningKey),
		feed:     feed,
		limiter:  limiter,
	}
}

func (h *Handler) InitRoutes(router *gin.Engine) {
	router.Use(h.requestIDMiddleware())

	router.Use(h.loggerMiddleware())

	router.Use(h.errorMiddleware())

	router.Use(h.corsMiddleware())

	api := router.Group("/api/v1")
	{
		doctors := api.Group("/doctors/:id")
		{
			doctors.GET("/availability", h.getDateAvailability)
			doctors.GET("/available-dates", h.getAvailableDates)
			doctors.GET("/slots", h.getSlots)
			doctors.GET("/schedule-rules", h.getScheduleRules)

			auth := doctors.Group("", h.authMiddleware())
			{
				auth.POST("/schedule-rules", h.createScheduleRule)
				auth.GET("/leaves", h.getLeaves)
				auth.POST("/leaves", h.createLeave)
				auth.POST("/calendar-export", h.exportDoctorCalendar)
			}
		}

		appointments := api.Group("/appointments", h.authMiddleware())
		{
			appointments.POST("", h.rateLimitMiddleware("booking", h.config.Redis.BookingLimit, h.config.Redis.BookingWindow), h.bookAppointment)
			appointments.GET("", h.getAppointments)
			appointments.GET("/:id", h.getAppointmentByID)
			appointments.DELETE("/:id", h.cancelAppointment)
			appointments.PATCH("/:id/status", h.updateAppointmentStatus)
		}

		api.GET("/schedule-rules/:id", h.getScheduleRuleByID)

		rules := api.Group("/schedule-rules", h.authMiddleware())
		{
			rules.PUT("/:id", h.updateScheduleRule)
			rules.DELETE("/:id", h.deleteScheduleRule)
		}

		leaves := api.Group("/leaves", h.authMiddleware(), h.staffMiddleware())
		{
			leaves.PATCH("/:id/status", h.updateLeaveStatus)
		}

		rosters := api.Group("/rosters", h.authMiddleware(), h.staffMiddleware())
		{
			rosters.POST("/:date/export", h.exportDailyRoster)
		}
	}

	router.GET("/ws/appointments", h.authMiddleware(), h.appointmentFeed)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/swagger", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": h.config.Version})
	})
}

// @Summary Поток изменений записей
// @Description WebSocket: события insert/update по записям. Пациент видит свои записи, врач свой календарь, сотрудник любые (doctor_id сужает поток)
// @Tags Записи
// @Param doctor_id query int false "ID врача"
// @Param token query string false "JWT, если нельзя передать заголовок"
// @Success 101 {object} domain.ChangeEvent
// @Failure 401 {object} errorResponseBody "Не авторизован"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Security ApiKeyAuth
// @Router /ws/appointments [get]
func (h *Handler) appointmentFeed(c *gin.Context) {
	principal, err := getPrincipal(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	var doctorID *int64
	if raw := c.Query("doctor_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			badRequestResponse(c, "неверный ID врача")
			return
		}
		doctorID = &id
	}

	filter, err := websocket.FilterFor(principal, doctorID)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	h.feed.Serve(c, filter)
}

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		badRequestResponse(c, "неверный формат ID")
		return 0, false
	}
	return id, true
}
