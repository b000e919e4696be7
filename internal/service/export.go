package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"clinic/internal/domain"
	"clinic/internal/repository"
	"clinic/internal/storage"
)

const (
	calendarContentType = "text/calendar; charset=utf-8"
	rosterContentType   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	maxCalendarRangeDays = 366
	rosterSheet          = "Записи"
)

var statusTitles = map[domain.AppointmentStatus]string{
	domain.AppointmentStatusScheduled: "Запланирована",
	domain.AppointmentStatusConfirmed: "Подтверждена",
	domain.AppointmentStatusCompleted: "Завершена",
	domain.AppointmentStatusCancelled: "Отменена",
	domain.AppointmentStatusNoShow:    "Неявка",
}

type ExportServiceImpl struct {
	repo       repository.AppointmentRepository
	files      storage.FileStorage
	clock      Clock
	presignTTL time.Duration
	logger     *zap.Logger
}

func NewExportService(
	repo repository.AppointmentRepository,
	files storage.FileStorage,
	clock Clock,
	presignTTL time.Duration,
	logger *zap.Logger,
) *ExportServiceImpl {
	if presignTTL <= 0 {
		presignTTL = 15 * time.Minute
	}
	return &ExportServiceImpl{
		repo:       repo,
		files:      files,
		clock:      clock,
		presignTTL: presignTTL,
		logger:     logger,
	}
}

// ExportDoctorCalendar publishes the doctor's active appointments in
// [from, to] as an iCalendar file.
func (s *ExportServiceImpl) ExportDoctorCalendar(ctx context.Context, principal domain.AuthenticatedPrincipal, doctorID int64, from, to time.Time) (*domain.ExportResult, error) {
	if !principal.ManagesDoctor(doctorID) {
		return nil, domain.ErrForbidden
	}

	from, to = domain.DateOf(from), domain.DateOf(to)
	if to.Before(from) {
		return nil, fmt.Errorf("дата окончания раньше даты начала: %w", domain.ErrInvalidInput)
	}
	if to.Sub(from) > maxCalendarRangeDays*24*time.Hour {
		return nil, fmt.Errorf("период не может превышать %d дней: %w", maxCalendarRangeDays, domain.ErrInvalidInput)
	}

	appointments, err := s.repo.List(ctx, domain.AppointmentFilter{
		DoctorID:  &doctorID,
		Statuses:  domain.OccupyingStatuses,
		StartDate: &from,
		EndDate:   &to,
	})
	if err != nil {
		s.logger.Error("ошибка получения записей для календаря", zap.Int64("doctor_id", doctorID), zap.Error(err))
		return nil, domain.Upstream(err)
	}

	body := renderCalendar(doctorID, appointments, s.clock.Location(), s.clock.Now())
	filename := fmt.Sprintf("doctor-%d_%s_%s.ics", doctorID, from.Format(domain.DateLayout), to.Format(domain.DateLayout))

	return s.publish(ctx, "calendars", filename, calendarContentType, []byte(body), len(appointments))
}

// ExportDailyRoster writes every appointment of the day, any status, to a
// spreadsheet for the front desk.
func (s *ExportServiceImpl) ExportDailyRoster(ctx context.Context, principal domain.AuthenticatedPrincipal, date time.Time) (*domain.ExportResult, error) {
	if !principal.IsStaff() {
		return nil, domain.ErrForbidden
	}

	date = domain.DateOf(date)

	appointments, err := s.repo.List(ctx, domain.AppointmentFilter{
		StartDate: &date,
		EndDate:   &date,
	})
	if err != nil {
		s.logger.Error("ошибка получения записей для реестра", zap.String("date", date.Format(domain.DateLayout)), zap.Error(err))
		return nil, domain.Upstream(err)
	}

	buf, err := renderRoster(date, appointments)
	if err != nil {
		s.logger.Error("ошибка формирования реестра", zap.Error(err))
		return nil, fmt.Errorf("ошибка формирования реестра: %w", err)
	}

	filename := fmt.Sprintf("roster_%s.xlsx", date.Format(domain.DateLayout))

	return s.publish(ctx, "rosters", filename, rosterContentType, buf.Bytes(), len(appointments))
}

func (s *ExportServiceImpl) publish(ctx context.Context, prefix, filename, contentType string, data []byte, items int) (*domain.ExportResult, error) {
	if s.files == nil {
		return nil, domain.ErrStorageDisabled
	}

	objectName, err := s.files.UploadFile(ctx, data, prefix, filename, contentType)
	if err != nil {
		s.logger.Error("ошибка загрузки выгрузки", zap.String("file", filename), zap.Error(err))
		return nil, domain.Upstream(err)
	}

	link, err := s.files.GetPresignedURL(ctx, objectName, s.presignTTL)
	if err != nil {
		s.logger.Error("ошибка получения ссылки на выгрузку", zap.String("object", objectName), zap.Error(err))
		return nil, domain.Upstream(err)
	}

	s.logger.Info("выгрузка готова", zap.String("object", objectName), zap.Int("items", items))

	return &domain.ExportResult{
		ObjectName:  objectName,
		ContentType: contentType,
		URL:         link,
		ExpiresAt:   s.clock.Now().Add(s.presignTTL),
		Items:       items,
	}, nil
}

func renderCalendar(doctorID int64, appointments []domain.Appointment, loc *time.Location, stamp time.Time) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//clinic//appointments//RU")
	cal.SetXWRCalName(fmt.Sprintf("Приемы врача %d", doctorID))
	cal.SetXWRTimezone(loc.String())

	for _, a := range appointments {
		event := cal.AddEvent(fmt.Sprintf("appointment-%d@clinic", a.ID))
		event.SetDtStampTime(stamp)
		event.SetCreatedTime(a.BookedAt)
		event.SetStartAt(a.StartsAt(loc))
		event.SetEndAt(a.EndsAt(loc))
		event.SetSummary(fmt.Sprintf("Прием пациента %d", a.PatientID))
		event.SetDescription(fmt.Sprintf("Статус: %s, оплата: %s", statusTitles[a.Status], a.PaymentStatus))
		if a.Status == domain.AppointmentStatusConfirmed {
			event.SetStatus(ics.ObjectStatusConfirmed)
		} else {
			event.SetStatus(ics.ObjectStatusTentative)
		}
	}

	return cal.Serialize()
}

func renderRoster(date time.Time, appointments []domain.Appointment) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(rosterSheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(rosterSheet, "A", "A", 10)
	f.SetColWidth(rosterSheet, "B", "D", 14)
	f.SetColWidth(rosterSheet, "E", "F", 16)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	f.SetCellValue(rosterSheet, "A1", fmt.Sprintf("Реестр приемов на %s", date.Format("02.01.2006")))
	f.MergeCell(rosterSheet, "A1", "F1")
	f.SetCellStyle(rosterSheet, "A1", "A1", headerStyle)

	headers := []string{"Время", "Врач", "Пациент", "Записал", "Статус", "Оплата"}
	for i, h := range headers {
		cellName, _ := excelize.CoordinatesToCellName(i+1, 2)
		f.SetCellValue(rosterSheet, cellName, h)
	}
	f.SetCellStyle(rosterSheet, "A2", "F2", headerStyle)

	for i, a := range appointments {
		row := i + 3
		values := []interface{}{a.Time.String(), a.DoctorID, a.PatientID, a.BookedBy, statusTitles[a.Status], string(a.PaymentStatus)}
		for col, v := range values {
			cellName, _ := excelize.CoordinatesToCellName(col+1, row)
			f.SetCellValue(rosterSheet, cellName, v)
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, err
	}

	return buf, nil
}
