package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"clinic/internal/domain"
)

var errStoreDown = errors.New("connection refused")

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time           { return c.now }
func (c fixedClock) Location() *time.Location { return c.now.Location() }

func clockAt(value string) fixedClock {
	t, err := time.ParseInLocation("2006-01-02 15:04", value, time.UTC)
	if err != nil {
		panic(err)
	}
	return fixedClock{now: t}
}

func mustDate(value string) time.Time {
	d, err := domain.ParseDate(value)
	if err != nil {
		panic(err)
	}
	return d
}

func mustClock(value string) domain.ClockTime {
	c, err := domain.ParseClockTime(value)
	if err != nil {
		panic(err)
	}
	return c
}

type memoryRules struct {
	mu     sync.Mutex
	nextID int64
	rules  map[int64]domain.WeeklyScheduleRule
	err    error
}

func newMemoryRules() *memoryRules {
	return &memoryRules{rules: make(map[int64]domain.WeeklyScheduleRule)}
}

func (m *memoryRules) add(doctorID int64, weekday int, start, end string) int64 {
	id, _ := m.Create(context.Background(), domain.WeeklyScheduleRule{
		DoctorID:  doctorID,
		DayOfWeek: weekday,
		StartTime: mustClock(start),
		EndTime:   mustClock(end),
		Active:    true,
	})
	return id
}

func (m *memoryRules) Create(_ context.Context, rule domain.WeeklyScheduleRule) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	m.nextID++
	rule.ID = m.nextID
	m.rules[rule.ID] = rule
	return rule.ID, nil
}

func (m *memoryRules) GetByID(_ context.Context, id int64) (*domain.WeeklyScheduleRule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	rule, ok := m.rules[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &rule, nil
}

func (m *memoryRules) Update(_ context.Context, rule domain.WeeklyScheduleRule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rules[rule.ID]; !ok {
		return domain.ErrNotFound
	}
	m.rules[rule.ID] = rule
	return nil
}

func (m *memoryRules) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rules[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.rules, id)
	return nil
}

func (m *memoryRules) ListByDoctor(_ context.Context, doctorID int64, weekday *int) ([]domain.WeeklyScheduleRule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var out []domain.WeeklyScheduleRule
	for _, r := range m.rules {
		if r.DoctorID != doctorID {
			continue
		}
		if weekday != nil && r.DayOfWeek != *weekday {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memoryLeaves struct {
	mu     sync.Mutex
	nextID int64
	leaves map[int64]domain.LeavePeriod
	err    error
}

func newMemoryLeaves() *memoryLeaves {
	return &memoryLeaves{leaves: make(map[int64]domain.LeavePeriod)}
}

func (m *memoryLeaves) add(doctorID int64, start, end string, status domain.LeaveStatus) int64 {
	id, _ := m.Create(context.Background(), domain.LeavePeriod{
		DoctorID:  doctorID,
		StartDate: mustDate(start),
		EndDate:   mustDate(end),
		Status:    status,
	})
	return id
}

func (m *memoryLeaves) Create(_ context.Context, leave domain.LeavePeriod) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	m.nextID++
	leave.ID = m.nextID
	m.leaves[leave.ID] = leave
	return leave.ID, nil
}

func (m *memoryLeaves) GetByID(_ context.Context, id int64) (*domain.LeavePeriod, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	leave, ok := m.leaves[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &leave, nil
}

func (m *memoryLeaves) UpdateStatus(_ context.Context, id int64, status domain.LeaveStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	leave, ok := m.leaves[id]
	if !ok {
		return domain.ErrNotFound
	}
	leave.Status = status
	m.leaves[id] = leave
	return nil
}

func (m *memoryLeaves) List(_ context.Context, filter domain.LeaveFilter) ([]domain.LeavePeriod, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var out []domain.LeavePeriod
	for _, l := range m.leaves {
		if l.DoctorID != filter.DoctorID {
			continue
		}
		if filter.Status != nil && l.Status != *filter.Status {
			continue
		}
		if filter.From != nil && l.EndDate.Before(*filter.From) {
			continue
		}
		if filter.To != nil && l.StartDate.After(*filter.To) {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

// memoryAppointments enforces the same uniqueness the database index does:
// one non-cancelled appointment per doctor, date and time.
type memoryAppointments struct {
	mu           sync.Mutex
	nextID       int64
	appointments map[int64]domain.Appointment
	listErr      error
	insertErr    error
	inserts      int
}

func newMemoryAppointments() *memoryAppointments {
	return &memoryAppointments{appointments: make(map[int64]domain.Appointment)}
}

func (m *memoryAppointments) seed(a domain.Appointment) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	a.ID = m.nextID
	if a.DurationMinutes == 0 {
		a.DurationMinutes = domain.SlotMinutes
	}
	m.appointments[a.ID] = a
	return a.ID
}

func (m *memoryAppointments) Insert(_ context.Context, a domain.Appointment) (*domain.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inserts++
	if m.insertErr != nil {
		return nil, m.insertErr
	}
	for _, existing := range m.appointments {
		if existing.Status != domain.AppointmentStatusCancelled &&
			existing.DoctorID == a.DoctorID &&
			existing.Date.Equal(a.Date) &&
			existing.Time == a.Time {
			return nil, domain.ErrSlotConflict
		}
	}
	m.nextID++
	a.ID = m.nextID
	m.appointments[a.ID] = a
	return &a, nil
}

func (m *memoryAppointments) GetByID(_ context.Context, id int64) (*domain.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.appointments[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &a, nil
}

func (m *memoryAppointments) UpdateStatus(_ context.Context, id int64, from, to domain.AppointmentStatus, actor int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.appointments[id]
	if !ok {
		return domain.ErrNotFound
	}
	if a.Status != from {
		return fmt.Errorf("запись %d уже в статусе %s: %w", id, a.Status, domain.ErrInvalidTransition)
	}
	a.Status = to
	if to == domain.AppointmentStatusCancelled {
		a.CancelledBy = &actor
	}
	m.appointments[id] = a
	return nil
}

func (m *memoryAppointments) List(_ context.Context, filter domain.AppointmentFilter) ([]domain.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []domain.Appointment
	for _, a := range m.appointments {
		if matchesFilter(a, filter) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (m *memoryAppointments) CountByFilter(_ context.Context, filter domain.AppointmentFilter) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, a := range m.appointments {
		if matchesFilter(a, filter) {
			count++
		}
	}
	return count, nil
}

func matchesFilter(a domain.Appointment, filter domain.AppointmentFilter) bool {
	if filter.DoctorID != nil && a.DoctorID != *filter.DoctorID {
		return false
	}
	if filter.PatientID != nil && a.PatientID != *filter.PatientID {
		return false
	}
	if filter.StartDate != nil && a.Date.Before(*filter.StartDate) {
		return false
	}
	if filter.EndDate != nil && a.Date.After(*filter.EndDate) {
		return false
	}
	if len(filter.Statuses) > 0 {
		found := false
		for _, s := range filter.Statuses {
			if a.Status == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

type uploadedFile struct {
	prefix      string
	filename    string
	contentType string
	data        []byte
}

type memoryFiles struct {
	mu      sync.Mutex
	uploads []uploadedFile
}

func (m *memoryFiles) UploadFile(_ context.Context, data []byte, prefix, filename, contentType string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploads = append(m.uploads, uploadedFile{
		prefix:      prefix,
		filename:    filename,
		contentType: contentType,
		data:        bytes.Clone(data),
	})
	return fmt.Sprintf("%s/%d-%s", prefix, len(m.uploads), filename), nil
}

func (m *memoryFiles) GetPresignedURL(_ context.Context, objectName string, expiry time.Duration) (string, error) {
	return fmt.Sprintf("https://files.test/%s?ttl=%d", objectName, int(expiry.Seconds())), nil
}
