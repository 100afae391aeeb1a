package bookingRepo

import (
	"context"
	"sync"
	"time"

	"tutorhive/models"
)

// MemoryBookingRepo is an in-memory BookingRepository with the same
// conditional-write semantics as the Mongo implementation. It backs the
// service tests and local development without a database.
type MemoryBookingRepo struct {
	mu       sync.Mutex
	bookings map[string]models.Booking
}

// NewMemoryBookingRepo returns an empty in-memory repository.
func NewMemoryBookingRepo() *MemoryBookingRepo {
	return &MemoryBookingRepo{bookings: make(map[string]models.Booking)}
}

func (repo *MemoryBookingRepo) Get(ctx context.Context, id string) (*models.Booking, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	b, ok := repo.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &b, nil
}

func (repo *MemoryBookingRepo) GetByPaymentIntentID(ctx context.Context, intentID string) (*models.Booking, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	for _, b := range repo.bookings {
		if b.PaymentIntentID != "" && b.PaymentIntentID == intentID {
			booking := b
			return &booking, nil
		}
	}
	return nil, ErrNotFound
}

func (repo *MemoryBookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	repo.bookings[booking.ID] = *booking
	return nil
}

func (repo *MemoryBookingRepo) ConditionalUpdate(ctx context.Context, id string, version int64, mutate func(*models.Booking) error) (*models.Booking, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	current, ok := repo.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	if current.Version != version {
		return nil, ErrVersionConflict
	}

	updated := current
	if err := mutate(&updated); err != nil {
		return nil, err
	}
	updated.Version = version + 1
	updated.UpdatedAt = time.Now()

	repo.bookings[id] = updated
	return &updated, nil
}

func (repo *MemoryBookingRepo) ListByStudent(ctx context.Context, studentID string) ([]models.Booking, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	var out []models.Booking
	for _, b := range repo.bookings {
		if b.StudentID == studentID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (repo *MemoryBookingRepo) ListByTeacher(ctx context.Context, teacherID string) ([]models.Booking, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	var out []models.Booking
	for _, b := range repo.bookings {
		if b.TeacherID == teacherID {
			out = append(out, b)
		}
	}
	return out, nil
}
