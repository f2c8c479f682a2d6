package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"meetingRoomBooking/models"
)

// CachedBookingRepository is a read-through cache over a booking store.
// Only the list reads (ListByDate, ListFrom) are cached, with a short
// TTL; every write flushes the whole cache. FindOverlapping and the
// IfFree writes always hit the store directly — conflict status is
// never answered from a cache.
type CachedBookingRepository struct {
	inner BookingRepositoryI
	ttl   time.Duration
	now   func() time.Time

	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	bookings []models.Booking
	storedAt time.Time
}

// NewCachedBookingRepository wraps inner with a list cache. A TTL of
// zero disables caching entirely.
func NewCachedBookingRepository(inner BookingRepositoryI, ttl time.Duration) *CachedBookingRepository {
	return &CachedBookingRepository{
		inner:   inner,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

func (c *CachedBookingRepository) get(key string) ([]models.Booking, bool) {
	if c.ttl <= 0 {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || c.now().Sub(e.storedAt) > c.ttl {
		return nil, false
	}
	out := make([]models.Booking, len(e.bookings))
	copy(out, e.bookings)
	return out, true
}

func (c *CachedBookingRepository) put(key string, bookings []models.Booking) {
	if c.ttl <= 0 {
		return
	}
	stored := make([]models.Booking, len(bookings))
	copy(stored, bookings)
	c.mu.Lock()
	c.entries[key] = cacheEntry{bookings: stored, storedAt: c.now()}
	c.mu.Unlock()
}

// Flush drops every cached list. Called on each write so readers never
// see a slot as free after it has been taken.
func (c *CachedBookingRepository) Flush() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.mu.Unlock()
}

// ListByDate serves from cache when fresh, otherwise reads through.
func (c *CachedBookingRepository) ListByDate(ctx context.Context, date string) ([]models.Booking, error) {
	key := "date|" + date
	if cached, ok := c.get(key); ok {
		return cached, nil
	}
	list, err := c.inner.ListByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	c.put(key, list)
	return list, nil
}

// ListFrom serves from cache when fresh, otherwise reads through.
func (c *CachedBookingRepository) ListFrom(ctx context.Context, date string, ownerID int64) ([]models.Booking, error) {
	key := fmt.Sprintf("from|%s|%d", date, ownerID)
	if cached, ok := c.get(key); ok {
		return cached, nil
	}
	list, err := c.inner.ListFrom(ctx, date, ownerID)
	if err != nil {
		return nil, err
	}
	c.put(key, list)
	return list, nil
}

// GetByID is a pass-through.
func (c *CachedBookingRepository) GetByID(ctx context.Context, id int64) (*models.Booking, error) {
	return c.inner.GetByID(ctx, id)
}

// FindOverlapping is a pass-through: always read fresh before a write.
func (c *CachedBookingRepository) FindOverlapping(ctx context.Context, date, start, end string, excludeID int64) ([]models.Booking, error) {
	return c.inner.FindOverlapping(ctx, date, start, end, excludeID)
}

// Insert writes through and flushes.
func (c *CachedBookingRepository) Insert(ctx context.Context, b *models.Booking) (int64, error) {
	id, err := c.inner.Insert(ctx, b)
	if err == nil {
		c.Flush()
	}
	return id, err
}

// InsertIfFree writes through and flushes on success.
func (c *CachedBookingRepository) InsertIfFree(ctx context.Context, b *models.Booking) (int64, []models.Booking, error) {
	id, blockers, err := c.inner.InsertIfFree(ctx, b)
	if err == nil && len(blockers) == 0 {
		c.Flush()
	}
	return id, blockers, err
}

// Update writes through and flushes.
func (c *CachedBookingRepository) Update(ctx context.Context, b *models.Booking) (bool, error) {
	found, err := c.inner.Update(ctx, b)
	if err == nil {
		c.Flush()
	}
	return found, err
}

// UpdateIfFree writes through and flushes on success.
func (c *CachedBookingRepository) UpdateIfFree(ctx context.Context, b *models.Booking) (bool, []models.Booking, error) {
	found, blockers, err := c.inner.UpdateIfFree(ctx, b)
	if err == nil && len(blockers) == 0 {
		c.Flush()
	}
	return found, blockers, err
}

// Delete writes through and flushes.
func (c *CachedBookingRepository) Delete(ctx context.Context, id int64) (bool, error) {
	found, err := c.inner.Delete(ctx, id)
	if err == nil {
		c.Flush()
	}
	return found, err
}
