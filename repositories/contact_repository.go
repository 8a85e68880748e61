package repositories

import (
	"context"
	"strings"
	"time"

	"coursehub/models"

	"gorm.io/gorm"
)

// ContactFilter narrows the admin inbox. IsRead nil means any.
type ContactFilter struct {
	Status string
	IsRead *bool
	Search string
	Page
}

type ContactRepository struct {
	db *gorm.DB
}

func NewContactRepository(db *gorm.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

func (r *ContactRepository) Create(ctx context.Context, c *models.Contact) error {
	if c.Status == "" {
		c.Status = models.ContactStatusNew
	}
	return r.db.WithContext(ctx).Omit("Responder").Create(c).Error
}

func (r *ContactRepository) FindByID(ctx context.Context, id uint) (*models.Contact, error) {
	var c models.Contact
	if err := r.db.WithContext(ctx).Preload("Responder").First(&c, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (r *ContactRepository) List(ctx context.Context, f ContactFilter) ([]models.Contact, Pagination, error) {
	q := r.db.WithContext(ctx).Model(&models.Contact{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.IsRead != nil {
		q = q.Where("is_read = ?", *f.IsRead)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(subject) LIKE ?", like, like, like)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, Pagination{}, err
	}
	var contacts []models.Contact
	err := q.Order("created_at DESC").Order("id DESC").
		Offset(f.offset()).Limit(f.normalized().Limit).
		Find(&contacts).Error
	if err != nil {
		return nil, Pagination{}, err
	}
	return contacts, newPagination(f.Page, total), nil
}

func (r *ContactRepository) update(ctx context.Context, id uint, values map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&models.Contact{}).Where("id = ?", id).Updates(values)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ContactRepository) SetRead(ctx context.Context, id uint, read bool) error {
	return r.update(ctx, id, map[string]interface{}{"is_read": read})
}

func (r *ContactRepository) UpdateStatus(ctx context.Context, id uint, status string) error {
	return r.update(ctx, id, map[string]interface{}{"status": status})
}

// Respond stores the admin's reply and resolves the message.
func (r *ContactRepository) Respond(ctx context.Context, id, responderID uint, response string) error {
	return r.update(ctx, id, map[string]interface{}{
		"admin_response": response,
		"responded_by":   responderID,
		"responded_at":   time.Now(),
		"status":         models.ContactStatusResolved,
		"is_read":        true,
	})
}

func (r *ContactRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Contact{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ContactRepository) Recent(ctx context.Context, limit int) ([]models.Contact, error) {
	var contacts []models.Contact
	err := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Limit(limit).Find(&contacts).Error
	return contacts, err
}

func (r *ContactRepository) CountUnread(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Contact{}).Where("is_read = ?", false).Count(&total).Error
	return total, err
}

// CountByStatus returns the number of contacts per status. Every known status
// is present, zero when empty.
func (r *ContactRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Status string
		Total  int64
	}
	err := r.db.WithContext(ctx).Model(&models.Contact{}).
		Select("status, COUNT(*) AS total").Group("status").Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(models.ContactStatuses))
	for _, s := range models.ContactStatuses {
		out[s] = 0
	}
	for _, row := range rows {
		out[row.Status] = row.Total
	}
	return out, nil
}

// CreatedSince returns contacts received after t, oldest first.
func (r *ContactRepository) CreatedSince(ctx context.Context, t time.Time) ([]models.Contact, error) {
	var contacts []models.Contact
	err := r.db.WithContext(ctx).Where("created_at >= ?", t).Order("created_at ASC").Find(&contacts).Error
	return contacts, err
}
